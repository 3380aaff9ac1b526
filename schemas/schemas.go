// Package schemas embeds the JSON Schemas for heapp's input documents.
package schemas

import _ "embed"

// PeriodicTableSchemaJSON describes periodic_table.json.
//
//go:embed periodic_table.schema.json
var PeriodicTableSchemaJSON string

// PairwiseSchemaJSON describes the nested pair tables
// (mixing_enthalpy_data.json, fusion_enthalpy_data.json).
//
//go:embed pairwise.schema.json
var PairwiseSchemaJSON string

// RestrictionsSchemaJSON describes restriction files passed to --restrict.
//
//go:embed restrictions.schema.json
var RestrictionsSchemaJSON string
