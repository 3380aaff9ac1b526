package reporting

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdlhea/heapp/internal/descriptor"
)

//go:generate go tool mockgen -destination=mocks/mock_table_writer.go -package=mocks . TableWriter

// TableWriter writes rows of a tabular export.
type TableWriter interface {
	WriteHeader(headers []string) error
	WriteRow(cells []any) error
	// Close finishes the file. Nothing is guaranteed to be on disk before
	// Close returns nil.
	Close() error
}

var headers = []string{
	"Alloy", "Density (g/cm³)", "δ", "γ", "ΔHmix (kJ/mol)", "VEC",
	"ΔSmix (kJ/mol)", "Tm (K)", "Ω", "Crystal Str.",
	"R1", "R2", "R3", "R4", "R5", "R6",
}

// Headers returns the 16 export column names. R1–R6 are model1–model4,
// model6 and model7.
func Headers() []string { return slices.Clone(headers) }

// Row returns the cells of r in Headers order: the name, eight numbers and
// seven labels.
func Row(r descriptor.AlloyResult) []any {
	d := r.Descriptors
	row := []any{
		r.Name,
		d.Density, d.Delta, d.Gamma, d.EnthalpyOfMixing, d.VEC,
		d.MixingEntropy, d.MeltingTemp, d.Omega,
		d.CrystalStructure,
	}
	for _, m := range d.Models() {
		row = append(row, m.String())
	}
	return row
}

// Format identifies an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	Name        Format
	Extension   string
	Description string
	// MaxRows is the number of data rows the format can hold below the
	// header; 0 means unlimited.
	MaxRows     int
	create      func(path string) (TableWriter, error)
}

// Create opens a writer for path.
func (fi FormatInfo) Create(path string) (TableWriter, error) {
	return fi.create(path)
}

// FormatRegistry contains every supported export format.
var FormatRegistry = map[Format]FormatInfo{
	FormatCSV: {
		Name:        FormatCSV,
		Extension:   ".csv",
		Description: "Comma-separated values",
		create:      func(path string) (TableWriter, error) { return NewCSVWriter(path) },
	},
	FormatXLSX: {
		Name:        FormatXLSX,
		Extension:   ".xlsx",
		Description: "Excel workbook",
		MaxRows:     excelMaxRows - 1,
		create:      func(path string) (TableWriter, error) { return NewXLSXWriter(path) },
	},
}

// excelMaxRows is the worksheet row limit of the xlsx format.
const excelMaxRows = 1_048_576

// Fits reports whether rows data rows fit in one file of this format.
func (fi FormatInfo) Fits(rows int) bool {
	return fi.MaxRows == 0 || rows <= fi.MaxRows
}

// GetFormatInfo returns metadata for a format name.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// FormatForPath picks the format matching path's extension.
func FormatForPath(path string) (FormatInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, info := range FormatRegistry {
		if info.Extension == ext {
			return info, nil
		}
	}
	return FormatInfo{}, fmt.Errorf("reporting: unsupported export extension %q (want .csv or .xlsx)", ext)
}
