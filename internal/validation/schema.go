package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mdlhea/heapp/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	periodicTableSchema *jsonschema.Schema
	pairwiseSchema      *jsonschema.Schema
	restrictionsSchema  *jsonschema.Schema
)

func init() {
	periodicTableSchema = mustCompileSchema(schemas.PeriodicTableSchemaJSON, "periodic_table.schema.json")
	pairwiseSchema = mustCompileSchema(schemas.PairwiseSchemaJSON, "pairwise.schema.json")
	restrictionsSchema = mustCompileSchema(schemas.RestrictionsSchemaJSON, "restrictions.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidatePeriodicTableBytes validates the contents of periodic_table.json.
func ValidatePeriodicTableBytes(data []byte) []string {
	return validateYAMLBytes(periodicTableSchema, data)
}

// ValidatePairwiseBytes validates a nested pair table such as
// mixing_enthalpy_data.json.
func ValidatePairwiseBytes(data []byte) []string {
	return validateYAMLBytes(pairwiseSchema, data)
}

// ValidateRestrictionsBytes validates a restriction document (YAML or JSON).
// An empty or comments-only document is the empty restriction and is valid.
func ValidateRestrictionsBytes(data []byte) []string {
	doc, errs := parseYAML(data)
	if errs != nil || doc == nil {
		return errs
	}
	return validateAgainstSchema(restrictionsSchema, doc)
}

// ValidateRestrictionsFile reads and validates a restriction file.
func ValidateRestrictionsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading restriction file: %w", err)
	}
	return ValidateRestrictionsBytes(data), nil
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	doc, errs := parseYAML(data)
	if errs != nil {
		return errs
	}
	if doc == nil {
		return []string{"/: document is empty"}
	}
	return validateAgainstSchema(schema, doc)
}

// parseYAML parses data as YAML, which also accepts JSON documents. A nil
// document means data held nothing but whitespace or comments.
func parseYAML(data []byte) (any, []string) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []string{fmt.Sprintf("parse error: %v", err)}
	}
	if doc == nil {
		return nil, nil
	}
	return convertToJSONCompatible(doc), nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites mappings with non-string keys (which
// yaml.v3 produces for keys such as `1:` or `true:`) into string-keyed maps.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
