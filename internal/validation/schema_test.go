package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validPeriodicTable = `{
  "Fe": {
    "position": {"row": 4, "col": 8, "group": "transition"},
    "properties": {
      "atomic_number": 26,
      "atomic_weight": 55.845,
      "atomic_radius": 1.241,
      "atomic_volume": "7.09",
      "melting_point": 1811,
      "nvalence": 8
    }
  },
  "Ni": {"properties": {"atomic_weight": 58.693, "atomic_radius": null}}
}`

const validRestrictionsYAML = `vec:
  min: 6
  max: 8
cstr: FCC
model7:
  equals: SS
`

func TestValidatePeriodicTableBytes_Valid(t *testing.T) {
	errs := ValidatePeriodicTableBytes([]byte(validPeriodicTable))
	require.Empty(t, errs)
}

func TestValidatePeriodicTableBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing properties", `{"Fe": {"position": {"row": 4}}}`},
		{"bad symbol", `{"iron": {"properties": {}}}`},
		{"non numeric value", `{"Fe": {"properties": {"atomic_weight": "heavy"}}}`},
		{"empty table", `{}`},
		{"empty document", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePeriodicTableBytes([]byte(tt.doc))
			require.NotEmpty(t, errs)
		})
	}
}

func TestValidatePairwiseBytes(t *testing.T) {
	require.Empty(t, ValidatePairwiseBytes([]byte(`{"Fe": {"Ni": -2, "Co": "NaN"}, "Al": {"Ni": -22.5}}`)))
	require.NotEmpty(t, ValidatePairwiseBytes([]byte(`{"Fe": {"Ni": [1, 2]}}`)))
	require.NotEmpty(t, ValidatePairwiseBytes([]byte(`{"Fe": -2}`)))
}

func TestValidateRestrictionsBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateRestrictionsBytes([]byte(validRestrictionsYAML)))
	require.Empty(t, ValidateRestrictionsBytes([]byte(`{"delta": {"max": 6.6}, "model1": "SS"}`)))
	require.Empty(t, ValidateRestrictionsBytes([]byte(`{}`)))
	require.Empty(t, ValidateRestrictionsBytes(nil))
	require.Empty(t, ValidateRestrictionsBytes([]byte("# no restrictions yet\n")))
}

func TestValidateRestrictionsBytes_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains string
	}{
		{"unknown descriptor", "hardness:\n  min: 1\n", ""},
		{"mixed criterion", "vec:\n  min: 6\n  equals: FCC\n", "/vec"},
		{"empty criterion", "vec: {}\n", "/vec"},
		{"string bound", "vec:\n  min: six\n", "/vec"},
		{"not yaml", "vec: [", "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRestrictionsBytes([]byte(tt.doc))
			require.NotEmpty(t, errs)
			if tt.contains != "" {
				require.True(t, strings.Contains(strings.Join(errs, "\n"), tt.contains), "errors: %v", errs)
			}
		})
	}
}

func TestValidateRestrictionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restrict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRestrictionsYAML), 0o644))

	errs, err := ValidateRestrictionsFile(path)
	require.NoError(t, err)
	require.Empty(t, errs)

	_, err = ValidateRestrictionsFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestConvertToJSONCompatible_NonStringKeys(t *testing.T) {
	out := convertToJSONCompatible(map[any]any{1: []any{map[any]any{true: "x"}}})
	m, ok := out.(map[string]any)
	require.True(t, ok)
	inner := m["1"].([]any)[0].(map[string]any)
	require.Equal(t, "x", inner["true"])
}
