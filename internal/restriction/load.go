package restriction

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mdlhea/heapp/internal/validation"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML or JSON restriction file. Values are either a label
// ("cstr: FCC"), {equals: label}, or {min, max}.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading restriction file: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes and validates a restriction document.
func Parse(data []byte) (Spec, error) {
	if errs := validation.ValidateRestrictionsBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpec, strings.Join(errs, "; "))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	spec := make(Spec, len(raw))
	var errs []error
	for name, v := range raw {
		if label, ok := v.(string); ok {
			spec[name] = Equal(label)
			continue
		}
		var c Criterion
		if err := mapstructure.Decode(v, &c); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, name, err))
			continue
		}
		spec[name] = c
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Save writes spec as YAML. Label criteria use the short "name: label" form.
func Save(path string, spec Spec) error {
	out := make(map[string]any, len(spec))
	for name, c := range spec {
		if c.Numeric() {
			out[name] = c
		} else {
			out[name] = c.Equals
		}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding restrictions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing restriction file: %w", err)
	}
	return nil
}
