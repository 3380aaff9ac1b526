// Package wizard builds a restriction interactively.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/restriction"
)

// Answers holds the raw form values keyed by descriptor name. Bounds are
// "min:max" strings where either side may be empty; an empty label means
// any value is accepted.
type Answers struct {
	Bounds map[string]string
	Labels map[string]string
}

// RunRestrictionWizard runs an interactive huh form with one bounds field
// per numeric descriptor and one select per categorical descriptor.
func RunRestrictionWizard(in io.Reader, out io.Writer) (restriction.Spec, error) {
	numeric := descriptor.NumericFields()
	categorical := descriptor.CategoricalFields()
	bounds := make([]string, len(numeric))
	labels := make([]string, len(categorical))

	boundFields := make([]huh.Field, len(numeric))
	for i, name := range numeric {
		boundFields[i] = huh.NewInput().
			Title(name).
			Description("min:max, either side may be left empty").
			Placeholder("6:8").
			Value(&bounds[i]).
			Validate(func(s string) error {
				_, _, err := ParseBounds(s)
				return err
			})
	}

	labelFields := make([]huh.Field, len(categorical))
	for i, name := range categorical {
		opts := []huh.Option[string]{huh.NewOption("any", "")}
		for _, c := range descriptor.Choices(name) {
			opts = append(opts, huh.NewOption(c, c))
		}
		labelFields[i] = huh.NewSelect[string]().
			Title(name).
			Options(opts...).
			Value(&labels[i])
	}

	form := huh.NewForm(
		huh.NewGroup(boundFields...).Title("Numeric descriptors"),
		huh.NewGroup(labelFields...).Title("Structure and phase models"),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	ans := Answers{Bounds: make(map[string]string), Labels: make(map[string]string)}
	for i, name := range numeric {
		ans.Bounds[name] = bounds[i]
	}
	for i, name := range categorical {
		ans.Labels[name] = labels[i]
	}
	return BuildSpec(ans)
}

// BuildSpec turns form answers into a validated restriction. Blank answers
// are left out.
func BuildSpec(a Answers) (restriction.Spec, error) {
	spec := restriction.Spec{}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(a.Bounds)) {
		lo, hi, err := ParseBounds(a.Bounds[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if lo != nil || hi != nil {
			spec[name] = restriction.Criterion{Min: lo, Max: hi}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(a.Labels)) {
		if label := strings.TrimSpace(a.Labels[name]); label != "" {
			spec[name] = restriction.Equal(label)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// ParseBounds parses "min:max", "min:" or ":max". A blank string has no
// bounds.
func ParseBounds(s string) (lo, hi *float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}
	left, right, ok := strings.Cut(s, ":")
	if !ok {
		return nil, nil, fmt.Errorf("bounds %q must be written as min:max", s)
	}
	if lo, err = parseBound(left); err != nil {
		return nil, nil, err
	}
	if hi, err = parseBound(right); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, fmt.Errorf("bounds %q: min is greater than max", s)
	}
	return lo, hi, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &v, nil
}
