// Package restriction filters descriptor sets against user criteria.
package restriction

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/descriptor"
)

// ErrInvalidSpec is returned for restriction specs that cannot be evaluated.
var ErrInvalidSpec = errors.New("restriction: invalid spec")

// Criterion is one descriptor's constraint: a closed numeric interval (an
// absent bound is unbounded on that side) or an exact label match.
type Criterion struct {
	Min    *float64 `mapstructure:"min" yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64 `mapstructure:"max" yaml:"max,omitempty" json:"max,omitempty"`
	Equals string   `mapstructure:"equals" yaml:"equals,omitempty" json:"equals,omitempty"`
}

// Between is the numeric criterion min ≤ v ≤ max.
func Between(lo, hi float64) Criterion { return Criterion{Min: &lo, Max: &hi} }

// AtLeast is the numeric criterion v ≥ lo.
func AtLeast(lo float64) Criterion { return Criterion{Min: &lo} }

// AtMost is the numeric criterion v ≤ hi.
func AtMost(hi float64) Criterion { return Criterion{Max: &hi} }

// Equal is the categorical criterion matching label exactly.
func Equal(label string) Criterion { return Criterion{Equals: label} }

// Numeric reports whether c constrains a number.
func (c Criterion) Numeric() bool { return c.Min != nil || c.Max != nil }

// Match reports whether v satisfies c. Labels compare by class, so model7's
// temperature note is ignored; a not-applicable value matches only "N/A".
func (c Criterion) Match(v descriptor.Value) bool {
	if c.Numeric() {
		x, ok := v.Float()
		if !ok {
			return false
		}
		if c.Min != nil && x < *c.Min {
			return false
		}
		if c.Max != nil && x > *c.Max {
			return false
		}
		return true
	}
	return v.Class() == c.Equals
}

func (c Criterion) String() string {
	if !c.Numeric() {
		return fmt.Sprintf("= %s", c.Equals)
	}
	lo, hi := "-∞", "+∞"
	if c.Min != nil {
		lo = strconv.FormatFloat(*c.Min, 'g', -1, 64)
	}
	if c.Max != nil {
		hi = strconv.FormatFloat(*c.Max, 'g', -1, 64)
	}
	return fmt.Sprintf("in [%s, %s]", lo, hi)
}

// Spec maps descriptor names to criteria. A nil or empty Spec accepts
// everything.
type Spec map[string]Criterion

// Evaluate reports whether ds meets every criterion.
func (s Spec) Evaluate(ds descriptor.DescriptorSet) bool {
	for name, c := range s {
		v, ok := ds.Field(name)
		if !ok || !c.Match(v) {
			return false
		}
	}
	return true
}

// Validate rejects unknown descriptors, criteria of the wrong kind and
// inverted intervals, reporting every offending entry.
func (s Spec) Validate() error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(s)) {
		c := s[name]
		switch {
		case descriptor.IsNumeric(name):
			if !c.Numeric() {
				errs = append(errs, fmt.Errorf("%w: %s needs min and/or max", ErrInvalidSpec, name))
			} else if c.Equals != "" {
				errs = append(errs, fmt.Errorf("%w: %s mixes bounds and equals", ErrInvalidSpec, name))
			} else if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
				errs = append(errs, fmt.Errorf("%w: %s has min %g > max %g", ErrInvalidSpec, name, *c.Min, *c.Max))
			}
		case descriptor.IsCategorical(name):
			if c.Numeric() {
				errs = append(errs, fmt.Errorf("%w: %s is categorical, use equals", ErrInvalidSpec, name))
			} else if c.Equals == "" {
				errs = append(errs, fmt.Errorf("%w: %s needs a label", ErrInvalidSpec, name))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: unknown descriptor %q", ErrInvalidSpec, name))
		}
	}
	return errors.Join(errs...)
}

// String lists the criteria in descriptor order, e.g. "vec in [6, 8], cstr = FCC".
func (s Spec) String() string {
	if len(s) == 0 {
		return "none"
	}
	var parts []string
	for _, name := range descriptor.Names() {
		if c, ok := s[name]; ok {
			parts = append(parts, name+" "+c.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Calculator computes descriptor sets. *descriptor.Engine implements it.
type Calculator interface {
	Calculate(fr composition.Fractions) (descriptor.DescriptorSet, error)
}

// Apply validates fr, calculates it and evaluates spec against the result.
// Fractions that are not positive or do not sum to 1 are rejected before
// calc is called.
func Apply(calc Calculator, fr composition.Fractions, spec Spec) (descriptor.DescriptorSet, bool, error) {
	if err := fr.Validate(); err != nil {
		return descriptor.DescriptorSet{}, false, err
	}
	ds, err := calc.Calculate(fr)
	if err != nil {
		return descriptor.DescriptorSet{}, false, err
	}
	return ds, spec.Evaluate(ds), nil
}
