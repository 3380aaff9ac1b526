// Package composition models alloy compositions: atomic-percent component
// lists, atomic fractions, formula parsing, unit conversion and display names.
package composition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Epsilon is the tolerance on the sum of atomic fractions.
const Epsilon = 1e-6

// percentTolerance is the tolerance on the sum of atomic percentages.
const percentTolerance = 100 * Epsilon

// ErrInvalidInput marks user input rejected at the boundary.
var ErrInvalidInput = errors.New("composition: invalid input")

// InputError describes one offending element (or the composition as a whole
// when Element is empty). It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Element string
	Reason  string
}

func (e *InputError) Error() string {
	if e.Element == "" {
		return "composition: " + e.Reason
	}
	return fmt.Sprintf("composition: %s: %s", e.Element, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Component is one element of a composition in atomic percent.
type Component struct {
	Symbol  string  `json:"symbol"`
	Percent float64 `json:"percent"`
}

// Composition is an ordered list of components. The order is the user's
// element order; it fixes pair iteration and the display name.
type Composition []Component

// Total returns the sum of the percentages.
func (c Composition) Total() float64 {
	sum := 0.0
	for _, comp := range c {
		sum += comp.Percent
	}
	return sum
}

// Symbols returns the element symbols in order.
func (c Composition) Symbols() []string {
	out := make([]string, len(c))
	for i, comp := range c {
		out[i] = comp.Symbol
	}
	return out
}

// Percent returns the percentage of symbol, or 0 when absent.
func (c Composition) Percent(symbol string) float64 {
	for _, comp := range c {
		if comp.Symbol == symbol {
			return comp.Percent
		}
	}
	return 0
}

// Fractions converts the percentages to atomic fractions. It does not
// renormalize.
func (c Composition) Fractions() Fractions {
	out := make(Fractions, len(c))
	for i, comp := range c {
		out[i] = Fraction{Symbol: comp.Symbol, X: comp.Percent / 100}
	}
	return out
}

// Normalize scales the percentages so they sum to 100.
func (c Composition) Normalize() (Composition, error) {
	total := c.Total()
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, &InputError{Reason: "total must be positive"}
	}
	out := make(Composition, len(c))
	for i, comp := range c {
		out[i] = Component{Symbol: comp.Symbol, Percent: comp.Percent / total * 100}
	}
	return out, nil
}

// Validate checks every component and the total, reporting all offending
// elements at once.
func (c Composition) Validate() error {
	if len(c) == 0 {
		return &InputError{Reason: "no elements given"}
	}
	var errs []error
	seen := make(map[string]bool, len(c))
	for _, comp := range c {
		switch {
		case comp.Symbol == "":
			errs = append(errs, &InputError{Reason: "empty element symbol"})
		case seen[comp.Symbol]:
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "listed more than once"})
		case math.IsNaN(comp.Percent) || math.IsInf(comp.Percent, 0):
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "percentage is not a number"})
		case comp.Percent <= 0:
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "percentage must be positive"})
		case comp.Percent > 100:
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "percentage exceeds 100"})
		}
		seen[comp.Symbol] = true
	}
	if len(errs) == 0 {
		if total := c.Total(); math.Abs(total-100) > percentTolerance {
			errs = append(errs, &InputError{Reason: fmt.Sprintf("percentages sum to %s, want 100", strconv.FormatFloat(total, 'f', -1, 64))})
		}
	}
	return errors.Join(errs...)
}

// Name renders the composition as a formula with the integer part of each
// percentage in Unicode subscripts, e.g. Fe₂₀Ni₂₀Co₂₀Cr₂₀Mn₂₀.
func (c Composition) Name() string {
	var b strings.Builder
	for _, comp := range c {
		b.WriteString(comp.Symbol)
		b.WriteString(Subscript(strconv.Itoa(int(comp.Percent))))
	}
	return b.String()
}

// String returns the plain formula with the percentages, e.g. Fe50Ni50.
func (c Composition) String() string {
	var b strings.Builder
	for _, comp := range c {
		b.WriteString(comp.Symbol)
		b.WriteString(strconv.FormatFloat(comp.Percent, 'f', -1, 64))
	}
	return b.String()
}

// Fraction is one element's atomic fraction.
type Fraction struct {
	Symbol string
	X      float64
}

// Fractions is the calculator input: ordered atomic fractions.
type Fractions []Fraction

// Sum returns the sum of the fractions.
func (f Fractions) Sum() float64 {
	sum := 0.0
	for _, fr := range f {
		sum += fr.X
	}
	return sum
}

// Validate checks that every fraction is positive and that they sum to
// 1 ± Epsilon.
func (f Fractions) Validate() error {
	var errs []error
	for _, fr := range f {
		if !(fr.X > 0) || fr.X > 1 || math.IsInf(fr.X, 0) {
			errs = append(errs, &InputError{Element: fr.Symbol, Reason: "fraction must be in (0, 1]"})
		}
	}
	if len(errs) == 0 && math.Abs(f.Sum()-1) > Epsilon {
		errs = append(errs, &InputError{Reason: fmt.Sprintf("fractions sum to %g, want 1", f.Sum())})
	}
	return errors.Join(errs...)
}

var subscriptDigits = strings.NewReplacer(
	"0", "₀", "1", "₁", "2", "₂", "3", "₃", "4", "₄",
	"5", "₅", "6", "₆", "7", "₇", "8", "₈", "9", "₉",
)

var plainDigits = strings.NewReplacer(
	"₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4",
	"₅", "5", "₆", "6", "₇", "7", "₈", "8", "₉", "9",
)

// Subscript replaces ASCII digits in s with Unicode subscript digits.
func Subscript(s string) string { return subscriptDigits.Replace(s) }
