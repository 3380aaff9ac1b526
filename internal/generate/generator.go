// Package generate enumerates alloy composition spaces: every combination
// of per-element atomic percentages on an integer grid that sums to 100.
package generate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mdlhea/heapp/internal/composition"
)

// Total is the sum every generated composition reaches, in atomic percent.
const Total = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

// ElementRange is the inclusive atomic-percent range swept for one element.
// A Start of 0 makes the element optional; zero entries are left out of the
// generated composition.
type ElementRange struct {
	Symbol string `validate:"required"`
	Start  int    `validate:"min=0,max=100"`
	End    int    `validate:"min=0,max=100,gtefield=Start"`
}

// ParseRange parses "Fe=10:30" or "Fe=20".
func ParseRange(s string) (ElementRange, error) {
	symbol, bounds, ok := strings.Cut(s, "=")
	symbol = strings.TrimSpace(symbol)
	if !ok || symbol == "" {
		return ElementRange{}, &composition.InputError{Reason: fmt.Sprintf("expected Symbol=start:end, got %q", s)}
	}
	lo, hi, isRange := strings.Cut(bounds, ":")
	if !isRange {
		hi = lo
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(lo))
	end, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil {
		return ElementRange{}, &composition.InputError{Element: symbol, Reason: fmt.Sprintf("range %q must be integers", bounds)}
	}
	return ElementRange{Symbol: symbol, Start: start, End: end}, nil
}

// Space is a validated composition space. It is immutable; All may be
// iterated any number of times.
type Space struct {
	ranges []ElementRange
	step   int
	// minRest[i] and maxRest[i] bound the sum reachable by ranges[i:].
	minRest []int
	maxRest []int
}

// NewSpace validates ranges and step and reports every offending element.
func NewSpace(ranges []ElementRange, step int) (*Space, error) {
	var errs []error
	if len(ranges) == 0 {
		errs = append(errs, &composition.InputError{Reason: "no element ranges given"})
	}
	if step <= 0 {
		errs = append(errs, &composition.InputError{Reason: fmt.Sprintf("step must be positive, got %d", step)})
	}
	seen := make(map[string]bool, len(ranges))
	for _, r := range ranges {
		if err := validate.Struct(r); err != nil {
			errs = append(errs, &composition.InputError{Element: r.Symbol, Reason: describe(err)})
			continue
		}
		if seen[r.Symbol] {
			errs = append(errs, &composition.InputError{Element: r.Symbol, Reason: "listed more than once"})
		}
		seen[r.Symbol] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s := &Space{
		ranges:  slices.Clone(ranges),
		step:    step,
		minRest: make([]int, len(ranges)+1),
		maxRest: make([]int, len(ranges)+1),
	}
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		s.minRest[i] = s.minRest[i+1] + r.Start
		s.maxRest[i] = s.maxRest[i+1] + s.last(r)
	}
	return s, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, "symbol is required")
		case "min", "max":
			reasons = append(reasons, fmt.Sprintf("%s must be between 0 and 100", strings.ToLower(fe.Field())))
		case "gtefield":
			reasons = append(reasons, "end must not be below start")
		default:
			reasons = append(reasons, fmt.Sprintf("%s fails %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(reasons, "; ")
}

// last is the largest grid value of r.
func (s *Space) last(r ElementRange) int {
	return r.Start + (r.End-r.Start)/s.step*s.step
}

// Ranges returns the element ranges in order.
func (s *Space) Ranges() []ElementRange { return slices.Clone(s.ranges) }

// Step returns the grid step.
func (s *Space) Step() int { return s.step }

// Symbols returns the element symbols in order.
func (s *Space) Symbols() []string {
	out := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		out[i] = r.Symbol
	}
	return out
}

// Candidates is the size of the full Cartesian grid before the sum filter.
func (s *Space) Candidates() float64 {
	n := 1.0
	for _, r := range s.ranges {
		n *= float64((r.End-r.Start)/s.step + 1)
	}
	return n
}

// All yields every grid point whose percentages sum to 100, in
// lexicographic order with the first element varying slowest. Branches that
// can no longer reach exactly 100 are skipped.
func (s *Space) All() iter.Seq[composition.Composition] {
	return func(yield func(composition.Composition) bool) {
		values := make([]int, len(s.ranges))
		var walk func(i, sum int) bool
		walk = func(i, sum int) bool {
			if i == len(s.ranges) {
				if sum != Total {
					return true
				}
				return yield(s.build(values))
			}
			r := s.ranges[i]
			for v := r.Start; v <= r.End; v += s.step {
				partial := sum + v
				if partial+s.minRest[i+1] > Total {
					break
				}
				if partial+s.maxRest[i+1] < Total {
					continue
				}
				values[i] = v
				if !walk(i+1, partial) {
					return false
				}
			}
			return true
		}
		walk(0, 0)
	}
}

func (s *Space) build(values []int) composition.Composition {
	c := make(composition.Composition, 0, len(values))
	for i, v := range values {
		if v == 0 {
			continue
		}
		c = append(c, composition.Component{Symbol: s.ranges[i].Symbol, Percent: float64(v)})
	}
	return c
}

// countCheckEvery is how many compositions Count walks between context checks.
const countCheckEvery = 4096

// Count walks the space without keeping the compositions.
func (s *Space) Count(ctx context.Context) (int, error) {
	n := 0
	for range s.All() {
		n++
		if n%countCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
	}
	return n, ctx.Err()
}

// Generate returns the whole space at once. Use Space.All for large spaces.
func Generate(ranges []ElementRange, step int) ([]composition.Composition, error) {
	s, err := NewSpace(ranges, step)
	if err != nil {
		return nil, err
	}
	return slices.Collect(s.All()), nil
}
