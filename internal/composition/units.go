package composition

import (
	"errors"
	"fmt"
	"math"
)

// Mode names the unit the user entered a composition in.
type Mode string

const (
	ModeAtomicPercent Mode = "at"
	ModeAtomicRatio   Mode = "ratio"
	ModeWeightPercent Mode = "wt"
	ModeMass          Mode = "mass"
)

// Modes lists the accepted input modes.
var Modes = []Mode{ModeAtomicPercent, ModeAtomicRatio, ModeWeightPercent, ModeMass}

// AtomicWeights resolves molar masses (g/mol). *refdata.Store implements it.
type AtomicWeights interface {
	AtomicWeight(symbol string) (float64, bool)
}

// Convert turns values entered in mode into atomic percent. Atomic percent
// input is validated but not rescaled.
func Convert(mode Mode, values Composition, weights AtomicWeights) (Composition, error) {
	switch mode {
	case ModeAtomicPercent, "":
		if err := values.Validate(); err != nil {
			return nil, err
		}
		return values, nil
	case ModeAtomicRatio:
		return FromRatio(values)
	case ModeWeightPercent:
		if err := values.Validate(); err != nil {
			return nil, err
		}
		return FromWeightPercent(values, weights)
	case ModeMass:
		return FromMass(values, weights)
	default:
		return nil, &InputError{Reason: fmt.Sprintf("unknown input mode %q", mode)}
	}
}

// FromRatio treats the values as atomic ratios and scales them to 100.
func FromRatio(values Composition) (Composition, error) {
	if err := checkPositive(values); err != nil {
		return nil, err
	}
	return values.Normalize()
}

// FromWeightPercent converts weight percent to atomic percent:
// at_i = (w_i/M_i) / Σ(w_j/M_j) × 100.
func FromWeightPercent(values Composition, weights AtomicWeights) (Composition, error) {
	if err := checkPositive(values); err != nil {
		return nil, err
	}
	moles, err := scaleByWeight(values, weights, func(v, m float64) float64 { return v / m })
	if err != nil {
		return nil, err
	}
	return moles.Normalize()
}

// FromMass converts element masses (any unit) to atomic percent.
func FromMass(values Composition, weights AtomicWeights) (Composition, error) {
	return FromWeightPercent(values, weights)
}

// ToWeightPercent converts atomic percent to weight percent:
// wt_i = M_i·at_i / Σ(M_j·at_j) × 100.
func ToWeightPercent(c Composition, weights AtomicWeights) (Composition, error) {
	if err := checkPositive(c); err != nil {
		return nil, err
	}
	masses, err := scaleByWeight(c, weights, func(v, m float64) float64 { return v * m })
	if err != nil {
		return nil, err
	}
	return masses.Normalize()
}

func scaleByWeight(c Composition, weights AtomicWeights, f func(v, m float64) float64) (Composition, error) {
	if weights == nil {
		return nil, &InputError{Reason: "atomic weights unavailable"}
	}
	out := make(Composition, len(c))
	var errs []error
	for i, comp := range c {
		m, ok := weights.AtomicWeight(comp.Symbol)
		if !ok {
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "atomic weight unknown"})
			continue
		}
		out[i] = Component{Symbol: comp.Symbol, Percent: f(comp.Percent, m)}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func checkPositive(c Composition) error {
	if len(c) == 0 {
		return &InputError{Reason: "no elements given"}
	}
	var errs []error
	for _, comp := range c {
		if !(comp.Percent > 0) || math.IsInf(comp.Percent, 0) {
			errs = append(errs, &InputError{Element: comp.Symbol, Reason: "value must be positive"})
		}
	}
	return errors.Join(errs...)
}
