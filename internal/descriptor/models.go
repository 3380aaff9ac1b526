package descriptor

import (
	"fmt"
	"math"

	"github.com/mdlhea/heapp/internal/refdata"
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func phase(ss bool) Value {
	if ss {
		return Label(PhaseSS)
	}
	return Label(PhaseIM)
}

// model1: Ω ≥ 1.1 and 0 < δ < 6.6.
func model1(f *foundation) Value {
	if !finite(f.omega, f.delta) {
		return NotApplicable()
	}
	return phase(f.omega >= 1.1 && f.delta > 0 && f.delta < 6.6)
}

// model2: 0 < δ < 6.6 and −11.6 < ΔHmix < 3.2.
func model2(f *foundation) Value {
	if !finite(f.delta, f.hmix) {
		return NotApplicable()
	}
	return phase(f.delta > 0 && f.delta < 6.6 && f.hmix > -11.6 && f.hmix < 3.2)
}

// model3: γ < 1.175 and −11.6 < ΔHmix < 3.2.
func model3(f *foundation) Value {
	if !finite(f.gamma, f.hmix) {
		return NotApplicable()
	}
	return phase(f.gamma < 1.175 && f.hmix > -11.6 && f.hmix < 3.2)
}

// model4 classifies on λ = ΔSmix/δ² and ΔHmix.
func model4(f *foundation) Value {
	if f.delta == 0 {
		return NotApplicable()
	}
	lambda := f.smix / (f.delta * f.delta)
	if !finite(lambda, f.hmix) {
		return NotApplicable()
	}
	h := f.hmix
	switch {
	case lambda < 0.24 && h < -15:
		return Label(PhaseIM)
	case lambda >= 0.24 && lambda <= 0.96 && h >= -15 && h <= -5:
		return Label(PhaseSSIM)
	case lambda >= 0.96 && h >= -5 && h <= 0:
		return Label(PhaseSS)
	case lambda >= 0.96 && h > 0:
		return Label(PhaseSSSS)
	}
	switch {
	case lambda < 0.24:
		return Label(PhaseCoarseIM)
	case lambda > 0.96:
		return Label(PhaseCoarseSS)
	default:
		return Label(PhaseCoarseMixd)
	}
}

// fusionPairs calls fn for every constituent pair with fusion data and
// reports whether there was at least one.
func fusionPairs(f *foundation, fusion *refdata.PairwiseTable, fn func(h, xi, xj float64)) bool {
	found := false
	for i := range f.parts {
		for j := i + 1; j < len(f.parts); j++ {
			h, ok := fusion.Lookup(f.parts[i].Symbol, f.parts[j].Symbol)
			if !ok {
				continue
			}
			found = true
			fn(h, f.parts[i].x, f.parts[j].x)
		}
	}
	return found
}

// model6 compares the most negative fusion enthalpy against the entropic
// term at 0.55·Tm.
func model6(f *foundation, fusion *refdata.PairwiseTable) Value {
	lowest := math.Inf(1)
	if !fusionPairs(f, fusion, func(h, _, _ float64) { lowest = math.Min(lowest, h) }) {
		return NotApplicable()
	}
	annealing := f.tm * 0.55
	lower := -annealing * f.smix * 1.04e-2
	if !finite(lower, lowest) {
		return NotApplicable()
	}
	return phase(lower <= lowest && lowest <= 37)
}

// model7 compares K1 = Ω(T)·(1 − 0.6) + 1 with ΔH_IM/ΔHmix at 0.6·Tm.
func model7(f *foundation, fusion *refdata.PairwiseTable) Value {
	sum := 0.0
	if !fusionPairs(f, fusion, func(h, xi, xj float64) { sum += h * xi * xj }) {
		return NotApplicable()
	}
	hIM := 0.09648 * 4 * sum
	annealing := f.tm * 0.6

	omegaT, ratio := omegaSentinel, omegaSentinel
	if f.hmix != 0 {
		omegaT = annealing * f.smix / (math.Abs(f.hmix) * 1000)
		ratio = hIM / f.hmix
	}
	k1 := omegaT*(1-0.6) + 1
	if !finite(k1, ratio, annealing) {
		return NotApplicable()
	}

	note := fmt.Sprintf("Tₐₙ: %.1f K", annealing)
	if k1 > ratio {
		return AnnotatedLabel(PhaseSS, note)
	}
	return AnnotatedLabel(PhaseIM, note)
}
