package descriptor

import (
	"errors"
	"fmt"
	"math"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/refdata"
)

// GasConstant is R in J/(mol·K).
const GasConstant = 8.314462618

// omegaSentinel stands in for Ω (and model7's ratios) when ΔHmix is zero.
const omegaSentinel = 1e10

// ErrInsufficientData is returned when a foundational descriptor cannot be
// computed for a composition.
var ErrInsufficientData = errors.New("descriptor: insufficient reference data")

// Engine computes descriptor sets from a reference Store. It keeps no
// per-calculation state and is safe for concurrent use.
type Engine struct {
	ref *refdata.Store
}

// NewEngine returns an Engine backed by ref.
func NewEngine(ref *refdata.Store) *Engine {
	return &Engine{ref: ref}
}

// Reference returns the backing store.
func (e *Engine) Reference() *refdata.Store { return e.ref }

// constituent is one element of the composition being calculated.
type constituent struct {
	refdata.Element
	x float64
}

// foundation carries the foundational descriptors through the model
// functions of a single Calculate call.
type foundation struct {
	parts   []constituent
	density float64
	rAvg    float64
	delta   float64
	gamma   float64
	hmix    float64
	vec     float64
	smix    float64
	tm      float64
	omega   float64
}

// Calculate computes every descriptor for fr. It does not renormalize fr.
func (e *Engine) Calculate(fr composition.Fractions) (DescriptorSet, error) {
	f, err := e.foundation(fr)
	if err != nil {
		return DescriptorSet{}, err
	}
	return DescriptorSet{
		Density:          f.density,
		Delta:            f.delta,
		Gamma:            f.gamma,
		EnthalpyOfMixing: f.hmix,
		VEC:              f.vec,
		MixingEntropy:    f.smix,
		MeltingTemp:      f.tm,
		Omega:            f.omega,
		CrystalStructure: CrystalStructure(f.vec),
		Model1:           model1(f),
		Model2:           model2(f),
		Model3:           model3(f),
		Model4:           model4(f),
		Model6:           model6(f, e.ref.Fusion()),
		Model7:           model7(f, e.ref.Fusion()),
	}, nil
}

func (e *Engine) foundation(fr composition.Fractions) (*foundation, error) {
	if len(fr) < 2 {
		return nil, fmt.Errorf("%w: need at least two elements, got %d", ErrInsufficientData, len(fr))
	}
	f := &foundation{parts: make([]constituent, len(fr))}
	var errs []error
	seen := make(map[string]bool, len(fr))
	for i, p := range fr {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || p.X < 0 {
			errs = append(errs, &composition.InputError{Element: p.Symbol, Reason: "fraction must be a non-negative number"})
			continue
		}
		if seen[p.Symbol] {
			errs = append(errs, &composition.InputError{Element: p.Symbol, Reason: "listed more than once"})
			continue
		}
		seen[p.Symbol] = true
		el, ok := e.ref.Element(p.Symbol)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown element %q", ErrInsufficientData, p.Symbol))
			continue
		}
		f.parts[i] = constituent{Element: el, x: p.X}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var (
		mass, volume   float64
		rMin, rMax     = math.Inf(1), math.Inf(-1)
		tmSum, entropy float64
	)
	for _, p := range f.parts {
		mass += p.x * p.AtomicWeight
		volume += p.x * p.AtomicVolume
		f.rAvg += p.x * p.AtomicRadius
		f.vec += p.x * p.NValence
		tmSum += p.x * p.MeltingPoint
		rMin = math.Min(rMin, p.AtomicRadius)
		rMax = math.Max(rMax, p.AtomicRadius)
		if p.x > 0 {
			entropy += p.x * math.Log(p.x)
		}
	}
	f.density = mass / volume
	f.smix = -GasConstant * entropy
	f.tm = math.Ceil(tmSum)

	sq := 0.0
	for _, p := range f.parts {
		d := 1 - p.AtomicRadius/f.rAvg
		sq += p.x * d * d
	}
	f.delta = 100 * math.Sqrt(sq)
	f.gamma = solidAngle(rMin, f.rAvg) / solidAngle(rMax, f.rAvg)

	mixing := e.ref.Mixing()
	for i := range f.parts {
		for j := i + 1; j < len(f.parts); j++ {
			if h, ok := mixing.Lookup(f.parts[i].Symbol, f.parts[j].Symbol); ok {
				f.hmix += f.parts[i].x * f.parts[j].x * h
			}
		}
	}
	f.hmix *= 4

	if f.hmix == 0 {
		f.omega = omegaSentinel
	} else {
		f.omega = f.tm * f.smix / (math.Abs(f.hmix) * 1000)
	}

	checks := []struct {
		name string
		v    float64
	}{
		{FieldDensity, f.density},
		{FieldDelta, f.delta},
		{FieldGamma, f.gamma},
		{FieldEnthalpyOfMixing, f.hmix},
		{FieldVEC, f.vec},
		{FieldMixingEntropy, f.smix},
		{FieldMeltingTemp, f.tm},
		{FieldOmega, f.omega},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return nil, fmt.Errorf("%w: %s is undefined for %s", ErrInsufficientData, c.name, symbols(fr))
		}
	}
	return f, nil
}

// solidAngle is 1 − sqrt(((r+r̄)² − r̄²)/(r+r̄)²), the packing term of γ.
func solidAngle(r, rAvg float64) float64 {
	s := (r + rAvg) * (r + rAvg)
	return 1 - math.Sqrt((s-rAvg*rAvg)/s)
}

func symbols(fr composition.Fractions) string {
	out := ""
	for _, p := range fr {
		out += p.Symbol
	}
	return out
}

// CrystalStructure predicts the lattice from the valence electron
// concentration.
func CrystalStructure(vec float64) string {
	switch {
	case vec >= 2.5 && vec <= 3.5:
		return StructureHCP
	case vec >= 8.0:
		return StructureFCC
	case vec <= 6.87:
		return StructureBCC
	default:
		return StructureBCCFCC
	}
}
