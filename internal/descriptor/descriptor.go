// Package descriptor computes the thermodynamic and geometric descriptors of
// an alloy composition and the phase classifications derived from them.
package descriptor

import (
	"slices"

	"github.com/mdlhea/heapp/internal/composition"
)

// Descriptor names, as used in restriction files and the Field accessor.
const (
	FieldDensity          = "density"
	FieldDelta            = "delta"
	FieldGamma            = "gamma"
	FieldEnthalpyOfMixing = "enthalpy_of_mixing"
	FieldVEC              = "vec"
	FieldMixingEntropy    = "mixing_entropy"
	FieldMeltingTemp      = "melting_temp"
	FieldOmega            = "omega"
	FieldCrystalStructure = "cstr"
	FieldModel1           = "model1"
	FieldModel2           = "model2"
	FieldModel3           = "model3"
	FieldModel4           = "model4"
	FieldModel6           = "model6"
	FieldModel7           = "model7"
)

var numericFields = []string{
	FieldDensity, FieldDelta, FieldGamma, FieldEnthalpyOfMixing,
	FieldVEC, FieldMixingEntropy, FieldMeltingTemp, FieldOmega,
}

var categoricalFields = []string{
	FieldCrystalStructure,
	FieldModel1, FieldModel2, FieldModel3, FieldModel4, FieldModel6, FieldModel7,
}

// Crystal structure labels.
const (
	StructureHCP    = "HCP"
	StructureFCC    = "FCC"
	StructureBCC    = "BCC"
	StructureBCCFCC = "BCC + FCC"
)

// Phase labels.
const (
	PhaseSS         = "SS"
	PhaseIM         = "IM"
	PhaseSSIM       = "SS+IM"
	PhaseSSSS       = "SS+SS"
	PhaseCoarseIM   = "[IM]"
	PhaseCoarseSS   = "[SS]"
	PhaseCoarseMixd = "[Mixed]"
)

// NumericFields returns the names of the numeric descriptors in column order.
func NumericFields() []string { return slices.Clone(numericFields) }

// CategoricalFields returns the names of the label descriptors in column order.
func CategoricalFields() []string { return slices.Clone(categoricalFields) }

// Names returns every descriptor name in column order.
func Names() []string { return slices.Concat(numericFields, categoricalFields) }

// IsNumeric reports whether name is a numeric descriptor.
func IsNumeric(name string) bool { return slices.Contains(numericFields, name) }

// IsCategorical reports whether name is a label descriptor.
func IsCategorical(name string) bool { return slices.Contains(categoricalFields, name) }

// Choices lists the labels a categorical descriptor can take.
func Choices(name string) []string {
	switch name {
	case FieldCrystalStructure:
		return []string{StructureFCC, StructureBCC, StructureBCCFCC, StructureHCP}
	case FieldModel4:
		return []string{PhaseSS, PhaseIM, PhaseSSIM, PhaseSSSS, PhaseCoarseSS, PhaseCoarseIM, PhaseCoarseMixd, NotApplicableLabel}
	case FieldModel1, FieldModel2, FieldModel3:
		return []string{PhaseSS, PhaseIM}
	case FieldModel6, FieldModel7:
		return []string{PhaseSS, PhaseIM, NotApplicableLabel}
	}
	return nil
}

// DescriptorSet is the computed output for one composition. Foundational
// descriptors are always finite; model entries may be not applicable.
type DescriptorSet struct {
	Density          float64 `json:"density"`
	Delta            float64 `json:"delta"`
	Gamma            float64 `json:"gamma"`
	EnthalpyOfMixing float64 `json:"enthalpy_of_mixing"`
	VEC              float64 `json:"vec"`
	MixingEntropy    float64 `json:"mixing_entropy"`
	MeltingTemp      float64 `json:"melting_temp"`
	Omega            float64 `json:"omega"`
	CrystalStructure string  `json:"cstr"`
	Model1           Value   `json:"model1"`
	Model2           Value   `json:"model2"`
	Model3           Value   `json:"model3"`
	Model4           Value   `json:"model4"`
	Model6           Value   `json:"model6"`
	Model7           Value   `json:"model7"`
}

// Field returns the entry named name.
func (d DescriptorSet) Field(name string) (Value, bool) {
	switch name {
	case FieldDensity:
		return Numeric(d.Density), true
	case FieldDelta:
		return Numeric(d.Delta), true
	case FieldGamma:
		return Numeric(d.Gamma), true
	case FieldEnthalpyOfMixing:
		return Numeric(d.EnthalpyOfMixing), true
	case FieldVEC:
		return Numeric(d.VEC), true
	case FieldMixingEntropy:
		return Numeric(d.MixingEntropy), true
	case FieldMeltingTemp:
		return Numeric(d.MeltingTemp), true
	case FieldOmega:
		return Numeric(d.Omega), true
	case FieldCrystalStructure:
		return Label(d.CrystalStructure), true
	case FieldModel1:
		return d.Model1, true
	case FieldModel2:
		return d.Model2, true
	case FieldModel3:
		return d.Model3, true
	case FieldModel4:
		return d.Model4, true
	case FieldModel6:
		return d.Model6, true
	case FieldModel7:
		return d.Model7, true
	}
	return Value{}, false
}

// Models returns the six model values in column order (R1..R6).
func (d DescriptorSet) Models() []Value {
	return []Value{d.Model1, d.Model2, d.Model3, d.Model4, d.Model6, d.Model7}
}

// AlloyResult is one accepted composition with its descriptors.
type AlloyResult struct {
	Name        string        `json:"name"`
	Descriptors DescriptorSet `json:"descriptors"`
}

// NewAlloyResult names ds after c.
func NewAlloyResult(c composition.Composition, ds DescriptorSet) AlloyResult {
	return AlloyResult{Name: c.Name(), Descriptors: ds}
}
