package reporting

import (
	"strings"
	"testing"

	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/stretchr/testify/assert"
)

func TestInterpretConsensus(t *testing.T) {
	ss := descriptor.Label(descriptor.PhaseSS)
	im := descriptor.Label(descriptor.PhaseIM)
	na := descriptor.NotApplicable()

	tests := []struct {
		name string
		ds   descriptor.DescriptorSet
		want string
	}{
		{"none applicable", descriptor.DescriptorSet{}, "No model could be applied."},
		{"all", descriptor.DescriptorSet{Model1: ss, Model2: ss, Model4: descriptor.Label(descriptor.PhaseCoarseSS)}, "All 3 applicable models"},
		{"none", descriptor.DescriptorSet{Model1: im, Model2: im, Model6: na}, "None of the 2"},
		{"most", descriptor.DescriptorSet{Model1: ss, Model2: ss, Model3: im}, "Most models (2 of 3)"},
		{"few", descriptor.DescriptorSet{Model1: ss, Model2: im, Model3: im, Model7: descriptor.AnnotatedLabel("IM", "x")}, "Only 1 of 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, InterpretConsensus(tt.ds), tt.want)
		})
	}
}

func TestInterpretAcceptance(t *testing.T) {
	assert.Equal(t, "No compositions were processed.", InterpretAcceptance(0, 0))
	assert.Equal(t, "All 5 compositions met the restrictions.", InterpretAcceptance(5, 5))
	assert.Equal(t, "None of the 250 compositions met the restrictions.", InterpretAcceptance(0, 250))
	assert.Equal(t, "1 of 3 compositions (33.3%) met the restrictions.", InterpretAcceptance(1, 3))
}

func TestFormatDescriptorReport(t *testing.T) {
	out := FormatDescriptorReport(sampleResult("Fe₅₀Ni₅₀"))
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Fe₅₀Ni₅₀", lines[0])
	assert.Contains(t, out, "Crystal Str.")
	assert.Contains(t, out, "R6")
	assert.Contains(t, out, "Most models (3 of 5) predict a solid solution.")
}
