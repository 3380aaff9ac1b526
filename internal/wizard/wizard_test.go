package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/restriction"
)

func TestParseBounds(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name    string
		input   string
		lo, hi  *float64
		wantErr string
	}{
		{"empty", "", nil, nil, ""},
		{"whitespace", "   ", nil, nil, ""},
		{"both", "6:8", f(6), f(8), ""},
		{"min only", "6.87:", f(6.87), nil, ""},
		{"max only", " : -5", nil, f(-5), ""},
		{"equal", "7:7", f(7), f(7), ""},
		{"no colon", "6", nil, nil, "min:max"},
		{"not a number", "a:8", nil, nil, "not a number"},
		{"inverted", "8:6", nil, nil, "greater than max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := ParseBounds(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestBuildSpec(t *testing.T) {
	spec, err := BuildSpec(Answers{
		Bounds: map[string]string{
			descriptor.FieldVEC:     "6:8",
			descriptor.FieldDelta:   ":6.6",
			descriptor.FieldDensity: "",
		},
		Labels: map[string]string{
			descriptor.FieldCrystalStructure: descriptor.StructureFCC,
			descriptor.FieldModel1:           descriptor.PhaseSS,
			descriptor.FieldModel2:           "",
		},
	})
	require.NoError(t, err)

	assert.Len(t, spec, 4)
	assert.Equal(t, restriction.Between(6, 8), spec[descriptor.FieldVEC])
	assert.Equal(t, restriction.AtMost(6.6), spec[descriptor.FieldDelta])
	assert.Equal(t, restriction.Equal(descriptor.StructureFCC), spec[descriptor.FieldCrystalStructure])
	assert.Equal(t, restriction.Equal(descriptor.PhaseSS), spec[descriptor.FieldModel1])
	assert.NotContains(t, spec, descriptor.FieldDensity)
	assert.NotContains(t, spec, descriptor.FieldModel2)
}

func TestBuildSpec_Empty(t *testing.T) {
	spec, err := BuildSpec(Answers{})
	require.NoError(t, err)
	assert.Empty(t, spec)
	assert.True(t, spec.Evaluate(descriptor.DescriptorSet{}))
}

func TestBuildSpec_ReportsEveryBadAnswer(t *testing.T) {
	_, err := BuildSpec(Answers{
		Bounds: map[string]string{
			descriptor.FieldVEC:   "8:6",
			descriptor.FieldOmega: "x:",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), descriptor.FieldVEC)
	assert.Contains(t, err.Error(), descriptor.FieldOmega)
}

func TestBuildSpec_RejectsLabelOnNumericDescriptor(t *testing.T) {
	_, err := BuildSpec(Answers{
		Labels: map[string]string{descriptor.FieldVEC: "FCC"},
	})
	require.ErrorIs(t, err, restriction.ErrInvalidSpec)
}
