package composition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cantor() Composition {
	return Composition{
		{Symbol: "Fe", Percent: 20},
		{Symbol: "Ni", Percent: 20},
		{Symbol: "Co", Percent: 20},
		{Symbol: "Cr", Percent: 20},
		{Symbol: "Mn", Percent: 20},
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Fe₂₀Ni₂₀Co₂₀Cr₂₀Mn₂₀", cantor().Name())
	assert.Equal(t, "Al₃₃Ni₆₆", Composition{{"Al", 33.4}, {"Ni", 66.6}}.Name())
	assert.Equal(t, "Fe50Ni50", Composition{{"Fe", 50}, {"Ni", 50}}.String())
}

func TestFractions(t *testing.T) {
	fr := cantor().Fractions()
	require.Len(t, fr, 5)
	assert.Equal(t, "Fe", fr[0].Symbol)
	assert.InDelta(t, 0.2, fr[0].X, 1e-12)
	assert.InDelta(t, 1.0, fr.Sum(), 1e-12)
	require.NoError(t, fr.Validate())

	require.Error(t, Fractions{{"Fe", 0.5}, {"Ni", 0.4}}.Validate())
	require.Error(t, Fractions{{"Fe", 1.2}, {"Ni", -0.2}}.Validate())
}

func TestValidate_ReportsEveryElement(t *testing.T) {
	c := Composition{{"Fe", -5}, {"Ni", 0}, {"Co", 50}, {"Co", 10}}
	err := c.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidInput)

	var offenders []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ie *InputError
		require.True(t, errors.As(e, &ie))
		offenders = append(offenders, ie.Element)
	}
	assert.Equal(t, []string{"Fe", "Ni", "Co"}, offenders)
}

func TestValidate_Total(t *testing.T) {
	require.NoError(t, cantor().Validate())

	err := Composition{{"Fe", 50}, {"Ni", 40}}.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "sum to 90")

	require.Error(t, Composition{}.Validate())
	require.NoError(t, Composition{{"Fe", 33.3333333}, {"Ni", 33.3333333}, {"Co", 33.3333334}}.Validate())
}

func TestNormalize(t *testing.T) {
	c, err := Composition{{"Al", 1}, {"Ni", 3}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Composition{{"Al", 25}, {"Ni", 75}}, c)

	_, err = Composition{{"Al", 0}}.Normalize()
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseFormula(t *testing.T) {
	tests := []struct {
		formula string
		want    Composition
	}{
		{"Fe20Ni80", Composition{{"Fe", 20}, {"Ni", 80}}},
		{"FeNi", Composition{{"Fe", 50}, {"Ni", 50}}},
		{"Al0.5CoCrFeNi", Composition{{"Al", 100.0 / 9}, {"Co", 200.0 / 9}, {"Cr", 200.0 / 9}, {"Fe", 200.0 / 9}, {"Ni", 200.0 / 9}}},
		{"Fe₂₀Ni₈₀", Composition{{"Fe", 20}, {"Ni", 80}}},
		{" Fe 1 Ni 3 ", Composition{{"Fe", 25}, {"Ni", 75}}},
		{"FeNiFe", Composition{{"Fe", 200.0 / 3}, {"Ni", 100.0 / 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got, err := ParseFormula(tt.formula)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Symbol, got[i].Symbol)
				assert.InDelta(t, tt.want[i].Percent, got[i].Percent, 1e-9)
			}
		})
	}
}

func TestParseFormula_Errors(t *testing.T) {
	for _, formula := range []string{"", "fe20", "Fe20-Ni", "Fe0Ni", "Fe.Ni", "20Fe"} {
		t.Run(formula, func(t *testing.T) {
			_, err := ParseFormula(formula)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParsePairs(t *testing.T) {
	c, err := ParsePairs([]string{"Fe=20,Ni=30", "Co = 50"})
	require.NoError(t, err)
	assert.Equal(t, Composition{{"Fe", 20}, {"Ni", 30}, {"Co", 50}}, c)

	_, err = ParsePairs([]string{"Fe=abc", "Ni", "=3"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "Fe")

	_, err = ParsePairs(nil)
	require.Error(t, err)
}
