package greenops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToKg(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  float64
	}{
		{1500, "g", 1.5},
		{2, "kgCO2e", 2},
		{1.2, "t", 1200},
		{1, "tCO2e", 1000},
		{10, "LB", 4.53592},
	}
	for _, tt := range tests {
		got, err := NormalizeToKg(tt.value, tt.unit)
		require.NoError(t, err, tt.unit)
		assert.InDelta(t, tt.want, got, 1e-9, tt.unit)
	}

	_, err := NormalizeToKg(1, "stone")
	require.ErrorIs(t, err, ErrInvalidUnit)
	_, err = NormalizeToKg(-1, "kg")
	require.ErrorIs(t, err, ErrNegativeValue)
}

func TestCalculate(t *testing.T) {
	out, err := Calculate(436, "kg")
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, KmDriven, out.Results[0].Kind)
	assert.InDelta(t, 436/KgPerKmDriven, out.Results[0].Value, 1e-9)
	assert.Equal(t, "3,655", out.Results[0].Formatted)
	assert.Equal(t, "53,041", out.Results[1].Formatted)
	assert.Equal(t, "Equivalent to driving ~3,655 km or charging ~53,041 smartphones", out.DisplayText)
	assert.False(t, out.IsEmpty())
}

func TestCalculate_LargeFootprintAddsTreesAndHomes(t *testing.T) {
	out, err := Calculate(200, "t")
	require.NoError(t, err)
	require.Len(t, out.Results, 4)
	assert.Equal(t, TreeSeedlings, out.Results[2].Kind)
	assert.InDelta(t, 200000/KgPerTreeSeedling, out.Results[2].Value, 1e-9)
	assert.Equal(t, "~24.3 million", out.Results[1].Formatted)
}

func TestCalculate_BelowThreshold(t *testing.T) {
	out, err := Calculate(0.5, "kg")
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
	assert.InDelta(t, 0.5, out.InputKg, 1e-12)

	assert.True(t, ForKg(-3).IsEmpty())
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "999,999", FormatLarge(999_999.4))
	assert.Equal(t, "~1.5 million", FormatLarge(1_500_000))
	assert.Equal(t, "~2.0 billion", FormatLarge(2e9))
}

func TestKindText(t *testing.T) {
	b, err := SmartphonesCharged.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "smartphones_charged", string(b))
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
