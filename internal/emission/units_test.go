package emission

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUnit(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		from    string
		to      string
		want    float64
		wantErr error
	}{
		{name: "tonnes to kg", value: 1, from: "t", to: "kg", want: 1000},
		{name: "grams to kg", value: 2500, from: "g", to: "kg", want: 2.5},
		{name: "MWh to kWh case insensitive", value: 1, from: "mwh", to: "kWh", want: 1000},
		{name: "miles to km", value: 10, from: "miles", to: "km", want: 16.09344},
		{name: "gallons to litres", value: 1, from: "gal", to: "l", want: LitresPerUSGallon},
		{name: "therm to kWh", value: 2, from: "therm", to: "kWh", want: 2 * KWhPerTherm},
		{name: "ton-mile to tonne-km", value: 1, from: "ton-mile", to: "tonne-km", want: TonneKmPerTonMile},
		{name: "square feet to m2", value: 100, from: "ft2", to: "m2", want: 9.290304},
		{name: "same unit", value: 42, from: "kg", to: "KG", want: 42},
		{name: "zero allowed", value: 0, from: "kg", to: "t", want: 0},
		{name: "cross dimension", value: 1, from: "kg", to: "km", wantErr: ErrUnsupportedUnit},
		{name: "unknown from", value: 1, from: "furlong", to: "km", wantErr: ErrUnsupportedUnit},
		{name: "unknown to", value: 1, from: "km", to: "parsec", wantErr: ErrUnsupportedUnit},
		{name: "negative", value: -1, from: "kg", to: "t", wantErr: ErrInvalidInput},
		{name: "NaN", value: math.NaN(), from: "kg", to: "t", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertUnit(tt.value, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvertCurrency(t *testing.T) {
	got, err := ConvertCurrency(100, "EUR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 108.0, got, 1e-9)

	got, err = ConvertCurrency(108, "usd", "eur")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	_, err = ConvertCurrency(1, "EUR", "kg")
	assert.ErrorIs(t, err, ErrUnsupportedUnit)
}

func TestLookupUnit(t *testing.T) {
	info, ok := LookupUnit("Litres")
	require.True(t, ok)
	assert.Equal(t, "l", info.Canonical)
	assert.Equal(t, DimensionVolume, info.Dimension)

	info, ok = LookupUnit("eur")
	require.True(t, ok)
	assert.Equal(t, "EUR", info.Canonical)
	assert.Equal(t, DimensionCurrency, info.Dimension)

	_, ok = LookupUnit("cubits")
	assert.False(t, ok)
	assert.Equal(t, "cubits", CanonicalUnit("cubits"))
	assert.Equal(t, "tonne-km", CanonicalUnit("tkm"))
}
