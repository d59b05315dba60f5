package emission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFormula(t *testing.T) {
	assert.Equal(t,
		"1000 kWh × 0.436 kg CO2e/kWh = 436.00 kg CO2e",
		RenderFormula(1000, "kWh", 0.436, "kg CO2e/kWh", 436))
	assert.Equal(t,
		"555.56 l × 2.70553 kg CO2e/l = 1503.08 kg CO2e",
		RenderFormula(555.56, "l", 2.70553, "kg CO2e/l", 555.56*2.70553))
}

func TestFormula_RoundTrip(t *testing.T) {
	cases := []struct {
		quantity float64
		key      string
	}{
		{1000, "electricity.grid"},
		{555.56, "stationary_combustion.diesel"},
		{0.001, "fugitive.sf6"},
		{123456.789, "upstream_transport.sea"},
		{1.0 / 3.0, "purchased_goods.steel"},
		{7, "use_of_sold.average.laptop"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			factor, ok := EstimateFactor(tc.key)
			require.True(t, ok)
			result, err := Calculate(tc.quantity, factor)
			require.NoError(t, err)

			parsed, err := ParseFormula(result.Formula)
			require.NoError(t, err)
			assert.Equal(t, factor.ActivityUnit, parsed.Unit)
			assert.Equal(t, factor.FactorUnit, parsed.FactorUnit)
			assert.InEpsilon(t, result.CO2eKg, parsed.Recompute(), 1e-6)
			assert.InDelta(t, result.CO2eKg, parsed.CO2eKg, 0.005+1e-9)
		})
	}
}

func TestParseFormula_Malformed(t *testing.T) {
	for _, s := range []string{
		"",
		"1000 kWh = 436.00 kg CO2e",
		"1000 kWh × 0.436 kg CO2e/kWh",
		"abc kWh × 0.436 kg CO2e/kWh = 436.00 kg CO2e",
		"1000 kWh × 0.436 kg CO2e/kWh = 436.00 t",
	} {
		_, err := ParseFormula(s)
		assert.ErrorIs(t, err, ErrInvalidInput, s)
	}
}

func TestFormatKg(t *testing.T) {
	assert.Equal(t, "18,248.50 kg", FormatKg(18248.5))
	assert.Equal(t, "0.44 kg", FormatKg(0.436))
	assert.Equal(t, "1,234.568 t", FormatTonnes(1234.5678))
}
