package cbam

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonfocus/internal/emission"
)

func ptr(v float64) *float64 { return &v }

type fakeDefaults struct {
	values map[string]DefaultSEE
	err    error
}

func (f fakeDefaults) DefaultSEE(_ context.Context, cn, country string) (DefaultSEE, error) {
	if f.err != nil {
		return DefaultSEE{}, f.err
	}
	if v, ok := f.values[cn+"|"+country]; ok {
		return v, nil
	}
	return DefaultSEE{}, fmt.Errorf("%w: %s/%s", ErrNotFound, cn, country)
}

func TestCalculateEmbeddedEmissions_Actual(t *testing.T) {
	got, err := NewCalculator(nil).CalculateEmbeddedEmissions(context.Background(), EmbeddedInput{
		CNCode:            "7208 51 20",
		MassTonnes:        100,
		CountryCode:       "tr",
		ActualDirectSEE:   ptr(1.2),
		ActualIndirectSEE: ptr(0.3),
	})
	require.NoError(t, err)

	assert.Equal(t, MethodActual, got.Method)
	assert.Equal(t, "72085120", got.CNCode)
	assert.Equal(t, SectorIronSteel, got.Sector)
	assert.Equal(t, "TR", got.CountryCode)
	assert.InDelta(t, 1.5, got.TotalSEE, 1e-12)
	assert.InDelta(t, 120.0, got.DirectEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 30.0, got.IndirectEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 150.0, got.TotalEmissionsTCO2e, 1e-9)
	assert.Equal(t, emission.ConfidenceHigh, got.Confidence)
	assert.Empty(t, got.Warnings)
}

func TestCalculateEmbeddedEmissions_DefaultTiers(t *testing.T) {
	ctx := context.Background()
	source := fakeDefaults{values: map[string]DefaultSEE{
		"76011000|CN": {Direct: 1.6, Indirect: 6.0, Source: "eu-commission"},
	}}

	tests := []struct {
		name           string
		source         DefaultSource
		cn             string
		wantDirect     float64
		wantIndirect   float64
		wantSource     string
		wantConfidence emission.Confidence
		wantWarnings   int
	}{
		{
			name:           "reference source",
			source:         source,
			cn:             "7601 10 00",
			wantDirect:     1.6,
			wantIndirect:   6.0,
			wantSource:     "eu-commission",
			wantConfidence: emission.ConfidenceMedium,
		},
		{
			name:           "embedded CN table",
			source:         source,
			cn:             "7606 11",
			wantDirect:     2.10,
			wantIndirect:   6.70,
			wantSource:     EmbeddedDefaultSource,
			wantConfidence: emission.ConfidenceMedium,
			wantWarnings:   1,
		},
		{
			name:           "sector fallback",
			cn:             "2834 21 00",
			wantDirect:     2.50,
			wantIndirect:   0.10,
			wantSource:     SectorFallbackSource,
			wantConfidence: emission.ConfidenceLow,
			wantWarnings:   1,
		},
		{
			name:           "unavailable source skipped",
			source:         fakeDefaults{err: errors.New("503")},
			cn:             "2523 29 00",
			wantDirect:     0.70,
			wantIndirect:   0.06,
			wantSource:     EmbeddedDefaultSource,
			wantConfidence: emission.ConfidenceMedium,
			wantWarnings:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCalculator(tt.source).CalculateEmbeddedEmissions(ctx, EmbeddedInput{
				CNCode: tt.cn, MassTonnes: 10, CountryCode: "CN",
			})
			require.NoError(t, err)
			assert.Equal(t, MethodDefault, got.Method)
			assert.InDelta(t, tt.wantDirect, got.DirectSEE, 1e-12)
			assert.InDelta(t, tt.wantIndirect, got.IndirectSEE, 1e-12)
			assert.Equal(t, tt.wantSource, got.DefaultSource)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
			assert.Len(t, got.Warnings, tt.wantWarnings)
			assert.InDelta(t, got.DirectEmissionsTCO2e+got.IndirectEmissionsTCO2e, got.TotalEmissionsTCO2e, 1e-12)
		})
	}
}

func TestCalculateEmbeddedEmissions_PartialActualFilledFromDefaults(t *testing.T) {
	got, err := NewCalculator(nil).CalculateEmbeddedEmissions(context.Background(), EmbeddedInput{
		CNCode:          "25232900",
		MassTonnes:      50,
		ActualDirectSEE: ptr(0.65),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodActual, got.Method)
	assert.InDelta(t, 0.65, got.DirectSEE, 1e-12)
	assert.InDelta(t, 0.06, got.IndirectSEE, 1e-12)
	assert.Equal(t, emission.ConfidenceMedium, got.Confidence)
	assert.Len(t, got.Warnings, 2)
}

func TestCalculateEmbeddedEmissions_ElectricityPath(t *testing.T) {
	got, err := NewCalculator(nil).CalculateEmbeddedEmissions(context.Background(), EmbeddedInput{
		CNCode:                    "76011000",
		MassTonnes:                20,
		CountryCode:               "NO",
		ActualDirectSEE:           ptr(1.5),
		ElectricityConsumptionMWh: ptr(300),
	})
	require.NoError(t, err)
	assert.InDelta(t, 300*0.019, got.IndirectEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 300*0.019/20, got.IndirectSEE, 1e-12)
	assert.InDelta(t, 30.0, got.DirectEmissionsTCO2e, 1e-9)
	assert.InDelta(t, got.DirectEmissionsTCO2e+got.IndirectEmissionsTCO2e, got.TotalEmissionsTCO2e, 1e-12)
	assert.Equal(t, emission.ConfidenceHigh, got.Confidence)
	assert.Empty(t, got.Warnings)

	got, err = NewCalculator(nil).CalculateEmbeddedEmissions(context.Background(), EmbeddedInput{
		CNCode:                    "76011000",
		MassTonnes:                20,
		CountryCode:               "XX",
		ElectricityConsumptionMWh: ptr(100),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodDefault, got.Method)
	assert.InDelta(t, 100*DefaultGridFactor, got.IndirectEmissionsTCO2e, 1e-9)
	assert.Len(t, got.Warnings, 2)
}

func TestCalculateEmbeddedEmissions_Additivity(t *testing.T) {
	calc := NewCalculator(nil)
	for _, p := range Products() {
		for _, mass := range []float64{0.001, 1, 37.5, 12345.678} {
			got, err := calc.CalculateEmbeddedEmissions(context.Background(), EmbeddedInput{
				CNCode: p.CNPrefix, MassTonnes: mass, CountryCode: "IN",
			})
			require.NoError(t, err, p.CNPrefix)
			assert.InDelta(t, got.DirectEmissionsTCO2e+got.IndirectEmissionsTCO2e, got.TotalEmissionsTCO2e, 1e-9)
			assert.InDelta(t, got.DirectSEE+got.IndirectSEE, got.TotalSEE, 1e-12)
		}
	}
}

func TestCalculateEmbeddedEmissions_Errors(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator(nil)

	_, err := calc.CalculateEmbeddedEmissions(ctx, EmbeddedInput{CNCode: "0101", MassTonnes: 1})
	require.ErrorIs(t, err, ErrUnknownProduct)

	_, err = calc.CalculateEmbeddedEmissions(ctx, EmbeddedInput{CNCode: "", MassTonnes: 1})
	require.ErrorIs(t, err, ErrUnknownProduct)

	_, err = calc.CalculateEmbeddedEmissions(ctx, EmbeddedInput{CNCode: "7208", MassTonnes: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = calc.CalculateEmbeddedEmissions(ctx, EmbeddedInput{CNCode: "7208", MassTonnes: 1, ActualDirectSEE: ptr(-1)})
	require.ErrorIs(t, err, ErrInvalidInput)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewCalculator(fakeDefaults{err: context.Canceled}).
		CalculateEmbeddedEmissions(cancelled, EmbeddedInput{CNCode: "7208", MassTonnes: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLookupProduct_LongestPrefix(t *testing.T) {
	p, ok := LookupProduct("2523.10.00")
	require.True(t, ok)
	assert.Equal(t, "252310", p.CNPrefix)

	p, ok = LookupProduct("7304 19")
	require.True(t, ok)
	assert.Equal(t, "73", p.CNPrefix)

	_, ok = LookupProduct("8703")
	assert.False(t, ok)
}
