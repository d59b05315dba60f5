package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/engine"
)

func TestCBAMExposure_ActualSEE(t *testing.T) {
	setupCLITest(t)

	out, _, err := executeCmd(t, "cbam", "exposure", "--offline", "--output", "json",
		"--cn", "7208 51 20", "--mass", "100", "--country", "cn",
		"--direct-see", "2", "--indirect-see", "0",
		"--foreign-price", "40", "--ets-price", "80")
	require.NoError(t, err)

	var got engine.Exposure
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, cbam.MethodActual, got.Embedded.Method)
	assert.Equal(t, "CN", got.Embedded.CountryCode)
	assert.InDelta(t, 200.0, got.Embedded.TotalEmissionsTCO2e, 1e-9)
	assert.InDelta(t, 100.0, got.Deduction.DeductionTCO2e, 1e-9)
	assert.InDelta(t, 100.0, got.Deduction.NetEmissionsTCO2e, 1e-9)
	assert.True(t, got.Deduction.GrossCBAMCostEUR.Equal(decimal.NewFromInt(16000)))
	assert.True(t, got.Deduction.NetCBAMCostEUR.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, int64(100), got.Certificates.CertificatesRequired)
	assert.True(t, got.Certificates.EstimatedCostEUR.Equal(decimal.NewFromInt(8000)))
}

func TestCBAMExposure_Table(t *testing.T) {
	setupCLITest(t)

	out, _, err := executeCmd(t, "cbam", "exposure", "--offline",
		"--cn", "72085120", "--mass", "100", "--country", "CN",
		"--direct-see", "2", "--indirect-see", "0", "--foreign-price", "40", "--ets-price", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "EMBEDDED EMISSIONS")
	assert.Contains(t, out, "Hot-rolled flat steel")
	assert.Contains(t, out, "driving ~1.7 million km")
	assert.Contains(t, out, "EUR 16,000.00")
	assert.Contains(t, out, "EUR 8,000.00")
	assert.Contains(t, out, "CERTIFICATES")
}

func TestCBAMExposure_DefaultValues(t *testing.T) {
	setupCLITest(t)

	out, _, err := executeCmd(t, "cbam", "exposure", "--offline", "--output", "json",
		"--cn", "7208", "--mass", "10", "--country", "CN")
	require.NoError(t, err)

	var got engine.Exposure
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, cbam.MethodDefault, got.Embedded.Method)
	assert.Positive(t, got.Embedded.TotalEmissionsTCO2e)
	assert.InDelta(t, got.Embedded.TotalEmissionsTCO2e, got.Deduction.NetEmissionsTCO2e, 1e-9,
		"no foreign price means no deduction")
}

func TestCBAMExposure_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing cn", []string{"--mass", "1", "--country", "CN"}, `"cn" not set`},
		{"out of scope", []string{"--cn", "0101", "--mass", "1", "--country", "CN"}, "CBAM exposure failed"},
		{"zero mass", []string{"--cn", "7208", "--mass", "0", "--country", "CN"}, "mass"},
		{"negative foreign price", []string{"--cn", "7208", "--mass", "1", "--country", "CN", "--foreign-price", "-5"},
			"foreign carbon price must be >= 0"},
		{"negative ets", []string{"--cn", "7208", "--mass", "1", "--country", "CN", "--ets-price", "-5"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			args := append([]string{"cbam", "exposure", "--offline"}, tt.args...)
			_, _, err := executeCmd(t, args...)
			if tt.wantErr == "" {
				// A non-positive override falls back to the configured price.
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCBAMProducts(t *testing.T) {
	setupCLITest(t)

	out, _, err := executeCmd(t, "cbam", "products", "--sector", "aluminium", "--output", "json")
	require.NoError(t, err)

	var got []cbam.Product
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.Equal(t, cbam.SectorAluminium, p.Sector)
	}

	out, _, err = executeCmd(t, "cbam", "products")
	require.NoError(t, err)
	assert.Contains(t, out, "Cement clinker")
}
