package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine"
)

func TestActivityPreview_Dataset(t *testing.T) {
	setupCLITest(t)
	dataset := writeDataset(t)

	out, _, err := executeCmd(t, "activity", "preview", "--dataset", dataset,
		"-c", "2.1", "-q", "1000", "-u", "kWh", "--region", "de")
	require.NoError(t, err)
	assert.Contains(t, out, "EMISSION PREVIEW")
	assert.Contains(t, out, "436.00 kg")
	assert.Contains(t, out, "1000 kWh × 0.436 kg CO2e/kWh = 436.00 kg CO2e")
	assert.Contains(t, out, "3,655 km, 53,041 phones")
	assert.Contains(t, out, "high")
}

func TestActivityPreview_JSON(t *testing.T) {
	setupCLITest(t)
	dataset := writeDataset(t)

	out, _, err := executeCmd(t, "activity", "preview", "--dataset", dataset, "--output", "json",
		"-c", "1.2", "--amount", "500", "--currency", "usd", "--fuel", "diesel", "--region", "US")
	require.NoError(t, err)

	var got emission.EmissionResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, emission.MethodSpend, got.Method)
	require.NotNil(t, got.Spend)
	assert.InDelta(t, 555.56, got.QuantityNormalized, 1e-9)
	assert.Equal(t, "eia", got.Spend.Source)
}

func TestActivityPreview_ReferenceServiceIsCached(t *testing.T) {
	home := setupCLITest(t)
	svc := &fakeRefData{}
	t.Setenv(config.EnvRefDataURL, svc.start(t))

	for n := 0; n < 2; n++ {
		out, _, err := executeCmd(t, "activity", "preview", "--output", "json",
			"-c", "2.1", "-q", "10", "-u", "kWh", "--region", "DE")
		require.NoError(t, err)
		var got emission.EmissionResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.InDelta(t, 5.0, got.CO2eKg, 1e-9)
		assert.Equal(t, "uba", got.Factor.Source)
	}
	// The second process reads the factor from the disk cache.
	assert.Equal(t, int32(1), svc.factorCalls.Load())

	entries, err := os.ReadDir(filepath.Join(home, "cache"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestActivityPreview_OfflineUsesEstimates(t *testing.T) {
	setupCLITest(t)
	svc := &fakeRefData{}
	t.Setenv(config.EnvRefDataURL, svc.start(t))

	out, _, err := executeCmd(t, "activity", "preview", "--offline", "--output", "json",
		"-c", "2.1", "-q", "10", "-u", "kWh", "--region", "DE")
	require.NoError(t, err)
	assert.Equal(t, int32(0), svc.factorCalls.Load())

	var got emission.EmissionResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, emission.ConfidenceLow, got.Confidence)
	assert.NotEmpty(t, got.Warnings)
}

func TestActivityPreview_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing category", []string{"-q", "1", "-u", "kWh"}, `"category" not set`},
		{"unknown category", []string{"-c", "9.9", "-q", "1"}, "unknown category"},
		{"unknown method", []string{"-c", "2.1", "-m", "guess", "-q", "1"}, "unknown method"},
		{"method not allowed", []string{"-c", "2.1", "-m", "distance", "-q", "1", "-u", "km"}, "not allowed"},
		{"no quantity", []string{"-c", "2.1", "-u", "kWh"}, "invalid input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			args := append([]string{"activity", "preview", "--offline"}, tt.args...)
			_, _, err := executeCmd(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActivitySubmit(t *testing.T) {
	setupCLITest(t)
	store := &fakePersistence{}
	t.Setenv(config.EnvPersistURL, store.start(t))
	dataset := writeDataset(t)

	out, _, err := executeCmd(t, "activity", "submit", "--dataset", dataset,
		"-c", "2.1", "-q", "1000", "-u", "kWh", "--region", "DE",
		"--description", "office", "--date", "2025-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "STORED ACTIVITY")
	assert.Contains(t, out, "act_01")

	require.Len(t, store.received, 1)
	got := store.received[0]
	assert.Equal(t, "2.1", got.CategoryCode)
	assert.Equal(t, "electricity.grid", got.ActivityKey)
	assert.InDelta(t, 1000.0, got.Quantity, 1e-9)
	assert.Equal(t, "2025-03-31", got.Date)
	assert.Equal(t, "office", got.Description)
}

func TestActivitySubmit_JSONDefaultsDateToToday(t *testing.T) {
	setupCLITest(t)
	store := &fakePersistence{}
	t.Setenv(config.EnvPersistURL, store.start(t))

	out, _, err := executeCmd(t, "activity", "submit", "--offline", "--output", "json",
		"-c", "2.1", "-q", "5", "-u", "kWh")
	require.NoError(t, err)

	var got engine.SubmitResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "act_01", got.Response.Activity.ID)
	assert.NotEmpty(t, got.Response.RequestID)
	require.Len(t, store.received, 1)
	assert.Equal(t, time.Now().Format(time.DateOnly), store.received[0].Date)
}

func TestActivitySubmit_Errors(t *testing.T) {
	t.Run("no persistence configured", func(t *testing.T) {
		setupCLITest(t)
		_, _, err := executeCmd(t, "activity", "submit", "--offline", "-c", "2.1", "-q", "5", "-u", "kWh")
		require.ErrorIs(t, err, engine.ErrNoPersistence)
		assert.Contains(t, err.Error(), config.EnvPersistURL)
	})

	t.Run("bad date", func(t *testing.T) {
		setupCLITest(t)
		_, _, err := executeCmd(t, "activity", "submit", "--offline",
			"-c", "2.1", "-q", "5", "-u", "kWh", "--date", "31/03/2025")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("service unavailable", func(t *testing.T) {
		setupCLITest(t)
		store := &fakePersistence{status: 503}
		t.Setenv(config.EnvPersistURL, store.start(t))
		_, stderr, err := executeCmd(t, "activity", "submit", "--offline", "-c", "2.1", "-q", "5", "-u", "kWh")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, stderr, "temporarily unavailable")
	})
}

func TestActivityBatch(t *testing.T) {
	setupCLITest(t)
	dataset := writeDataset(t)
	file := filepath.Join(t.TempDir(), "activities.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
- category: "2.1"
  quantity: 1000
  unit: kWh
  region: DE
- category: "9.9"
  quantity: 1
- category: "1.2"
  amount: 90
  currency: USD
  fuel: diesel
`), 0o600))

	out, _, err := executeCmd(t, "activity", "batch", "--dataset", dataset, "--output", "json", "-f", file)
	require.NoError(t, err)

	var got engine.BatchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Items, 3)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	for i, item := range got.Items {
		assert.Equal(t, i, item.Index)
	}
	require.NotNil(t, got.Items[0].Result)
	assert.InDelta(t, 436.0, got.Items[0].Result.CO2eKg, 1e-9)
	assert.Nil(t, got.Items[1].Result)
	assert.Contains(t, got.Items[1].Error, "unknown category")
	require.NotNil(t, got.Items[2].Result)
	assert.InDelta(t, 100.0, got.Items[2].Result.QuantityNormalized, 1e-9)

	out, _, err = executeCmd(t, "activity", "batch", "--dataset", dataset, "-f", file, "--fail-on-error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 activities failed")
	assert.Contains(t, out, "2 succeeded, 1 failed")
}

func TestActivityBatch_BadFile(t *testing.T) {
	setupCLITest(t)
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o600))

	_, _, err := executeCmd(t, "activity", "batch", "--offline", "-f", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no activities")

	_, _, err = executeCmd(t, "activity", "batch", "--offline", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestActivityInteractive_RequiresTerminal(t *testing.T) {
	setupCLITest(t)
	_, _, err := executeCmd(t, "activity", "interactive", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a terminal")
}
