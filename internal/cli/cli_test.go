package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonfocus/internal/cli"
	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine/cache"
	"github.com/rshade/carbonfocus/internal/persist"
	"github.com/rshade/carbonfocus/internal/refdata"
)

const testDataset = `
factors:
  - activity_key: electricity.grid
    co2e_factor: 0.436
    activity_unit: kWh
    source: iea
    region: DE
    year: 2024
fuel_prices:
  - fuel_type: diesel
    currency: USD
    price_per_unit: 0.9
    unit: l
    source: eia
    valid_from: 2020-01-01T00:00:00Z
`

// setupCLITest isolates the CLI from the user's home, environment and any
// project overlay, and registers cleanup for global state.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvRefDataURL, "")
	t.Setenv(config.EnvPersistURL, "")
	t.Setenv(config.EnvAPIToken, "")
	t.Setenv(config.EnvOutputFormat, "")
	t.Setenv(config.EnvRegion, "")
	t.Setenv(config.EnvEUETSPrice, "")
	t.Setenv(cache.EnvEnabled, "true")
	t.Setenv(config.EnvProjectDir, filepath.Join(t.TempDir(), config.DirName))
	t.Setenv(cache.EnvDir, filepath.Join(home, "cache"))
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o600))
	return path
}

// executeCmd runs the root command and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeRefData serves one DE grid factor and counts factor lookups.
type fakeRefData struct {
	factorCalls atomic.Int32
}

func (f *fakeRefData) start(t *testing.T) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get(refdata.FactorsPath, func(w http.ResponseWriter, req *http.Request) {
		f.factorCalls.Add(1)
		q := req.URL.Query()
		if q.Get("activity_key") != "electricity.grid" || q.Get("region") != "DE" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(emission.EmissionFactor{
			ActivityKey: "electricity.grid", CO2eFactor: 0.5, ActivityUnit: "kWh",
			FactorUnit: "kg CO2e/kWh", Source: "uba", Region: "DE", Year: 2025,
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

// fakePersistence stores submitted activities in memory.
type fakePersistence struct {
	status   int
	received []persist.ActivityRequest
}

func (f *fakePersistence) start(t *testing.T) string {
	t.Helper()
	r := chi.NewRouter()
	r.Post(persist.ActivitiesPath, func(w http.ResponseWriter, req *http.Request) {
		if f.status != 0 {
			http.Error(w, `{"error":"unavailable"}`, f.status)
			return
		}
		var body persist.ActivityRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.received = append(f.received, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(persist.ActivityResponse{
			Activity: persist.Activity{
				ID: "act_01", CategoryCode: body.CategoryCode, ActivityKey: body.ActivityKey,
				Quantity: body.Quantity, Unit: body.Unit, Date: body.Date,
			},
			Emission: persist.Emission{ID: "em_01", ActivityID: "act_01", CO2eKg: 436},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}
