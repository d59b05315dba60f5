package persist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	requests   []ActivityRequest
	requestIDs []string
	auth       string
	status     int
	errBody    string
}

func (f *fakeStore) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post(ActivitiesPath, func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var body ActivityRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.requests = append(f.requests, body)
		f.requestIDs = append(f.requestIDs, req.Header.Get(RequestIDHeader))
		f.auth = req.Header.Get("Authorization")

		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.errBody))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ActivityResponse{
			Activity: Activity{ID: "act-1", CategoryCode: body.CategoryCode, ActivityKey: body.ActivityKey,
				Quantity: body.Quantity, Unit: body.Unit, Date: body.Date},
			Emission: Emission{ID: "em-1", ActivityID: "act-1", CO2eKg: body.Quantity * 0.436, FactorUsed: 0.436},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func validRequest() ActivityRequest {
	return ActivityRequest{
		CategoryCode: "2.1",
		ActivityKey:  "purchased_electricity.grid",
		Quantity:     1000,
		Unit:         "kWh",
		Description:  "office",
		Date:         "2024-03-31",
	}
}

func TestClient_Submit(t *testing.T) {
	store := &fakeStore{}
	srv := store.server(t)
	c, err := New(Config{BaseURL: srv.URL, APIToken: "tok"})
	require.NoError(t, err)

	resp, err := c.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "act-1", resp.Activity.ID)
	assert.InDelta(t, 436.0, resp.Emission.CO2eKg, 1e-9)
	assert.Equal(t, "Bearer tok", store.auth)
	require.Len(t, store.requests, 1)
	assert.Nil(t, store.requests[0].SupplierFactor)
	assert.Equal(t, store.requestIDs[0], resp.RequestID)
}

func TestClient_SubmitIsNotIdempotent(t *testing.T) {
	store := &fakeStore{}
	c, err := New(Config{BaseURL: store.server(t).URL})
	require.NoError(t, err)

	for n := 0; n < 2; n++ {
		_, err := c.Submit(context.Background(), validRequest())
		require.NoError(t, err)
	}
	require.Len(t, store.requestIDs, 2)
	assert.NotEqual(t, store.requestIDs[0], store.requestIDs[1])
}

func TestClient_SubmitErrorsVerbatim(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		temporary bool
	}{
		{"validation", http.StatusUnprocessableEntity, `{"error":"quantity too large"}`, false},
		{"conflict", http.StatusConflict, `duplicate`, false},
		{"server", http.StatusBadGateway, `bad gateway`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{status: tt.status, errBody: tt.body}
			c, err := New(Config{BaseURL: store.server(t).URL})
			require.NoError(t, err)

			_, err = c.Submit(context.Background(), validRequest())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, tt.temporary, apiErr.Temporary())
			assert.Len(t, store.requests, 1, "no retry")
		})
	}
}

func TestClient_SubmitSupplierFactor(t *testing.T) {
	store := &fakeStore{}
	c, err := New(Config{BaseURL: store.server(t).URL})
	require.NoError(t, err)

	req := validRequest()
	f := 0.21
	req.SupplierFactor = &f
	_, err = c.Submit(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, store.requests[0].SupplierFactor)
	assert.InDelta(t, 0.21, *store.requests[0].SupplierFactor, 1e-12)
}

func TestActivityRequest_Validate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name   string
		mutate func(*ActivityRequest)
	}{
		{"missing category", func(r *ActivityRequest) { r.CategoryCode = "" }},
		{"missing key", func(r *ActivityRequest) { r.ActivityKey = "" }},
		{"zero quantity", func(r *ActivityRequest) { r.Quantity = 0 }},
		{"bad date", func(r *ActivityRequest) { r.Date = "31/03/2024" }},
		{"negative supplier factor", func(r *ActivityRequest) { r.SupplierFactor = &neg }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRequest)
		})
	}
	assert.NoError(t, validRequest().Validate())
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{BaseURL: "://"})
	require.Error(t, err)
}
