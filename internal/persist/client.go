// Package persist submits finalized activities to the Persistence Service.
//
// Submission is single-shot. Errors returned by the service are surfaced
// verbatim as *APIError and are never retried.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rshade/carbonfocus/internal/logging"
)

// ActivitiesPath is the create-activity endpoint.
const ActivitiesPath = "/v1/activities"

// RequestIDHeader carries a fresh ID for every submission.
const RequestIDHeader = "X-Request-ID"

// DateLayout is the wire format of ActivityRequest.Date.
const DateLayout = time.DateOnly

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 1 << 20
)

// ErrInvalidRequest is returned before any network call when a request is
// missing required fields.
var ErrInvalidRequest = errors.New("invalid activity request")

// ActivityRequest is the body of POST /v1/activities.
type ActivityRequest struct {
	CategoryCode   string   `json:"category_code"`
	ActivityKey    string   `json:"activity_key"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit"`
	Description    string   `json:"description,omitempty"`
	Date           string   `json:"date"`
	SupplierFactor *float64 `json:"supplier_factor,omitempty"`
}

// Validate checks the fields the service requires.
func (r ActivityRequest) Validate() error {
	switch {
	case r.CategoryCode == "":
		return fmt.Errorf("%w: category_code is required", ErrInvalidRequest)
	case r.ActivityKey == "":
		return fmt.Errorf("%w: activity_key is required", ErrInvalidRequest)
	case r.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be > 0, got %v", ErrInvalidRequest, r.Quantity)
	case r.SupplierFactor != nil && *r.SupplierFactor <= 0:
		return fmt.Errorf("%w: supplier_factor must be > 0", ErrInvalidRequest)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q: %w", ErrInvalidRequest, r.Date, err)
	}
	return nil
}

// Activity is the stored activity record.
type Activity struct {
	ID           string    `json:"id"`
	CategoryCode string    `json:"category_code"`
	ActivityKey  string    `json:"activity_key"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Description  string    `json:"description,omitempty"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Emission is the authoritative emission computed by the service.
type Emission struct {
	ID         string  `json:"id"`
	ActivityID string  `json:"activity_id"`
	CO2eKg     float64 `json:"co2e_kg"`
	FactorUsed float64 `json:"factor_used"`
	FactorUnit string  `json:"factor_unit,omitempty"`
	Source     string  `json:"source,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
}

// ActivityResponse is the body returned by a successful submission.
type ActivityResponse struct {
	Activity Activity `json:"activity"`
	Emission Emission `json:"emission"`

	// RequestID is the X-Request-ID sent with the submission.
	RequestID string `json:"request_id"`
}

// APIError is a non-2xx response from the service, kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("persistence service returned %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status suggests the caller may retry later.
// The client itself never retries.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Persistence Service.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid persistence URL %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: base.String() + ActivitiesPath, token: cfg.APIToken, http: hc}, nil
}

// Submit creates an activity. Each call carries a fresh request ID; calling
// Submit twice creates two activities.
func (c *Client) Submit(ctx context.Context, req ActivityRequest) (ActivityResponse, error) {
	if err := req.Validate(); err != nil {
		return ActivityResponse{}, err
	}
	log := logging.FromContext(ctx)

	body, err := json.Marshal(req)
	if err != nil {
		return ActivityResponse{}, fmt.Errorf("encoding activity: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ActivityResponse{}, fmt.Errorf("building request: %w", err)
	}

	requestID := logging.NewTraceID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ActivityResponse{}, fmt.Errorf("POST %s: %w", ActivitiesPath, err)
	}
	defer resp.Body.Close()

	log.Info().
		Ctx(ctx).
		Str("component", "persist").
		Str("operation", "submit").
		Str("category", req.CategoryCode).
		Str("activity_key", req.ActivityKey).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("activity submitted")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return ActivityResponse{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ActivityResponse{}, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			RequestID:  requestID,
		}
	}

	var out ActivityResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ActivityResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	out.RequestID = requestID
	return out, nil
}
