package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/time/rate"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/logging"
)

// Endpoint paths of the Reference Data Service.
const (
	FactorsPath    = "/v1/factors"
	FuelPricesPath = "/v1/fuel-prices"
	DefaultSEEPath = "/v1/default-see"
)

// DatasetVersionHeader carries the semantic version of the served dataset.
const DatasetVersionHeader = "X-Dataset-Version"

// RequestIDHeader carries the trace ID of the calling operation.
const RequestIDHeader = "X-Request-ID"

const (
	defaultTimeout   = 10 * time.Second
	defaultRate      = 10.0
	defaultBurst     = 5
	maxErrorBodySize = 4096
)

// ErrDatasetVersion is returned when the served dataset is older than the
// configured minimum or its version header is missing or malformed.
var ErrDatasetVersion = errors.New("reference dataset version not accepted")

// ClientConfig configures an HTTPClient.
type ClientConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration

	// RatePerSecond and Burst throttle outgoing requests. Zero uses defaults.
	RatePerSecond float64
	Burst         int

	// MinDatasetVersion rejects responses whose X-Dataset-Version is lower.
	// Empty disables the check.
	MinDatasetVersion string

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// HTTPClient reads reference data over HTTP. Requests are single-shot; a
// failure is reported to the caller, which decides whether to fall back.
type HTTPClient struct {
	base       *url.URL
	token      string
	http       *http.Client
	limiter    *rate.Limiter
	minVersion *semver.Version
}

// NewHTTPClient validates cfg and returns a client.
func NewHTTPClient(cfg ClientConfig) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid reference data URL %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	rps, burst := cfg.RatePerSecond, cfg.Burst
	if rps <= 0 {
		rps = defaultRate
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	c := &HTTPClient{
		base:    base,
		token:   cfg.APIToken,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
	if cfg.MinDatasetVersion != "" {
		v, vErr := semver.NewVersion(cfg.MinDatasetVersion)
		if vErr != nil {
			return nil, fmt.Errorf("invalid minimum dataset version %q: %w", cfg.MinDatasetVersion, vErr)
		}
		c.minVersion = v
	}
	return c, nil
}

// Factor implements emission.FactorSource.
func (c *HTTPClient) Factor(ctx context.Context, activityKey, region string) (emission.EmissionFactor, error) {
	var f emission.EmissionFactor
	err := c.get(ctx, FactorsPath, url.Values{"activity_key": {activityKey}, "region": {region}}, &f)
	return f, err
}

// FuelPrice implements emission.PriceSource.
func (c *HTTPClient) FuelPrice(ctx context.Context, fuelType, currency, region string) (emission.FuelPrice, error) {
	var p emission.FuelPrice
	err := c.get(ctx, FuelPricesPath, url.Values{
		"fuel_type": {fuelType},
		"currency":  {currency},
		"region":    {region},
	}, &p)
	return p, err
}

// DefaultSEE implements cbam.DefaultSource.
func (c *HTTPClient) DefaultSEE(ctx context.Context, cnCode, country string) (cbam.DefaultSEE, error) {
	var d cbam.DefaultSEE
	err := c.get(ctx, DefaultSEEPath, url.Values{"cn_code": {cnCode}, "country": {country}}, &d)
	return d, err
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	log := logging.FromContext(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, logging.GetOrGenerateTraceID(ctx))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Ctx(ctx).
		Str("component", "refdata").
		Str("path", path).
		Str("query", u.RawQuery).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("reference data request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s?%s", ErrNotFound, path, u.RawQuery)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := c.checkVersion(resp.Header.Get(DatasetVersionHeader)); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) checkVersion(header string) error {
	if c.minVersion == nil {
		return nil
	}
	if header == "" {
		return fmt.Errorf("%w: missing %s header", ErrDatasetVersion, DatasetVersionHeader)
	}
	v, err := semver.NewVersion(header)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrDatasetVersion, header, err)
	}
	if v.LessThan(c.minVersion) {
		return fmt.Errorf("%w: dataset %s is older than required %s", ErrDatasetVersion, v, c.minVersion)
	}
	return nil
}
