// Package emission resolves calculation methods, emission factors and spend
// conversions for activity data, and computes kg CO2e results.
//
// Every function in this package is synchronous. The only external calls go
// through FactorSource and PriceSource, which callers implement (see
// internal/refdata).
package emission

import (
	"fmt"
	"strings"
	"time"
)

// Confidence describes how specific the matched factor was to the activity.
type Confidence int

const (
	// ConfidenceLow marks embedded estimates and generic fallbacks.
	ConfidenceLow Confidence = iota

	// ConfidenceMedium marks global-region reference factors and defaults.
	ConfidenceMedium

	// ConfidenceHigh marks an exact reference match or a supplier factor.
	ConfidenceHigh
)

// String returns the lower-case label used in output and persistence.
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// Downgrade returns the next lower confidence level, stopping at low.
func (c Confidence) Downgrade() Confidence {
	if c <= ConfidenceLow {
		return ConfidenceLow
	}
	return c - 1
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConfidence parses a confidence label.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	default:
		return ConfidenceLow, fmt.Errorf("%w: unknown confidence %q", ErrInvalidInput, s)
	}
}

// EmissionFactor is a resolved factor. It is a value type and is never
// modified once returned from a lookup.
type EmissionFactor struct {
	ActivityKey  string  `json:"activity_key"`
	CO2eFactor   float64 `json:"co2e_factor"`
	ActivityUnit string  `json:"activity_unit"`
	FactorUnit   string  `json:"factor_unit"`
	Source       string  `json:"source"`
	Region       string  `json:"region"`
	Year         int     `json:"year"`
}

// ID returns the identity of the factor: key, region and year.
func (f EmissionFactor) ID() string {
	return fmt.Sprintf("%s@%s/%d", f.ActivityKey, f.Region, f.Year)
}

// FuelPrice is a system price for one unit of a fuel.
type FuelPrice struct {
	FuelType     string     `json:"fuel_type"`
	Currency     string     `json:"currency"`
	PricePerUnit float64    `json:"price_per_unit"`
	Unit         string     `json:"unit"`
	Region       string     `json:"region"`
	Source       string     `json:"source"`
	ValidFrom    time.Time  `json:"valid_from"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// ActiveAt reports whether the price is valid at t.
func (p FuelPrice) ActiveAt(t time.Time) bool {
	if !p.ValidFrom.IsZero() && t.Before(p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && !t.Before(*p.ValidUntil) {
		return false
	}
	return true
}

// ActivityInput is the raw scalar input for one activity.
//
// Exactly one driving scalar is set: Quantity for every method except Spend,
// where Spend.Amount drives the calculation and Quantity must be zero.
type ActivityInput struct {
	CategoryCode string  `json:"category_code"`
	Method       Method  `json:"-"`
	Quantity     float64 `json:"quantity,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Region       string  `json:"region,omitempty"`

	// SupplierFactor overrides the looked-up factor for non-supplier methods.
	SupplierFactor *float64 `json:"supplier_factor,omitempty"`
}

// EmissionResult is the outcome of one calculation.
type EmissionResult struct {
	CategoryCode       string           `json:"category_code"`
	ActivityKey        string           `json:"activity_key"`
	Method             MethodKind       `json:"method"`
	QuantityNormalized float64          `json:"quantity_normalized"`
	Unit               string           `json:"unit"`
	Factor             EmissionFactor   `json:"factor"`
	CO2eKg             float64          `json:"co2e_kg"`
	Formula            string           `json:"formula"`
	Confidence         Confidence       `json:"confidence"`
	Warnings           []string         `json:"warnings"`
	HighGWP            bool             `json:"high_gwp"`
	Spend              *SpendConversion `json:"spend,omitempty"`
}

// CO2eTonnes returns the result in metric tonnes.
func (r EmissionResult) CO2eTonnes() float64 {
	return r.CO2eKg / KgPerTonne
}
