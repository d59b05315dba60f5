package refdata

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
)

// Static is an in-memory Source. It is safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	factors  map[string]emission.EmissionFactor
	prices   map[string][]emission.FuelPrice
	defaults map[string]cbam.DefaultSEE
	now      func() time.Time
}

// NewStatic returns an empty Static source.
func NewStatic() *Static {
	return &Static{
		factors:  make(map[string]emission.EmissionFactor),
		prices:   make(map[string][]emission.FuelPrice),
		defaults: make(map[string]cbam.DefaultSEE),
		now:      time.Now,
	}
}

func staticKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// AddFactor stores a factor under its key and region.
func (s *Static) AddFactor(f emission.EmissionFactor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factors[staticKey(f.ActivityKey, f.Region)] = f
}

// AddPrice stores a fuel price. Several prices may exist for one fuel,
// currency and region; the one active at lookup time is returned.
func (s *Static) AddPrice(p emission.FuelPrice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := staticKey(p.FuelType, p.Currency, p.Region)
	s.prices[k] = append(s.prices[k], p)
}

// AddDefault stores a default SEE value for a CN code and country.
func (s *Static) AddDefault(d cbam.DefaultSEE) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[staticKey(cbam.NormalizeCN(d.CNCode), d.Country)] = d
}

// Factor implements emission.FactorSource.
func (s *Static) Factor(ctx context.Context, activityKey, region string) (emission.EmissionFactor, error) {
	if err := ctx.Err(); err != nil {
		return emission.EmissionFactor{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.factors[staticKey(activityKey, region)]; ok {
		return f, nil
	}
	return emission.EmissionFactor{}, fmt.Errorf("%w: factor %s/%s", ErrNotFound, activityKey, region)
}

// FuelPrice implements emission.PriceSource. Prices for an empty region
// match any region.
func (s *Static) FuelPrice(ctx context.Context, fuelType, currency, region string) (emission.FuelPrice, error) {
	if err := ctx.Err(); err != nil {
		return emission.FuelPrice{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	for _, k := range []string{staticKey(fuelType, currency, region), staticKey(fuelType, currency, "")} {
		for _, p := range s.prices[k] {
			if p.ActiveAt(now) {
				return p, nil
			}
		}
	}
	return emission.FuelPrice{}, fmt.Errorf("%w: price %s/%s/%s", ErrNotFound, fuelType, currency, region)
}

// DefaultSEE implements cbam.DefaultSource. Values for an empty country
// match any country.
func (s *Static) DefaultSEE(ctx context.Context, cnCode, country string) (cbam.DefaultSEE, error) {
	if err := ctx.Err(); err != nil {
		return cbam.DefaultSEE{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cn := cbam.NormalizeCN(cnCode)
	for _, k := range []string{staticKey(cn, country), staticKey(cn, "")} {
		if d, ok := s.defaults[k]; ok {
			return d, nil
		}
	}
	return cbam.DefaultSEE{}, fmt.Errorf("%w: default SEE %s/%s", ErrNotFound, cnCode, country)
}

// Dataset is the YAML layout read by LoadStatic.
type Dataset struct {
	Factors []struct {
		ActivityKey string  `yaml:"activity_key"`
		Factor      float64 `yaml:"co2e_factor"`
		Unit        string  `yaml:"activity_unit"`
		Source      string  `yaml:"source"`
		Region      string  `yaml:"region"`
		Year        int     `yaml:"year"`
	} `yaml:"factors"`
	FuelPrices []struct {
		FuelType   string     `yaml:"fuel_type"`
		Currency   string     `yaml:"currency"`
		Price      float64    `yaml:"price_per_unit"`
		Unit       string     `yaml:"unit"`
		Region     string     `yaml:"region"`
		Source     string     `yaml:"source"`
		ValidFrom  time.Time  `yaml:"valid_from"`
		ValidUntil *time.Time `yaml:"valid_until"`
	} `yaml:"fuel_prices"`
	DefaultSEE []struct {
		CNCode   string  `yaml:"cn_code"`
		Country  string  `yaml:"country"`
		Direct   float64 `yaml:"direct_see"`
		Indirect float64 `yaml:"indirect_see"`
		Source   string  `yaml:"source"`
	} `yaml:"default_see"`
}

// LoadStatic reads a YAML dataset file into a new Static source.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return ParseStatic(data)
}

// ParseStatic decodes a YAML dataset into a new Static source.
func ParseStatic(data []byte) (*Static, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	s := NewStatic()
	for i, f := range ds.Factors {
		if f.ActivityKey == "" || f.Factor < 0 {
			return nil, fmt.Errorf("factor %d: activity_key is required and co2e_factor must be >= 0", i)
		}
		region := f.Region
		if region == "" {
			region = emission.GlobalRegion
		}
		s.AddFactor(emission.EmissionFactor{
			ActivityKey:  f.ActivityKey,
			CO2eFactor:   f.Factor,
			ActivityUnit: f.Unit,
			FactorUnit:   emission.FactorUnitFor(f.Unit),
			Source:       f.Source,
			Region:       region,
			Year:         f.Year,
		})
	}
	for i, p := range ds.FuelPrices {
		if p.FuelType == "" || p.Price <= 0 || !emission.IsCurrency(p.Currency) {
			return nil, fmt.Errorf("fuel price %d: fuel_type, a known currency and price_per_unit > 0 are required", i)
		}
		s.AddPrice(emission.FuelPrice{
			FuelType:     p.FuelType,
			Currency:     strings.ToUpper(p.Currency),
			PricePerUnit: p.Price,
			Unit:         p.Unit,
			Region:       p.Region,
			Source:       p.Source,
			ValidFrom:    p.ValidFrom,
			ValidUntil:   p.ValidUntil,
		})
	}
	for i, d := range ds.DefaultSEE {
		if d.CNCode == "" || d.Direct < 0 || d.Indirect < 0 {
			return nil, fmt.Errorf("default SEE %d: cn_code is required and values must be >= 0", i)
		}
		s.AddDefault(cbam.DefaultSEE{
			CNCode:   cbam.NormalizeCN(d.CNCode),
			Country:  strings.ToUpper(d.Country),
			Direct:   d.Direct,
			Indirect: d.Indirect,
			Source:   d.Source,
		})
	}
	return s, nil
}
