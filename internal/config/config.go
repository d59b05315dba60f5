// Package config loads carbonfocus configuration from defaults, the YAML
// config file and CARBONFOCUS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonfocus/internal/engine/cache"
)

// File and directory names.
const (
	DirName  = ".carbonfocus"
	FileName = "config.yaml"
)

// Environment variables.
const (
	EnvHome         = "CARBONFOCUS_HOME"
	EnvRefDataURL   = "CARBONFOCUS_REFDATA_URL"
	EnvPersistURL   = "CARBONFOCUS_PERSIST_URL"
	EnvAPIToken     = "CARBONFOCUS_API_TOKEN"
	EnvRegion       = "CARBONFOCUS_REGION"
	EnvEUETSPrice   = "CARBONFOCUS_EU_ETS_PRICE"
	EnvLogLevel     = "CARBONFOCUS_LOG_LEVEL"
	EnvOutputFormat = "CARBONFOCUS_OUTPUT_FORMAT"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Defaults.
const (
	DefaultRegion        = "GLOBAL"
	DefaultEUETSPriceEUR = 80.0
	defaultTimeoutSecs   = 10
	defaultRatePerSecond = 10.0
	defaultBurst         = 5
	defaultBatchSize     = 50
	defaultWorkers       = 4
	configFilePerm       = 0o600
	configDirPerm        = 0o700
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full carbonfocus configuration.
type Config struct {
	ReferenceData ReferenceDataConfig `yaml:"reference_data" json:"reference_data"`
	Persistence   PersistenceConfig   `yaml:"persistence"    json:"persistence"`
	Calculation   CalculationConfig   `yaml:"calculation"    json:"calculation"`
	Pricing       PricingConfig       `yaml:"pricing"        json:"pricing"`
	Cache         CacheConfig         `yaml:"cache"          json:"cache"`
	Logging       LoggingConfig       `yaml:"logging"        json:"logging"`
	Output        OutputConfig        `yaml:"output"         json:"output"`

	path string
}

// ReferenceDataConfig configures the Reference Data Service client.
type ReferenceDataConfig struct {
	URL               string  `yaml:"url"                           json:"url"`
	APIToken          string  `yaml:"api_token,omitempty"           json:"-"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"               json:"timeout_seconds"`
	RatePerSecond     float64 `yaml:"rate_per_second"               json:"rate_per_second"`
	Burst             int     `yaml:"burst"                         json:"burst"`
	MinDatasetVersion string  `yaml:"min_dataset_version,omitempty" json:"min_dataset_version,omitempty"`

	// Dataset is a local YAML dataset used in offline mode.
	Dataset string `yaml:"dataset,omitempty" json:"dataset,omitempty"`
}

// Timeout returns the request timeout.
func (c ReferenceDataConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PersistenceConfig configures the Persistence Service client.
type PersistenceConfig struct {
	URL            string `yaml:"url"                 json:"url"`
	APIToken       string `yaml:"api_token,omitempty" json:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds"     json:"timeout_seconds"`
}

// Timeout returns the request timeout.
func (c PersistenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CalculationConfig tunes the preview engine.
type CalculationConfig struct {
	DefaultRegion                      string `yaml:"default_region"                        json:"default_region"`
	SupplierOverrideSuppressesWarnings bool   `yaml:"supplier_override_suppresses_warnings" json:"supplier_override_suppresses_warnings"`
	BatchSize                          int    `yaml:"batch_size"                            json:"batch_size"`
	Workers                            int    `yaml:"workers"                               json:"workers"`
}

// PricingConfig holds carbon prices.
type PricingConfig struct {
	EUETSPriceEUR float64 `yaml:"eu_ets_price_eur" json:"eu_ets_price_eur"`
}

// CacheConfig configures the on-disk reference-data cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"     json:"enabled"`
	Directory  string `yaml:"directory"   json:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
}

// ToCacheConfig converts to the cache package config and applies
// CARBONFOCUS_CACHE_* overrides.
func (c CacheConfig) ToCacheConfig() cache.Config {
	return cache.ApplyEnv(cache.Config{
		Enabled:   c.Enabled,
		Directory: c.Directory,
		TTL:       time.Duration(c.TTLSeconds) * time.Second,
		MaxSizeMB: c.MaxSizeMB,
	})
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
}

// HomeDir returns the carbonfocus home directory: $CARBONFOCUS_HOME or
// ~/.carbonfocus.
func HomeDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(userHome, DirName), nil
}

// DefaultPath returns the path of the global config file.
func DefaultPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := HomeDir()
	if err != nil {
		home = filepath.Join(os.TempDir(), DirName)
	}
	return &Config{
		ReferenceData: ReferenceDataConfig{
			TimeoutSeconds: defaultTimeoutSecs,
			RatePerSecond:  defaultRatePerSecond,
			Burst:          defaultBurst,
		},
		Persistence: PersistenceConfig{TimeoutSeconds: defaultTimeoutSecs},
		Calculation: CalculationConfig{
			DefaultRegion: DefaultRegion,
			BatchSize:     defaultBatchSize,
			Workers:       defaultWorkers,
		},
		Pricing: PricingConfig{EUETSPriceEUR: DefaultEUETSPriceEUR},
		Cache: CacheConfig{
			Enabled:    true,
			Directory:  filepath.Join(home, "cache"),
			TTLSeconds: int(cache.DefaultTTL / time.Second),
			MaxSizeMB:  cache.DefaultMaxSizeMB,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{DefaultFormat: FormatTable},
		path:    filepath.Join(home, FileName),
	}
}

// New returns the defaults overlaid with the global config file, if present,
// and environment overrides. A malformed file is ignored in favour of the
// defaults; use Load to see the error.
func New() *Config {
	path, err := DefaultPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnv()
		return cfg
	}
	cfg, err := Load(path)
	if err != nil {
		cfg = Default()
		cfg.path = path
		cfg.ApplyEnv()
	}
	return cfg
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to its path, creating the directory if needed.
func (c *Config) Save() error {
	return c.SaveTo(c.path)
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	c.path = path
	return nil
}

// ApplyEnv applies CARBONFOCUS_* overrides. Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRefDataURL); ok && v != "" {
		c.ReferenceData.URL = v
	}
	if v, ok := lookup(EnvPersistURL); ok && v != "" {
		c.Persistence.URL = v
	}
	if v, ok := lookup(EnvAPIToken); ok && v != "" {
		c.ReferenceData.APIToken = v
		c.Persistence.APIToken = v
	}
	if v, ok := lookup(EnvRegion); ok && v != "" {
		c.Calculation.DefaultRegion = strings.ToUpper(v)
	}
	if v, ok := lookup(EnvEUETSPrice); ok {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pricing.EUETSPriceEUR = price
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvOutputFormat); ok && v != "" {
		c.Output.DefaultFormat = strings.ToLower(v)
	}
}

// Validate checks URLs, prices, TTL bounds and enumerations.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(validURL(c.ReferenceData.URL), "reference_data.url %q is not an http(s) URL", c.ReferenceData.URL)
	check(validURL(c.Persistence.URL), "persistence.url %q is not an http(s) URL", c.Persistence.URL)
	check(c.ReferenceData.TimeoutSeconds >= 0, "reference_data.timeout_seconds must be >= 0")
	check(c.ReferenceData.RatePerSecond >= 0, "reference_data.rate_per_second must be >= 0")
	if c.ReferenceData.MinDatasetVersion != "" {
		_, err := semver.NewVersion(c.ReferenceData.MinDatasetVersion)
		check(err == nil, "reference_data.min_dataset_version %q is not a semantic version",
			c.ReferenceData.MinDatasetVersion)
	}
	check(c.Persistence.TimeoutSeconds >= 0, "persistence.timeout_seconds must be >= 0")
	check(c.Pricing.EUETSPriceEUR > 0, "pricing.eu_ets_price_eur must be > 0, got %v", c.Pricing.EUETSPriceEUR)
	check(c.Calculation.BatchSize >= 0 && c.Calculation.BatchSize <= 1000,
		"calculation.batch_size must be between 0 and 1000")
	check(c.Calculation.Workers >= 0, "calculation.workers must be >= 0")
	if c.Cache.Enabled {
		err := cache.ValidateTTL(time.Duration(c.Cache.TTLSeconds) * time.Second)
		check(err == nil, "cache.ttl_seconds: %v", err)
		check(c.Cache.Directory != "", "cache.directory is required when the cache is enabled")
		check(c.Cache.MaxSizeMB >= 0, "cache.max_size_mb must be >= 0")
	}
	check(c.Output.DefaultFormat == FormatTable || c.Output.DefaultFormat == FormatJSON,
		"output.default_format must be %q or %q", FormatTable, FormatJSON)
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// validURL accepts an empty string, meaning "not configured".
func validURL(raw string) bool {
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
