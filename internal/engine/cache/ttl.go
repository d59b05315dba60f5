package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	// DefaultTTL is the lifetime of a cached reference record.
	DefaultTTL = 24 * time.Hour

	// MinTTL is the shortest accepted TTL.
	MinTTL = time.Minute

	// MaxTTL is the longest accepted TTL. Reference datasets are republished
	// at least monthly.
	MaxTTL = 30 * 24 * time.Hour

	// DefaultMaxSizeMB bounds the on-disk cache.
	DefaultMaxSizeMB = 50

	hoursPerDay    = 24
	minutesPerHour = 60
)

// Environment variables that override the cache config.
const (
	EnvTTLSeconds = "CARBONFOCUS_CACHE_TTL_SECONDS"
	EnvEnabled    = "CARBONFOCUS_CACHE_ENABLED"
	EnvDir        = "CARBONFOCUS_CACHE_DIR"
	EnvMaxSizeMB  = "CARBONFOCUS_CACHE_MAX_SIZE_MB"
)

// ErrInvalidTTL is returned for a TTL outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", FormatDuration(MinTTL), FormatDuration(MaxTTL))

// Config configures a FileStore.
type Config struct {
	Enabled   bool
	Directory string
	TTL       time.Duration
	MaxSizeMB int
}

// ApplyEnv returns cfg with CARBONFOCUS_CACHE_* overrides applied. Invalid
// values are ignored.
func ApplyEnv(cfg Config) Config {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if v, ok := lookup(EnvEnabled); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v, ok := lookup(EnvDir); ok && v != "" {
		cfg.Directory = v
	}
	if v, ok := lookup(EnvTTLSeconds); ok {
		if secs, err := strconv.Atoi(v); err == nil {
			if ttl := time.Duration(secs) * time.Second; ValidateTTL(ttl) == nil {
				cfg.TTL = ttl
			}
		}
	}
	if v, ok := lookup(EnvMaxSizeMB); ok {
		if mb, err := strconv.Atoi(v); err == nil && mb >= 0 {
			cfg.MaxSizeMB = mb
		}
	}
	return cfg
}

// ValidateTTL checks ttl against the accepted range.
func ValidateTTL(ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// ParseTTL parses integer seconds ("3600") or a duration ("12h").
func ParseTTL(s string) (time.Duration, error) {
	var ttl time.Duration
	if secs, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(secs) * time.Second
	} else {
		d, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		ttl = d
	}
	if err := ValidateTTL(ttl); err != nil {
		return 0, err
	}
	return ttl, nil
}

// FormatDuration formats a duration compactly: "45s", "30m", "1h30m", "2d".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < hoursPerDay*time.Hour:
		hours := int(d.Hours())
		if minutes := int(d.Minutes()) % minutesPerHour; minutes != 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	default:
		days := int(d.Hours()) / hoursPerDay
		if hours := int(d.Hours()) % hoursPerDay; hours != 0 {
			return fmt.Sprintf("%dd%dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	}
}
