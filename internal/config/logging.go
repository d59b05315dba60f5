package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/carbonfocus/internal/logging"
)

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Validate checks the level and format.
func (lc LoggingConfig) Validate() error {
	if lc.Level != "" {
		if _, err := zerolog.ParseLevel(lc.Level); err != nil {
			return fmt.Errorf("logging.level %q: %w", lc.Level, err)
		}
	}
	switch lc.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
		return nil
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", logging.FormatConsole, logging.FormatJSON, lc.Format)
	}
}

// ToLoggingConfig converts the section to a logging.Config. A set File
// switches output to the file.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns the logging section of the global config.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
