package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML keys that map to Config sections.
const (
	keyReferenceData = "reference_data"
	keyPersistence   = "persistence"
	keyCalculation   = "calculation"
	keyPricing       = "pricing"
	keyCache         = "cache"
	keyLogging       = "logging"
	keyOutput        = "output"
)

// ShallowMergeYAML loads a YAML file and replaces each Config section that
// the file names. Sections absent from the file are left unchanged, and
// unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		section := sectionFor(target, key)
		if section == nil {
			continue
		}
		if err = section(node.Decode); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// sectionFor returns a setter for the named section, or nil when the key is
// unknown.
func sectionFor(c *Config, key string) func(decode func(any) error) error {
	switch key {
	case keyReferenceData:
		return decodeInto(&c.ReferenceData)
	case keyPersistence:
		return decodeInto(&c.Persistence)
	case keyCalculation:
		return decodeInto(&c.Calculation)
	case keyPricing:
		return decodeInto(&c.Pricing)
	case keyCache:
		return decodeInto(&c.Cache)
	case keyLogging:
		return decodeInto(&c.Logging)
	case keyOutput:
		return decodeInto(&c.Output)
	default:
		return nil
	}
}

// decodeInto decodes into a fresh zero value so the overlay replaces the
// whole section instead of merging into it.
func decodeInto[T any](field *T) func(decode func(any) error) error {
	return func(decode func(any) error) error {
		var v T
		if err := decode(&v); err != nil {
			return err
		}
		*field = v
		return nil
	}
}
