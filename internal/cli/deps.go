package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/engine"
	"github.com/rshade/carbonfocus/internal/engine/cache"
	"github.com/rshade/carbonfocus/internal/persist"
	"github.com/rshade/carbonfocus/internal/refdata"
)

// newEngine builds an engine from the global config and the persistent
// flags. Reference data comes from, in order: a local dataset (--dataset or
// reference_data.dataset in offline mode), the Reference Data Service behind
// the memory and disk caches, or nothing, in which case only the embedded
// estimates are available.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := config.GetGlobalConfig()

	source, err := newSource(cmd, cfg)
	if err != nil {
		return nil, err
	}

	var submitter engine.Submitter
	if cfg.Persistence.URL != "" {
		client, pErr := persist.New(persist.Config{
			BaseURL:  cfg.Persistence.URL,
			APIToken: cfg.Persistence.APIToken,
			Timeout:  cfg.Persistence.Timeout(),
		})
		if pErr != nil {
			return nil, pErr
		}
		submitter = client
	}

	return engine.New(source, submitter, engine.Options{
		DefaultRegion:                      cfg.Calculation.DefaultRegion,
		SupplierOverrideSuppressesWarnings: cfg.Calculation.SupplierOverrideSuppressesWarnings,
		EUETSPriceEUR:                      cfg.Pricing.EUETSPriceEUR,
		BatchSize:                          cfg.Calculation.BatchSize,
		Workers:                            cfg.Calculation.Workers,
	}), nil
}

// newSource selects the reference-data source. A nil source with a nil
// error means "estimates only".
func newSource(cmd *cobra.Command, cfg *config.Config) (refdata.Source, error) {
	ctx := cmd.Context()
	offline, _ := cmd.Flags().GetBool(flagOffline)
	dataset, _ := cmd.Flags().GetString(flagDataset)
	if dataset != "" {
		offline = true
	} else {
		dataset = cfg.ReferenceData.Dataset
	}

	if offline || cfg.ReferenceData.URL == "" {
		if dataset == "" {
			logger.Warn().Ctx(ctx).
				Str("operation", "new_source").
				Msg("no reference data configured, using embedded estimates only")
			return nil, nil //nolint:nilnil // A nil source selects the embedded estimates.
		}
		static, err := refdata.LoadStatic(dataset)
		if err != nil {
			return nil, fmt.Errorf("loading dataset %s: %w", dataset, err)
		}
		logger.Debug().Ctx(ctx).Str("operation", "new_source").Str("dataset", dataset).Msg("using local dataset")
		return static, nil
	}

	client, err := refdata.NewHTTPClient(refdata.ClientConfig{
		BaseURL:           cfg.ReferenceData.URL,
		APIToken:          cfg.ReferenceData.APIToken,
		Timeout:           cfg.ReferenceData.Timeout(),
		RatePerSecond:     cfg.ReferenceData.RatePerSecond,
		Burst:             cfg.ReferenceData.Burst,
		MinDatasetVersion: cfg.ReferenceData.MinDatasetVersion,
	})
	if err != nil {
		return nil, err
	}

	cacheCfg := cfg.Cache.ToCacheConfig()
	var disk *cache.FileStore
	if cacheCfg.Enabled {
		disk, err = cache.NewFileStore(cacheCfg)
		if err != nil {
			// A broken cache directory must not block calculations.
			logger.Warn().Ctx(ctx).
				Str("operation", "new_source").
				Str("directory", cacheCfg.Directory).
				Err(err).
				Msg("disk cache unavailable, using memory cache only")
			disk = nil
		}
	}
	return refdata.NewCached(client, disk, cacheTTL(cacheCfg)), nil
}

func cacheTTL(cfg cache.Config) time.Duration {
	if cfg.TTL > 0 {
		return cfg.TTL
	}
	return cache.DefaultTTL
}

// openCacheStore opens the configured disk cache for the cache commands.
func openCacheStore() (*cache.FileStore, error) {
	cacheCfg := config.GetGlobalConfig().Cache.ToCacheConfig()
	if !cacheCfg.Enabled {
		return nil, cache.ErrDisabled
	}
	return cache.NewFileStore(cacheCfg)
}
