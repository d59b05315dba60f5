package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/engine/cache"
)

// cacheStats is the JSON shape of "cache stats".
type cacheStats struct {
	Directory string `json:"directory"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
	TTL       string `json:"ttl"`
}

// NewCacheStatsCmd creates the "cache stats" command.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the size of the reference data cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheStore()
			if err != nil {
				return err
			}
			entries, size, err := store.Stats()
			if err != nil {
				return err
			}
			stats := cacheStats{
				Directory: store.Directory(),
				Entries:   entries,
				SizeBytes: size,
				TTL:       cache.FormatDuration(store.TTL()),
			}
			if outputFormat() == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Directory: %s\nEntries:   %d\nSize:      %d bytes\nTTL:       %s\n",
				stats.Directory, stats.Entries, stats.SizeBytes, stats.TTL)
			return nil
		},
	}
}

// NewCacheClearCmd creates the "cache clear" command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached reference record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheStore()
			if err != nil {
				return err
			}
			if err = store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			logger.Info().Ctx(cmd.Context()).Str("directory", store.Directory()).Msg("cache cleared")
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", store.Directory())
			return nil
		},
	}
}

// NewCachePruneCmd creates the "cache prune" command.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cached reference records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheStore()
			if err != nil {
				return err
			}
			removed, err := store.CleanupExpired()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}
}
