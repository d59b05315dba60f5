package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// Persistent flag names.
const (
	flagDebug      = "debug"
	flagOffline    = "offline"
	flagOutput     = "output"
	flagProjectDir = "project-dir"
	flagDataset    = "dataset"
)

// NewRootCmd creates the root Cobra command for the carbonfocus CLI.
// It wires up configuration, logging, tracing and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithArgs(ver, os.LookupEnv)
}

// NewRootCmdWithArgs creates the root command with an explicit env lookup
// for testability.
func NewRootCmdWithArgs(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "carbonfocus",
		Short:         "Activity emission previews and CBAM cost exposure",
		Long:          "CarbonFocus: resolve emission factors, preview activity emissions and price CBAM imports",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, lookupEnv); err != nil {
				return err
			}
			logResult = setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool(flagDebug, false, "enable debug logging")
	cmd.PersistentFlags().Bool(flagOffline, false, "do not contact the reference data service")
	cmd.PersistentFlags().String(flagOutput, "", "output format (table, json); defaults to output.default_format")
	cmd.PersistentFlags().String(flagProjectDir, "", "project directory holding a .carbonfocus/config.yaml overlay")
	cmd.PersistentFlags().String(flagDataset, "", "local YAML reference dataset (implies --offline)")

	cmd.AddCommand(
		NewCategoriesCmd(),
		newActivityCmd(),
		newCBAMCmd(),
		newCacheCmd(),
		newConfigCmd(),
	)
	return cmd
}

// loadConfig resolves the project directory, loads the merged configuration
// and installs it as the global config.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) error {
	ctx := cmd.Context()
	projectFlag, _ := cmd.Flags().GetString(flagProjectDir)

	startDir, err := os.Getwd()
	if err != nil {
		startDir = ""
	}
	if v, ok := lookupEnv(config.EnvProjectDir); ok && v != "" && projectFlag == "" {
		projectFlag = v
	}
	projectDir := config.ResolveProjectDir(ctx, projectFlag, startDir)
	cfg := config.NewWithProjectDir(ctx, projectDir)

	if cmd.Flags().Changed(flagOutput) {
		format, _ := cmd.Flags().GetString(flagOutput)
		if format != config.FormatTable && format != config.FormatJSON {
			return fmt.Errorf("unsupported output format %q (want %s or %s)", format, config.FormatTable, config.FormatJSON)
		}
		cfg.Output.DefaultFormat = format
	}

	config.SetGlobalConfig(cfg)
	return nil
}

const rootCmdExample = `  # List the GHG Protocol categories and their methods
  carbonfocus categories

  # Preview grid electricity in Germany
  carbonfocus activity preview --category 2.1 --quantity 1000 --unit kWh --region DE

  # Preview diesel bought for 500 USD
  carbonfocus activity preview --category 1.2 --method spend --amount 500 --currency USD --fuel diesel

  # Submit an activity to the persistence service
  carbonfocus activity submit --category 2.1 --quantity 1000 --unit kWh --date 2025-03-01

  # Preview a file of activities
  carbonfocus activity batch --file activities.yaml

  # CBAM exposure for 100 t of hot-rolled steel from China
  carbonfocus cbam exposure --cn "7208 51 20" --mass 100 --country CN --foreign-price 10

  # Initialize configuration
  carbonfocus config init`

// newActivityCmd creates the activity command group.
func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "activity", Short: "Activity emission commands"}
	cmd.AddCommand(
		NewActivityPreviewCmd(), NewActivitySubmitCmd(), NewActivityBatchCmd(), NewActivityInteractiveCmd(),
	)
	return cmd
}

// newCBAMCmd creates the cbam command group.
func newCBAMCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cbam", Short: "Carbon Border Adjustment Mechanism commands"}
	cmd.AddCommand(NewCBAMExposureCmd(), NewCBAMProductsCmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Reference data cache commands"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd(), NewCachePruneCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
