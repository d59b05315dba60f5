package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonfocus/internal/config"
)

const redacted = "********"

// NewConfigInitCmd creates the config init command that writes a default
// configuration file.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a configuration file with defaults",
		Long: `Writes the default configuration to ~/.carbonfocus/config.yaml
(or $CARBONFOCUS_HOME/config.yaml). With --project the file is written to
.carbonfocus/config.yaml in the current directory, where it overlays the
global configuration section by section.`,
		Example: `  carbonfocus config init
  carbonfocus config init --project
  carbonfocus config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configInitPath(project)
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(path); statErr == nil && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
			}
			if err = config.Default().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false, "write a project-local .carbonfocus/config.yaml")
	return cmd
}

func configInitPath(project bool) (string, error) {
	if !project {
		return config.DefaultPath()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return filepath.Join(cwd, config.DirName, config.FileName), nil
}

// NewConfigShowCmd creates the config show command. API tokens are never
// printed.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Prints the configuration in effect after merging the global file, the
project overlay and CARBONFOCUS_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *config.GetGlobalConfig()
			if outputFormat() == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			if cfg.ReferenceData.APIToken != "" {
				cfg.ReferenceData.APIToken = redacted
			}
			if cfg.Persistence.APIToken != "" {
				cfg.Persistence.APIToken = redacted
			}
			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.Path(), out)
			return nil
		},
	}
}

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validates the global configuration file for syntax and the effective
configuration (file, project overlay and environment) for semantic correctness:
service URLs, the EU ETS price, cache TTL bounds, batch settings, logging and
output format.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd)
		},
	}
}

func runConfigValidate(cmd *cobra.Command) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	// Load reports syntax errors that New silently replaces with defaults.
	if _, err = config.Load(path); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := config.GetGlobalConfig()
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
	return nil
}
