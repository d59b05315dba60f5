package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rshade/carbonfocus/internal/logging"
)

// EnvProjectDir overrides project directory discovery.
const EnvProjectDir = "CARBONFOCUS_PROJECT_DIR"

// ResolveProjectDir finds the project-local .carbonfocus directory. It checks,
// in order, flagValue, $CARBONFOCUS_PROJECT_DIR and a walk up from startDir
// looking for a .carbonfocus/config.yaml. It returns "" when none is found
// and never creates anything.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}
	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}
	if startDir == "" {
		return ""
	}

	home, _ := HomeDir()
	dir := toAbsProjectDir(ctx, startDir)
	for {
		// The global home directory is not a project overlay.
		if dir != home {
			if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(filepath.Dir(dir))
		if parent == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Join(parent, DirName)
	}
}

// NewWithProjectDir loads the global config and shallow-merges the project
// config in projectDir on top. A missing or malformed project file leaves
// the global config in place.
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	cfg := New()
	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return cfg
	}

	merged := New()
	if err := ShallowMergeYAML(merged, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Ctx(ctx).
			Str("component", "config").
			Str("operation", "merge_project_config").
			Str("overlay_path", overlayPath).
			Err(err).
			Msg("failed to merge project config, using global config")
		return cfg
	}
	// Environment variables still win over the project file.
	merged.ApplyEnv()
	return merged
}

// toAbsProjectDir makes dir absolute and appends .carbonfocus unless it is
// already the last element.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Ctx(ctx).
			Str("component", "config").
			Str("dir", dir).
			Err(err).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}
	if filepath.Base(abs) == DirName {
		return abs
	}
	return filepath.Join(abs, DirName)
}
