// Package version exposes build information injected at link time.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Set with -ldflags "-X github.com/rshade/carbonfocus/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version = "v0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion returns the version string.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return date
}

// IsRelease reports whether the version is a valid semantic version without
// a pre-release suffix.
func IsRelease() bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}

// String returns the version with commit and build date.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
