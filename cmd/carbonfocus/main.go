// Command carbonfocus previews activity emissions, submits activities to the
// persistence service and prices CBAM imports.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/rshade/carbonfocus/internal/cli"
	"github.com/rshade/carbonfocus/internal/config"
	"github.com/rshade/carbonfocus/internal/persist"
	"github.com/rshade/carbonfocus/pkg/version"
)

// Exit codes beyond the generic failure, following sysexits.h.
const (
	exitFailure  = 1
	exitTempFail = 75
	exitConfig   = 78
)

func main() {
	if err := run(); err != nil {
		os.Exit(exitCode(err))
	}
}

// run loads an optional .env file and executes the root command. Cobra has
// already printed the error when one is returned.
func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return cli.NewRootCmd(version.GetVersion()).Execute()
}

// exitCode maps an error to a process exit code.
func exitCode(err error) int {
	var apiErr *persist.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Temporary():
		return exitTempFail
	case errors.Is(err, config.ErrInvalidConfig):
		return exitConfig
	default:
		return exitFailure
	}
}
