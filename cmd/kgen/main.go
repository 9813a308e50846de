// Command kgen resolves a Kconfig-style configuration schema for one board
// and build type and emits the constants file and feature flags a native
// build consumes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/kgen/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// Command failures have already been reported through the output
	// formatter; flag parsing errors from cobra have not.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "kgen: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
