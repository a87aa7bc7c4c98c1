// The releasekit command coordinates releases for a multi-component product:
// component versions, per-environment configuration, per-network artifact
// registries, deployment runs and release gating.
package main

import (
	"fmt"
	"os"

	"github.com/mintworks/releasekit/cmd/releasekit/commands"
	"github.com/mintworks/releasekit/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	lggr, err := logger.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return 1
	}
	defer func() { _ = lggr.Sync() }()

	root, err := commands.NewRootCommand(lggr, commands.DeployConfig{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return 1
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return commands.ExitCode(err)
	}

	return 0
}
