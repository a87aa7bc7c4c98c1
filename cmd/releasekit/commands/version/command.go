// Package version provides CLI commands for component version management.
package version

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	"github.com/mintworks/releasekit/pkg/logger"
	versions "github.com/mintworks/releasekit/version"
)

var (
	versionShort = "Component version operations"

	versionLong = text.LongDesc(`
		Commands for managing semantic versions of the product components.

		Every component (frontend, backend, contracts) carries its own semantic
		version. Components are release-compatible when they all share the same
		major.minor pair; patch versions may diverge freely.
	`)
)

// Config holds the configuration for version commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("version.Config: missing required field: Logger")
	}

	return nil
}

// NewCommand creates the version command group with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:   "version",
		Short: versionShort,
		Long:  versionLong,
	}

	cmd.AddCommand(newShowCmd(cfg))
	cmd.AddCommand(newBumpCmd(cfg))
	cmd.AddCommand(newSyncCmd(cfg))
	cmd.AddCommand(newCheckCmd(cfg))

	return cmd, nil
}

// manager builds a version manager rooted at the workspace selected by the
// inherited --workdir flag.
func manager(cmd *cobra.Command, cfg Config) (*versions.Manager, error) {
	ws, err := flags.Workspace(cmd)
	if err != nil {
		return nil, err
	}

	return versions.NewManager(ws, cfg.Logger), nil
}
