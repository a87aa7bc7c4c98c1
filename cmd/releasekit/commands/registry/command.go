// Package registry provides CLI commands for artifact registry management.
package registry

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	"github.com/mintworks/releasekit/pkg/logger"
	reg "github.com/mintworks/releasekit/registry"
)

var (
	registryShort = "Artifact registry operations"

	registryLong = text.LongDesc(`
		Commands for managing the per-network artifact registries.

		A registry maps logical artifact names to their deployed identifiers on
		one network. Every mutation snapshots the whole document first, so any
		previous state can be restored from its backup id.
	`)
)

// Config holds the configuration for registry commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("registry.Config: missing required field: Logger")
	}

	return nil
}

// NewCommand creates the registry command group with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:   "registry",
		Short: registryShort,
		Long:  registryLong,
	}

	cmd.AddCommand(newListCmd(cfg))
	cmd.AddCommand(newGetCmd(cfg))
	cmd.AddCommand(newSetCmd(cfg))
	cmd.AddCommand(newRemoveCmd(cfg))
	cmd.AddCommand(newValidateCmd(cfg))
	cmd.AddCommand(newMergeCmd(cfg))
	cmd.AddCommand(newRestoreCmd(cfg))
	cmd.AddCommand(newBackupsCmd(cfg))
	cmd.AddCommand(newExportCmd(cfg))

	return cmd, nil
}

// store resolves the registry store and target network from the command's
// flags.
func store(cmd *cobra.Command, cfg Config) (*reg.Store, reg.Network, error) {
	ws, err := flags.Workspace(cmd)
	if err != nil {
		return nil, "", err
	}

	network, err := reg.ParseNetwork(flags.MustString(cmd.Flags().GetString("network")))
	if err != nil {
		return nil, "", err
	}

	return reg.NewStore(ws, cfg.Logger), network, nil
}
