// Package commands assembles the releasekit CLI from its modular command
// packages.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	versionCmd, err := cmds.Version()
//	if err != nil {
//	    return err
//	}
//	app.AddCommand(versionCmd)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import deploycmd "github.com/mintworks/releasekit/cmd/releasekit/commands/deploy"
//
//	cmd, err := deploycmd.NewCommand(deploycmd.Config{
//	    Logger: lggr,
//	    Deps:   deploycmd.Deps{...},  // inject fakes for testing
//	})
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	configcmd "github.com/mintworks/releasekit/cmd/releasekit/commands/config"
	deploycmd "github.com/mintworks/releasekit/cmd/releasekit/commands/deploy"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	registrycmd "github.com/mintworks/releasekit/cmd/releasekit/commands/registry"
	validatecmd "github.com/mintworks/releasekit/cmd/releasekit/commands/validate"
	versioncmd "github.com/mintworks/releasekit/cmd/releasekit/commands/version"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

// Commands provides a factory for creating CLI commands with shared
// configuration. This allows setting the logger once and reusing it across
// all commands created by this factory.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Version creates the version command group.
func (c *Commands) Version() (*cobra.Command, error) {
	return versioncmd.NewCommand(versioncmd.Config{Logger: c.lggr})
}

// Registry creates the registry command group.
func (c *Commands) Registry() (*cobra.Command, error) {
	return registrycmd.NewCommand(registrycmd.Config{Logger: c.lggr})
}

// Config creates the config command group.
func (c *Commands) Config() (*cobra.Command, error) {
	return configcmd.NewCommand(configcmd.Config{Logger: c.lggr})
}

// DeployConfig holds configuration for the deploy command.
type DeployConfig struct {
	// Deps holds optional dependency overrides for testing.
	Deps deploycmd.Deps
}

// Deploy creates the deploy command.
func (c *Commands) Deploy(cfg DeployConfig) (*cobra.Command, error) {
	return deploycmd.NewCommand(deploycmd.Config{Logger: c.lggr, Deps: cfg.Deps})
}

// ValidateRelease creates the validate-release command.
func (c *Commands) ValidateRelease() (*cobra.Command, error) {
	return validatecmd.NewCommand(validatecmd.Config{Logger: c.lggr})
}

// NewRootCommand assembles the full releasekit CLI.
func NewRootCommand(lggr logger.Logger, deployCfg DeployConfig) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "releasekit",
		Short:         "Release coordination for versions, configs, registries and deploys",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{err: err}
	})
	flags.Workdir(root)

	root.AddCommand(newInitCmd())

	cmds := New(lggr)
	for _, build := range []func() (*cobra.Command, error){
		cmds.Version,
		cmds.Registry,
		cmds.Config,
		func() (*cobra.Command, error) { return cmds.Deploy(deployCfg) },
		cmds.ValidateRelease,
	} {
		cmd, err := build()
		if err != nil {
			return nil, err
		}
		root.AddCommand(cmd)
	}

	return root, nil
}

// newInitCmd creates the "init" command scaffolding a workspace.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold the workspace directory layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws := workspace.New(flags.MustString(cmd.Flags().GetString("workdir")))
			if err := ws.Init(); err != nil {
				return fmt.Errorf("error initializing workspace: %w", err)
			}

			cmd.Printf("✅ Initialized workspace at %s\n", ws.RootPath())

			return nil
		},
	}
}
