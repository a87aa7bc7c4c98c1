// Package config provides CLI commands for environment configuration
// management.
package config

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	cfgstore "github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
)

var (
	configShort = "Environment configuration operations"

	configLong = text.LongDesc(`
		Commands for managing per-environment configuration documents.

		Each environment (dev, staging, prod) owns one YAML document holding
		application, frontend, backend, contracts and credential settings.
		Mutations are snapshotted first; production documents are held to
		stricter security rules than the other environments.
	`)
)

// Config holds the configuration for config commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("config.Config: missing required field: Logger")
	}

	return nil
}

// NewCommand creates the config command group with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: configShort,
		Long:  configLong,
	}

	cmd.AddCommand(newGenerateCmd(cfg))
	cmd.AddCommand(newValidateCmd(cfg))
	cmd.AddCommand(newBackupCmd(cfg))
	cmd.AddCommand(newRestoreCmd(cfg))
	cmd.AddCommand(newBackupsCmd(cfg))
	cmd.AddCommand(newConsistencyCheckCmd(cfg))
	cmd.AddCommand(newSecurityScanCmd(cfg))
	cmd.AddCommand(newCleanupCmd(cfg))

	return cmd, nil
}

// store resolves the config store and target environment from the command's
// flags.
func store(cmd *cobra.Command, cfg Config) (*cfgstore.Store, cfgstore.Environment, error) {
	ws, err := flags.Workspace(cmd)
	if err != nil {
		return nil, "", err
	}

	env, err := cfgstore.ParseEnvironment(flags.MustString(cmd.Flags().GetString("environment")))
	if err != nil {
		return nil, "", err
	}

	return cfgstore.NewStore(ws, cfg.Logger), env, nil
}
