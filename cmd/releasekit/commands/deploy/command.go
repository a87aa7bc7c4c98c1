// Package deploy provides the CLI command driving deployment runs.
package deploy

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	cfgstore "github.com/mintworks/releasekit/config"
	deployer "github.com/mintworks/releasekit/deploy"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/registry"
	"github.com/mintworks/releasekit/version"
)

var (
	deployShort = "Run a deployment for an environment"

	deployLong = text.LongDesc(`
		Builds, tests and deploys the product components to one environment.

		Components build and test concurrently; deploys run serially in
		dependency order (contracts before backend before frontend, and
		compliance_registry before asset_token before router among the
		on-chain artifacts). Production deploys require interactive
		confirmation unless --force is supplied.

		Toolchain commands are read from toolchains.yaml in the workspace.
	`)

	deployExample = text.Examples(`
		# Deploy everything to dev
		releasekit deploy dev

		# Rehearse a staging deploy without side effects
		releasekit deploy staging --dry-run

		# Deploy only the backend to prod, bypassing the confirmation gate
		releasekit deploy prod --component backend --force
	`)
)

// Config holds the configuration for the deploy command.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("deploy.Config: missing required field: Logger")
	}

	return nil
}

// NewCommand creates the deploy command.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Deps.applyDefaults()

	cmd := &cobra.Command{
		Use:     "deploy <environment>",
		Short:   deployShort,
		Long:    deployLong,
		Example: deployExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringSliceP("component", "c", nil,
		"Restrict the run to these components (default: all configured)")
	cmd.Flags().StringSlice("artifact", nil,
		"Restrict the contracts deploy to these on-chain artifacts")
	cmd.Flags().Bool("dry-run", false, "Build and test but do not deploy")
	cmd.Flags().Bool("force", false, "Bypass the production confirmation gate")
	cmd.Flags().Duration("step-timeout", 0, "Per toolchain step timeout (default 10m)")

	return cmd, nil
}

func runDeploy(cmd *cobra.Command, cfg Config, envArg string) error {
	ws, err := flags.Workspace(cmd)
	if err != nil {
		return err
	}
	env, err := cfgstore.ParseEnvironment(envArg)
	if err != nil {
		return err
	}

	var components []version.Component
	for _, name := range flags.MustStringSlice(cmd.Flags().GetStringSlice("component")) {
		c, err := version.ParseComponent(name)
		if err != nil {
			return err
		}
		components = append(components, c)
	}

	tf, err := cfg.Deps.LoadToolchains(ws.ToolchainsFilePath())
	if err != nil {
		return fmt.Errorf("error loading toolchains: %w", err)
	}

	opts := []deployer.Option{
		deployer.WithConfirm(stdinConfirm(cmd)),
	}
	if cfg.Deps.Prober != nil {
		opts = append(opts, deployer.WithProber(cfg.Deps.Prober))
	}
	if d := flags.MustDuration(cmd.Flags().GetDuration("step-timeout")); d > 0 {
		opts = append(opts, deployer.WithStepTimeout(d))
	}

	orch := deployer.New(
		ws,
		cfg.Logger,
		cfgstore.NewStore(ws, cfg.Logger),
		registry.NewStore(ws, cfg.Logger),
		version.NewManager(ws, cfg.Logger),
		tf.Toolchains(cfg.Logger),
		opts...,
	)

	run, runErr := orch.Deploy(cmd.Context(), env, deployer.DeployOptions{
		Components: components,
		Artifacts:  flags.MustStringSlice(cmd.Flags().GetStringSlice("artifact")),
		DryRun:     flags.MustBool(cmd.Flags().GetBool("dry-run")),
		Force:      flags.MustBool(cmd.Flags().GetBool("force")),
	})
	if run != nil {
		printRun(cmd, run)
	}
	if runErr != nil {
		return runErr
	}

	cmd.Printf("✅ Deployed to %s\n", env)

	return nil
}

// printRun renders the per-component outcome of a run.
func printRun(cmd *cobra.Command, run *deployer.Run) {
	cmd.Printf("Run %s (%s)\n", run.ID, run.Environment)
	for _, c := range run.Components {
		line := fmt.Sprintf("  %-10s %s", c, run.Statuses[c])
		if id, ok := run.Identifiers[string(c)]; ok {
			line += "  " + id
		}
		cmd.Println(line)
	}
	for _, w := range run.Warnings {
		cmd.Printf("  warning: %s\n", w)
	}
	if run.CompletedAt != nil {
		cmd.Printf("  finished in %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
}

// stdinConfirm prompts on the command's input stream and accepts only an
// explicit yes.
func stdinConfirm(cmd *cobra.Command) func(prompt string) bool {
	return func(prompt string) bool {
		cmd.Printf("%s [y/N]: ", prompt)

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))

		return answer == "y" || answer == "yes"
	}
}
