// Package validate provides the CLI command gating a release behind the
// aggregated category checks.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	cfgstore "github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/registry"
	"github.com/mintworks/releasekit/release"
	"github.com/mintworks/releasekit/version"
)

var (
	validateShort = "Run the release gate checks"

	validateLong = text.LongDesc(`
		Runs the release checks (code-quality, test, security, performance,
		deployment-readiness) and aggregates them into one judgment.

		Code-quality and deployment-readiness failures block the release.
		Security and performance findings are reported as warnings so a
		release is never blocked purely on non-critical findings.
	`)

	validateExample = text.Examples(`
		# Gate a staging release
		releasekit validate-release --environment staging

		# Require every component to be at 1.4.0 before a prod release
		releasekit validate-release 1.4.0 --environment prod

		# Run a single category
		releasekit validate-release --environment dev --category security
	`)
)

// Config holds the configuration for the validate-release command.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("validate.Config: missing required field: Logger")
	}

	return nil
}

// NewCommand creates the validate-release command.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:     "validate-release [version]",
		Short:   validateShort,
		Long:    validateLong,
		Example: validateExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetVersion := ""
			if len(args) == 1 {
				targetVersion = args[0]
			}

			return runValidate(cmd, cfg, targetVersion)
		},
	}

	flags.Environment(cmd)
	cmd.Flags().StringSlice("category", nil,
		"Run only these categories (default: all, with the aggregate blocking policy)")
	cmd.Flags().String("lint-command", "", "Lint command for the code-quality check")
	cmd.Flags().String("test-command", "", "Test command for the test check")
	cmd.Flags().String("bench-command", "", "Benchmark command for the performance check")

	return cmd, nil
}

func runValidate(cmd *cobra.Command, cfg Config, targetVersion string) error {
	ws, err := flags.Workspace(cmd)
	if err != nil {
		return err
	}
	env, err := cfgstore.ParseEnvironment(flags.MustString(cmd.Flags().GetString("environment")))
	if err != nil {
		return err
	}

	validator := release.NewValidator(
		ws,
		cfg.Logger,
		version.NewManager(ws, cfg.Logger),
		cfgstore.NewStore(ws, cfg.Logger),
		registry.NewStore(ws, cfg.Logger),
		release.WithCommands(release.Commands{
			Lint:  strings.Fields(flags.MustString(cmd.Flags().GetString("lint-command"))),
			Test:  strings.Fields(flags.MustString(cmd.Flags().GetString("test-command"))),
			Bench: strings.Fields(flags.MustString(cmd.Flags().GetString("bench-command"))),
		}),
	)

	// A category selection runs raw checks; the downgrade policy applies only
	// to the aggregate judgment.
	if selected := flags.MustStringSlice(cmd.Flags().GetStringSlice("category")); len(selected) > 0 {
		failed := 0
		for _, name := range selected {
			category, err := release.ParseCategory(name)
			if err != nil {
				return err
			}

			res, err := validator.Check(cmd.Context(), category, env, targetVersion)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			if res.Outcome == release.OutcomeFail {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(selected))
		}

		return nil
	}

	report, err := validator.Validate(cmd.Context(), env, targetVersion)
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		printResult(cmd, res)
	}
	for _, w := range report.Warnings {
		cmd.Printf("warning: %s\n", w)
	}

	if !report.Passed {
		return fmt.Errorf("release validation failed for %s", env)
	}

	cmd.Printf("✅ Release validation passed for %s\n", env)

	return nil
}

func printResult(cmd *cobra.Command, res release.CheckResult) {
	cmd.Printf("%-22s %s\n", res.Category, res.Outcome)
	for _, f := range res.Findings {
		cmd.Printf("  - %s\n", f)
	}
}
