package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
)

// newValidateCmd creates the "validate" subcommand checking required keys,
// value shapes and environment-specific security rules.
func newValidateCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the environment's configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := s.Validate(env)
			if err != nil {
				return err
			}

			for _, w := range res.Warnings {
				cmd.Printf("warning: %s\n", w)
			}
			if !res.Valid() {
				for _, e := range res.Errors {
					cmd.Printf("error: %s\n", e)
				}

				return fmt.Errorf("config for %s has %d validation errors", env, len(res.Errors))
			}

			cmd.Printf("✅ Config for %s is valid\n", env)

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}

// newConsistencyCheckCmd creates the "consistency-check" subcommand
// cross-validating values that must agree between components. Issues are
// warnings; only --strict turns them into a failing exit.
func newConsistencyCheckCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency-check",
		Short: "Cross-check values that must agree between components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			issues, err := s.ConsistencyCheck(env)
			if err != nil {
				return err
			}

			if len(issues) > 0 {
				for _, issue := range issues {
					cmd.Printf("warning: %s\n", issue)
				}

				strict := flags.MustBool(cmd.Flags().GetBool("strict"))
				if strict {
					return fmt.Errorf("config for %s has %d consistency issues", env, len(issues))
				}

				cmd.Printf("Config for %s has %d consistency warnings\n", env, len(issues))

				return nil
			}

			cmd.Printf("✅ Config for %s is consistent\n", env)

			return nil
		},
	}

	flags.Environment(cmd)
	cmd.Flags().Bool("strict", false, "Exit non-zero when consistency issues are found")

	return cmd
}

// newSecurityScanCmd creates the "security-scan" subcommand flagging weak
// credentials, loose file permissions and unencrypted secrets.
func newSecurityScanCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security-scan",
		Short: "Scan the environment's configuration for security findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			findings, err := s.SecurityScan(env)
			if err != nil {
				return err
			}

			if len(findings) > 0 {
				for _, f := range findings {
					cmd.Printf("finding: %s\n", f)
				}

				return fmt.Errorf("config for %s has %d security findings", env, len(findings))
			}

			cmd.Printf("✅ No security findings for %s\n", env)

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}
