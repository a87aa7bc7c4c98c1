// Package flags provides reusable flag helpers for CLI commands.
//
// This package should only contain common flags that can be used by multiple
// commands to ensure unified naming and consistent behavior across the CLI.
// Command-specific flags should be defined locally in the command file.
package flags

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mintworks/releasekit/workspace"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// MustStringSlice returns the slice value, ignoring the error.
// Safe to use with registered flags where GetStringSlice cannot fail.
func MustStringSlice(s []string, _ error) []string { return s }

// MustInt returns the int value, ignoring the error.
// Safe to use with registered flags where GetInt cannot fail.
func MustInt(i int, _ error) int { return i }

// MustDuration returns the duration value, ignoring the error.
// Safe to use with registered flags where GetDuration cannot fail.
func MustDuration(d time.Duration, _ error) time.Duration { return d }

// Workdir adds the persistent --workdir/-w flag selecting the workspace root.
// Intended for the root command so every subcommand inherits it.
func Workdir(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("workdir", "w", ".", "Workspace root directory")
}

// Environment adds the required --environment/-e flag to a command.
// Retrieve the value with cmd.Flags().GetString("environment").
func Environment(cmd *cobra.Command) {
	cmd.Flags().StringP("environment", "e", "", "Target environment: dev, staging or prod (required)")
	_ = cmd.MarkFlagRequired("environment")
}

// Network adds the required --network/-n flag to a command.
// Retrieve the value with cmd.Flags().GetString("network").
func Network(cmd *cobra.Command) {
	cmd.Flags().StringP("network", "n", "", "Target network: dev, test or main (required)")
	_ = cmd.MarkFlagRequired("network")
}

// Output adds the --out/-o flag for specifying an output file path.
// Also accepts --output as a silent alias.
// Retrieve the value with cmd.Flags().GetString("out").
func Output(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "Output file path (default: stdout)")

	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "output" {
			return pflag.NormalizedName("out")
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}

// Workspace loads the workspace selected by the inherited --workdir flag.
func Workspace(cmd *cobra.Command) (workspace.Workspace, error) {
	return workspace.Load(MustString(cmd.Flags().GetString("workdir")))
}
