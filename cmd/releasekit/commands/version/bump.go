package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	versions "github.com/mintworks/releasekit/version"
)

var bumpExample = text.Examples(`
	# Release a backward-compatible backend fix
	releasekit version bump backend patch

	# Start a new frontend feature line
	releasekit version bump frontend minor
`)

// newBumpCmd creates the "bump" subcommand incrementing one component's
// version and appending a changelog entry.
func newBumpCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:     "bump <component> <major|minor|patch>",
		Short:   "Increment a component's semantic version",
		Example: bumpExample,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			component, err := versions.ParseComponent(args[0])
			if err != nil {
				return err
			}
			kind, err := versions.ParseBumpKind(args[1])
			if err != nil {
				return err
			}

			m, err := manager(cmd, cfg)
			if err != nil {
				return err
			}

			v, err := m.Bump(component, kind)
			if err != nil {
				return fmt.Errorf("error bumping %s: %w", component, err)
			}

			cmd.Printf("✅ Bumped %s to %s\n", component, v)

			return nil
		},
	}
}
