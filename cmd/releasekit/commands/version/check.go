package version

import (
	"errors"

	"github.com/spf13/cobra"

	versions "github.com/mintworks/releasekit/version"
)

// newCheckCmd creates the "check" subcommand evaluating cross-component
// compatibility. Incompatible versions fail the command.
func newCheckCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check cross-component version compatibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := manager(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := m.CheckCompatibility()
			if err != nil {
				return err
			}

			for _, c := range versions.Components() {
				cmd.Printf("%-10s %s\n", c, res.PerComponent[c])
			}

			if !res.Compatible {
				return errors.New("component versions are incompatible: major.minor must match")
			}

			cmd.Println("✅ All components are compatible")

			return nil
		},
	}
}
