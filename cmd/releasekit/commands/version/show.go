package version

import (
	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	versions "github.com/mintworks/releasekit/version"
)

var showExample = text.Examples(`
	# Show every component version
	releasekit version show

	# Show a single component
	releasekit version show backend
`)

// newShowCmd creates the "show" subcommand printing recorded versions.
func newShowCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:     "show [component]",
		Short:   "Show recorded component versions",
		Example: showExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd, cfg)
			if err != nil {
				return err
			}

			selected := versions.Components()
			if len(args) == 1 {
				c, err := versions.ParseComponent(args[0])
				if err != nil {
					return err
				}
				selected = []versions.Component{c}
			}

			for _, c := range selected {
				v, err := m.Version(c)
				if err != nil {
					return err
				}
				cmd.Printf("%-10s %s\n", c, v)
			}

			return nil
		},
	}
}
