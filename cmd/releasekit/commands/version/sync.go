package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
)

var syncLong = text.LongDesc(`
	Sets every component to the same version in one operation.

	Sync is the realignment tool for diverged components and deliberately
	permits downgrades for emergency rollback; downgrades are logged loudly.
`)

// newSyncCmd creates the "sync" subcommand aligning all components to one
// version.
func newSyncCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <version>",
		Short: "Set every component to the same version",
		Long:  syncLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager(cmd, cfg)
			if err != nil {
				return err
			}

			if err := m.Sync(args[0]); err != nil {
				return fmt.Errorf("error syncing to %s: %w", args[0], err)
			}

			cmd.Printf("✅ Synced all components to %s\n", args[0])

			return nil
		},
	}
}
