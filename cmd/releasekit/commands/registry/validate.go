package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/internal/jsonutils"
	reg "github.com/mintworks/releasekit/registry"
)

// newValidateCmd creates the "validate" subcommand checking every entry
// against the network's identifier grammar.
func newValidateCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every registry entry against the network's identifier grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := s.Validate(network)
			if err != nil {
				return err
			}

			if !res.Valid {
				for _, e := range res.Errors {
					cmd.Printf("invalid: %s\n", e)
				}

				return fmt.Errorf("registry for %s has %d invalid entries", network, len(res.Errors))
			}

			cmd.Printf("✅ Registry for %s is valid\n", network)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newMergeCmd creates the "merge" subcommand merging a registry document file
// into the network's registry. Incoming entries win on name collision.
func newMergeCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Merge a registry document file into the network's registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			doc, err := jsonutils.ReadFile[reg.Document](args[0])
			if err != nil {
				return fmt.Errorf("error reading registry document %s: %w", args[0], err)
			}

			backupID, err := s.Merge(network, doc)
			if err != nil {
				return fmt.Errorf("error merging into %s: %w", network, err)
			}

			cmd.Printf("✅ Merged %d entries into %s (backup %s)\n", len(doc.Entries), network, backupID)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newRestoreCmd creates the "restore" subcommand replacing the registry with
// a backup's contents. The pre-restore state is itself backed up first.
func newRestoreCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore the registry from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			preRestoreID, err := s.Restore(network, args[0])
			if err != nil {
				return fmt.Errorf("error restoring %s from %s: %w", network, args[0], err)
			}

			cmd.Printf("✅ Restored %s from backup %s (pre-restore state saved as %s)\n",
				network, args[0], preRestoreID)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newBackupsCmd creates the "backups" subcommand listing available backups,
// oldest first.
func newBackupsCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List registry backups for a network, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			backups, err := s.Backups(network).List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				cmd.Printf("no backups for %s\n", network)

				return nil
			}

			for _, b := range backups {
				cmd.Printf("%s  %s\n", b.ID, b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
			}

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}
