package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	cfgstore "github.com/mintworks/releasekit/config"
)

// newGenerateCmd creates the "generate" subcommand writing environment
// defaults. Regenerating an existing document backs up the old one first.
func newGenerateCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the configuration document with environment defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			_, backupID, err := s.Generate(env)
			if err != nil {
				return fmt.Errorf("error generating config for %s: %w", env, err)
			}

			if backupID != "" {
				cmd.Printf("✅ Generated config for %s at %s (previous document saved as %s)\n",
					env, s.Path(env), backupID)
			} else {
				cmd.Printf("✅ Generated config for %s at %s\n", env, s.Path(env))
			}

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}

// newBackupCmd creates the "backup" subcommand snapshotting the current
// document on demand.
func newBackupCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the environment's configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			backupID, err := s.Backup(env)
			if err != nil {
				return fmt.Errorf("error backing up config for %s: %w", env, err)
			}

			cmd.Printf("✅ Backed up config for %s as %s\n", env, backupID)

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}

// newRestoreCmd creates the "restore" subcommand replacing the document with
// a backup's contents.
func newRestoreCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore the configuration document from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			preRestoreID, err := s.Restore(env, args[0])
			if err != nil {
				return fmt.Errorf("error restoring config for %s from %s: %w", env, args[0], err)
			}

			if preRestoreID != "" {
				cmd.Printf("✅ Restored config for %s from backup %s (pre-restore state saved as %s)\n",
					env, args[0], preRestoreID)
			} else {
				cmd.Printf("✅ Restored config for %s from backup %s\n", env, args[0])
			}

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}

// newBackupsCmd creates the "backups" subcommand listing available backups,
// oldest first.
func newBackupsCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List configuration backups for an environment, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, env, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			backups, err := s.Backups(env).List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				cmd.Printf("no backups for %s\n", env)

				return nil
			}

			for _, b := range backups {
				cmd.Printf("%s  %s\n", b.ID, b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
			}

			return nil
		},
	}

	flags.Environment(cmd)

	return cmd
}

// newCleanupCmd creates the "cleanup" subcommand pruning old backups across
// every environment. Deletion is irreversible.
func newCleanupCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete configuration backups older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := flags.Workspace(cmd)
			if err != nil {
				return err
			}
			s := cfgstore.NewStore(ws, cfg.Logger)

			days := flags.MustInt(cmd.Flags().GetInt("retention-days"))
			removed, err := s.Cleanup(days)
			if err != nil {
				return fmt.Errorf("error cleaning up backups: %w", err)
			}

			total := 0
			for env, ids := range removed {
				total += len(ids)
				cmd.Printf("%s: removed %d backups\n", env, len(ids))
			}
			cmd.Printf("✅ Removed %d backups older than %d days\n", total, days)

			return nil
		},
	}

	cmd.Flags().Int("retention-days", 0, "Delete backups older than this many days (required)")
	_ = cmd.MarkFlagRequired("retention-days")

	return cmd
}
