package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	reg "github.com/mintworks/releasekit/registry"
)

// newListCmd creates the "list" subcommand printing every entry, sorted by
// name.
func newListCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry entries for a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			out, err := s.Export(network, reg.ExportKeyValue)
			if err != nil {
				return err
			}

			cmd.Print(out)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newGetCmd creates the "get" subcommand resolving one name to its deployed
// identifier.
func newGetCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get the deployed identifier for a logical name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			identifier, err := s.Get(network, args[0])
			if err != nil {
				return err
			}

			cmd.Println(identifier)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newSetCmd creates the "set" subcommand recording a deployed identifier.
func newSetCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name> <identifier>",
		Short: "Record a deployed identifier under a logical name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			backupID, err := s.Set(network, args[0], args[1])
			if err != nil {
				return fmt.Errorf("error setting %s on %s: %w", args[0], network, err)
			}

			cmd.Printf("✅ Set %s on %s (backup %s)\n", args[0], network, backupID)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}

// newRemoveCmd creates the "remove" subcommand deleting one entry.
func newRemoveCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an entry from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			backupID, err := s.Remove(network, args[0])
			if err != nil {
				return fmt.Errorf("error removing %s from %s: %w", args[0], network, err)
			}

			cmd.Printf("✅ Removed %s from %s (backup %s)\n", args[0], network, backupID)

			return nil
		},
	}

	flags.Network(cmd)

	return cmd
}
