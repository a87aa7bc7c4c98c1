package registry

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/cmd/releasekit/commands/text"
	reg "github.com/mintworks/releasekit/registry"
)

var exportExample = text.Examples(`
	# Print the test network registry as pretty JSON
	releasekit registry export --network test

	# Write the main network registry as sorted name=identifier lines
	releasekit registry export --network main --format key-value --out registry.env
`)

// newExportCmd creates the "export" subcommand rendering the registry in one
// of the supported formats.
func newExportCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the registry as a document, key-value lines or TOML",
		Example: exportExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, network, err := store(cmd, cfg)
			if err != nil {
				return err
			}

			format, err := reg.ParseExportFormat(flags.MustString(cmd.Flags().GetString("format")))
			if err != nil {
				return err
			}

			out, err := s.Export(network, format)
			if err != nil {
				return err
			}

			if path := flags.MustString(cmd.Flags().GetString("out")); path != "" {
				if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
					return fmt.Errorf("error writing export to %s: %w", path, err)
				}
				cmd.Printf("✅ Exported %s registry to %s\n", network, path)

				return nil
			}

			cmd.Print(out)

			return nil
		},
	}

	flags.Network(cmd)
	flags.Output(cmd)
	cmd.Flags().StringP("format", "f", string(reg.ExportDocument),
		"Export format: document, key-value or structured")

	return cmd
}
