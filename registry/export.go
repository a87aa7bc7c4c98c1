package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ExportFormat selects the output shape of Export.
type ExportFormat string

const (
	// ExportDocument renders the full registry document as pretty JSON.
	ExportDocument ExportFormat = "document"
	// ExportKeyValue renders one "name=identifier" line per entry, sorted.
	ExportKeyValue ExportFormat = "key-value"
	// ExportStructured renders the entries as a TOML table.
	ExportStructured ExportFormat = "structured"
)

// ParseExportFormat parses an export format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportDocument, ExportKeyValue, ExportStructured:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Export renders the network's registry document in the requested format.
// It is a pure read-only transform.
func (s *Store) Export(network Network, format ExportFormat) (string, error) {
	doc, err := s.load(network)
	if err != nil {
		return "", err
	}

	switch format {
	case ExportDocument:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", err
		}

		return string(b), nil

	case ExportKeyValue:
		var sb strings.Builder
		it := doc.sorted().Iterator()
		for it.Next() {
			fmt.Fprintf(&sb, "%s=%s\n", it.Key(), it.Value())
		}

		return sb.String(), nil

	case ExportStructured:
		out := struct {
			Network string            `toml:"network"`
			Entries map[string]string `toml:"entries"`
		}{Network: network.String(), Entries: doc.Entries}

		b, err := toml.Marshal(out)
		if err != nil {
			return "", err
		}

		return string(b), nil

	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}
