// Package registry implements the artifact registry: the canonical per-network
// mapping from logical artifact names to deployed identifiers. Every mutating
// operation snapshots the full registry document to an immutable backup before
// the mutation becomes visible, so the entire mutation history is
// reconstructible by walking backups in reverse.
package registry

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
)

var (
	ErrInvalidNetwork    = errors.New("invalid network")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("entry not found")
)

// Network identifies one of the deploy targets a registry document is scoped
// to.
type Network string

const (
	NetworkDev  Network = "dev"
	NetworkTest Network = "test"
	NetworkMain Network = "main"
)

// Networks lists all valid networks.
func Networks() []Network {
	return []Network{NetworkDev, NetworkTest, NetworkMain}
}

func (n Network) String() string { return string(n) }

// ParseNetwork parses a network name, failing with ErrInvalidNetwork for
// anything outside the known set.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkDev, NetworkTest, NetworkMain:
		return Network(s), nil
	default:
		return "", fmt.Errorf("network %q: %w", s, ErrInvalidNetwork)
	}
}

// Document is the persisted registry document for one network. Entries map
// logical artifact names to deployed identifiers; names are unique within a
// document.
type Document struct {
	Network Network           `json:"network"`
	Entries map[string]string `json:"entries"`
}

// NewDocument returns an empty Document for the network.
func NewDocument(network Network) Document {
	return Document{Network: network, Entries: map[string]string{}}
}

// sorted returns the document entries as a TreeMap keyed by logical name, so
// iteration order is deterministic for listings and exports.
func (d Document) sorted() *treemap.Map {
	m := treemap.NewWithStringComparator()
	for name, id := range d.Entries {
		m.Put(name, id)
	}

	return m
}

// Names returns the logical names in the document in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d.Entries))
	it := d.sorted().Iterator()
	for it.Next() {
		names = append(names, it.Key().(string))
	}

	return names
}

// ValidationResult is the outcome of validating every entry in a registry
// document. It never carries partial mutations; validation is read-only.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
