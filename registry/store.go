package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mintworks/releasekit/backup"
	"github.com/mintworks/releasekit/internal/jsonutils"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

// Store provides the artifact registry operations for a workspace. It is not
// designed for concurrent writers; correctness relies on a single
// orchestrating process per environment at a time.
type Store struct {
	ws   workspace.Workspace
	lggr logger.Logger
}

// NewStore creates a registry Store over the workspace.
func NewStore(ws workspace.Workspace, lggr logger.Logger) *Store {
	return &Store{ws: ws, lggr: logger.Named(lggr, "registry")}
}

// Backups returns the backup store owning the network's registry snapshots.
func (s *Store) Backups(network Network) *backup.Store {
	return backup.NewStore(s.ws.BackupsDirPath("registry", network.String()), "json")
}

// load reads the registry document for the network. A missing document is an
// empty registry, not an error.
func (s *Store) load(network Network) (Document, error) {
	path := s.ws.RegistryFilePath(network.String())
	doc, err := jsonutils.ReadFile[Document](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDocument(network), nil
		}

		return Document{}, err
	}
	if doc.Entries == nil {
		doc.Entries = map[string]string{}
	}
	doc.Network = network

	return doc, nil
}

// snapshotThenWrite backs up the current document, then atomically replaces it
// with doc. The backup is durable before the replacement becomes visible.
// Returns the id of the backup taken.
func (s *Store) snapshotThenWrite(current, doc Document) (string, error) {
	contents, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", err
	}

	backupID, err := s.Backups(doc.Network).Create(contents)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot registry for %s: %w", doc.Network, err)
	}

	if err := jsonutils.WriteFile(s.ws.RegistryFilePath(doc.Network.String()), doc); err != nil {
		return backupID, fmt.Errorf("failed to write registry for %s: %w", doc.Network, err)
	}

	return backupID, nil
}

// List returns all entries for the network as a name to identifier map.
func (s *Store) List(network Network) (map[string]string, error) {
	doc, err := s.load(network)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(doc.Entries))
	it := doc.sorted().Iterator()
	for it.Next() {
		out[it.Key().(string)] = it.Value().(string)
	}

	return out, nil
}

// Get returns the deployed identifier recorded for name on the network.
func (s *Store) Get(network Network, name string) (string, error) {
	doc, err := s.load(network)
	if err != nil {
		return "", err
	}

	id, ok := doc.Entries[name]
	if !ok {
		return "", fmt.Errorf("%s on %s: %w", name, network, ErrNotFound)
	}

	return id, nil
}

// Set records identifier for name on the network. The identifier is validated
// against the network's address grammar and normalized before storage; on
// validation failure nothing is mutated and no backup is taken. Otherwise a
// snapshot of the full current document is written first, then the document is
// atomically replaced.
func (s *Store) Set(network Network, name, identifier string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	normalized, err := NormalizeIdentifier(network, identifier)
	if err != nil {
		return "", err
	}

	doc, err := s.load(network)
	if err != nil {
		return "", err
	}

	updated := NewDocument(network)
	for k, v := range doc.Entries {
		updated.Entries[k] = v
	}
	updated.Entries[name] = normalized

	backupID, err := s.snapshotThenWrite(doc, updated)
	if err != nil {
		return backupID, err
	}

	s.lggr.Infow("Registry entry set",
		"network", network, "name", name, "identifier", normalized, "backup", backupID)

	return backupID, nil
}

// Remove deletes the entry for name on the network, snapshotting first. It
// fails with ErrNotFound, without mutating, when the entry is absent.
func (s *Store) Remove(network Network, name string) (string, error) {
	doc, err := s.load(network)
	if err != nil {
		return "", err
	}
	if _, ok := doc.Entries[name]; !ok {
		return "", fmt.Errorf("%s on %s: %w", name, network, ErrNotFound)
	}

	updated := NewDocument(network)
	for k, v := range doc.Entries {
		if k != name {
			updated.Entries[k] = v
		}
	}

	backupID, err := s.snapshotThenWrite(doc, updated)
	if err != nil {
		return backupID, err
	}

	s.lggr.Infow("Registry entry removed", "network", network, "name", name, "backup", backupID)

	return backupID, nil
}

// Validate checks every entry's identifier against the network grammar. It
// never mutates.
func (s *Store) Validate(network Network) (ValidationResult, error) {
	doc, err := s.load(network)
	if err != nil {
		return ValidationResult{}, err
	}

	result := ValidationResult{Valid: true}
	it := doc.sorted().Iterator()
	for it.Next() {
		name := it.Key().(string)
		if _, err := NormalizeIdentifier(network, it.Value().(string)); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	return result, nil
}

// Merge deep-merges other into the network's registry document, with other's
// entries taking precedence on name collision. All incoming identifiers are
// validated before anything is mutated; a snapshot is taken first.
func (s *Store) Merge(network Network, other Document) (string, error) {
	incoming := make(map[string]string, len(other.Entries))
	for name, id := range other.Entries {
		if err := validateName(name); err != nil {
			return "", err
		}
		normalized, err := NormalizeIdentifier(network, id)
		if err != nil {
			return "", fmt.Errorf("merge entry %s: %w", name, err)
		}
		incoming[name] = normalized
	}

	doc, err := s.load(network)
	if err != nil {
		return "", err
	}

	updated := NewDocument(network)
	for k, v := range doc.Entries {
		updated.Entries[k] = v
	}
	for k, v := range incoming {
		updated.Entries[k] = v
	}

	backupID, err := s.snapshotThenWrite(doc, updated)
	if err != nil {
		return backupID, err
	}

	s.lggr.Infow("Registry merged",
		"network", network, "entries", len(incoming), "backup", backupID)

	return backupID, nil
}

// Restore fully replaces the network's registry document with the contents of
// the backup. The current state is itself snapshotted first, so a restore is
// undoable.
func (s *Store) Restore(network Network, backupID string) (string, error) {
	contents, err := s.Backups(network).Read(backupID)
	if err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			return "", fmt.Errorf("backup %s: %w", backupID, ErrNotFound)
		}

		return "", err
	}

	var restored Document
	if err := json.Unmarshal(contents, &restored); err != nil {
		return "", fmt.Errorf("backup %s is not a registry document: %w", backupID, err)
	}
	if restored.Entries == nil {
		restored.Entries = map[string]string{}
	}
	restored.Network = network

	doc, err := s.load(network)
	if err != nil {
		return "", err
	}

	preRestoreID, err := s.snapshotThenWrite(doc, restored)
	if err != nil {
		return preRestoreID, err
	}

	s.lggr.Infow("Registry restored",
		"network", network, "from", backupID, "pre_restore_backup", preRestoreID)

	return preRestoreID, nil
}

// LastBackupID returns the most recent backup id for the network, or "" when
// none exists. Surfaced on failures so a human can run a restore without
// re-deriving the id.
func (s *Store) LastBackupID(network Network) string {
	return s.Backups(network).LatestID()
}
