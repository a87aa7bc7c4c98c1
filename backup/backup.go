// Package backup implements the timestamped snapshot store used by the
// registry and config subsystems. Every mutating operation on a persisted
// document snapshots the full current document here before the mutation
// becomes visible, so any history of N mutations is reconstructible by walking
// backups in reverse.
//
// Backups are immutable once created. Each owning subsystem constructs its own
// Store rooted at a dedicated namespace; stores are never shared.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/mintworks/releasekit/internal/fileutils"
)

// ErrNotFound is returned when a backup id does not exist in the store.
var ErrNotFound = errors.New("backup not found")

// Backup describes a stored snapshot. Contents are loaded separately via Read.
type Backup struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists immutable snapshots under a single directory. IDs are ksuids
// issued by a process-wide monotonic generator, so ids sort lexicographically
// in creation order and the newest backup is always the last id, even when
// several snapshots land within one wall-clock second.
type Store struct {
	dir string
	ext string
}

var (
	idMu   sync.Mutex
	lastID ksuid.KSUID
)

// newID returns a ksuid sorting strictly after every id previously issued by
// this process. A ksuid's timestamp has second resolution and the rest is
// random, so two ids drawn within the same second are otherwise unordered;
// when a fresh draw does not sort after the previous id, the previous id is
// incremented instead.
func newID() ksuid.KSUID {
	idMu.Lock()
	defer idMu.Unlock()

	id := ksuid.New()
	if ksuid.Compare(id, lastID) <= 0 {
		id = lastID.Next()
	}
	lastID = id

	return id
}

// NewStore creates a Store writing snapshots with the given file extension
// (without the leading dot) under dir. The directory is created on first use.
func NewStore(dir, ext string) *Store {
	return &Store{dir: dir, ext: ext}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Create writes contents as a new immutable snapshot and returns its id.
// The snapshot file is fsynced before Create returns, so a caller may rely on
// the backup being durable before applying the corresponding mutation.
func (s *Store) Create(contents []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir %s: %w", s.dir, err)
	}

	id := newID().String()
	if err := fileutils.WriteFileAtomic(s.path(id), contents, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", id, err)
	}

	return id, nil
}

// Read returns the contents of the snapshot with the given id.
func (s *Store) Read(id string) ([]byte, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup %s: %w", id, ErrNotFound)
		}

		return nil, err
	}

	return b, nil
}

// List returns all backups in the store ordered oldest first.
func (s *Store) List() ([]Backup, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	backups := make([]Backup, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "."+s.ext) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), "."+s.ext)
		kid, err := ksuid.Parse(id)
		if err != nil {
			// Foreign files in the namespace are ignored rather than failing
			// the whole listing.
			continue
		}

		backups = append(backups, Backup{ID: id, CreatedAt: kid.Time()})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].ID < backups[j].ID })

	return backups, nil
}

// Latest returns the most recent backup id, or ErrNotFound if the store is
// empty.
func (s *Store) Latest() (string, error) {
	backups, err := s.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNotFound
	}

	return backups[len(backups)-1].ID, nil
}

// LatestID returns the most recent backup id, or "" when the store is empty or
// unreadable. Used to annotate failures with the last-known-good backup
// without introducing a second error path.
func (s *Store) LatestID() string {
	id, err := s.Latest()
	if err != nil {
		return ""
	}

	return id
}

// DeleteOlderThan removes backups created before cutoff and returns the ids
// removed. This is the one intentionally irreversible operation in the
// subsystem; it exists to bound storage growth.
func (s *Store) DeleteOlderThan(cutoff time.Time) ([]string, error) {
	backups, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, b := range backups {
		if !b.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(s.path(b.ID)); err != nil {
			return removed, fmt.Errorf("failed to remove backup %s: %w", b.ID, err)
		}
		removed = append(removed, b.ID)
	}

	return removed, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+"."+s.ext)
}
