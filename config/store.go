package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mintworks/releasekit/backup"
	"github.com/mintworks/releasekit/internal/fileutils"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

// envVarPrefix is the prefix for read-only environment variable overrides,
// e.g. RELEASEKIT_CONTRACTS_NETWORK overrides contracts.network.
const envVarPrefix = "RELEASEKIT"

// Store provides the configuration lifecycle operations for a workspace. Like
// the registry it assumes a single orchestrating process per environment; no
// in-process locking is provided.
type Store struct {
	ws   workspace.Workspace
	lggr logger.Logger

	now func() time.Time
}

// NewStore creates a config Store over the workspace.
func NewStore(ws workspace.Workspace, lggr logger.Logger) *Store {
	return &Store{ws: ws, lggr: logger.Named(lggr, "config"), now: time.Now}
}

// Backups returns the backup store owning the environment's config snapshots.
func (s *Store) Backups(env Environment) *backup.Store {
	return backup.NewStore(s.ws.BackupsDirPath("config", env.String()), "yaml")
}

// Path returns the path of the environment's configuration document.
func (s *Store) Path(env Environment) string {
	return s.ws.ConfigFilePath(env.String())
}

// Exists reports whether a configuration document exists for the environment.
func (s *Store) Exists(env Environment) bool {
	_, err := os.Stat(s.Path(env))

	return err == nil
}

// Load reads the environment's configuration document, applying RELEASEKIT_*
// environment variable overrides read-only. A missing document fails with
// ErrNotFound.
func (s *Store) Load(env Environment) (Document, error) {
	v := viper.New()
	v.SetConfigFile(s.Path(env))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("no config document for %s: %w", env, ErrNotFound)
		}

		return Document{}, fmt.Errorf("failed to read config for %s: %w", env, err)
	}

	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return Document{}, fmt.Errorf("config for %s: %v: %w", env, err, ErrInvalidConfig)
	}

	return doc, nil
}

// write persists doc atomically with owner-only permissions.
func (s *Store) write(env Environment, doc Document) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	return fileutils.WriteFileAtomic(s.Path(env), b, 0600)
}

// Generate produces a full configuration document with environment-specific
// defaults and writes it, overwriting any prior document after taking a
// backup. First generation skips the backup since there is nothing to
// preserve. Returns the generated document and the backup id, if one was
// taken.
func (s *Store) Generate(env Environment) (Document, string, error) {
	doc := Defaults(env)

	var backupID string
	if s.Exists(env) {
		var err error
		backupID, err = s.Backup(env)
		if err != nil {
			return Document{}, "", err
		}
	}

	if err := s.write(env, doc); err != nil {
		return Document{}, backupID, err
	}

	s.lggr.Infow("Config generated", "environment", env, "backup", backupID)

	return doc, backupID, nil
}

// Set loads the document, applies mutate, and writes the result back after
// taking a backup.
func (s *Store) Set(env Environment, mutate func(*Document)) (string, error) {
	doc, err := s.Load(env)
	if err != nil {
		return "", err
	}

	backupID, err := s.Backup(env)
	if err != nil {
		return "", err
	}

	mutate(&doc)
	if err := s.write(env, doc); err != nil {
		return backupID, err
	}

	s.lggr.Infow("Config updated", "environment", env, "backup", backupID)

	return backupID, nil
}

// Backup snapshots the environment's current document and returns the backup
// id. The snapshot is durable before Backup returns.
func (s *Store) Backup(env Environment) (string, error) {
	contents, err := os.ReadFile(s.Path(env))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no config document for %s: %w", env, ErrNotFound)
		}

		return "", err
	}

	id, err := s.Backups(env).Create(contents)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot config for %s: %w", env, err)
	}

	return id, nil
}

// Restore fully replaces the environment's document with the backup's
// contents. The current document, if present, is snapshotted first so the
// restore is itself undoable. Returns the pre-restore backup id, if taken.
func (s *Store) Restore(env Environment, backupID string) (string, error) {
	contents, err := s.Backups(env).Read(backupID)
	if err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			return "", fmt.Errorf("backup %s: %w", backupID, ErrNotFound)
		}

		return "", err
	}

	var restored Document
	if err := yaml.Unmarshal(contents, &restored); err != nil {
		return "", fmt.Errorf("backup %s is not a config document: %v: %w", backupID, err, ErrInvalidConfig)
	}

	var preRestoreID string
	if s.Exists(env) {
		preRestoreID, err = s.Backup(env)
		if err != nil {
			return "", err
		}
	}

	if err := fileutils.WriteFileAtomic(s.Path(env), contents, 0600); err != nil {
		return preRestoreID, err
	}

	s.lggr.Infow("Config restored",
		"environment", env, "from", backupID, "pre_restore_backup", preRestoreID)

	return preRestoreID, nil
}

// Cleanup deletes backups older than retentionDays across all environments.
// This is intentionally not itself backed up; it exists to bound storage
// growth and is irreversible by design.
func (s *Store) Cleanup(retentionDays int) (map[Environment][]string, error) {
	if retentionDays < 0 {
		return nil, fmt.Errorf("retention days must not be negative: %w", ErrInvalidConfig)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	removed := make(map[Environment][]string)
	for _, env := range Environments() {
		ids, err := s.Backups(env).DeleteOlderThan(cutoff)
		if err != nil {
			return removed, err
		}
		if len(ids) > 0 {
			removed[env] = ids
		}
	}

	s.lggr.Infow("Config backups cleaned up", "retention_days", retentionDays, "removed", removed)

	return removed, nil
}

// LastBackupID returns the most recent backup id for the environment, or ""
// when none exists.
func (s *Store) LastBackupID(env Environment) string {
	return s.Backups(env).LatestID()
}
