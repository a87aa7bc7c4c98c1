// Package workspace defines the on-disk layout for a release coordination
// workspace. All persisted documents (version manifest, per-network registries,
// per-environment configuration, backups and deployment reports) live under a
// single root directory owned by the invoking process.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mintworks/releasekit/internal/fileutils"
)

const (
	// Directory names under the workspace root.
	RegistryDirName = "registry"
	ConfigDirName   = "config"
	BackupsDirName  = "backups"
	ReportsDirName  = "reports"

	// File names under the workspace root.
	VersionsFileName   = "versions.json"
	ChangelogFileName  = "changelog.md"
	ToolchainsFileName = "toolchains.yaml"
)

// Workspace represents the root directory holding all release coordination
// state for one product. It only computes paths; document IO belongs to the
// subsystem owning each document.
type Workspace struct {
	rootPath string
}

// New creates a Workspace rooted at rootPath.
func New(rootPath string) Workspace {
	return Workspace{rootPath: rootPath}
}

// Load returns a Workspace for rootPath, failing if the directory does not
// exist.
func Load(rootPath string) (Workspace, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return Workspace{}, fmt.Errorf("workspace not found at %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		return Workspace{}, fmt.Errorf("workspace path %s is not a directory", rootPath)
	}

	return New(rootPath), nil
}

// RootPath returns the workspace root directory.
func (w Workspace) RootPath() string { return w.rootPath }

func (w Workspace) String() string { return w.rootPath }

// VersionsFilePath returns the path to the version manifest document.
func (w Workspace) VersionsFilePath() string {
	return filepath.Join(w.rootPath, VersionsFileName)
}

// ChangelogFilePath returns the path to the changelog appended to on version
// bumps.
func (w Workspace) ChangelogFilePath() string {
	return filepath.Join(w.rootPath, ChangelogFileName)
}

// ToolchainsFilePath returns the path to the per-component toolchain command
// configuration.
func (w Workspace) ToolchainsFilePath() string {
	return filepath.Join(w.rootPath, ToolchainsFileName)
}

// RegistryDirPath returns the directory containing the per-network registry
// documents.
func (w Workspace) RegistryDirPath() string {
	return filepath.Join(w.rootPath, RegistryDirName)
}

// RegistryFilePath returns the path to the registry document for a network.
func (w Workspace) RegistryFilePath(network string) string {
	return filepath.Join(w.RegistryDirPath(), network+".json")
}

// ConfigDirPath returns the directory containing the per-environment
// configuration documents.
func (w Workspace) ConfigDirPath() string {
	return filepath.Join(w.rootPath, ConfigDirName)
}

// ConfigFilePath returns the path to the configuration document for an
// environment.
func (w Workspace) ConfigFilePath(env string) string {
	return filepath.Join(w.ConfigDirPath(), env+".yaml")
}

// BackupsDirPath returns the backup namespace for a subsystem kind and scope,
// e.g. ("registry", "test") or ("config", "prod"). Each subsystem owns its own
// namespace exclusively.
func (w Workspace) BackupsDirPath(kind, scope string) string {
	return filepath.Join(w.rootPath, BackupsDirName, kind, scope)
}

// ReportsDirPath returns the directory holding terminal deployment run reports.
func (w Workspace) ReportsDirPath() string {
	return filepath.Join(w.rootPath, ReportsDirName)
}

// ReportFilePath returns the path to the report artifact for a deployment run.
func (w Workspace) ReportFilePath(runID string) string {
	return filepath.Join(w.ReportsDirPath(), runID+".json")
}

// Init scaffolds the workspace directory structure. It is idempotent and never
// touches existing documents.
func (w Workspace) Init() error {
	for _, dir := range []string{
		w.RegistryDirPath(),
		w.ConfigDirPath(),
		filepath.Join(w.rootPath, BackupsDirName),
		w.ReportsDirPath(),
	} {
		if err := fileutils.MkdirAllGitKeep(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
