package version

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/mintworks/releasekit/internal/fileutils"
	"github.com/mintworks/releasekit/internal/jsonutils"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

// Manager reads and mutates the version manifest for a workspace. All writes
// are atomic; a malformed version string fails before anything is written.
type Manager struct {
	ws   workspace.Workspace
	lggr logger.Logger

	// now is swapped in tests for stable changelog entries.
	now func() time.Time
}

// NewManager creates a version Manager over the workspace.
func NewManager(ws workspace.Workspace, lggr logger.Logger) *Manager {
	return &Manager{ws: ws, lggr: logger.Named(lggr, "version"), now: time.Now}
}

// load reads the version manifest, parsing every recorded version. A missing
// manifest yields the default manifest.
func (m *Manager) load() (Manifest, map[Component]*semver.Version, error) {
	manifest, err := jsonutils.ReadFile[Manifest](m.ws.VersionsFilePath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, err
		}
		manifest = defaultManifest()
	}

	parsed := make(map[Component]*semver.Version, len(manifest))
	for c, raw := range manifest {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("recorded version %q for %s: %w", raw, c, ErrInvalidVersion)
		}
		parsed[c] = v
	}

	return manifest, parsed, nil
}

// Version returns the current recorded version for the component.
func (m *Manager) Version(component Component) (*semver.Version, error) {
	_, parsed, err := m.load()
	if err != nil {
		return nil, err
	}

	v, ok := parsed[component]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", component, ErrNotFound)
	}

	return v, nil
}

// Bump increments the component's version by kind and persists the manifest.
// Major resets minor and patch to 0; minor resets patch to 0; patch increments
// patch only. A changelog entry is appended, and a compatibility warning (not
// an error) is logged if the bump makes the components' (major, minor)
// diverge. Returns the new version.
func (m *Manager) Bump(component Component, kind BumpKind) (*semver.Version, error) {
	manifest, parsed, err := m.load()
	if err != nil {
		return nil, err
	}

	current, ok := parsed[component]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", component, ErrNotFound)
	}

	var next semver.Version
	switch kind {
	case BumpMajor:
		next = current.IncMajor()
	case BumpMinor:
		next = current.IncMinor()
	case BumpPatch:
		next = current.IncPatch()
	default:
		return nil, fmt.Errorf("bump kind %q: %w", kind, ErrInvalidVersion)
	}

	manifest[component] = next.String()
	if err := jsonutils.WriteFile(m.ws.VersionsFilePath(), manifest); err != nil {
		return nil, err
	}

	entry := fmt.Sprintf("%s bumped to %s (%s)", component, next.String(), kind)
	if err := m.appendChangelog(entry); err != nil {
		return nil, err
	}

	parsed[component] = &next
	if compat := checkCompatibility(parsed); !compat.Compatible {
		m.lggr.Warnw("Component versions are no longer compatible",
			"component", component, "version", next.String(), "per_component", compat.PerComponent)
	}

	m.lggr.Infow("Version bumped", "component", component, "kind", kind, "version", next.String())

	return &next, nil
}

// Sync force-sets every component to target. It accepts any syntactically
// valid semver, including non-monotonic jumps; a downgrade is logged as a
// warning but permitted, since sync exists to realign components after drift
// and to support emergency rollback.
func (m *Manager) Sync(target string) error {
	next, err := semver.NewVersion(target)
	if err != nil {
		return fmt.Errorf("target %q: %w", target, ErrInvalidVersion)
	}

	manifest, parsed, err := m.load()
	if err != nil {
		return err
	}

	for c, v := range parsed {
		if next.LessThan(v) {
			m.lggr.Warnw("Sync downgrades component version",
				"component", c, "from", v.String(), "to", next.String())
		}
	}

	for _, c := range Components() {
		manifest[c] = next.String()
	}
	if err := jsonutils.WriteFile(m.ws.VersionsFilePath(), manifest); err != nil {
		return err
	}

	if err := m.appendChangelog(fmt.Sprintf("all components synced to %s", next.String())); err != nil {
		return err
	}

	m.lggr.Infow("Versions synced", "version", next.String())

	return nil
}

// CheckCompatibility evaluates whether all components share an identical
// (major, minor) pair. It is a pure read and never mutates.
func (m *Manager) CheckCompatibility() (CompatibilityResult, error) {
	_, parsed, err := m.load()
	if err != nil {
		return CompatibilityResult{}, err
	}

	return checkCompatibility(parsed), nil
}

// appendChangelog appends a dated entry to the workspace changelog.
func (m *Manager) appendChangelog(entry string) error {
	path := m.ws.ChangelogFilePath()

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	line := fmt.Sprintf("- %s: %s\n", m.now().UTC().Format("2006-01-02"), entry)

	return fileutils.WriteFileAtomic(path, append(existing, line...), 0o644)
}
