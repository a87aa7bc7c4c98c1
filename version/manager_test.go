package version

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mintworks/releasekit/internal/jsonutils"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Init())

	return NewManager(ws, logger.Test(t))
}

func Test_Manager_Version_Defaults(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	for _, c := range Components() {
		v, err := m.Version(c)
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", v.String())
	}
}

func Test_Manager_Version_UnknownComponent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Version(Component("installer"))
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Manager_Bump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		giveKind BumpKind
		want     string
	}{
		{name: "patch", giveKind: BumpPatch, want: "0.1.1"},
		{name: "minor resets patch", giveKind: BumpMinor, want: "0.2.0"},
		{name: "major resets minor and patch", giveKind: BumpMajor, want: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestManager(t)

			got, err := m.Bump(ComponentBackend, tt.giveKind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())

			// The write is visible to subsequent reads.
			v, err := m.Version(ComponentBackend)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func Test_Manager_Bump_PatchTwice(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Bump(ComponentFrontend, BumpPatch)
	require.NoError(t, err)
	v, err := m.Bump(ComponentFrontend, BumpPatch)
	require.NoError(t, err)

	// Bumping is a counter, not a set operation: two bumps, two increments.
	assert.Equal(t, "0.1.2", v.String())
	assert.Equal(t, uint64(0), v.Major())
	assert.Equal(t, uint64(1), v.Minor())
}

func Test_Manager_Bump_MajorAlwaysResets(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	require.NoError(t, m.Sync("1.7.3"))

	v, err := m.Bump(ComponentContracts, BumpMajor)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v.String())
}

func Test_Manager_Bump_EmitsCompatibilityWarning(t *testing.T) {
	t.Parallel()

	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Init())
	lggr, observed := logger.TestObserved(t, zapcore.WarnLevel)
	m := NewManager(ws, lggr)

	_, err := m.Bump(ComponentBackend, BumpMinor)
	require.NoError(t, err)

	logs := observed.FilterMessage("Component versions are no longer compatible")
	assert.Equal(t, 1, logs.Len(), "divergent minor must warn, not error")
}

func Test_Manager_Sync(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	require.NoError(t, m.Sync("1.2.0"))

	for _, c := range Components() {
		v, err := m.Version(c)
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", v.String())
	}
}

func Test_Manager_Sync_InvalidVersion(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	err := m.Sync("not-a-version")
	require.ErrorIs(t, err, ErrInvalidVersion)

	// No partial writes: the manifest still reads as defaults.
	v, err := m.Version(ComponentFrontend)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", v.String())
}

func Test_Manager_Sync_DowngradePermitted(t *testing.T) {
	t.Parallel()

	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Init())
	lggr, observed := logger.TestObserved(t, zapcore.WarnLevel)
	m := NewManager(ws, lggr)

	require.NoError(t, m.Sync("2.0.0"))
	require.NoError(t, m.Sync("1.5.0"))

	v, err := m.Version(ComponentBackend)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", v.String())

	logs := observed.FilterMessage("Sync downgrades component version")
	assert.Equal(t, len(Components()), logs.Len())
}

func Test_Manager_CheckCompatibility(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	res, err := m.CheckCompatibility()
	require.NoError(t, err)
	assert.True(t, res.Compatible)

	// frontend=1.2.0, backend=1.2.1, contracts=1.1.0: contracts' minor
	// diverges, so the system is incompatible regardless of patch drift.
	require.NoError(t, m.Sync("1.2.0"))
	_, err = m.Bump(ComponentBackend, BumpPatch)
	require.NoError(t, err)

	res, err = m.CheckCompatibility()
	require.NoError(t, err)
	assert.True(t, res.Compatible, "patch divergence alone stays compatible")

	writeManifest(t, m, Manifest{
		ComponentFrontend:  "1.2.0",
		ComponentBackend:   "1.2.1",
		ComponentContracts: "1.1.0",
	})

	res, err = m.CheckCompatibility()
	require.NoError(t, err)
	assert.False(t, res.Compatible)
	assert.Equal(t, "1.2", res.PerComponent[ComponentFrontend])
	assert.Equal(t, "1.2", res.PerComponent[ComponentBackend])
	assert.Equal(t, "1.1", res.PerComponent[ComponentContracts])

	// Sync realigns the system.
	require.NoError(t, m.Sync("1.2.0"))

	res, err = m.CheckCompatibility()
	require.NoError(t, err)
	assert.True(t, res.Compatible)
	for _, c := range Components() {
		v, err := m.Version(c)
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", v.String())
	}
}

func Test_Manager_CheckCompatibility_Permutations(t *testing.T) {
	t.Parallel()

	// Compatibility must hold for any assignment permutation of the same
	// version set.
	versions := []string{"1.2.0", "1.2.1", "1.1.0"}
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	for _, p := range perms {
		m := newTestManager(t)
		writeManifest(t, m, Manifest{
			ComponentFrontend:  versions[p[0]],
			ComponentBackend:   versions[p[1]],
			ComponentContracts: versions[p[2]],
		})

		res, err := m.CheckCompatibility()
		require.NoError(t, err)
		assert.False(t, res.Compatible, "permutation %v", p)
	}
}

func Test_Manager_Changelog(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	_, err := m.Bump(ComponentFrontend, BumpMinor)
	require.NoError(t, err)
	require.NoError(t, m.Sync("0.2.0"))

	b, err := os.ReadFile(m.ws.ChangelogFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(b), "frontend bumped to 0.2.0 (minor)")
	assert.Contains(t, string(b), "all components synced to 0.2.0")
}

// writeManifest seeds the manifest document directly, bypassing Bump/Sync.
func writeManifest(t *testing.T, m *Manager, manifest Manifest) {
	t.Helper()

	require.NoError(t, jsonutils.WriteFile(m.ws.VersionsFilePath(), manifest))
}
