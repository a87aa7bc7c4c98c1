package fileutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o600))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(contents))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Overwrite replaces the whole document.
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o600))
	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(contents))
}

func Test_WriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, WriteFileAtomic(filepath.Join(dir, "doc"), []byte("x"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc", entries[0].Name())
}

func Test_WriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "doc"), []byte("x"), 0o644)
	require.Error(t, err)
}

func Test_MkdirAllGitKeep(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, MkdirAllGitKeep(dir))

	_, err := os.Stat(filepath.Join(dir, ".gitkeep"))
	require.NoError(t, err)
}

func Test_IsOwnerOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	private := filepath.Join(dir, "private")
	require.NoError(t, os.WriteFile(private, []byte("x"), 0o600))
	ok, err := IsOwnerOnly(private)
	require.NoError(t, err)
	assert.True(t, ok)

	shared := filepath.Join(dir, "shared")
	require.NoError(t, os.WriteFile(shared, []byte("x"), 0o644))
	ok, err = IsOwnerOnly(shared)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsOwnerOnly(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
