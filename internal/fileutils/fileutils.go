package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path with write-temp-then-rename semantics.
// The temp file is fsynced before the rename, and the parent directory after
// it, so a crash never leaves a half-written document observable at path and
// the rename itself is durable once WriteFileAtomic returns. The file is
// created with perm.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path.
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if _, err = tmp.Write(data); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", tmpName, err))
	}
	if err = tmp.Chmod(perm); err != nil {
		return fail(fmt.Errorf("failed to chmod %s: %w", tmpName, err))
	}
	if err = tmp.Sync(); err != nil {
		return fail(fmt.Errorf("failed to sync %s: %w", tmpName, err))
	}
	if err = tmp.Close(); err != nil {
		return fail(fmt.Errorf("failed to close %s: %w", tmpName, err))
	}

	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}

	// The rename only becomes durable once the directory entry is flushed.
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	if err = d.Sync(); err != nil {
		d.Close()

		return fmt.Errorf("failed to sync %s: %w", dir, err)
	}

	return d.Close()
}

// WriteFileGitKeep writes a .gitkeep file to the path.
func WriteFileGitKeep(path string) error {
	file, err := os.Create(filepath.Join(path, ".gitkeep"))
	if err != nil {
		return err
	}

	defer file.Close()

	return nil
}

// MkdirAllGitKeep creates a directory with a .gitkeep file. This will create all parent
// directories if they do not already exist.
func MkdirAllGitKeep(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return err
	}

	return WriteFileGitKeep(path)
}

// IsOwnerOnly reports whether path has no group or world permission bits set.
func IsOwnerOnly(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	return info.Mode().Perm()&0o077 == 0, nil
}
