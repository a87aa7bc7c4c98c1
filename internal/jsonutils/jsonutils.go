package jsonutils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mintworks/releasekit/internal/fileutils"
)

// WriteFile marshals data into pretty JSON and writes it atomically at path.
func WriteFile(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return fileutils.WriteFileAtomic(path, b, 0600)
}

// ReadFile reads a JSON file at path, instantiates and unmarshals it into T.
func ReadFile[T any](path string) (T, error) {
	var v T

	f, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err = json.Unmarshal(f, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal JSON at path %s: %w", path, err)
	}

	return v, nil
}
