package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupWorkDir creates a temporary working directory holding the given files.
// Keys are slash-separated locations relative to the directory; parents are created as needed.
// It fails the test immediately on error.
func SetupWorkDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for location, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(location))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create parent of %s", location)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", location)
	}
	return dir
}

// ReadFile returns the content of a file in dir, failing the test when it cannot be read.
func ReadFile(t *testing.T, dir, location string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(location)))
	require.NoError(t, err, "Failed to read %s", location)
	return string(data)
}
