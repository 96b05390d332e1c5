package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// MkdirTemp creates a temporary directory and registers a cleanup which
// removes it when the test finishes.
func MkdirTemp(t *testing.T, dir, pattern string) string {
	t.Helper()

	tempDir, err := os.MkdirTemp(dir, pattern)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(tempDir)
	})

	return tempDir
}

// WriteFile writes content to path with 0o644 permissions and fails the
// test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
}

// WriteExecutable writes content to path with 0o755 permissions, for stub
// tool scripts used in place of ldd/ldconfig.
func WriteExecutable(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0o755)
	require.NoError(t, err)
}
