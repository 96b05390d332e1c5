package fileutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	tempDir := t.TempDir()

	exists, err := Exists(tempDir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = Exists(filepath.Join(tempDir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsRegularFile(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "libfoo.so")
	require.NoError(t, os.WriteFile(file, []byte("elf"), 0o644))

	isRegular, err := IsRegularFile(file)
	require.NoError(t, err)
	assert.True(t, isRegular)

	isRegular, err = IsRegularFile(tempDir)
	require.NoError(t, err)
	assert.False(t, isRegular)

	isRegular, err = IsRegularFile(filepath.Join(tempDir, "missing"))
	require.NoError(t, err)
	assert.False(t, isRegular)
}

func TestCopyDereferenced(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated rights on windows")
	}

	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "libfoo.so.1.0")
	require.NoError(t, os.WriteFile(target, []byte("bytes"), 0o644))
	link := filepath.Join(tempDir, "libfoo.so")
	require.NoError(t, os.Symlink(target, link))

	dst := filepath.Join(tempDir, "out", "libfoo.so")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, CopyDereferenced(link, dst))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(content))
}
