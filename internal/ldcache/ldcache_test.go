package ldcache

import (
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portapack.dev/portapack/internal/testutil"
)

func TestParseRegistry(t *testing.T) {
	tempDir := testutil.MkdirTemp(t, "", "ldcache-test-")
	existing := filepath.Join(tempDir, "libX11.so.6")
	testutil.WriteFile(t, existing, "elf")

	out := fmt.Sprintf(`	libX11.so.6 (libc6,x86-64) => %s
	libstale.so.1 (libc6,x86-64) => %s
	libodd.so.1 => /no/arch/field
	garbage line
`, existing, filepath.Join(tempDir, "does-not-exist.so"))

	entries := parseRegistry(out)

	require.Len(t, entries, 1)
	assert.Equal(t, existing, entries["libX11.so.6"])
}

// The registry lists preferred entries first, so a second entry for the
// same name must not replace the first.
func TestParseRegistry_FirstEntryWins(t *testing.T) {
	tempDir := testutil.MkdirTemp(t, "", "ldcache-test-")
	first := filepath.Join(tempDir, "first.so")
	second := filepath.Join(tempDir, "second.so")
	testutil.WriteFile(t, first, "elf")
	testutil.WriteFile(t, second, "elf")

	out := fmt.Sprintf("\tlibfoo.so.1 (libc6,x86-64) => %s\n\tlibfoo.so.1 (libc6) => %s\n", first, second)

	entries := parseRegistry(out)
	assert.Equal(t, first, entries["libfoo.so.1"])
}

func TestCache_ToolUnavailable(t *testing.T) {
	cache := NewCache()
	cache.LdconfigPath = "/nonexistent/ldconfig"

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Lookup("libnss3.so")
	assert.False(t, ok)
}

func TestCache_StubTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	tempDir := testutil.MkdirTemp(t, "", "ldcache-test-")
	lib := filepath.Join(tempDir, "libnss3.so")
	testutil.WriteFile(t, lib, "elf")

	stub := filepath.Join(tempDir, "ldconfig")
	testutil.WriteExecutable(t, stub, fmt.Sprintf("#!/bin/sh\nprintf '\\tlibnss3.so (libc6,x86-64) => %s\\n'\n", lib))

	cache := NewCache()
	cache.LdconfigPath = stub

	path, ok := cache.Lookup("libnss3.so")
	require.True(t, ok)
	assert.Equal(t, lib, path)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_StubToolFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	tempDir := testutil.MkdirTemp(t, "", "ldcache-test-")
	stub := filepath.Join(tempDir, "ldconfig")
	testutil.WriteExecutable(t, stub, "#!/bin/sh\nexit 1\n")

	cache := NewCache()
	cache.LdconfigPath = stub

	assert.Equal(t, 0, cache.Len())
}
