package ldd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/internal/exclusion"
	"portapack.dev/portapack/internal/testutil"
)

func TestScanner_Parse(t *testing.T) {
	scanner := NewScanner(exclusion.Default())

	out := `	linux-vdso.so.1 (0x00007fff2d5fe000)
	libX11.so.6 => /lib/x86_64-linux-gnu/libX11.so.6 (0x00007f8a2d200000)
	libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f8a2cfd8000)
	libmissing.so.2 => not found
	/lib64/ld-linux-x86-64.so.2 (0x00007f8a2d5c0000)
`

	assert.Equal(t, []string{"/lib/x86_64-linux-gnu/libX11.so.6"}, scanner.parse(out))
}

func TestScanner_ParseAppliesExclusionList(t *testing.T) {
	scanner := NewScanner(exclusion.New("libc.so"))

	out := "\tlibfoo.so.1 => /usr/lib/libfoo.so.1 (0x7f0000000000)\n" +
		"\tlibc.so.6 => /lib/libc.so.6 (0x7f0000200000)\n"

	assert.Equal(t, []string{"/usr/lib/libfoo.so.1"}, scanner.parse(out))
}

func TestScanner_ParseNoResolutionMarker(t *testing.T) {
	scanner := NewScanner(exclusion.Default())

	out := "\tlinux-vdso.so.1 (0x00007fff2d5fe000)\n"

	assert.Empty(t, scanner.parse(out))
}

func TestScanner_ParseDeduplicatesAndSorts(t *testing.T) {
	scanner := NewScanner(exclusion.Default())

	out := "\tlibz.so.1 => /usr/lib/libz.so.1 (0x1)\n" +
		"\tlibX11.so.6 => /usr/lib/libX11.so.6 (0x2)\n" +
		"\tlibz.so.1 => /usr/lib/libz.so.1 (0x3)\n"

	assert.Equal(t, []string{"/usr/lib/libX11.so.6", "/usr/lib/libz.so.1"}, scanner.parse(out))
}

func TestScanner_Scan(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	tempDir := testutil.MkdirTemp(t, "", "ldd-test-")
	stub := filepath.Join(tempDir, "ldd")
	testutil.WriteExecutable(t, stub, fmt.Sprintf("#!/bin/sh\n"+
		"printf '\\tlinux-vdso.so.1 (0x1)\\n'\n"+
		"printf '\\tlibfoo.so.1 => %s/libfoo.so.1 (0x2)\\n'\n"+
		"printf '\\tlibc.so.6 => /lib/libc.so.6 (0x3)\\n'\n", tempDir))

	scanner := NewScanner(exclusion.Default())
	scanner.LddPath = stub

	paths, err := scanner.Scan("/some/binary")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "libfoo.so.1")}, paths)
}

func TestScanner_ScanToolFailureIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tool scripts require a POSIX shell")
	}

	tempDir := testutil.MkdirTemp(t, "", "ldd-test-")
	stub := filepath.Join(tempDir, "ldd")
	testutil.WriteExecutable(t, stub, "#!/bin/sh\necho 'no such file' >&2\nexit 1\n")

	scanner := NewScanner(exclusion.Default())
	scanner.LddPath = stub

	_, err := scanner.Scan("/does/not/exist")
	require.Error(t, err)

	var execErr *cmdutils.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, err.Error(), "no such file")
}

func TestScanner_ScanToolMissingIsFatal(t *testing.T) {
	scanner := NewScanner(exclusion.Default())
	scanner.LddPath = "/nonexistent/ldd"

	_, err := scanner.Scan("/some/binary")
	require.Error(t, err)
}
