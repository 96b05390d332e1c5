package ldd

import (
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/internal/exclusion"
)

// Scanner discovers the shared libraries a binary is linked against by
// running the host's ldd and parsing its output.
//
// ldd provides the complete list of dynamic dependencies of a dynamically
// linked file. That is, we don't have to recursively query the transitive
// dynamic dependencies.
type Scanner struct {
	// LddPath is the introspection tool to invoke. Defaults to "ldd" from
	// PATH; tests point it at a stub script.
	LddPath string

	policy *exclusion.Policy
}

func NewScanner(policy *exclusion.Policy) *Scanner {
	return &Scanner{
		LddPath: "ldd",
		policy:  policy,
	}
}

// Scan returns the deduplicated, sorted paths of all shared libraries the
// binary links against, minus the host-ABI libraries excluded by policy.
//
// A failure to run the tool is fatal: without the link dependencies the
// bundle would almost certainly fail to start on the target host, so the
// error carries the command line and captured output and is expected to
// abort the build.
func (s *Scanner) Scan(binary string) ([]string, error) {
	cmd := exec.Command(s.LddPath, binary)
	// Keep LD_PRELOAD and friends out of the resolution.
	cmd.Env = []string{}

	out, err := cmd.Output()
	if err != nil {
		return nil, cmdutils.WrapExecError(errors.WithStack(err), cmd)
	}

	return s.parse(string(out)), nil
}

// resolvedRegex captures the token following the "=>" resolution marker,
// e.g. in "libX11.so.6 => /lib/x86_64-linux-gnu/libX11.so.6 (0x00007f...)".
var resolvedRegex = regexp.MustCompile(`=>\s+(\S+)`)

func (s *Scanner) parse(out string) []string {
	set := map[string]struct{}{}

	for _, line := range strings.Split(out, "\n") {
		// Lines without "=>" are virtual libraries like linux-vdso or the
		// statically linked marker; they have nothing to bundle.
		if !strings.Contains(line, "=>") {
			continue
		}

		result := resolvedRegex.FindStringSubmatch(line)
		if result == nil {
			continue
		}
		candidate := result[1]

		// "=> not found" entries and other non-path tokens.
		if !strings.HasPrefix(candidate, "/") {
			continue
		}
		if s.policy.Excluded(candidate) {
			continue
		}

		set[candidate] = struct{}{}
	}

	paths := maps.Keys(set)
	sort.Strings(paths)
	return paths
}
