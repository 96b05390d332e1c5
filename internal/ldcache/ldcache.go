package ldcache

import (
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/pkg/log"
)

// Cache is a name→path index over the host's ld.so registry, built from the
// output of `ldconfig -p`. It is built at most once per Cache instance; a
// build run constructs one Cache and threads it through explicitly instead
// of keeping a process-wide singleton.
//
// Building the cache is best-effort: if ldconfig is not installed or fails,
// the cache stays empty and name resolution degrades to filesystem search.
type Cache struct {
	// LdconfigPath is the registry listing tool to invoke. Defaults to
	// "ldconfig" from PATH; tests point it at a stub script.
	LdconfigPath string

	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{LdconfigPath: "ldconfig"}
}

// Lookup returns the registered path for the given library name. The path
// existed when the cache was built, but the registry can be stale, so
// callers which hand the path on should re-verify it.
func (c *Cache) Lookup(name string) (string, bool) {
	c.build()
	path, ok := c.entries[name]
	return path, ok
}

// Len returns the number of indexed libraries.
func (c *Cache) Len() int {
	c.build()
	return len(c.entries)
}

func (c *Cache) build() {
	if c.entries != nil {
		return
	}
	c.entries = map[string]string{}

	toolPath, err := exec.LookPath(c.LdconfigPath)
	if err != nil {
		// Minimal containers often lack ldconfig.
		log.Debugf("%s not found, falling back to filesystem search: %v", c.LdconfigPath, err)
		return
	}

	cmd := exec.Command(toolPath, "-p")
	out, err := cmd.Output()
	if err != nil {
		log.Debugf("Failed to list the library registry: %v", cmdutils.WrapExecError(errors.WithStack(err), cmd))
		return
	}

	c.entries = parseRegistry(string(out))
	log.Debugf("Library registry indexed %d entries", len(c.entries))
}

// registryLineRegex matches one registry entry, e.g.
//
//	libX11.so.6 (libc6,x86-64) => /lib/x86_64-linux-gnu/libX11.so.6
var registryLineRegex = regexp.MustCompile(`^(?P<name>\S+)\s+\([^)]*\)\s+=>\s+(?P<path>/\S+)$`)

// parseRegistry extracts name→path entries from `ldconfig -p` output.
// Lines which don't match the expected shape are skipped, as are entries
// whose path no longer exists (the registry can be stale). The registry
// lists preferred entries first, so the first entry for a name wins.
func parseRegistry(out string) map[string]string {
	entries := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		result := registryLineRegex.FindStringSubmatch(strings.TrimSpace(line))
		if result == nil {
			continue
		}
		name, path := result[1], result[2]
		if _, ok := entries[name]; ok {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		entries[name] = path
	}
	return entries
}
