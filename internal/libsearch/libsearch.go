package libsearch

import (
	"io/fs"
	"path/filepath"

	"github.com/mattn/go-zglob"

	"portapack.dev/portapack/internal/ldcache"
	"portapack.dev/portapack/pkg/log"
	"portapack.dev/portapack/util/fileutil"
)

// DefaultSearchRoots are the directories searched for libraries known only
// by name. Distributions lay their libraries out differently below these
// roots (Debian uses /usr/lib/<triplet>/, Fedora /usr/lib64/, Alpine
// /usr/lib/), which is why the search is recursive.
var DefaultSearchRoots = []string{"/usr/lib", "/lib"}

// Resolver resolves a library known only by filename to a concrete path on
// the build host. It is used for libraries loaded at runtime via dlopen,
// which the link-dependency scan cannot see.
//
// The registry index is preferred over filesystem search; the recursive
// walk of the search roots is the fallback for hosts without a usable
// registry.
type Resolver struct {
	cache       *ldcache.Cache
	searchRoots []string
}

// NewResolver returns a resolver backed by the given registry cache. If no
// search roots are given, DefaultSearchRoots is used.
func NewResolver(cache *ldcache.Cache, searchRoots ...string) *Resolver {
	if len(searchRoots) == 0 {
		searchRoots = DefaultSearchRoots
	}
	return &Resolver{
		cache:       cache,
		searchRoots: searchRoots,
	}
}

// Resolve returns the path of the library with the given filename, or
// ("", false) if it exists nowhere we look. A miss is not an error: many
// dynamically loaded libraries are optional and simply absent on some
// build hosts.
func (r *Resolver) Resolve(name string) (string, bool) {
	if path, ok := r.cache.Lookup(name); ok {
		// The registry entry was verified when the cache was built, but the
		// registry can be stale, so check again.
		exists, err := fileutil.Exists(path)
		if err == nil && exists {
			return path, true
		}
		log.Debugf("Registry entry for %s is stale: %s", name, path)
	}

	for _, root := range r.searchRoots {
		if path, ok := searchRoot(root, name); ok {
			return path, ok
		}
	}

	return "", false
}

// searchRoot walks root recursively and returns the first file whose name
// matches exactly and which is a regular file after following symlinks.
// Libraries are often installed as a symlink into another package's file
// (e.g. libnssckbi.so pointing at p11-kit's trust module), and those must
// resolve like any other hit. Unreadable subtrees are skipped.
func searchRoot(root, name string) (string, bool) {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		isRegular, err := fileutil.IsRegularFile(path)
		if err != nil || !isRegular {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	return found, found != ""
}

// ResolveGlob expands a glob pattern (with ** support) to the existing
// regular files it matches. Best-effort: pattern errors and unreadable
// matches only produce debug output.
func (r *Resolver) ResolveGlob(pattern string) []string {
	matches, err := zglob.Glob(pattern)
	if err != nil {
		log.Debugf("Glob %s failed: %v", pattern, err)
		return nil
	}

	var paths []string
	for _, match := range matches {
		isRegular, err := fileutil.IsRegularFile(match)
		if err != nil {
			log.Debugf("Skipping glob match %s: %v", match, err)
			continue
		}
		if isRegular {
			paths = append(paths, match)
		}
	}
	return paths
}
