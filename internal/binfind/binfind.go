package binfind

import (
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"portapack.dev/portapack/util/fileutil"
)

// Find locates the target binary by searching recursively below root for an
// executable regular file with the given name. Vendored application trees
// bury their binaries several directories deep (e.g.
// .local-browsers/chromium-*/chrome-linux/headless_shell), so the search
// has to be recursive.
//
// Not finding the binary is fatal for the build: without the target binary
// there is nothing to bundle.
func Find(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		// Follow symlinks: browser trees link the launch binary to the
		// real one in a versioned directory.
		isRegular, err := fileutil.IsRegularFile(path)
		if err != nil || !isRegular {
			return nil
		}
		if unix.Access(path, unix.X_OK) != nil {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	if found == "" {
		return "", errors.Errorf("Could not locate executable %q below %s", name, root)
	}
	return found, nil
}
