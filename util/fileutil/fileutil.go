package fileutil

import (
	"os"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"
)

// Exists returns whether the file or directory at path exists. Errors other
// than ErrNotExist (e.g. permission errors on a parent directory) are
// returned, because in that case we can't tell whether the path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.WithStack(err)
}

// IsRegularFile returns whether path is a regular file after following
// symlinks.
func IsRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return info.Mode().IsRegular(), nil
}

// CopyDereferenced copies the file at src to dst, fully resolving any
// symlink chain, so that dst is an independent regular file containing the
// bytes of the final link target.
func CopyDereferenced(src, dst string) error {
	err := copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Deep
		},
	})
	if err != nil {
		return errors.WithMessagef(err, "Failed to copy %s to %s", src, dst)
	}
	return nil
}
