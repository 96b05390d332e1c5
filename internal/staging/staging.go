package staging

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"portapack.dev/portapack/util/fileutil"
)

// TargetLibDir is the subdirectory inside the final package where every
// staged library ends up. The packaged entry point puts it on the dynamic
// library search path at runtime.
const TargetLibDir = "lib"

// Directive describes one file to be embedded in the final package.
type Directive struct {
	// SourcePath is the staged copy of the library.
	SourcePath string
	// TargetDir is the subdirectory inside the package, always
	// TargetLibDir.
	TargetDir string
}

// Stager copies resolved libraries into a flat staging directory.
type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

func (s *Stager) Dir() string {
	return s.dir
}

// Reset deletes the staging directory with any stale state from a previous
// run and recreates it empty.
func (s *Stager) Reset() error {
	err := os.RemoveAll(s.dir)
	if err != nil {
		return errors.WithStack(err)
	}
	err = os.MkdirAll(s.dir, 0o755)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Stage copies the file at src into the staging directory under its base
// filename, fully dereferencing any symlink chain, so the staged copy is an
// independent regular file. The staging directory is created if missing.
//
// Filenames are unique within the staging directory: if two distinct source
// paths share a filename, the second copy overwrites the first. This is a
// known limitation of the flat layout, not something Stage guards against.
//
// Errors (source vanished since resolution, permissions, disk full) are
// returned per file; callers log them as warnings and continue, because one
// missing optional library should not prevent shipping a package that
// otherwise works.
func (s *Stager) Stage(src string) error {
	err := os.MkdirAll(s.dir, 0o755)
	if err != nil {
		return errors.WithStack(err)
	}

	dst := filepath.Join(s.dir, filepath.Base(src))
	return fileutil.CopyDereferenced(src, dst)
}

// Manifest lists every regular file directly inside stagingDir (staging is
// flat by construction, so there is no recursion) in sorted-by-name order
// and emits one bundling directive per file. Stable ordering keeps the
// packaging command reproducible and diffable.
func Manifest(stagingDir string) ([]Directive, error) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, errors.WithMessagef(err, "Failed to list staging directory %s", stagingDir)
	}

	// os.ReadDir returns entries sorted by filename.
	var directives []Directive
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		directives = append(directives, Directive{
			SourcePath: filepath.Join(stagingDir, entry.Name()),
			TargetDir:  TargetLibDir,
		})
	}

	return directives, nil
}
