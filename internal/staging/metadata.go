package staging

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MetadataFileName is the name of the bundle metadata file written next to
// the staging directory.
const MetadataFileName = "bundle_metadata.yaml"

// Metadata describes the staged library set for consumers of the bundle,
// e.g. the packaged entry point that sets up the library path.
type Metadata struct {
	// TargetDir is the library subdirectory inside the package.
	TargetDir string `yaml:"target_dir"`
	// Libraries are the staged library filenames, sorted.
	Libraries []string `yaml:"libraries"`
}

// BuildMetadata derives the bundle metadata from a manifest.
func BuildMetadata(directives []Directive) *Metadata {
	metadata := &Metadata{TargetDir: TargetLibDir}
	for _, directive := range directives {
		metadata.Libraries = append(metadata.Libraries, filepath.Base(directive.SourcePath))
	}
	return metadata
}

// WriteToFile writes the metadata as YAML to the given path.
func (m *Metadata) WriteToFile(path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return errors.WithStack(err)
	}
	err = os.WriteFile(path, out, 0o644)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
