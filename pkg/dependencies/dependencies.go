package dependencies

import (
	"bytes"
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"portapack.dev/portapack/pkg/log"
)

// MinGlibcVersion is the oldest glibc we bundle on. Older build hosts
// produce bundles linking symbols in ways we have not verified.
var MinGlibcVersion = semver.MustParse("2.17")

// glibcRegex parses the version out of the first line of `ldd --version`,
// e.g. "ldd (Ubuntu GLIBC 2.35-0ubuntu3.1) 2.35".
//
// Note: the "patch" part is optional to be lenient when the tool reports
// something like 2.35 instead of 2.35.0.
var glibcRegex = regexp.MustCompile(`(?m)^ldd \([^)]*\) (?P<version>\d+\.\d+(\.\d+)?)`)

// Checks verifies the external tools the bundler invokes before the build
// starts, so a misconfigured build host fails fast instead of halfway
// through staging.
type Checks struct {
	LddPath      string
	LdconfigPath string
	// Packager is the packaging command, empty when packaging is skipped.
	Packager string
}

// Run performs the preflight checks. A missing introspection tool is fatal;
// everything else only degrades the build and is logged as a warning.
func (c *Checks) Run() error {
	lddPath, err := exec.LookPath(c.LddPath)
	if err != nil {
		return errors.WithMessagef(err, "%s is required to discover link dependencies", c.LddPath)
	}

	version, err := GlibcVersion(lddPath)
	if err != nil {
		log.Debugf("Could not determine glibc version: %v", err)
	} else {
		log.Debugf("Found glibc version %s via %s", version, lddPath)
		if version.LessThan(MinGlibcVersion) {
			log.Warnf("glibc %s is older than %s, the bundle may not run on newer hosts", version, MinGlibcVersion)
		}
	}

	_, err = exec.LookPath(c.LdconfigPath)
	if err != nil {
		log.Warnf("%s not found, resolution of dynamically loaded libraries falls back to filesystem search", c.LdconfigPath)
	}

	if c.Packager != "" {
		_, err = exec.LookPath(c.Packager)
		if err != nil {
			log.Warnf("Packaging command %s not found in PATH", c.Packager)
		}
	}

	return nil
}

// GlibcVersion parses the glibc version from `ldd --version`.
func GlibcVersion(lddPath string) (*semver.Version, error) {
	var output bytes.Buffer
	cmd := exec.Command(lddPath, "--version")
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return extractVersion(output.String())
}

func extractVersion(output string) (*semver.Version, error) {
	result := glibcRegex.FindStringSubmatch(output)
	if len(result) <= 1 {
		return nil, errors.New("no glibc version found in ldd output")
	}

	version, err := semver.NewVersion(result[1])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return version, nil
}
