package bundler

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/internal/exclusion"
	"portapack.dev/portapack/internal/ldcache"
	"portapack.dev/portapack/internal/ldd"
	"portapack.dev/portapack/internal/libsearch"
	"portapack.dev/portapack/internal/staging"
	"portapack.dev/portapack/pkg/log"
	"portapack.dev/portapack/util/envutil"
	"portapack.dev/portapack/util/fileutil"
)

type Options struct {
	// Binary is the target binary whose dependencies are bundled.
	Binary string
	// StagingDir is deleted and recreated at the start of every run.
	StagingDir string
	// DynamicLibs are library names the target loads at runtime via
	// dlopen; they are resolved by name since the link scan cannot see
	// them.
	DynamicLibs []string
	// LibGlobs are glob patterns for additional best-effort libraries.
	LibGlobs []string
	// Packager is the packaging command Pack invokes; empty skips
	// packaging.
	Packager string
	// PackagerEnv are KEY=VALUE entries appended to the packaging
	// command's environment, e.g. to redirect where the packaged
	// application looks for its vendored files.
	PackagerEnv []string

	// LddPath and LdconfigPath override the host tools, for tests.
	LddPath      string
	LdconfigPath string
	// SearchRoots override the named-library search directories, for
	// tests.
	SearchRoots []string
}

func (opts *Options) Validate() error {
	if opts.Binary == "" {
		return errors.New("Binary is not set")
	}
	exists, err := fileutil.Exists(opts.Binary)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("Target binary %s does not exist", opts.Binary)
	}
	if opts.StagingDir == "" {
		return errors.New("StagingDir is not set")
	}

	if opts.LddPath == "" {
		opts.LddPath = "ldd"
	}
	if opts.LdconfigPath == "" {
		opts.LdconfigPath = "ldconfig"
	}

	return nil
}

// Bundler discovers, filters and stages the shared libraries the target
// binary needs at runtime, and renders the result into packaging
// directives. All work happens sequentially within one build run; the
// registry cache is owned by the bundler and rebuilt fresh on the next run.
type Bundler struct {
	*Options

	scanner  *ldd.Scanner
	resolver *libsearch.Resolver
	stager   *staging.Stager
}

func NewBundler(opts *Options) (*Bundler, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	cache := ldcache.NewCache()
	cache.LdconfigPath = opts.LdconfigPath

	scanner := ldd.NewScanner(exclusion.Default())
	scanner.LddPath = opts.LddPath

	return &Bundler{
		Options:  opts,
		scanner:  scanner,
		resolver: libsearch.NewResolver(cache, opts.SearchRoots...),
		stager:   staging.NewStager(opts.StagingDir),
	}, nil
}

// Bundle runs the discovery and staging pipeline and returns the manifest
// of bundling directives, sorted by staged filename.
//
// Failures to run the introspection tool abort the build; failures to
// resolve or stage individual libraries are logged as warnings and the
// build continues, since optional libraries are expected to be missing on
// some build hosts.
func (b *Bundler) Bundle() ([]staging.Directive, error) {
	err := b.stager.Reset()
	if err != nil {
		return nil, err
	}

	deps, err := b.scanner.Scan(b.Binary)
	if err != nil {
		return nil, err
	}
	log.Infof("Found %d link dependencies of %s", len(deps), b.Binary)

	for _, dep := range deps {
		err = b.stager.Stage(dep)
		if err != nil {
			log.Warnf("Failed to stage %s: %v", dep, err)
		}
	}

	for _, name := range b.DynamicLibs {
		path, ok := b.resolver.Resolve(name)
		if !ok {
			// Not every optional capability library is present on every
			// build host.
			log.Warnf("Dynamic library not found: %s", name)
			continue
		}
		log.Debugf("Staging %s from %s", name, path)
		err = b.stager.Stage(path)
		if err != nil {
			log.Warnf("Failed to stage %s: %v", path, err)
		}
	}

	for _, pattern := range b.LibGlobs {
		for _, path := range b.resolver.ResolveGlob(pattern) {
			err = b.stager.Stage(path)
			if err != nil {
				log.Warnf("Failed to stage %s: %v", path, err)
			}
		}
	}

	directives, err := staging.Manifest(b.stager.Dir())
	if err != nil {
		return nil, err
	}
	log.Successf("Staged %d libraries in %s", len(directives), b.stager.Dir())

	return directives, nil
}

// PackArgs renders the manifest into packaging-tool arguments, one
// "--add-binary source:target" pair per staged file.
func PackArgs(directives []staging.Directive) []string {
	var args []string
	for _, directive := range directives {
		args = append(args, "--add-binary", directive.SourcePath+":"+directive.TargetDir)
	}
	return args
}

// Pack invokes the configured packaging command with the rendered
// directive arguments. When no packager is configured, the arguments are
// printed so they can be passed to a packaging step run elsewhere.
func (b *Bundler) Pack(directives []staging.Directive) error {
	args := PackArgs(directives)

	if b.Packager == "" {
		log.Infof("No packager configured, directive arguments:\n%s", envutil.QuotedCommand(args))
		return nil
	}

	cmd := exec.Command(b.Packager, args...)
	if len(b.PackagerEnv) > 0 {
		cmd.Env = append(os.Environ(), b.PackagerEnv...)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Debugf("Command: %s", envutil.QuotedCommandWithEnv(cmd.Args, b.PackagerEnv))

	err := cmd.Run()
	if err != nil {
		return cmdutils.WrapExecError(errors.WithStack(err), cmd)
	}
	return nil
}
