package bundle

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"portapack.dev/portapack/internal/binfind"
	"portapack.dev/portapack/internal/bundler"
	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/internal/config"
	"portapack.dev/portapack/internal/staging"
	"portapack.dev/portapack/pkg/dependencies"
	"portapack.dev/portapack/pkg/log"
)

type options struct {
	ProjectDir  string   `mapstructure:"project-dir"`
	Binary      string   `mapstructure:"binary"`
	BinaryName  string   `mapstructure:"binary-name"`
	SearchRoot  string   `mapstructure:"search-root"`
	StagingDir  string   `mapstructure:"staging-dir"`
	DynamicLibs []string `mapstructure:"dynamic-libs"`
	LibGlobs    []string `mapstructure:"lib-globs"`
	Packager    string   `mapstructure:"packager"`
	PackagerEnv []string `mapstructure:"packager-env"`
}

func (opts *options) validate() error {
	if opts.Binary == "" && opts.BinaryName == "" {
		msg := "Either \"binary\" or \"binary-name\" must be set"
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}
	if opts.Binary == "" && opts.SearchRoot == "" {
		msg := "\"search-root\" must be set when the binary is given by name"
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}
	return nil
}

func New() *cobra.Command {
	var bindFlags func()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Discover, stage and package the target binary's libraries",
		Long: `This command runs the full bundling pipeline: it locates the target
binary, discovers its link dependencies via the host's ldd, resolves
configured dynamically loaded libraries by name (library registry
first, filesystem search second), stages deduplicated copies into the
staging directory and hands one bundling directive per staged file to
the packaging command.

Without a configured packager the rendered directive arguments are
printed instead, so they can be passed to a packaging step run
elsewhere.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind viper keys to flags. We can't do this in the New
			// function, because that would re-bind viper keys which
			// were bound to the flags of other commands before.
			bindFlags()
			err := config.FindAndParseProjectConfig(opts)
			if err != nil {
				return err
			}
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	// Note: If a flag should be configurable via portapack.yaml and
	//       PORTAPACK_* environment variables as well, bind it to viper
	//       in the PreRun function.
	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddProjectDirFlag,
		cmdutils.AddBinaryFlag,
		cmdutils.AddBinaryNameFlag,
		cmdutils.AddSearchRootFlag,
		cmdutils.AddStagingDirFlag,
		cmdutils.AddDynamicLibFlag,
		cmdutils.AddLibGlobFlag,
		cmdutils.AddPackagerFlag,
		cmdutils.AddPackagerEnvFlag,
	)

	return cmd
}

func run(opts *options) error {
	checks := &dependencies.Checks{
		LddPath:      "ldd",
		LdconfigPath: "ldconfig",
		Packager:     opts.Packager,
	}
	err := checks.Run()
	if err != nil {
		return err
	}

	binary := opts.Binary
	if binary == "" {
		log.Infof("Locating %s below %s", opts.BinaryName, opts.SearchRoot)
		binary, err = binfind.Find(opts.SearchRoot, opts.BinaryName)
		if err != nil {
			return err
		}
		log.Infof("Using binary: %s", binary)
	}

	stagingDir := opts.StagingDir
	if !filepath.IsAbs(stagingDir) {
		stagingDir = filepath.Join(opts.ProjectDir, stagingDir)
	}

	b, err := bundler.NewBundler(&bundler.Options{
		Binary:      binary,
		StagingDir:  stagingDir,
		DynamicLibs: opts.DynamicLibs,
		LibGlobs:    opts.LibGlobs,
		Packager:    opts.Packager,
		PackagerEnv: opts.PackagerEnv,
	})
	if err != nil {
		return err
	}

	directives, err := b.Bundle()
	if err != nil {
		return err
	}

	metadataPath := filepath.Join(opts.ProjectDir, staging.MetadataFileName)
	err = staging.BuildMetadata(directives).WriteToFile(metadataPath)
	if err != nil {
		log.Warnf("Failed to write bundle metadata: %v", err)
	}

	return b.Pack(directives)
}
