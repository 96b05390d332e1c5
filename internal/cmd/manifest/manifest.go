package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/hokaccha/go-prettyjson"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/internal/config"
	"portapack.dev/portapack/internal/staging"
)

type options struct {
	ProjectDir string `mapstructure:"project-dir"`
	StagingDir string `mapstructure:"staging-dir"`

	printJSON bool
}

// directiveJSON is the machine-readable shape of one bundling directive.
type directiveJSON struct {
	Source    string `json:"source"`
	TargetDir string `json:"target_dir"`
}

func New() *cobra.Command {
	var bindFlags func()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the bundling directives for the staged libraries",
		Long: `This command lists the bundling directives derived from the current
contents of the staging directory, in the deterministic order the
packaging step receives them. Run 'portapack bundle' first to populate
the staging directory.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindFlags()
			return config.FindAndParseProjectConfig(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.printJSON, "json", false, "Print the manifest as JSON")

	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddProjectDirFlag,
		cmdutils.AddStagingDirFlag,
	)

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	stagingDir := opts.StagingDir
	if !filepath.IsAbs(stagingDir) {
		stagingDir = filepath.Join(opts.ProjectDir, stagingDir)
	}

	directives, err := staging.Manifest(stagingDir)
	if err != nil {
		return err
	}

	if opts.printJSON {
		var entries []directiveJSON
		for _, directive := range directives {
			entries = append(entries, directiveJSON{
				Source:    directive.SourcePath,
				TargetDir: directive.TargetDir,
			})
		}
		out, err := prettyjson.Marshal(entries)
		if err != nil {
			return errors.WithStack(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	for _, directive := range directives {
		fmt.Fprintf(cmd.OutOrStdout(), "%s => %s/\n", directive.SourcePath, directive.TargetDir)
	}
	return nil
}
