package cmdutils

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagFunc adds a flag to a command and returns a function which binds the
// flag to viper. The binding must not happen before the command actually
// runs, because binding a viper key rebinds keys bound by other commands.
type FlagFunc func(*cobra.Command) func()

// AddFlags adds the given flags to the command and returns a function which
// binds all of them to viper. Commands call the returned function in their
// PreRun.
func AddFlags(cmd *cobra.Command, funcs ...FlagFunc) func() {
	var bindFuncs []func()
	for _, f := range funcs {
		bindFuncs = append(bindFuncs, f(cmd))
	}
	return func() {
		for _, f := range bindFuncs {
			f()
		}
	}
}

func viperMustBindPFlag(key string, flag *pflag.Flag) {
	err := viper.BindPFlag(key, flag)
	if err != nil {
		panic(err)
	}
}

func AddProjectDirFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("project-dir", "",
		"The project root which contains the portapack.yaml config file.\n"+
			"Defaults to the current working directory.")
	return func() {
		viperMustBindPFlag("project-dir", cmd.Flags().Lookup("project-dir"))
	}
}

func AddBinaryFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("binary", "",
		"Path to the target binary to bundle. When set, the recursive\n"+
			"binary search is skipped.")
	return func() {
		viperMustBindPFlag("binary", cmd.Flags().Lookup("binary"))
	}
}

func AddBinaryNameFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("binary-name", "",
		"Name of the target binary to search for below the search root.")
	return func() {
		viperMustBindPFlag("binary-name", cmd.Flags().Lookup("binary-name"))
	}
}

func AddSearchRootFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("search-root", "",
		"Directory below which the target binary is searched recursively.")
	return func() {
		viperMustBindPFlag("search-root", cmd.Flags().Lookup("search-root"))
	}
}

func AddStagingDirFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("staging-dir", "build_libs",
		"Scratch directory the selected libraries are staged in. Deleted\n"+
			"and recreated on every run.")
	return func() {
		viperMustBindPFlag("staging-dir", cmd.Flags().Lookup("staging-dir"))
	}
}

func AddDynamicLibFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringArray("dynamic-lib", nil,
		"Name of a library the target loads at runtime via dlopen, which\n"+
			"is therefore invisible to the link-dependency scan. Can be used\n"+
			"multiple times.")
	return func() {
		viperMustBindPFlag("dynamic-libs", cmd.Flags().Lookup("dynamic-lib"))
	}
}

func AddLibGlobFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringArray("lib-glob", nil,
		"Glob pattern for additional libraries to bundle best-effort,\n"+
			"e.g. '/usr/lib/*-linux-gnu/libGLESv2.so*'. Can be used multiple\n"+
			"times.")
	return func() {
		viperMustBindPFlag("lib-globs", cmd.Flags().Lookup("lib-glob"))
	}
}

func AddPackagerEnvFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringArray("packager-env", nil,
		"KEY=VALUE entry appended to the packaging command's environment.\n"+
			"Can be used multiple times.")
	return func() {
		viperMustBindPFlag("packager-env", cmd.Flags().Lookup("packager-env"))
	}
}

func AddPackagerFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("packager", "",
		"Packaging command the bundling directives are passed to. When\n"+
			"empty, the rendered arguments are printed instead of invoking\n"+
			"a packager.")
	return func() {
		viperMustBindPFlag("packager", cmd.Flags().Lookup("packager"))
	}
}
