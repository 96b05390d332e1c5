package root

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	bundleCmd "portapack.dev/portapack/internal/cmd/bundle"
	doctorCmd "portapack.dev/portapack/internal/cmd/doctor"
	manifestCmd "portapack.dev/portapack/internal/cmd/manifest"
	"portapack.dev/portapack/internal/cmdutils"
	"portapack.dev/portapack/pkg/log"
)

func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portapack",
		Short: "Bundle a native binary with the shared libraries it needs",
		Long: `portapack discovers the shared libraries a native binary needs at
runtime, both the ones it links against and the ones it loads via
dlopen. It stages verified copies of them and renders packaging
directives for embedding them into a self-contained artifact.

Host-ABI libraries (the dynamic linker and core glibc) are never
bundled: they must be provided by whatever host runs the package.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().Bool("plain", false, "Run without color and progress styling")
	err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	if err != nil {
		panic(err)
	}
	err = viper.BindPFlag("plain", rootCmd.PersistentFlags().Lookup("plain"))
	if err != nil {
		panic(err)
	}

	rootCmd.AddCommand(bundleCmd.New())
	rootCmd.AddCommand(manifestCmd.New())
	rootCmd.AddCommand(doctorCmd.New())

	return rootCmd
}

func Execute() {
	rootCmd := New()

	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		log.Error(err)
		if cmdutils.IsIncorrectUsageError(err) {
			log.Print(cmd.UsageString())
		}
		os.Exit(1)
	}
}
