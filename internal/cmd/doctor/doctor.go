package doctor

import (
	"github.com/spf13/cobra"

	"portapack.dev/portapack/internal/ldcache"
	"portapack.dev/portapack/pkg/dependencies"
	"portapack.dev/portapack/pkg/log"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check whether the build host can produce bundles",
		Long: `This command runs the preflight checks the bundle command performs:
it verifies that the introspection tool is available, reports the host
glibc version and checks whether the library registry can be indexed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	return cmd
}

func run() error {
	checks := &dependencies.Checks{
		LddPath:      "ldd",
		LdconfigPath: "ldconfig",
	}
	err := checks.Run()
	if err != nil {
		return err
	}

	cache := ldcache.NewCache()
	if cache.Len() == 0 {
		log.Warnf("Library registry is empty, name resolution will rely on filesystem search")
	} else {
		log.Infof("Library registry indexed %d entries", cache.Len())
	}

	log.Success("Build host looks good")
	return nil
}
