package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"portapack.dev/portapack/pkg/log"
)

// ConfigFileName is the name of the per-project config file, without
// extension.
const ConfigFileName = "portapack"

// DefaultDynamicLibs are libraries which are commonly loaded via dlopen at
// runtime and therefore never show up in the link-dependency scan. The NSS
// and NSPR libraries are required by Chromium-based binaries for TLS;
// libnssckbi.so carries the built-in root certificates.
var DefaultDynamicLibs = []string{
	"libsoftokn3.so",
	"libsoftokn3.chk",
	"libnss3.so",
	"libnssutil3.so",
	"libsmime3.so",
	"libssl3.so",
	"libnssckbi.so",
	"libnspr4.so",
	"libplc4.so",
	"libplds4.so",
	"libfreebl3.so",
	"libfreeblpriv3.so",
}

// DefaultLibGlobs are glob patterns for libraries bundled best-effort.
// libGLESv2 is needed for WebGL but its location varies per distribution.
var DefaultLibGlobs = []string{
	"/usr/lib/*-linux-gnu/libGLESv2.so*",
}

func setDefaults() {
	viper.SetDefault("staging-dir", "build_libs")
	viper.SetDefault("dynamic-libs", DefaultDynamicLibs)
	viper.SetDefault("lib-globs", DefaultLibGlobs)
}

// FindAndParseProjectConfig reads the portapack.yaml config file from the
// project directory (falling back to the current working directory) and
// unmarshals the merged flag/config/env values into opts.
//
// A missing config file is not an error: all settings have flag or default
// values.
func FindAndParseProjectConfig(opts any) error {
	setDefaults()

	projectDir := viper.GetString("project-dir")
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return errors.WithStack(err)
		}
		viper.Set("project-dir", projectDir)
	}

	viper.SetConfigName(ConfigFileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(projectDir)

	err := viper.ReadInConfig()
	if err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return errors.WithMessagef(err, "Failed to parse %s", filepath.Join(projectDir, ConfigFileName+".yaml"))
		}
		log.Debugf("No config file found in %s", projectDir)
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}

	err = viper.Unmarshal(opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
