package config

import (
	"os"

	"github.com/pseudomuto/osprey/pkg/consts"
	"go.uber.org/fx"
)

// searchPaths are checked in order when OSPREY_CONFIG is not set.
var searchPaths = []string{consts.DefaultConfigFile, "osprey.yml", "osprey.toml"}

var Module = fx.Module("config", fx.Provide(Discover))

// Discover loads the configuration from $OSPREY_CONFIG or the first config file
// found in the working directory. Without a config file the defaults are used,
// so commands can run purely from flags and environment variables.
func Discover() (*Config, error) {
	if path := os.Getenv("OSPREY_CONFIG"); path != "" {
		return LoadConfigFile(path)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadConfigFile(path)
		}
	}

	return Default(), nil
}
