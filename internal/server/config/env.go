package config

import "github.com/kelseyhightower/envconfig"

// envPrefix is the prefix of all recognised environment variables.
const envPrefix = "checkers"

// parseEnv overlays CHECKERS_* environment variables onto config. Unset
// variables leave the current value alone. Malformed values panic, like
// malformed flags do.
func parseEnv(config *Config) {
	if err := envconfig.Process(envPrefix, config); err != nil {
		panic(err)
	}
}
