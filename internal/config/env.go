package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment.
func parseEnv(cfg *StructuredConfig) error {
	return parseEnvFrom(cfg, os.Environ())
}

// parseEnvFrom fills cfg from environ, a list of KEY=value pairs in the
// form returned by os.Environ. Field names come from the env and envPrefix
// tags of StructuredConfig.
func parseEnvFrom(cfg *StructuredConfig, environ []string) error {
	opts := env.Options{Environment: env.ToMap(environ)}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("%w: parse environment: %w", ErrConfig, err)
	}
	return nil
}
