package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment override, e.g. XHRKIT_MAX_REDIRECTS.
const EnvPrefix = "XHRKIT"

// FromEnv reads XHRKIT_* variables into a config holding only the fields
// that were set, suitable for Merge.
func FromEnv() (*Config, error) {
	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return &c, nil
}

// Load resolves the effective configuration: defaults, then the config file
// at path (or the first discovered one), then environment overrides.
func Load(path string) (*Config, error) {
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	envCfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	return fileCfg.Merge(envCfg), nil
}
