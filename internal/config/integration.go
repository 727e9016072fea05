package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureConfigDir creates the configuration directory if it does not exist.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %q: %w", dir, err)
	}
	return nil
}

// EnsureCacheDir creates the on-disk cache directory when the cache is enabled.
func (c *Config) EnsureCacheDir() error {
	if !c.Cache.Enabled || c.Cache.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(c.Cache.Directory, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", c.Cache.Directory, err)
	}
	return nil
}

// Init writes a default config file to path unless one exists and force is false.
// It returns the written configuration.
func Init(path string, force bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	cfg := Default(filepath.Dir(path))
	cfg.path = path
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}
