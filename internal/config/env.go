package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rshade/peoplegrid/internal/cache"
)

// Environment variables read by ApplyEnv.
const (
	EnvHome      = "PEOPLEGRID_HOME"
	EnvAPIURL    = "PEOPLEGRID_API_URL"
	EnvResults   = "PEOPLEGRID_RESULTS"
	EnvTimeout   = "PEOPLEGRID_API_TIMEOUT"
	EnvLogLevel  = "PEOPLEGRID_LOG_LEVEL"
	EnvLogFormat = "PEOPLEGRID_LOG_FORMAT"
	EnvLogFile   = "PEOPLEGRID_LOG_FILE"
	EnvOutput    = "PEOPLEGRID_OUTPUT"
)

// LoadDotEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// DotEnvPaths returns the .env files consulted at startup: the working directory and
// the config directory.
func DotEnvPaths() []string {
	paths := []string{".env"}
	if dir, err := GetConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return paths
}

// ApplyEnv overrides fields from PEOPLEGRID_* variables. Unparsable values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvResults); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.Results = n
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.DefaultFormat = v
	}

	c.Cache.Enabled = cache.EnabledFromEnv(c.Cache.Enabled)
	c.Cache.TTLSeconds = cache.TTLFromEnv(c.Cache.TTLSeconds)
	c.Cache.Directory = cache.DirFromEnv(c.Cache.Directory)
}

// GetConfigDir returns $PEOPLEGRID_HOME or ~/.peoplegrid.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine home directory; set " + EnvHome)
	}
	return filepath.Join(homeDir, ".peoplegrid"), nil
}
