// Package config loads peoplegrid settings from ~/.peoplegrid/config.yaml, .env files
// and PEOPLEGRID_* environment variables, in increasing order of precedence. CLI flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/peoplegrid/internal/cache"
	"github.com/rshade/peoplegrid/internal/logging"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// Output formats.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatYAML   = "yaml"
)

// DefaultServerAddr is where `peoplegrid serve` listens by default.
const DefaultServerAddr = "127.0.0.1:8080"

// APIConfig configures the random-user client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Results           int           `yaml:"results"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	UserAgent         string        `yaml:"user_agent"`
}

// QueryConfig configures the in-memory query cache.
type QueryConfig struct {
	StaleTime  time.Duration `yaml:"stale_time"`
	GCTime     time.Duration `yaml:"gc_time"`
	MaxEntries int           `yaml:"max_entries"`
}

// CacheConfig configures the on-disk result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// OutputConfig configures non-interactive output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Query   QueryConfig   `yaml:"query"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`

	// path is the file the config was loaded from and is saved to.
	path string
}

// Validation errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownKey    = errors.New("unknown configuration key")
)

// Default returns the built-in defaults. Directories are resolved against dir.
func Default(dir string) *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   randomuser.DefaultBaseURL,
			Results:   randomuser.DefaultResults,
			Timeout:   randomuser.DefaultTimeout,
			UserAgent: randomuser.DefaultUserAgent,
		},
		Query: QueryConfig{
			GCTime:     query.DefaultGCTime,
			MaxEntries: query.DefaultMaxEntries,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Directory:  filepath.Join(dir, "cache"),
			TTLSeconds: cache.DefaultTTLSeconds,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
		Output: OutputConfig{DefaultFormat: FormatTable},
		Server: ServerConfig{Addr: DefaultServerAddr},
		path:   filepath.Join(dir, "config.yaml"),
	}
}

// New loads the configuration from the default location. A missing file is not an
// error; a malformed one is.
func New() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// Load reads path over the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without environment overrides or
// validation. It is what `config set` edits, so that saving does not capture
// values that only came from the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file backing this configuration.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its file, creating the directory if needed.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Results < 1 || c.API.Results > 5000 {
		return fmt.Errorf("%w: api.results must be between 1 and 5000, got %d", ErrInvalidConfig, c.API.Results)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", ErrInvalidConfig)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if c.Query.StaleTime < 0 || c.Query.GCTime < 0 {
		return fmt.Errorf("%w: query durations must not be negative", ErrInvalidConfig)
	}
	if c.Query.MaxEntries < 0 {
		return fmt.Errorf("%w: query.max_entries must not be negative", ErrInvalidConfig)
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			return fmt.Errorf("%w: cache.ttl_seconds: %w", ErrInvalidConfig, err)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("%w: logging.format must be json or console, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	if !IsValidFormat(c.Output.DefaultFormat) {
		return fmt.Errorf("%w: output.default_format %q is not supported", ErrInvalidConfig, c.Output.DefaultFormat)
	}
	return nil
}

// IsValidFormat reports whether f names a supported output format.
func IsValidFormat(f string) bool {
	switch f {
	case FormatTable, FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}
