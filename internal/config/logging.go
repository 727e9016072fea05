package config

import (
	"path/filepath"

	"github.com/rshade/peoplegrid/internal/logging"
)

// ToLoggingConfig converts the logging section for internal/logging. A configured
// file selects file output; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// DefaultLogFile is where the interactive UI logs when no file is configured, so
// log lines never land on the terminal it draws to.
func (c *Config) DefaultLogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(filepath.Dir(c.path), "logs", "peoplegrid.log")
}
