package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL limits and environment overrides.
const (
	// DefaultTTLSeconds is the default lifetime of a persisted entry (1 hour).
	DefaultTTLSeconds = 3600

	// MinTTLSeconds is the minimum allowed TTL (1 minute).
	MinTTLSeconds = 60

	// MaxTTLSeconds is the maximum allowed TTL (7 days).
	MaxTTLSeconds = 604800

	EnvTTLSeconds   = "PEOPLEGRID_CACHE_TTL_SECONDS"
	EnvCacheEnabled = "PEOPLEGRID_CACHE_ENABLED"
	EnvCacheDir     = "PEOPLEGRID_CACHE_DIR"
)

// ErrInvalidTTL is returned for TTLs outside [MinTTLSeconds, MaxTTLSeconds].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks seconds against the allowed range.
func ValidateTTL(seconds int) error {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// TTLFromEnv returns the TTL override from the environment, or fallback when unset or invalid.
func TTLFromEnv(fallback int) int {
	v := os.Getenv(EnvTTLSeconds)
	if v == "" {
		return fallback
	}
	ttl, err := ParseTTL(v)
	if err != nil {
		return fallback
	}
	return ttl
}

// EnabledFromEnv returns the enabled override from the environment, or fallback.
func EnabledFromEnv(fallback bool) bool {
	v := os.Getenv(EnvCacheEnabled)
	if v == "" {
		return fallback
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return enabled
}

// DirFromEnv returns the directory override from the environment, or fallback.
func DirFromEnv(fallback string) string {
	if v := os.Getenv(EnvCacheDir); v != "" {
		return v
	}
	return fallback
}

// ParseTTL accepts integer seconds ("3600") or a duration ("1h30m").
func ParseTTL(s string) (int, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		if err := ValidateTTL(seconds); err != nil {
			return 0, err
		}
		return seconds, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	seconds := int(d.Seconds())
	if err := ValidateTTL(seconds); err != nil {
		return 0, err
	}
	return seconds, nil
}
