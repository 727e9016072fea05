// Package cache persists query results on disk so they survive restarts.
//
// Entries are JSON files under the cache directory (default ~/.peoplegrid/cache), one per
// query key, named by the SHA256 of the key. Each entry carries its own expiry; expired
// entries are reported as ErrCacheExpired and removed lazily.
//
// The store is disabled unless cache.enabled is set in the configuration, the
// PEOPLEGRID_CACHE_ENABLED environment variable or the --disk-cache flag.
package cache
