package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileKey maps a query key to a filesystem-safe name.
func FileKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
