package query

import (
	"encoding/json"
	"fmt"
)

// Key identifies a query. Keys built from equal parts are equal.
type Key struct {
	id string
}

// NewKey builds a key from its parts. Parts should be JSON-encodable scalars.
func NewKey(parts ...any) Key {
	if parts == nil {
		parts = []any{}
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return Key{id: fmt.Sprintf("%v", parts)}
	}
	return Key{id: string(data)}
}

// String returns the canonical form used for cache lookups.
func (k Key) String() string {
	return k.id
}

// IsZero reports whether k was never built.
func (k Key) IsZero() bool {
	return k.id == ""
}
