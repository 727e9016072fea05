package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Sort orders and limits.
const (
	MaxLimit      = 5000
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
	sortPartsMax  = 2
)

// Validation errors.
var (
	ErrInvalidLimit      = fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	ErrInvalidOffset     = errors.New("offset must be non-negative")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'age:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds the windowing flags. A zero Limit means no limit.
type Params struct {
	Limit  int
	Offset int
}

// Validate checks bounds.
func (p Params) Validate() error {
	if p.Limit < 0 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, p.Limit)
	}
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// IsEnabled reports whether any windowing was requested.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0
}

// Apply returns the window of items selected by p. An offset past the end yields
// an empty slice.
func Apply[T any](p Params, items []T) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 {
		end = min(p.Offset+p.Limit, len(items))
	}
	return items[p.Offset:end]
}

// ParseSort parses "field" or "field:order". The order defaults to ascending.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(expr string) (field, order string, err error) {
	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}

	field = strings.TrimSpace(parts[0])
	if field == "" {
		return "", "", ErrEmptySortField
	}

	order = SortOrderAsc
	if len(parts) == sortPartsMax {
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
