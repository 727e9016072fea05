package query

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an observed query.
type Status int

const (
	// StatusIdle means nothing has been requested yet.
	StatusIdle Status = iota
	// StatusLoading means a fetch is running and there is no data to show.
	StatusLoading
	// StatusSuccess means Data holds a result.
	StatusSuccess
	// StatusError means every attempt failed; Err holds the reason.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is a snapshot of an observed query.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error

	// IsPlaceholder is set while Data belongs to the previously observed key.
	IsPlaceholder bool
	// IsFetching is set while a fetch for the current key is running.
	IsFetching bool
	// FailureCount is the number of failed attempts of the last fetch.
	FailureCount int
	// UpdatedAt is when Data was fetched.
	UpdatedAt time.Time
}

// HasData reports whether Data is meaningful.
func (r Result[T]) HasData() bool {
	return !r.UpdatedAt.IsZero()
}

// FetchError is returned once all attempts of a fetch failed. It wraps the last error.
type FetchError struct {
	Key      Key
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("query %s failed after %d attempt(s): %v", e.Key, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
