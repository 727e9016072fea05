package randomuser

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by errors.Is on the typed errors below.
var (
	// ErrNetwork indicates the request never produced a usable response.
	ErrNetwork = errors.New("network error")

	// ErrServer indicates the API answered with a non-success status.
	ErrServer = errors.New("server error")
)

// NetworkError is a transport failure: no response, or a body that could not be read or decoded.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNetwork) true.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ServerError is a non-2xx answer from the API.
type ServerError struct {
	StatusCode int
	// Message is the API's own error text when the body carried one.
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrServer) true.
func (e *ServerError) Is(target error) bool { return target == ErrServer }
