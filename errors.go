package hacktrack

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrNotSignedIn indicates an authenticated action was attempted with no
	// session token. No network call is made when this is returned.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrEmptyMessage indicates a chat send with empty or whitespace-only input.
	ErrEmptyMessage = errors.New("empty message")

	// ErrValidation indicates malformed data received from the backend.
	ErrValidation = errors.New("validation error")
)

// TransportError reports a network failure or a non-2xx response from the
// backend. StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's {"error": "..."} text, when present.
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: transport error", e.Method, e.Path)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
