package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials reports a rejected login. The session stays Anonymous.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoValidSession reports a rejected refresh. The session manager reacts
	// by forcing the Anonymous transition; callers observe it via subscription.
	ErrNoValidSession = errors.New("no valid session")

	// ErrNotASeller reports a switch into seller mode without a verified
	// seller profile. No state changes.
	ErrNotASeller = errors.New("not a verified seller")
)

// ServerError reports a transport or backend failure distinct from the typed
// failures above. The operation may be retried by the caller.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error: %s", e.Message)
}

func newServerError(status int, message string) error {
	return &ServerError{Status: status, Message: message}
}
