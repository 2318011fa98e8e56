package gateway

import (
	"errors"
	"fmt"
)

// ErrAuthFailed is returned when a 401 survives the one refresh-and-retry
// attempt. The caller must clear the session and return to the login
// boundary.
var ErrAuthFailed = errors.New("authentication failed, please log in again")

// APIError is a non-2xx response carrying the server's detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Detail
}
