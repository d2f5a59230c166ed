package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Login when the platform rejects
// the username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned by API clients that need a stored
// session cookie when none is present.
var ErrUnauthenticated = errors.New("not authenticated")

// ValidationError carries the server-provided message from a rejected
// signup, when the platform supplied one.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "signup failed"
	}
	return e.Message
}

// APIError is a non-success platform response outside the auth flows.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned HTTP %d", e.Status)
}
