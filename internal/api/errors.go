package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is a local failure: the request was rejected before any
// network attempt (e.g. blank title). The remote store is untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequestError is a transport failure or a non-2xx response. Detail carries
// the server's {detail: ...} body when one was present; other error bodies
// are treated as opaque.
type RequestError struct {
	Endpoint string
	Status   int
	Detail   string
	Err      error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// AuthError marks a 401/403 so callers can render an access-denied state
// instead of a generic failure banner.
type AuthError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Detail)
	}
	return fmt.Sprintf("%s: not authorized (status %d)", e.Endpoint, e.Status)
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func statusErr(endpoint string, status int, detail string) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Endpoint: endpoint, Status: status, Detail: detail}
	}
	return &RequestError{Endpoint: endpoint, Status: status, Detail: detail}
}
