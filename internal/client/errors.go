package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned before any network call when no session
// token is available.
var ErrNotAuthenticated = errors.New("not authenticated: no session token")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Endpoint string
	Status   int
	// Message is the backend's "message" (or "error") field, empty when the
	// body carried none.
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("API error (%d): %s", e.Status, msg)
}

// Unauthorized reports whether the backend rejected the session token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body does not match the expected shape.
type DecodeError struct {
	Endpoint string
	// Field is the offending JSON key; empty when the whole body is unreadable.
	Field string
	// Index is the position of the offending record in a list response, or -1.
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("failed to parse %s response: %v", e.Endpoint, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("failed to parse %s response: record %d: field %q: %v", e.Endpoint, e.Index, e.Field, e.Err)
	default:
		return fmt.Sprintf("failed to parse %s response: field %q: %v", e.Endpoint, e.Field, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Message extracts the backend-supplied message from err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
