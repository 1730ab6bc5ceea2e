// ABOUTME: Error taxonomy for blog API calls
// ABOUTME: Classifies transport and HTTP failures into matchable sentinel kinds

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is; inspect details with errors.As(*APIError).
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrNetwork        = errors.New("network error")
	ErrServer         = errors.New("server error")
	ErrNotFound       = errors.New("not found")
)

// APIError carries the classified failure of a request
type APIError struct {
	Kind    error
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, msg)
	}
	if msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, msg)
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an APIError of the given kind without an HTTP status
func NewError(kind error, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// Message returns the server-supplied message of err, or fallback when none
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// kindForStatus maps a non-2xx status to an error kind
func kindForStatus(status int, credentialExchange bool) error {
	switch status {
	case http.StatusUnauthorized:
		if credentialExchange {
			return ErrAuthentication
		}
		return ErrAuthorization
	case http.StatusForbidden:
		return ErrAuthorization
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}
