package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes reported across the store boundary. A backend integration
// wraps its errors so that errors.Is matches one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("service unavailable")
	ErrSuperseded   = errors.New("superseded by a newer request")
)

// APIError is a non-2xx response from the marketplace API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Unwrap exposes the failure class so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return ClassifyStatus(e.Status)
}

// ClassifyStatus maps an HTTP status code onto a failure class. It returns
// nil for non-error codes and for 4xx codes with no specific class.
func ClassifyStatus(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return ErrValidation
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return ErrUnavailable
	}
	return nil
}
