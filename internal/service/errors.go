package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden: user does not have permission for this action")

	ErrListingNotFound      = errors.New("listing not found")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrSavedListingNotFound = errors.New("saved listing not found")
	ErrMessageNotFound      = errors.New("message not found")
)

// validationError wraps ErrValidation with a client-facing reason
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
