package service

import (
	"errors"
	"fmt"
)

// ErrNotFound covers missing resources and cross-owner access alike:
// a caller must not be able to distinguish another user's page from a
// page that does not exist.
var ErrNotFound = errors.New("resource not found")

// ErrValidation marks malformed or incomplete input rejected before
// any storage access.
var ErrValidation = errors.New("validation failed")

func notFoundError(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
