// Package errs defines the error classifications every storefront operation
// reports. Handlers map them onto HTTP status codes with Status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrOutOfStock        = errors.New("insufficient stock")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrValidation        = errors.New("invalid input")
)

// NotFound reports an absent entity, e.g. NotFound("product").
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// ProductUnavailable reports a cart line that no longer passes the
// availability check at checkout time.
func ProductUnavailable(name string) error {
	return fmt.Errorf("product %q is no longer available in the requested quantity: %w", name, ErrOutOfStock)
}

// InsufficientStock reports a guarded stock decrement that found fewer units
// than required.
func InsufficientStock(name string) error {
	return fmt.Errorf("insufficient stock for product %q: %w", name, ErrOutOfStock)
}

// Status maps a classified error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
