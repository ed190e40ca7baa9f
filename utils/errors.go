package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// APIError is an error that already knows how it must be rendered. Handlers
// return it and the application error handler turns it into the envelope.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d %s: %d field error(s)", e.Status, e.Message, len(e.Errors))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func NewError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

func NewValidationError(errs []FieldError) *APIError {
	return &APIError{Status: fiber.StatusUnprocessableEntity, Message: "Validation error", Errors: errs}
}

// NewFieldError is a single-field validation failure raised outside the
// validation middleware, e.g. for query parameters.
func NewFieldError(field, message string) *APIError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

func NewBadRequest(message string) *APIError {
	return NewError(fiber.StatusBadRequest, message)
}

func NewUnauthorized(message string) *APIError {
	return NewError(fiber.StatusUnauthorized, message)
}

func NewForbidden(message string) *APIError {
	return NewError(fiber.StatusForbidden, message)
}

func NewNotFound(message string) *APIError {
	return NewError(fiber.StatusNotFound, message)
}

func NewConflict(message string) *APIError {
	return NewError(fiber.StatusConflict, message)
}

func NewTooManyRequests(message string) *APIError {
	return NewError(fiber.StatusTooManyRequests, message)
}

// AsAPIError unwraps err into an *APIError when one is present in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
