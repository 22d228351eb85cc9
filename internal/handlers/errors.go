package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"carrental/internal/repositories"
	"carrental/internal/services"
)

// HTTPError is a handler failure with the status and summary sent to the
// client. The server's error handler renders it.
type HTTPError struct {
	Status  int
	Message string
	// Fields holds per-field validation failures keyed by JSON name.
	Fields map[string]string
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
}

func (e *HTTPError) Unwrap() error { return e.Err }

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

var sentinelResponses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrCarNotFound, fiber.StatusNotFound, "Car not found"},
	{services.ErrBrandNotFound, fiber.StatusNotFound, "Brand not found"},
	{services.ErrCategoryNotFound, fiber.StatusNotFound, "Category not found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{services.ErrDuplicateSlug, fiber.StatusBadRequest, "Category with this slug already exists"},
	{services.ErrDuplicateEmail, fiber.StatusBadRequest, "Email already registered"},
	{services.ErrCategoryAlreadyAdded, fiber.StatusBadRequest, "Category already added to this car"},
	{services.ErrInvalidUpdates, fiber.StatusBadRequest, "Invalid updates format"},
}

// fail maps a service error onto its client response. Errors the top level
// handler classifies itself are passed through, the rest become a 500
// carrying message.
func fail(message string, err error) error {
	for _, s := range sentinelResponses {
		if errors.Is(err, s.err) {
			return newHTTPError(s.status, s.message)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, repositories.ErrPermissionDenied),
		errors.Is(err, repositories.ErrInvalidArgument):
		return err
	}
	return &HTTPError{Status: fiber.StatusInternalServerError, Message: message, Err: err}
}
