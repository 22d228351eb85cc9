package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/internal/handlers"
	"carrental/internal/repositories"
)

// ErrorHandler renders errors that escape the handlers. Store permission and
// argument errors become 403 and 400; anything unclassified is a 500 whose
// details carry a stack trace in development.
func ErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err, development)
		if status >= fiber.StatusInternalServerError {
			grip.Error(message.WrapError(err, message.Fields{
				"message": "request failed",
				"method":  c.Method(),
				"path":    c.Path(),
				"status":  status,
			}))
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error, development bool) (int, fiber.Map) {
	var httpErr *handlers.HTTPError
	if errors.As(err, &httpErr) {
		body := fiber.Map{"error": httpErr.Message}
		if httpErr.Fields != nil {
			body["errors"] = httpErr.Fields
		}
		if httpErr.Err != nil {
			body["details"] = details(httpErr.Err, development && httpErr.Status >= fiber.StatusInternalServerError)
		}
		return httpErr.Status, body
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiber.Map{"error": fiberErr.Message}
	}

	switch {
	case errors.Is(err, repositories.ErrPermissionDenied):
		return fiber.StatusForbidden, fiber.Map{"error": "Permission denied", "details": err.Error()}
	case errors.Is(err, repositories.ErrInvalidArgument):
		return fiber.StatusBadRequest, fiber.Map{"error": "Invalid request", "details": err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, fiber.Map{
			"error":   "Request timeout",
			"details": "The request took too long to process",
		}
	}

	body := fiber.Map{"error": err.Error()}
	if development {
		body["details"] = fmt.Sprintf("%+v", err)
	}
	return fiber.StatusInternalServerError, body
}

func details(err error, withStack bool) string {
	if withStack {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}
