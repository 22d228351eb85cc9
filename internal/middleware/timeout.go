package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// Timeout bounds each request with a deadline carried by c.UserContext().
// Store calls made with that context are cancelled once it passes. A handler
// that fails after the deadline is answered with a 504; a response the
// handler already wrote successfully is left alone.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			grip.Warning(message.Fields{
				"message": "request timed out",
				"method":  c.Method(),
				"path":    c.Path(),
				"timeout": d.String(),
			})
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error":   "Request timeout",
				"details": "The request took too long to process",
			})
		}
		return err
	}
}
