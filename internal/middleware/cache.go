package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// CacheControl marks responses as publicly cacheable for seconds. Zero
// disables caching by intermediaries without forbidding storage.
func CacheControl(seconds int) fiber.Handler {
	value := fmt.Sprintf("public, max-age=%d", seconds)
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, value)
		return c.Next()
	}
}
