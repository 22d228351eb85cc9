package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"carrental/internal/auth"
)

// ClaimsKey is the Fiber locals key holding the verified *auth.Claims.
const ClaimsKey = "claims"

// RequireAdmin is a Fiber middleware that admits requests whose bearer token
// verifies and satisfies policy. A nil verifier rejects every request.
func RequireAdmin(verifier auth.Verifier, policy auth.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verifier == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Authentication failed",
				"details": "identity provider is not initialized",
			})
		}

		// Expected format: "Bearer <token>"
		authHeader := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No bearer token",
			})
		}

		claims, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			grip.Debug(message.WrapError(err, message.Fields{
				"message": "rejected bearer token",
				"path":    c.Path(),
			}))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Authentication failed",
				"details": err.Error(),
			})
		}

		if !policy.Allow(claims) {
			grip.Debug(message.Fields{
				"message": "admin policy denied request",
				"path":    c.Path(),
				"email":   claims.Email,
			})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": policy.Denial(),
			})
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// AdminClaims returns the claims stored by RequireAdmin, if any.
func AdminClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsKey).(*auth.Claims)
	return claims
}
