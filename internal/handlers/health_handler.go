package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"carrental/internal/auth"
)

// HealthHandler reports process status and whether an identity provider is
// configured.
type HealthHandler struct {
	verifier auth.Verifier
}

// NewHealthHandler creates a new HealthHandler. verifier may be nil.
func NewHealthHandler(verifier auth.Verifier) *HealthHandler {
	return &HealthHandler{verifier: verifier}
}

// RegisterRoutes registers / and /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHealth)
	router.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	provider := "uninitialized"
	if h.verifier != nil {
		provider = h.verifier.Name()
	}
	return c.JSON(fiber.Map{
		"status":           "ok",
		"identityProvider": provider,
		"time":             time.Now().Format(time.RFC3339),
	})
}
