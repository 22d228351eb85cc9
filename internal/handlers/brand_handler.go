package handlers

import (
	"github.com/gofiber/fiber/v2"

	"carrental/internal/models"
	"carrental/internal/services"
)

// BrandHandler handles HTTP requests for brands.
type BrandHandler struct {
	service *services.BrandService
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(service *services.BrandService) *BrandHandler {
	return &BrandHandler{
		service: service,
	}
}

// RegisterRoutes registers the brand routes under /brands.
func (h *BrandHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/brands")
	r.Get("/", h.HandleGetBrands)
	r.Get("/slug/:slug", h.HandleGetBrandBySlug)
	r.Get("/featured", h.HandleFeaturedBrands)
	r.Get("/:id", h.HandleGetBrandByID)
	r.Post("/", h.HandleCreateBrand)
	r.Put("/:id", h.HandleUpdateBrand)
	r.Delete("/:id", h.HandleDeleteBrand)
}

func (h *BrandHandler) HandleGetBrands(c *fiber.Ctx) error {
	brands, err := h.service.GetAllBrands(c.UserContext())
	if err != nil {
		return fail("Failed to fetch brands", err)
	}
	return c.JSON(brands)
}

// HandleGetBrandBySlug responds with the first brand holding the slug, or
// null when there is none.
func (h *BrandHandler) HandleGetBrandBySlug(c *fiber.Ctx) error {
	brand, err := h.service.GetBrandBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail("Failed to fetch brand by slug", err)
	}
	if brand == nil {
		return c.JSON(nil)
	}
	return c.JSON(brand)
}

func (h *BrandHandler) HandleFeaturedBrands(c *fiber.Ctx) error {
	brands, err := h.service.FeaturedBrands(c.UserContext())
	if err != nil {
		return fail("Failed to fetch featured brands", err)
	}
	return c.JSON(brands)
}

func (h *BrandHandler) HandleGetBrandByID(c *fiber.Ctx) error {
	brand, err := h.service.GetBrandByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail("Failed to fetch brand", err)
	}
	return c.JSON(brand)
}

func (h *BrandHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var req models.CreateBrandRequest
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}

	brand, err := h.service.CreateBrand(c.UserContext(), req)
	if err != nil {
		return fail("Failed to create brand", err)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// HandleUpdateBrand writes the provided non-empty fields.
func (h *BrandHandler) HandleUpdateBrand(c *fiber.Ctx) error {
	id := c.Params("id")
	var patch models.BrandPatch
	if err := bind(c, &patch, "Missing required fields"); err != nil {
		return err
	}

	changes, err := h.service.UpdateBrand(c.UserContext(), id, patch)
	if err != nil {
		return fail("Failed to update brand", err)
	}
	return c.JSON(withID(id, changes))
}

func (h *BrandHandler) HandleDeleteBrand(c *fiber.Ctx) error {
	if err := h.service.DeleteBrand(c.UserContext(), c.Params("id")); err != nil {
		return fail("Failed to delete brand", err)
	}
	return c.JSON(fiber.Map{"message": "Brand deleted successfully"})
}
