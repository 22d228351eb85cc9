package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"carrental/internal/middleware"
	"carrental/internal/models"
	"carrental/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service      *services.CategoryService
	requireAdmin fiber.Handler
}

// NewCategoryHandler creates a new CategoryHandler. requireAdmin guards the
// write routes.
func NewCategoryHandler(service *services.CategoryService, requireAdmin fiber.Handler) *CategoryHandler {
	return &CategoryHandler{
		service:      service,
		requireAdmin: requireAdmin,
	}
}

// RegisterRoutes registers the category routes under /categories.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	noCache := middleware.CacheControl(0)

	r := router.Group("/categories")
	r.Get("/", middleware.CacheControl(600), h.HandleListCategories)
	r.Get("/type/:type", middleware.CacheControl(600), h.HandleCategoriesByType)
	r.Get("/featured", middleware.CacheControl(600), h.HandleFeaturedCategories)
	r.Get("/search", middleware.CacheControl(60), h.HandleSearchCategories)
	r.Get("/slug/:slug", middleware.CacheControl(600), h.HandleGetCategoryBySlug)
	r.Post("/", h.requireAdmin, noCache, h.HandleCreateCategory)
	r.Put("/:id", h.requireAdmin, noCache, h.HandleUpdateCategory)
	r.Delete("/:id", h.requireAdmin, noCache, h.HandleDeleteCategory)
}

func intQuery(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &HTTPError{Status: fiber.StatusBadRequest, Message: "Invalid " + name, Err: err}
	}
	return v, nil
}

// HandleListCategories returns one page of the sorted categories.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	page, err := intQuery(c, "page", services.DefaultCategoryPage)
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", services.DefaultCategoryLimit)
	if err != nil {
		return err
	}
	sort := c.Query("sort", services.DefaultCategorySort)

	result, err := h.service.ListCategories(c.UserContext(), page, limit, sort)
	if err != nil {
		return fail("Failed to fetch categories", err)
	}
	return c.JSON(result)
}

func (h *CategoryHandler) HandleCategoriesByType(c *fiber.Ctx) error {
	categories, err := h.service.CategoriesByType(c.UserContext(), c.Params("type"))
	if err != nil {
		return fail("Failed to fetch categories", err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleFeaturedCategories(c *fiber.Ctx) error {
	categories, err := h.service.FeaturedCategories(c.UserContext())
	if err != nil {
		return fail("Failed to fetch featured categories", err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleSearchCategories(c *fiber.Ctx) error {
	categories, err := h.service.SearchCategories(c.UserContext(), c.Query("q"))
	if err != nil {
		return fail("Failed to search categories", err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleGetCategoryBySlug(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail("Failed to get category", err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req models.CreateCategoryRequest
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}

	category, err := h.service.CreateCategory(c.UserContext(), req)
	if err != nil {
		return fail("Failed to create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory responds with the category as stored after the update.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var patch models.CategoryPatch
	if err := bind(c, &patch, "Missing required fields"); err != nil {
		return err
	}

	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return fail("Failed to update category", err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return fail("Failed to delete category", err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
