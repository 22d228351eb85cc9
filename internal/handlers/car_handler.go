package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"carrental/internal/middleware"
	"carrental/internal/models"
	"carrental/internal/repositories"
	"carrental/internal/services"
)

// CarHandler handles HTTP requests for cars.
type CarHandler struct {
	cars         *services.CarService
	analytics    *services.AnalyticsService
	requireAdmin fiber.Handler
}

// NewCarHandler creates a new CarHandler. requireAdmin guards the admin
// routes.
func NewCarHandler(cars *services.CarService, analytics *services.AnalyticsService, requireAdmin fiber.Handler) *CarHandler {
	return &CarHandler{
		cars:         cars,
		analytics:    analytics,
		requireAdmin: requireAdmin,
	}
}

// RegisterRoutes registers the car routes under /cars. Fixed paths are
// registered before /:id so they are not captured as ids.
func (h *CarHandler) RegisterRoutes(router fiber.Router) {
	noCache := middleware.CacheControl(0)

	r := router.Group("/cars")
	r.Get("/", middleware.CacheControl(300), h.HandleListCars)
	r.Get("/featured", middleware.CacheControl(600), h.HandleFeaturedCars)
	r.Get("/search", middleware.CacheControl(60), h.HandleSearchCars)
	r.Get("/type/:type", middleware.CacheControl(300), h.HandleCarsByType)
	r.Get("/fuel-type/:fuelType", middleware.CacheControl(300), h.HandleCarsByFuelType)
	r.Get("/tag/:tag", middleware.CacheControl(300), h.HandleCarsByTag)
	r.Get("/brand/:brand", middleware.CacheControl(300), h.HandleCarsByBrand)
	r.Get("/category/:categoryId", middleware.CacheControl(300), h.HandleCarsByCategory)

	admin := r.Group("/admin", h.requireAdmin)
	admin.Get("/analytics", noCache, h.HandleAnalytics)
	admin.Post("/bulk-update", noCache, h.HandleBulkUpdate)
	admin.Delete("/:id", noCache, h.HandleAdminDeleteCar)

	r.Get("/:id", middleware.CacheControl(300), h.HandleGetCar)
	r.Post("/", noCache, h.HandleCreateCar)
	r.Put("/:id", noCache, h.HandleUpdateCar)
	r.Delete("/:id", noCache, h.HandleDeleteCar)
	r.Post("/:id/categories/:categoryId", h.requireAdmin, noCache, h.HandleAddCategory)
	r.Delete("/:id/categories/:categoryId", h.requireAdmin, noCache, h.HandleRemoveCategory)
}

// HandleListCars lists cars with optional equality filters and a daily
// price range.
func (h *CarHandler) HandleListCars(c *fiber.Ctx) error {
	q := services.CarQuery{
		CarFilter: repositories.CarFilter{
			Brand:        c.Query("brand"),
			Transmission: c.Query("transmission"),
			Type:         c.Query("type"),
			FuelType:     c.Query("fuelType"),
		},
	}
	// any value other than "true" selects unavailable cars
	if c.Context().QueryArgs().Has("available") {
		available := c.Query("available") == "true"
		q.Available = &available
	}

	var err error
	if q.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return err
	}
	if q.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return err
	}

	cars, err := h.cars.ListCars(c.UserContext(), q)
	if err != nil {
		return fail("Failed to fetch cars", err)
	}
	return c.JSON(cars)
}

func priceParam(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &HTTPError{Status: fiber.StatusBadRequest, Message: fmt.Sprintf("Invalid %s", name), Err: err}
	}
	return &v, nil
}

func (h *CarHandler) HandleFeaturedCars(c *fiber.Ctx) error {
	cars, err := h.cars.FeaturedCars(c.UserContext())
	if err != nil {
		return fail("Failed to fetch featured cars", err)
	}
	return c.JSON(cars)
}

// HandleSearchCars returns up to ten cars matching the query parameter.
func (h *CarHandler) HandleSearchCars(c *fiber.Ctx) error {
	cars, err := h.cars.SearchCars(c.UserContext(), c.Query("query"))
	if err != nil {
		return fail("Failed to search cars", err)
	}
	return c.JSON(cars)
}

func (h *CarHandler) listBy(c *fiber.Ctx, filter repositories.CarFilter, message string) error {
	cars, err := h.cars.ListCars(c.UserContext(), services.CarQuery{CarFilter: filter})
	if err != nil {
		return fail(message, err)
	}
	return c.JSON(cars)
}

func (h *CarHandler) HandleCarsByType(c *fiber.Ctx) error {
	return h.listBy(c, repositories.CarFilter{Type: c.Params("type")}, "Failed to fetch cars by type")
}

func (h *CarHandler) HandleCarsByFuelType(c *fiber.Ctx) error {
	return h.listBy(c, repositories.CarFilter{FuelType: c.Params("fuelType")}, "Failed to fetch cars by fuel type")
}

func (h *CarHandler) HandleCarsByTag(c *fiber.Ctx) error {
	return h.listBy(c, repositories.CarFilter{Tag: c.Params("tag")}, "Failed to fetch cars by tag")
}

func (h *CarHandler) HandleCarsByBrand(c *fiber.Ctx) error {
	return h.listBy(c, repositories.CarFilter{Brand: c.Params("brand")}, "Failed to fetch cars by brand")
}

func (h *CarHandler) HandleCarsByCategory(c *fiber.Ctx) error {
	return h.listBy(c, repositories.CarFilter{Category: c.Params("categoryId")}, "Failed to fetch cars by category")
}

// HandleGetCar retrieves a single car by its ID.
func (h *CarHandler) HandleGetCar(c *fiber.Ctx) error {
	car, err := h.cars.GetCar(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail("Failed to fetch car", err)
	}
	return c.JSON(car)
}

// HandleCreateCar creates a new car.
func (h *CarHandler) HandleCreateCar(c *fiber.Ctx) error {
	var req models.CreateCarRequest
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}

	car, err := h.cars.CreateCar(c.UserContext(), req)
	if err != nil {
		return fail("Failed to create car", err)
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

// HandleUpdateCar applies the provided fields and echoes them with the id.
func (h *CarHandler) HandleUpdateCar(c *fiber.Ctx) error {
	id := c.Params("id")
	var patch models.CarPatch
	if err := bind(c, &patch, "Missing required fields"); err != nil {
		return err
	}

	changes, err := h.cars.UpdateCar(c.UserContext(), id, patch)
	if err != nil {
		return fail("Failed to update car", err)
	}
	return c.JSON(withID(id, changes))
}

// HandleDeleteCar deletes a car without checking that it exists.
func (h *CarHandler) HandleDeleteCar(c *fiber.Ctx) error {
	if err := h.cars.DeleteCar(c.UserContext(), c.Params("id")); err != nil {
		return fail("Failed to delete car", err)
	}
	return c.JSON(fiber.Map{"message": "Car deleted successfully"})
}

// HandleAnalytics reports the catalog totals.
func (h *CarHandler) HandleAnalytics(c *fiber.Ctx) error {
	counts, err := h.analytics.Summary(c.UserContext())
	if errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error":   "Request timed out",
			"details": "The analytics request took too long to process",
		})
	}
	if err != nil {
		return fail("Failed to fetch analytics", err)
	}
	return c.JSON(counts)
}

// HandleBulkUpdate applies a batch of car updates atomically.
func (h *CarHandler) HandleBulkUpdate(c *fiber.Ctx) error {
	var req models.BulkUpdateRequest
	if err := bind(c, &req, "Invalid updates format"); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Fields == nil {
			httpErr.Message = "Invalid updates format"
		}
		return err
	}

	result, err := h.cars.BulkUpdateCars(c.UserContext(), req.Updates)
	if err != nil {
		return fail("Failed to perform bulk update", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Updated %d cars", result.Updated),
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}

// HandleAdminDeleteCar deletes a car that must exist.
func (h *CarHandler) HandleAdminDeleteCar(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.cars.DeleteExistingCar(c.UserContext(), id); err != nil {
		return fail("Failed to delete car", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Car deleted successfully",
		"id":      id,
	})
}

// HandleAddCategory attaches a category to a car.
func (h *CarHandler) HandleAddCategory(c *fiber.Ctx) error {
	if err := h.cars.AddCategory(c.UserContext(), c.Params("id"), c.Params("categoryId")); err != nil {
		return fail("Failed to add category", err)
	}
	return c.JSON(fiber.Map{"message": "Category added successfully"})
}

// HandleRemoveCategory detaches a category from a car.
func (h *CarHandler) HandleRemoveCategory(c *fiber.Ctx) error {
	if err := h.cars.RemoveCategory(c.UserContext(), c.Params("id"), c.Params("categoryId")); err != nil {
		return fail("Failed to remove category", err)
	}
	return c.JSON(fiber.Map{"message": "Category removed successfully"})
}

// withID echoes the written fields of an update together with the id.
func withID(id string, changes map[string]interface{}) fiber.Map {
	out := fiber.Map{}
	for k, v := range changes {
		out[k] = v
	}
	out["id"] = id
	return out
}
