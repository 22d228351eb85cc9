package handlers

import (
	"github.com/gofiber/fiber/v2"

	"carrental/internal/models"
	"carrental/internal/services"
)

// UserHandler handles HTTP requests for users. Passwords never leave the
// store: models.User does not serialize them.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes under /users.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/users")
	r.Get("/", h.HandleGetUsers)
	r.Get("/:id", h.HandleGetUser)
	r.Post("/", h.HandleCreateUser)
	r.Put("/:id", h.HandleUpdateUser)
	r.Post("/:id/favorites", h.HandleAddFavorite)
	r.Delete("/:id/favorites/:carId", h.HandleRemoveFavorite)
}

func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return fail("Failed to fetch users", err)
	}
	return c.JSON(users)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail("Failed to fetch user", err)
	}
	return c.JSON(user)
}

// HandleCreateUser registers a user with a unique email.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}

	user, err := h.service.RegisterUser(c.UserContext(), req)
	if err != nil {
		return fail("Failed to create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdateUser updates a user. id, email and password in the body are
// ignored.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")
	var patch models.UserPatch
	if err := bind(c, &patch, "Missing required fields"); err != nil {
		return err
	}

	changes, err := h.service.UpdateUser(c.UserContext(), id, patch)
	if err != nil {
		return fail("Failed to update user", err)
	}
	return c.JSON(withID(id, changes))
}

func (h *UserHandler) HandleAddFavorite(c *fiber.Ctx) error {
	var req models.FavoriteRequest
	if err := bind(c, &req, "Car ID is required"); err != nil {
		return err
	}

	if err := h.service.AddFavorite(c.UserContext(), c.Params("id"), req.CarID); err != nil {
		return fail("Failed to add car to favorites", err)
	}
	return c.JSON(fiber.Map{"message": "Car added to favorites"})
}

func (h *UserHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	if err := h.service.RemoveFavorite(c.UserContext(), c.Params("id"), c.Params("carId")); err != nil {
		return fail("Failed to remove car from favorites", err)
	}
	return c.JSON(fiber.Map{"message": "Car removed from favorites"})
}
