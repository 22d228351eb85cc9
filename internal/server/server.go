package server

import (
	"context"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/events"
	"carrental/internal/handlers"
	"carrental/internal/middleware"
	"carrental/internal/repositories"
	"carrental/internal/services"
)

var (
	localhostOrigin = regexp.MustCompile(`^http://localhost:\d+$`)
	vercelOrigin    = regexp.MustCompile(`^https://.*\.vercel\.app$`)
)

// Deps are the collaborators the HTTP server is composed from. Verifier may
// be nil, in which case admin routes reject every request.
type Deps struct {
	Config    *config.Config
	Repos     *repositories.Repositories
	Verifier  auth.Verifier
	Publisher events.Publisher
	// AccessLog enables the request logger.
	AccessLog bool
}

// New builds the Fiber app serving the catalog API.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(cfg.IsDevelopment()),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: AllowOrigin(cfg.FrontendURL),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Cache-Control",
		ExposeHeaders:    "Content-Type,Authorization,Cache-Control",
		AllowCredentials: true,
	}))
	app.Use(middleware.Timeout(cfg.RequestTimeout))

	// Services
	carService := services.NewCarService(d.Repos.Cars, d.Repos.Categories, d.Publisher)
	brandService := services.NewBrandService(d.Repos.Brands, d.Publisher)
	categoryService := services.NewCategoryService(d.Repos.Categories, d.Publisher)
	userService := services.NewUserService(d.Repos.Users)
	analyticsService := services.NewAnalyticsService(d.Repos.Cars, d.Repos.Brands, d.Repos.Categories, cfg.AnalyticsTimeout)

	// Admin policies differ per router
	carsAdmin := middleware.RequireAdmin(d.Verifier, auth.PolicyFor(cfg.Auth.CarsAdminDomain))
	categoriesAdmin := middleware.RequireAdmin(d.Verifier, auth.PolicyFor(cfg.Auth.CategoriesAdminDomain))

	handlers.NewHealthHandler(d.Verifier).RegisterRoutes(app)

	api := app.Group("/api")
	handlers.NewUserHandler(userService).RegisterRoutes(api)
	handlers.NewCarHandler(carService, analyticsService, carsAdmin).RegisterRoutes(api)
	handlers.NewBrandHandler(brandService).RegisterRoutes(api)
	handlers.NewCategoryHandler(categoryService, categoriesAdmin).RegisterRoutes(api)

	app.Use(NotFound)
	return app
}

// AllowOrigin admits the configured frontend, any localhost port and any
// vercel deployment.
func AllowOrigin(frontendURL string) func(origin string) bool {
	return func(origin string) bool {
		return (frontendURL != "" && origin == frontendURL) ||
			localhostOrigin.MatchString(origin) ||
			vercelOrigin.MatchString(origin)
	}
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "Not Found",
		"details": "Cannot " + c.Method() + " " + c.OriginalURL(),
	})
}

// Run serves app on addr until ctx is cancelled, then shuts it down.
func Run(ctx context.Context, app *fiber.App, addr string) error {
	errs := make(chan error, 1)
	go func() {
		grip.Info(message.Fields{
			"message": "starting server",
			"addr":    addr,
		})
		errs <- app.Listen(addr)
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	grip.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}
	grip.Info("server gracefully stopped")
	return nil
}
