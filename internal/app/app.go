// Package app assembles the HTTP application from its dependencies.
package app

import (
	"context"
	"time"

	"autoshop/internal/config"
	"autoshop/internal/handlers"
	"autoshop/internal/middleware"
	"autoshop/internal/repositories"
	"autoshop/internal/services"
	"autoshop/pkg/events"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Publisher events.Publisher
	Logger    zerolog.Logger
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// Services are the business services behind the HTTP layer.
type Services struct {
	Auth       *services.AuthService
	Catalog    *services.CatalogService
	Carts      *services.CartService
	Orders     *services.OrderService
	Promotions *services.PromotionService
	Settings   *services.SettingsService
}

// NewServices wires repositories and services over deps.DB.
func NewServices(deps Deps) *Services {
	store := repositories.NewGORMStore(deps.DB)
	uow := repositories.NewGORMUnitOfWork(deps.DB)
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	pageSize := deps.Config.App.PageSize

	return &Services{
		Auth:       services.NewAuthService(store.Users, deps.Config.JWT, deps.Logger),
		Catalog:    services.NewCatalogService(store, pageSize, deps.Logger),
		Carts:      services.NewCartService(store, uow, deps.Logger),
		Orders:     services.NewOrderService(store, uow, publisher, pageSize, deps.Logger),
		Promotions: services.NewPromotionService(store, deps.Logger),
		Settings:   services.NewSettingsService(store.Settings, deps.Logger),
	}
}

// NewApp builds the fiber application with every route under /api.
func NewApp(deps Deps) (*fiber.App, *Services) {
	svc := NewServices(deps)

	app := fiber.New(fiber.Config{
		AppName:      "autoshop",
		ErrorHandler: handlers.ErrorHandler(deps.Logger),
	})

	app.Use(recover.New())
	if deps.RequestLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if err := ping(c.Context(), deps.DB); err != nil {
			deps.Logger.Warn().Err(err).Msg("health check: database unreachable")
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	guards := handlers.Guards{
		Auth:     middleware.AuthRequired(svc.Auth, deps.Logger),
		Optional: middleware.OptionalAuth(svc.Auth),
		Admin:    middleware.AdminRequired(),
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(api, guards)
	handlers.NewCatalogHandler(svc.Catalog, svc.Settings).RegisterRoutes(api, guards)
	handlers.NewCartHandler(svc.Carts).RegisterRoutes(api, guards)
	handlers.NewOrderHandler(svc.Orders, svc.Settings).RegisterRoutes(api, guards)
	handlers.NewPromotionHandler(svc.Promotions).RegisterRoutes(api, guards)
	handlers.NewSettingsHandler(svc.Settings).RegisterRoutes(api, guards)

	return app, svc
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
