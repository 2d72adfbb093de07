package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// App wires the gateway, the optional event publisher and the HTTP surface together.
type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	gateway *database.Gateway
	events  *rabbitmq.Client
	server  *fiber.App
}

// New opens the store, applies the startup seed policy and builds the HTTP app.
// Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	gateway, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := SeedOnStart(ctx, cfg.Seed, gateway, logger); err != nil {
		gateway.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		gateway: gateway,
	}

	// Keep the interface nil when events are disabled.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
		}, logger)
		if err != nil {
			gateway.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.events = client
		publisher = client
	} else {
		logger.Info().Msg("RABBITMQ_URL not set, product events disabled")
	}

	productRepo := repositories.NewGORMProductRepository(gateway)
	productService := services.NewProductService(productRepo, publisher, logger)
	a.server = NewServer(cfg.Server, productService, gateway, logger)

	return a, nil
}

// SeedOnStart runs the seed loader according to cfg. A failure is only returned in strict mode.
func SeedOnStart(ctx context.Context, cfg config.SeedConfig, gateway *database.Gateway, logger zerolog.Logger) error {
	if !cfg.OnStart {
		logger.Info().Msg("startup seeding disabled")
		return nil
	}

	_, err := database.Seed(ctx, gateway, database.DefaultProducts(), logger)
	if err == nil {
		return nil
	}
	if cfg.Strict {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Warn().Err(err).Msg("seeding failed, continuing without default products")
	return nil
}

// NewServer builds the Fiber app with middleware and every route registered.
func NewServer(cfg config.ServerConfig, productService *services.ProductService, checker handlers.HealthChecker, logger zerolog.Logger) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               "catalog",
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	server.Use(middleware.RequestID())
	server.Use(middleware.RequestLogger(logger.With().Str("component", "http").Logger()))
	server.Use(recover.New(recover.Config{EnableStackTrace: true}))
	server.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// --- Routes ---
	handlers.NewHealthHandler(checker, productService, logger).RegisterRoutes(server)
	handlers.NewProductHandler(productService, logger).RegisterRoutes(server)

	return server
}

// corsConfig allows every method and header from the configured origins.
// Credentials cannot be combined with a wildcard origin.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodPatch, fiber.MethodHead, fiber.MethodOptions}, ","),
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}

// Server exposes the Fiber app, mainly for tests.
func (a *App) Server() *fiber.App {
	return a.server
}

// Gateway exposes the store gateway.
func (a *App) Gateway() *database.Gateway {
	return a.gateway
}

// Events returns the RabbitMQ client, or nil when events are disabled.
func (a *App) Events() *rabbitmq.Client {
	return a.events
}

// Listen blocks serving HTTP on the configured port.
func (a *App) Listen() error {
	a.logger.Info().Str("addr", a.cfg.Server.Port).Msg("starting server")
	return a.server.Listen(a.cfg.Server.Port)
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is done
// and then closes the event client and the gateway.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.gateway.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
