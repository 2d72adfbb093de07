package handlers

import (
	"context"
	"database/sql"
	"time"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const healthPingTimeout = 2 * time.Second

// HealthChecker reports store connectivity. *database.Gateway implements it.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Active() int64
	Stats() sql.DBStats
}

// HealthHandler serves the root greeting and the health probe.
type HealthHandler struct {
	checker HealthChecker
	service *services.ProductService
	logger  zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker, service *services.ProductService, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		service: service,
		logger:  logger.With().Str("handler", "health").Logger(),
	}
}

// RegisterRoutes registers the root and health routes with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

// HandleRoot returns a greeting.
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON("Welcome to the product catalog")
}

// HandleHealth pings the store, counts the catalog and reports pool usage.
// Either check failing answers 503.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
	defer cancel()

	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "up",
	}
	code := fiber.StatusOK

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		body["status"], body["database"] = "unhealthy", "down"
		code = fiber.StatusServiceUnavailable
	} else if count, err := h.service.CountProducts(ctx); err != nil {
		h.logger.Error().Err(err).Msg("counting products failed")
		body["status"] = "unhealthy"
		code = fiber.StatusServiceUnavailable
	} else {
		body["products"] = count
	}

	stats := h.checker.Stats()
	body["sessions"] = h.checker.Active()
	body["pool"] = fiber.Map{
		"open":   stats.OpenConnections,
		"in_use": stats.InUse,
		"idle":   stats.Idle,
	}
	return c.Status(code).JSON(body)
}
