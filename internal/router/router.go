package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mergington-api/internal/config"
	"github.com/noah-isme/mergington-api/internal/handler"
	"github.com/noah-isme/mergington-api/internal/observability"
)

// IndexPath is where the root URL redirects to.
const IndexPath = "/static/index.html"

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler *handler.ActivityHandler
	SignupLimiter   fiber.Handler
	StartedAt       time.Time
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/", handler.RedirectToIndex(IndexPath))
	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	}
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	api.Get("/health", handler.HealthCheck(cfg, startedAt))

	if deps.ActivityHandler != nil {
		var mutating []fiber.Handler
		if deps.SignupLimiter != nil {
			mutating = append(mutating, deps.SignupLimiter)
		}
		deps.ActivityHandler.Register(app.Group("/activities"), mutating...)
	}
}
