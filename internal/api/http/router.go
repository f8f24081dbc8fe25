package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bug-service/internal/api/http/handlers"
	"github.com/spec-kit/bug-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Bugs           *handlers.BugsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	bugs := app.Group("/bugs", cfg.AuthMiddleware.Handle)
	bugs.Post("/:id/reopen", cfg.Bugs.Reopen)
}
