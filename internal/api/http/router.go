package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-order-metrics/internal/api/http/handlers"
	"github.com/spec-kit/service-order-metrics/internal/auth"
	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Orders         *handlers.OrdersHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	authenticated := auth.RequireRole()
	app.Post("/analysts", cfg.AuthMiddleware, auth.RequireRole(domain.AnalystRoleAdmin), cfg.Auth.CreateAnalyst)

	importers := auth.RequireRole(domain.AnalystRoleImporter, domain.AnalystRoleAdmin)
	orders := app.Group("/orders", cfg.AuthMiddleware, authenticated)
	orders.Post("/", importers, cfg.Orders.Import)
	orders.Post("/import", importers, cfg.Orders.ImportWorkbook)
	orders.Get("/", cfg.Orders.List)

	metrics := app.Group("/metrics", cfg.AuthMiddleware, authenticated)
	metrics.Get("/time", cfg.Metrics.Time)
	metrics.Get("/reopening", cfg.Metrics.Reopening)
	metrics.Get("/reopening/pairs", cfg.Metrics.Pairs)
	metrics.Get("/reopening/pairs/export", cfg.Metrics.ExportPairs)
}
