package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

const readinessTimeout = 2 * time.Second

// DependencyCheck probes one backing service during readiness.
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// OrderCounter reports how many service orders are stored.
type OrderCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	orders      OrderCounter
	checks      []DependencyCheck
}

// NewHealthHandler returns a handler probing checks in the order given.
func NewHealthHandler(serviceName, version string, orders OrderCounter, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, orders: orders, checks: checks}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every dependency and, when all answer, reports the stored order count.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	deps := make(map[string]any, len(h.checks))
	ready := true
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			deps[check.Name] = err.Error()
			ready = false
			continue
		}
		deps[check.Name] = "ok"
	}
	if !ready {
		return apperrors.NewDomainError("DEPENDENCY_UNAVAILABLE", "one or more dependencies unavailable", fiber.StatusServiceUnavailable, deps)
	}

	body := fiber.Map{
		"status":       "ready",
		"service":      h.serviceName,
		"dependencies": deps,
	}
	if h.orders != nil {
		count, err := h.orders.Count(ctx)
		if err != nil {
			return apperrors.NewUnavailable("order store unavailable", err)
		}
		body["stored_orders"] = count
	}
	return c.JSON(body)
}
