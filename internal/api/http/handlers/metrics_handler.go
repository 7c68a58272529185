package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/api/dto"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MetricsHandler exposes SLA and reopening analytics.
type MetricsHandler struct {
	analytics *service.AnalyticsService
	goals     analytics.SLAGoals
	dates     *DateParser
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(svc *service.AnalyticsService, goals analytics.SLAGoals, dates *DateParser) *MetricsHandler {
	return &MetricsHandler{analytics: svc, goals: goals, dates: dates}
}

// Time handles GET /metrics/time.
func (h *MetricsHandler) Time(c *fiber.Ctx) error {
	period, err := h.dates.Period(c)
	if err != nil {
		return err
	}
	metrics, err := h.analytics.TimeMetrics(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timeMetricsResponse(period, metrics, h.goals)})
}

// Reopening handles GET /metrics/reopening.
func (h *MetricsHandler) Reopening(c *fiber.Ctx) error {
	period, err := h.dates.Period(c)
	if err != nil {
		return err
	}
	metrics, err := h.analytics.ReopeningMetrics(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reopeningMetricsResponse(period, metrics)})
}

// Pairs handles GET /metrics/reopening/pairs.
func (h *MetricsHandler) Pairs(c *fiber.Ctx) error {
	period, err := h.dates.Period(c)
	if err != nil {
		return err
	}
	pairs, err := h.analytics.ReopeningPairs(c.UserContext(), period)
	if err != nil {
		return err
	}
	resp := make([]dto.ReopeningPairResponse, 0, len(pairs))
	for i := range pairs {
		resp = append(resp, pairResponse(&pairs[i]))
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{"total": len(resp), "period": periodResponse(period)},
	})
}

// ExportPairs handles GET /metrics/reopening/pairs/export.
func (h *MetricsHandler) ExportPairs(c *fiber.Ctx) error {
	period, err := h.dates.Period(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.analytics.ExportPairs(c.UserContext(), period, &buf); err != nil {
		return err
	}

	name := fmt.Sprintf("reaberturas_%s.xlsx", time.Now().In(h.dates.Location()).Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(buf.Bytes())
}
