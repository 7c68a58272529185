package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-order-metrics/internal/api/dto"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

// UploadField is the multipart field carrying the workbook.
const UploadField = "file"

// OrdersHandler exposes order import and listing.
type OrdersHandler struct {
	orders         *service.OrderService
	maxUploadBytes int64
	dates          *DateParser
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService, maxUploadBytes int64, dates *DateParser) *OrdersHandler {
	return &OrdersHandler{orders: orders, maxUploadBytes: maxUploadBytes, dates: dates}
}

// Import handles POST /orders.
func (h *OrdersHandler) Import(c *fiber.Ctx) error {
	var req dto.ImportOrdersRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	orders := make([]domain.ServiceOrder, 0, len(req.Orders))
	for _, o := range req.Orders {
		orders = append(orders, orderFromRequest(o))
	}

	batch, err := h.orders.Import(c.UserContext(), orders, service.SourceAPI, actorID(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": importBatchResponse(batch)})
}

// ImportWorkbook handles POST /orders/import.
func (h *OrdersHandler) ImportWorkbook(c *fiber.Ctx) error {
	header, err := c.FormFile(UploadField)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "workbook file required")
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return fiber.NewError(http.StatusRequestEntityTooLarge, "workbook exceeds upload limit")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		return fiber.NewError(http.StatusBadRequest, "only .xlsx workbooks are supported")
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()

	batch, err := h.orders.ImportWorkbook(c.UserContext(), file, actorID(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": importBatchResponse(batch)})
}

// List handles GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	period, err := h.dates.Period(c)
	if err != nil {
		return err
	}

	filter := repository.OrderFilter{CreatedFrom: period.From}
	if period.To != nil {
		// the repository bound is inclusive
		to := period.To.Add(-1)
		filter.CreatedTo = &to
	}
	if client := c.Query("client_code"); client != "" {
		filter.ClientCode = &client
	}
	if tech := c.Query("technician"); tech != "" {
		filter.Technician = &tech
	}
	if city := c.Query("city"); city != "" {
		filter.City = &city
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	if pageSize > 500 {
		pageSize = 500
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	orders, err := h.orders.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}
