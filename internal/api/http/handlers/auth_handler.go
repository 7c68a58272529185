package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-order-metrics/internal/api/dto"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

// AuthHandler exposes login and analyst provisioning.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	analyst, token, exp, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"analyst": analystResponse(analyst),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// CreateAnalyst handles POST /analysts.
func (h *AuthHandler) CreateAnalyst(c *fiber.Ctx) error {
	var req dto.CreateAnalystRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	analyst, err := h.authService.CreateAnalyst(c.UserContext(), service.CreateAnalystInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.AnalystRole(strings.ToUpper(strings.TrimSpace(req.Role))),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": analystResponse(analyst)})
}
