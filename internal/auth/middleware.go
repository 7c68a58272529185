package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Analyst *domain.Analyst
}

// Role returns the caller's role.
func (p *Principal) Role() domain.AnalystRole {
	if p == nil || p.Analyst == nil {
		return ""
	}
	return p.Analyst.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	analysts repository.AnalystRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, analysts repository.AnalystRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, analysts: analysts}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	analyst, err := m.analysts.GetByID(c.UserContext(), claims.AnalystID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("analyst not found")
		}
		return apperrors.MapError(err)
	}
	if !analyst.Active {
		return apperrors.NewUnauthorized("analyst inactive")
	}

	c.Locals(principalKey, &Principal{Analyst: analyst})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
