package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/auth"
	"github.com/spec-kit/service-order-metrics/internal/config"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

const minPasswordLength = 8

// AuthService coordinates analyst login and provisioning.
type AuthService struct {
	analysts   repository.AnalystRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	bootstrap  struct{ email, password string }
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, analysts repository.AnalystRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		analysts:   analysts,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
	s.bootstrap.email = strings.TrimSpace(cfg.BootstrapAdminEmail)
	s.bootstrap.password = cfg.BootstrapAdminPass
	return s
}

// CreateAnalystInput describes a new analyst.
type CreateAnalystInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.AnalystRole
}

// Login authenticates an analyst and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Analyst, string, time.Time, error) {
	analyst, err := s.analysts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !analyst.Active {
		return nil, "", time.Time{}, apperrors.NewForbidden("analyst inactive")
	}
	if err := auth.ComparePassword(analyst.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(analyst.ID, analyst.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return analyst, token, exp, nil
}

// CreateAnalyst provisions a new active analyst.
func (s *AuthService) CreateAnalyst(ctx context.Context, input CreateAnalystInput) (*domain.Analyst, error) {
	email := strings.TrimSpace(input.Email)
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "invalid"
	}
	switch {
	case len(input.Password) < minPasswordLength:
		details["password"] = "too short"
	case len(input.Password) > auth.MaxPasswordBytes:
		details["password"] = "too long"
	}
	switch input.Role {
	case domain.AnalystRoleViewer, domain.AnalystRoleImporter, domain.AnalystRoleAdmin:
	default:
		details["role"] = "unknown"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid analyst", details)
	}

	if _, err := s.analysts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	analyst := &domain.Analyst{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.analysts.Create(ctx, analyst); err != nil {
		return nil, err
	}
	return analyst, nil
}

// EnsureBootstrapAdmin creates the configured admin account when it does not exist.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.bootstrap.email == "" || s.bootstrap.password == "" {
		return nil
	}
	_, err := s.analysts.GetByEmail(ctx, s.bootstrap.email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	admin, err := s.CreateAnalyst(ctx, CreateAnalystInput{
		Name:     "Administrator",
		Email:    s.bootstrap.email,
		Password: s.bootstrap.password,
		Role:     domain.AnalystRoleAdmin,
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("analyst_id", admin.ID), zap.String("email", admin.Email))
	return nil
}
