package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// AnalystRepository manages metrics API accounts.
type AnalystRepository interface {
	Create(ctx context.Context, analyst *domain.Analyst) error
	GetByEmail(ctx context.Context, email string) (*domain.Analyst, error)
	GetByID(ctx context.Context, id string) (*domain.Analyst, error)
}

type analystRepository struct {
	pool *pgxpool.Pool
}

// NewAnalystRepository instantiates repository.
func NewAnalystRepository(pool *pgxpool.Pool) AnalystRepository {
	return &analystRepository{pool: pool}
}

func (r *analystRepository) Create(ctx context.Context, analyst *domain.Analyst) error {
	const query = `
        INSERT INTO analysts (id, email, name, password_hash, role, active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		analyst.ID,
		analyst.Email,
		analyst.Name,
		analyst.PasswordHash,
		string(analyst.Role),
		analyst.Active,
	).Scan(&analyst.CreatedAt)
}

func (r *analystRepository) GetByEmail(ctx context.Context, email string) (*domain.Analyst, error) {
	const query = `
        SELECT id, email, name, password_hash, role, active, created_at
        FROM analysts WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *analystRepository) GetByID(ctx context.Context, id string) (*domain.Analyst, error) {
	const query = `
        SELECT id, email, name, password_hash, role, active, created_at
        FROM analysts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *analystRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Analyst, error) {
	var (
		analyst domain.Analyst
		role    string
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&analyst.ID,
		&analyst.Email,
		&analyst.Name,
		&analyst.PasswordHash,
		&role,
		&analyst.Active,
		&analyst.CreatedAt,
	); err != nil {
		return nil, err
	}
	analyst.Role = domain.AnalystRole(role)
	return &analyst, nil
}
