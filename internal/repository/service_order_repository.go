package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// OrderFilter captures listing and snapshot parameters.
type OrderFilter struct {
	ClientCode  *string
	Technician  *string
	City        *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ServiceOrderRepository encapsulates service order persistence.
type ServiceOrderRepository interface {
	UpsertBatch(ctx context.Context, orders []domain.ServiceOrder) (int, error)
	ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error)
	// Snapshot returns orders created up to `to` and active (created or finalized) from `from`.
	Snapshot(ctx context.Context, from, to *time.Time) ([]domain.ServiceOrder, error)
	Count(ctx context.Context) (int64, error)
}

type serviceOrderRepository struct {
	pool *pgxpool.Pool
}

// NewServiceOrderRepository instantiates repository.
func NewServiceOrderRepository(pool *pgxpool.Pool) ServiceOrderRepository {
	return &serviceOrderRepository{pool: pool}
}

const orderColumns = `order_code, item_code, client_code, technician, service_type, sub_type, reason, status,
       created_at, completed_at, city, neighborhood, action_taken, category, adjusted_hours,
       sla_met, include_in_metrics, import_batch_id, imported_at`

const upsertOrderQuery = `
    INSERT INTO service_orders (` + orderColumns + `)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
    ON CONFLICT (order_code, item_code) DO UPDATE SET
        client_code=EXCLUDED.client_code, technician=EXCLUDED.technician,
        service_type=EXCLUDED.service_type, sub_type=EXCLUDED.sub_type, reason=EXCLUDED.reason,
        status=EXCLUDED.status, created_at=EXCLUDED.created_at, completed_at=EXCLUDED.completed_at,
        city=EXCLUDED.city, neighborhood=EXCLUDED.neighborhood, action_taken=EXCLUDED.action_taken,
        category=EXCLUDED.category, adjusted_hours=EXCLUDED.adjusted_hours, sla_met=EXCLUDED.sla_met,
        include_in_metrics=EXCLUDED.include_in_metrics, import_batch_id=EXCLUDED.import_batch_id,
        imported_at=EXCLUDED.imported_at`

// UpsertBatch writes the orders in one round trip, replacing rows with the same
// order/item code.
func (r *serviceOrderRepository) UpsertBatch(ctx context.Context, orders []domain.ServiceOrder) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range orders {
		o := &orders[i]
		batch.Queue(upsertOrderQuery,
			o.OrderCode,
			o.ItemCode,
			o.ClientCode,
			o.Technician,
			o.ServiceType,
			o.SubType,
			o.Reason,
			string(o.Status),
			o.CreatedAt,
			o.CompletedAt,
			o.City,
			o.Neighborhood,
			o.ActionTaken,
			string(o.Category),
			o.AdjustedHours,
			o.SLAMet,
			o.IncludeInMetrics,
			o.ImportBatchID,
			o.ImportedAt,
		)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	results := tx.SendBatch(ctx, batch)
	affected := 0
	for i := range orders {
		cmd, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("upsert order %s: %w", orders[i].Key(), err)
		}
		affected += int(cmd.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *serviceOrderRepository) ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		orderColumns, strings.Join(clauses, " AND "), limit, offset)
	return r.query(ctx, query, args...)
}

// Snapshot loads every order created up to `to` that was created or finalized at or after
// `from`, oldest first. Orders opened before `from` but finalized after it are needed as
// reopening anchors.
func (r *serviceOrderRepository) Snapshot(ctx context.Context, from, to *time.Time) ([]domain.ServiceOrder, error) {
	clauses, args := filterClauses(OrderFilter{CreatedTo: to})
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("(created_at >= $%[1]d OR completed_at >= $%[1]d)", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE %s ORDER BY created_at ASC, order_code ASC, item_code ASC`,
		orderColumns, strings.Join(clauses, " AND "))
	return r.query(ctx, query, args...)
}

func (r *serviceOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_orders`).Scan(&n)
	return n, err
}

func filterClauses(filter OrderFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientCode != nil {
		args = append(args, *filter.ClientCode)
		clauses = append(clauses, fmt.Sprintf("client_code=$%d", len(args)))
	}
	if filter.Technician != nil {
		args = append(args, *filter.Technician)
		clauses = append(clauses, fmt.Sprintf("technician=$%d", len(args)))
	}
	if filter.City != nil && strings.TrimSpace(*filter.City) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.City)))
		clauses = append(clauses, fmt.Sprintf("LOWER(TRIM(city))=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return clauses, args
}

func (r *serviceOrderRepository) query(ctx context.Context, query string, args ...any) ([]domain.ServiceOrder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]domain.ServiceOrder, error) {
	var result []domain.ServiceOrder
	for rows.Next() {
		var (
			o        domain.ServiceOrder
			status   string
			category string
		)
		if err := rows.Scan(
			&o.OrderCode,
			&o.ItemCode,
			&o.ClientCode,
			&o.Technician,
			&o.ServiceType,
			&o.SubType,
			&o.Reason,
			&status,
			&o.CreatedAt,
			&o.CompletedAt,
			&o.City,
			&o.Neighborhood,
			&o.ActionTaken,
			&category,
			&o.AdjustedHours,
			&o.SLAMet,
			&o.IncludeInMetrics,
			&o.ImportBatchID,
			&o.ImportedAt,
		); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		o.Category = domain.Category(category)
		result = append(result, o)
	}
	return result, rows.Err()
}
