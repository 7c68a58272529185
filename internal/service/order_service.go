package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/events"
	"github.com/spec-kit/service-order-metrics/internal/importer"
	"github.com/spec-kit/service-order-metrics/internal/observability"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

// Import sources recorded on each batch.
const (
	SourceAPI      = "api"
	SourceWorkbook = "xlsx"
)

// OrderService coordinates order imports and listings.
type OrderService struct {
	orders     repository.ServiceOrderRepository
	engine     *analytics.Engine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	workbook   importer.Options
	logger     *zap.Logger
	now        func() time.Time
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.ServiceOrderRepository
	Engine     *analytics.Engine
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Workbook   importer.Options
	Logger     *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		workbook:   deps.Workbook,
		logger:     logger,
		now:        time.Now,
	}
}

// Import enriches and stores a batch of orders. Orders missing an identity or a
// creation timestamp are rejected and reported on the returned batch.
func (s *OrderService) Import(ctx context.Context, orders []domain.ServiceOrder, source, actorID string) (*domain.ImportBatch, error) {
	if len(orders) == 0 {
		return nil, apperrors.NewValidationError("no orders supplied", nil)
	}
	return s.store(ctx, orders, nil, source, actorID)
}

// ImportWorkbook parses an XLSX export and imports its rows.
func (s *OrderService) ImportWorkbook(ctx context.Context, r io.Reader, actorID string) (*domain.ImportBatch, error) {
	result, err := importer.ParseWorkbook(r, s.workbook)
	if err != nil {
		if errors.Is(err, importer.ErrHeaderNotFound) {
			return nil, apperrors.NewValidationError("workbook has no recognisable header row", nil)
		}
		return nil, apperrors.NewValidationError("unreadable workbook", map[string]any{"cause": err.Error()})
	}

	problems := make([]string, 0, len(result.Problems))
	for _, p := range result.Problems {
		problems = append(problems, p.String())
	}
	s.logger.Info("workbook parsed",
		zap.String("sheet", result.Sheet),
		zap.Int("header_row", result.HeaderRow),
		zap.Int("orders", len(result.Orders)),
		zap.Int("problems", len(problems)))

	return s.store(ctx, result.Orders, problems, SourceWorkbook, actorID)
}

// List returns persisted orders matching the filter.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]domain.ServiceOrder, error) {
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return nil, apperrors.NewValidationError("created_to precedes created_from", nil)
	}
	return s.orders.ListWithFilter(ctx, filter)
}

func (s *OrderService) store(ctx context.Context, orders []domain.ServiceOrder, problems []string, source, actorID string) (*domain.ImportBatch, error) {
	now := s.now().UTC()
	batch := &domain.ImportBatch{
		ID:          uuid.NewString(),
		Source:      source,
		Received:    len(orders) + len(problems),
		ImportedAt:  now,
		RowProblems: problems,
	}

	accepted := make([]domain.ServiceOrder, 0, len(orders))
	seen := make(map[string]int, len(orders))
	for i := range orders {
		if problem := validateOrder(&orders[i]); problem != "" {
			batch.RowProblems = append(batch.RowProblems, orders[i].Key()+": "+problem)
			continue
		}
		enriched := s.engine.Enrich(orders[i])
		enriched.ImportBatchID = batch.ID
		enriched.ImportedAt = now

		// A repeated order/item code within one batch keeps the last occurrence.
		if idx, dup := seen[enriched.Key()]; dup {
			accepted[idx] = enriched
			continue
		}
		seen[enriched.Key()] = len(accepted)
		accepted = append(accepted, enriched)
	}
	batch.Rejected = len(batch.RowProblems)

	for i := range accepted {
		if accepted[i].IncludeInMetrics {
			batch.Eligible++
		}
	}

	if len(accepted) > 0 {
		persisted, err := s.orders.UpsertBatch(ctx, accepted)
		if err != nil {
			return nil, err
		}
		batch.Persisted = persisted
	}

	s.metrics.RecordImport(batch.Persisted, batch.Rejected)
	s.logger.Info("orders imported",
		zap.String("batch_id", batch.ID),
		zap.String("source", source),
		zap.Int("received", batch.Received),
		zap.Int("persisted", batch.Persisted),
		zap.Int("eligible", batch.Eligible),
		zap.Int("rejected", batch.Rejected))

	if s.dispatcher != nil && batch.Persisted > 0 {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventOrdersImported, actorID, events.OrdersImportedPayload{
			BatchID:   batch.ID,
			Source:    source,
			Received:  batch.Received,
			Persisted: batch.Persisted,
			Eligible:  batch.Eligible,
			Rejected:  batch.Rejected,
		}))
	}
	return batch, nil
}

func validateOrder(o *domain.ServiceOrder) string {
	switch {
	case strings.TrimSpace(o.OrderCode) == "":
		return "missing order code"
	case strings.TrimSpace(o.ClientCode) == "":
		return "missing client code"
	case o.CreatedAt.IsZero():
		return "missing creation date"
	}
	return ""
}
