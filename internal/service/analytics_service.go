package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/report"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	apperrors "github.com/spec-kit/service-order-metrics/pkg/util"
)

// Period bounds an analysis by order creation time. From is inclusive, To exclusive;
// either may be nil.
type Period struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.From != nil && t.Before(*p.From) {
		return false
	}
	if p.To != nil && !t.Before(*p.To) {
		return false
	}
	return true
}

func (p Period) cacheKey(kind string) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s:%s:%s", kind, format(p.From), format(p.To))
}

// anchorLookback widens the snapshot so anchors finalized in the previous month can
// still be matched against follow-ups inside the period.
const anchorLookback = 1

// AnalyticsService loads order snapshots and runs the metrics engine over them.
type AnalyticsService struct {
	orders   repository.ServiceOrderRepository
	engine   *analytics.Engine
	cache    repository.MetricsCache
	cacheTTL time.Duration
	loc      *time.Location
	logger   *zap.Logger
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	OrderRepo repository.ServiceOrderRepository
	Engine    *analytics.Engine
	Cache     repository.MetricsCache
	CacheTTL  time.Duration
	// Location is the zone calendar days are judged in. Defaults to UTC.
	Location *time.Location
	Logger   *zap.Logger
}

// NewAnalyticsService builds the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		orders:   deps.OrderRepo,
		engine:   deps.Engine,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		loc:      loc,
		logger:   logger,
	}
}

// TimeMetrics computes SLA compliance for orders created in the period.
func (s *AnalyticsService) TimeMetrics(ctx context.Context, period Period) (domain.TimeMetrics, error) {
	var result domain.TimeMetrics
	if err := validatePeriod(period); err != nil {
		return result, err
	}
	if s.cached(ctx, period.cacheKey("time"), &result) {
		return result, nil
	}

	orders, err := s.snapshot(ctx, period.From, period.To)
	if err != nil {
		return result, err
	}
	result = s.engine.CalculateTimeMetrics(inPeriod(orders, period))
	s.store(ctx, period.cacheKey("time"), result)
	return result, nil
}

// ReopeningMetrics computes reopening statistics for follow-ups created in the period.
func (s *AnalyticsService) ReopeningMetrics(ctx context.Context, period Period) (domain.ReopeningMetrics, error) {
	var result domain.ReopeningMetrics
	if err := validatePeriod(period); err != nil {
		return result, err
	}
	if s.cached(ctx, period.cacheKey("reopening"), &result) {
		return result, nil
	}

	orders, pairs, err := s.matchPairs(ctx, period)
	if err != nil {
		return result, err
	}
	result = s.engine.SummarizeReopenings(orders, pairs)
	s.store(ctx, period.cacheKey("reopening"), result)
	return result, nil
}

// ReopeningPairs lists matched pairs whose follow-up was created in the period, most
// recent first.
func (s *AnalyticsService) ReopeningPairs(ctx context.Context, period Period) ([]domain.ReopeningPair, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	var pairs []domain.ReopeningPair
	if s.cached(ctx, period.cacheKey("pairs"), &pairs) {
		return pairs, nil
	}

	_, pairs, err := s.matchPairs(ctx, period)
	if err != nil {
		return nil, err
	}
	s.store(ctx, period.cacheKey("pairs"), pairs)
	return pairs, nil
}

// ExportPairs writes the period's reopening pairs as a spreadsheet.
func (s *AnalyticsService) ExportPairs(ctx context.Context, period Period, w io.Writer) error {
	pairs, err := s.ReopeningPairs(ctx, period)
	if err != nil {
		return err
	}
	if err := report.WritePairs(w, pairs); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// matchPairs returns the period's orders and the pairs whose follow-up lies inside it.
func (s *AnalyticsService) matchPairs(ctx context.Context, period Period) ([]domain.ServiceOrder, []domain.ReopeningPair, error) {
	from := period.From
	if from != nil {
		widened := from.AddDate(0, -anchorLookback, 0)
		from = &widened
	}
	snapshot, err := s.snapshot(ctx, from, period.To)
	if err != nil {
		return nil, nil, err
	}

	all := s.engine.FindAllPairs(snapshot)
	pairs := make([]domain.ReopeningPair, 0, len(all))
	for _, p := range all {
		if period.Contains(p.FollowUp.CreatedAt) {
			pairs = append(pairs, p)
		}
	}
	return inPeriod(snapshot, period), pairs, nil
}

// snapshot loads orders with their timestamps moved into the analytics zone, since the
// month window and the business calendar work on local calendar days.
func (s *AnalyticsService) snapshot(ctx context.Context, from, to *time.Time) ([]domain.ServiceOrder, error) {
	orders, err := s.orders.Snapshot(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range orders {
		orders[i].CreatedAt = orders[i].CreatedAt.In(s.loc)
		if orders[i].CompletedAt != nil {
			completed := orders[i].CompletedAt.In(s.loc)
			orders[i].CompletedAt = &completed
		}
	}
	return orders, nil
}

func (s *AnalyticsService) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("metrics cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *AnalyticsService) store(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("metrics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func validatePeriod(p Period) error {
	if p.From != nil && p.To != nil && !p.From.Before(*p.To) {
		return apperrors.NewValidationError("period start must precede its end", nil)
	}
	return nil
}

func inPeriod(orders []domain.ServiceOrder, period Period) []domain.ServiceOrder {
	out := make([]domain.ServiceOrder, 0, len(orders))
	for _, o := range orders {
		if period.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out
}
