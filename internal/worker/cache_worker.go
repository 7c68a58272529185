package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/events"
	"github.com/spec-kit/service-order-metrics/internal/repository"
)

// CacheInvalidator drops cached metrics whenever new orders land.
type CacheInvalidator struct {
	cache  repository.MetricsCache
	logger *zap.Logger
}

// NewCacheInvalidator creates the worker.
func NewCacheInvalidator(cache repository.MetricsCache, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

// Register subscribes the worker to import events.
func (w *CacheInvalidator) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil || w.cache == nil {
		return
	}
	dispatcher.Subscribe(events.EventOrdersImported, w.handleOrdersImported)
}

func (w *CacheInvalidator) handleOrdersImported(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_id", event.ID)}
	if payload, ok := event.Payload.(events.OrdersImportedPayload); ok {
		fields = append(fields,
			zap.String("batch_id", payload.BatchID),
			zap.String("source", payload.Source),
			zap.Int("persisted", payload.Persisted),
			zap.Int("rejected", payload.Rejected))
	}

	if err := w.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate metrics cache: %w", err)
	}
	w.logger.Info("OrdersImported", fields...)
	return nil
}
