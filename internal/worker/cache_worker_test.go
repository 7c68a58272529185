package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/events"
)

type countingCache struct {
	invalidations int
	err           error
}

func (c *countingCache) Get(context.Context, string, any) error { return errors.New("unused") }

func (c *countingCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return c.err
}

func TestCacheInvalidatorOnImport(t *testing.T) {
	cache := &countingCache{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	NewCacheInvalidator(cache, zap.NewNop()).Register(dispatcher)

	event := events.NewEvent(events.EventOrdersImported, "", events.OrdersImportedPayload{BatchID: "b1", Persisted: 3})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	assert.Equal(t, 1, cache.invalidations)
}

func TestCacheInvalidatorReportsFailure(t *testing.T) {
	cache := &countingCache{err: errors.New("redis down")}
	w := NewCacheInvalidator(cache, zap.NewNop())

	err := w.handleOrdersImported(context.Background(), events.NewEvent(events.EventOrdersImported, "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
