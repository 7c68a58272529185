package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var seen []string
	d.Subscribe(EventOrdersImported, func(_ context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventOrdersImported, func(_ context.Context, e Event) error {
		payload, ok := e.Payload.(OrdersImportedPayload)
		require.True(t, ok)
		seen = append(seen, payload.BatchID)
		return nil
	})

	event := NewEvent(EventOrdersImported, "analyst-1", OrdersImportedPayload{BatchID: "b1"})
	require.NoError(t, d.Publish(context.Background(), event))

	assert.Equal(t, []string{"first", "b1"}, seen)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: "unknown"}))
}

func TestDispatcherSurvivesPanickingHandler(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	delivered := false
	d.Subscribe(EventOrdersImported, func(context.Context, Event) error { panic("cache gone") })
	d.Subscribe(EventOrdersImported, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventOrdersImported, "", OrdersImportedPayload{})))
	assert.True(t, delivered)
	require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "cache gone")
}
