package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/channels/gochannel"
	"github.com/promoteai/superrag/pkg/events"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return NewWatermillEventBus(pub, sub)
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.IndexTaskCompleted, 1)

	err := bus.Handle(events.IndexTaskCompletedEvent, func(_ context.Context, event interface{}) error {
		completed, ok := event.(*events.IndexTaskCompleted)
		require.True(t, ok)

		received <- completed

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.IndexTaskCompleted{
		ID:            bus.GenerateID(),
		Type:          events.IndexTaskCompletedEvent,
		DocumentID:    "doc-1",
		IndexType:     "VECTOR",
		Action:        "create",
		TargetVersion: 3,
		IndexData:     map[string]any{"chunks": float64(7)},
		Timestamp:     time.Now().UTC(),
	}

	require.NoError(t, bus.Publish(ctx, "doc-1", published))

	select {
	case completed := <-received:
		assert.Equal(t, "doc-1", completed.DocumentID)
		assert.Equal(t, "VECTOR", completed.IndexType)
		assert.Equal(t, int64(3), completed.TargetVersion)
		assert.Equal(t, map[string]any{"chunks": float64(7)}, completed.IndexData)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnhandledEventTypesAreAcked(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan struct{}, 1)

	err := bus.Handle(events.IndexTaskFailedEvent, func(context.Context, interface{}) error {
		handled <- struct{}{}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// A completed event has no handler registered; it must be dropped
	// without blocking the failed-event flow.
	require.NoError(t, bus.Publish(ctx, "doc-1", events.IndexTaskCompleted{
		ID:   bus.GenerateID(),
		Type: events.IndexTaskCompletedEvent,
	}))

	require.NoError(t, bus.Publish(ctx, "doc-1", events.IndexTaskFailed{
		ID:         bus.GenerateID(),
		Type:       events.IndexTaskFailedEvent,
		DocumentID: "doc-1",
		Error:      "boom",
	}))

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for failed event")
	}
}

func TestTopicRouting(t *testing.T) {
	assert.Equal(t, events.IndexTaskTopic, topicFor(events.IndexTaskRequestedEvent))
	assert.Equal(t, events.IndexResultTopic, topicFor(events.IndexTaskCompletedEvent))
	assert.Equal(t, events.IndexResultTopic, topicFor(events.IndexTaskFailedEvent))
	assert.Equal(t, events.NodeflowTopic, topicFor(events.NodeflowStartEvent))
	assert.Equal(t, events.NodeflowTopic, topicFor(events.NodeEndEvent))
}
