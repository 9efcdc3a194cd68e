package scheduler

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/mocks"
)

func TestScheduleCreateIndexPublishesTask(t *testing.T) {
	bus := &mocks.MockEventBus{}
	scheduler := NewEventBusScheduler(bus, slog.Default())

	var captured events.IndexTaskRequested

	bus.On("Publish", mock.Anything, "doc-1", mock.MatchedBy(func(event eventbus.Event) bool {
		task, ok := event.(events.IndexTaskRequested)
		if !ok {
			return false
		}

		captured = task

		return true
	})).Return(nil).Once()

	err := scheduler.ScheduleCreateIndex(context.Background(), "doc-1",
		[]string{"VECTOR", "GRAPH"},
		map[string]int64{"VECTOR_version": 1, "GRAPH_version": 1})
	require.NoError(t, err)

	bus.AssertExpectations(t)
	assert.Equal(t, events.IndexTaskRequestedEvent, captured.GetType())
	assert.Equal(t, "create", captured.Action)
	assert.Equal(t, []string{"VECTOR", "GRAPH"}, captured.IndexTypes)
	assert.Equal(t, int64(1), captured.TaskContext["VECTOR_version"])
	assert.NotEmpty(t, captured.ID)
}

func TestScheduleDeleteIndexOmitsTaskContext(t *testing.T) {
	bus := &mocks.MockEventBus{}
	scheduler := NewEventBusScheduler(bus, slog.Default())

	bus.On("Publish", mock.Anything, "doc-1", mock.MatchedBy(func(event eventbus.Event) bool {
		task, ok := event.(events.IndexTaskRequested)

		return ok && task.Action == "delete" && task.TaskContext == nil
	})).Return(nil).Once()

	err := scheduler.ScheduleDeleteIndex(context.Background(), "doc-1", []string{"VECTOR"})
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestSchedulePropagatesPublishError(t *testing.T) {
	bus := &mocks.MockEventBus{}
	scheduler := NewEventBusScheduler(bus, slog.Default())

	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	err := scheduler.ScheduleUpdateIndex(context.Background(), "doc-1", []string{"VECTOR"},
		map[string]int64{"VECTOR_version": 2})
	assert.Error(t, err)
}
