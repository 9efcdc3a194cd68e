// Package scheduler provides TaskScheduler implementations that hand index
// build work to asynchronous workers.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/models"
)

// EventBusScheduler dispatches index tasks as IndexTaskRequested events on
// the event bus. Workers consume the task topic; completion comes back on the
// result topic and is routed to the reconciler callbacks.
type EventBusScheduler struct {
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewEventBusScheduler(eventBus eventbus.EventBus, logger *slog.Logger) *EventBusScheduler {
	return &EventBusScheduler{
		eventBus: eventBus,
		logger:   logger.With("module", "scheduler"),
	}
}

func (s *EventBusScheduler) ScheduleCreateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	return s.publish(ctx, documentID, models.IndexActionCreate, indexTypes, taskContext)
}

func (s *EventBusScheduler) ScheduleUpdateIndex(ctx context.Context, documentID string, indexTypes []string, taskContext map[string]int64) error {
	return s.publish(ctx, documentID, models.IndexActionUpdate, indexTypes, taskContext)
}

func (s *EventBusScheduler) ScheduleDeleteIndex(ctx context.Context, documentID string, indexTypes []string) error {
	return s.publish(ctx, documentID, models.IndexActionDelete, indexTypes, nil)
}

func (s *EventBusScheduler) publish(ctx context.Context, documentID string, action models.IndexAction, indexTypes []string, taskContext map[string]int64) error {
	event := events.IndexTaskRequested{
		ID:          s.eventBus.GenerateID(),
		Type:        events.IndexTaskRequestedEvent,
		DocumentID:  documentID,
		Action:      string(action),
		IndexTypes:  indexTypes,
		TaskContext: taskContext,
		Timestamp:   time.Now().UTC(),
	}

	err := s.eventBus.Publish(ctx, documentID, event)
	if err != nil {
		return fmt.Errorf("failed to publish index task for document %s: %w", documentID, err)
	}

	s.logger.InfoContext(ctx, "Dispatched index task",
		"document_id", documentID,
		"action", action,
		"index_types", indexTypes)

	return nil
}
