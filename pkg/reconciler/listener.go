package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/models"
)

// Listener routes index task completion signals from the event bus into the
// guarded callbacks.
type Listener struct {
	callbacks *Callbacks
	eventBus  eventbus.EventBus
	logger    *slog.Logger
}

func NewListener(callbacks *Callbacks, eventBus eventbus.EventBus, logger *slog.Logger) *Listener {
	return &Listener{
		callbacks: callbacks,
		eventBus:  eventBus,
		logger:    logger.With("module", "reconciler_listener"),
	}
}

// Start registers the completion handlers and begins consuming.
func (l *Listener) Start(ctx context.Context) error {
	err := l.eventBus.Handle(events.IndexTaskCompletedEvent, l.handleCompleted)
	if err != nil {
		return fmt.Errorf("failed to register completion handler: %w", err)
	}

	err = l.eventBus.Handle(events.IndexTaskFailedEvent, l.handleFailed)
	if err != nil {
		return fmt.Errorf("failed to register failure handler: %w", err)
	}

	return l.eventBus.Subscribe(ctx)
}

func (l *Listener) handleCompleted(ctx context.Context, event interface{}) error {
	completed, ok := event.(*events.IndexTaskCompleted)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", event, events.IndexTaskCompletedEvent)
	}

	if completed.Action == string(models.IndexActionDelete) {
		return l.callbacks.OnIndexDeleted(ctx, completed.DocumentID, completed.IndexType)
	}

	return l.callbacks.OnIndexCreated(ctx, completed.DocumentID, completed.IndexType, completed.TargetVersion, completed.IndexData)
}

func (l *Listener) handleFailed(ctx context.Context, event interface{}) error {
	failed, ok := event.(*events.IndexTaskFailed)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", event, events.IndexTaskFailedEvent)
	}

	return l.callbacks.OnIndexFailed(ctx, failed.DocumentID, failed.IndexType, failed.Error)
}
