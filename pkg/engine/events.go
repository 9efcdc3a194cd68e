package engine

import (
	"context"
	"time"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/models"
)

// Event emission never blocks or fails a run: a broken consumer loses events,
// not executions.

func (e *Executor) emitNodeflowStart(ctx context.Context, flow *models.Nodeflow, executionID string) {
	e.emit(ctx, executionID, events.NodeflowStart{
		BaseEvent:    e.baseEvent(events.NodeflowStartEvent, executionID, nil),
		NodeflowName: flow.Name,
	})
}

func (e *Executor) emitNodeflowEnd(ctx context.Context, flow *models.Nodeflow, executionID string, duration time.Duration) {
	e.emit(ctx, executionID, events.NodeflowEnd{
		BaseEvent:    e.baseEvent(events.NodeflowEndEvent, executionID, nil),
		NodeflowName: flow.Name,
		Duration:     duration,
	})
}

func (e *Executor) emitNodeflowError(ctx context.Context, flow *models.Nodeflow, executionID string, err error, duration time.Duration) {
	e.emit(ctx, executionID, events.NodeflowError{
		BaseEvent:    e.baseEvent(events.NodeflowErrorEvent, executionID, nil),
		NodeflowName: flow.Name,
		Error:        err.Error(),
		Duration:     duration,
	})
}

func (e *Executor) emitNodeStart(ctx context.Context, node *models.NodeInstance, executionID string) {
	e.emit(ctx, executionID, events.NodeStart{
		BaseEvent: e.baseEvent(events.NodeStartEvent, executionID, node),
	})
}

func (e *Executor) emitNodeEnd(ctx context.Context, node *models.NodeInstance, executionID string, durationMs int64) {
	e.emit(ctx, executionID, events.NodeEnd{
		BaseEvent:  e.baseEvent(events.NodeEndEvent, executionID, node),
		DurationMs: durationMs,
	})
}

func (e *Executor) emitNodeError(ctx context.Context, node *models.NodeInstance, executionID string, err error, durationMs int64) {
	e.emit(ctx, executionID, events.NodeError{
		BaseEvent:  e.baseEvent(events.NodeErrorEvent, executionID, node),
		Error:      err.Error(),
		DurationMs: durationMs,
	})
}

func (e *Executor) baseEvent(eventType events.EventType, executionID string, node *models.NodeInstance) events.BaseEvent {
	base := events.BaseEvent{
		ID:          e.eventBus.GenerateID(),
		Type:        eventType,
		ExecutionID: executionID,
		Timestamp:   time.Now().UTC(),
	}

	if node != nil {
		base.NodeID = node.ID
		base.NodeType = node.Type
	}

	return base
}

func (e *Executor) emit(ctx context.Context, executionID string, event eventbus.Event) {
	err := e.eventBus.Publish(ctx, executionID, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
