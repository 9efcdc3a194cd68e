package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promoteai/superrag/pkg/eventbus"
	"github.com/promoteai/superrag/pkg/events"
	"github.com/promoteai/superrag/pkg/models"
)

// IndexWorker consumes dispatched index tasks and reports their outcome back
// on the result topic. The build itself is delegated; the worker owns the
// task protocol: one completion or failure signal per (document, index type),
// tagged with the version the task targeted.
type IndexWorker struct {
	workerID string
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewIndexWorker(workerID string, eventBus eventbus.EventBus, logger *slog.Logger) *IndexWorker {
	return &IndexWorker{
		workerID: workerID,
		eventBus: eventBus,
		logger:   logger.With("module", "index_worker"),
	}
}

// Start registers the task handler and begins consuming.
func (w *IndexWorker) Start(ctx context.Context) error {
	err := w.eventBus.Handle(events.IndexTaskRequestedEvent, w.handleTask)
	if err != nil {
		return fmt.Errorf("failed to register task handler: %w", err)
	}

	return w.eventBus.Subscribe(ctx)
}

func (w *IndexWorker) handleTask(ctx context.Context, event interface{}) error {
	task, ok := event.(*events.IndexTaskRequested)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", event, events.IndexTaskRequestedEvent)
	}

	w.logger.InfoContext(ctx, "Received index task",
		"document_id", task.DocumentID,
		"action", task.Action,
		"index_types", task.IndexTypes)

	for _, indexType := range task.IndexTypes {
		err := w.processIndex(ctx, task, indexType)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to report index task outcome",
				"document_id", task.DocumentID,
				"index_type", indexType,
				"error", err)

			return err
		}
	}

	return nil
}

func (w *IndexWorker) processIndex(ctx context.Context, task *events.IndexTaskRequested, indexType string) error {
	if task.Action == string(models.IndexActionDelete) {
		return w.reportCompleted(ctx, task, indexType, 0, nil)
	}

	indexData, err := w.buildIndex(ctx, task.DocumentID, indexType)
	if err != nil {
		return w.reportFailed(ctx, task, indexType, err)
	}

	targetVersion := task.TaskContext[indexType+"_version"]

	return w.reportCompleted(ctx, task, indexType, targetVersion, indexData)
}

// buildIndex runs the actual index construction for one index type. The
// concrete build backends (embedding, graph extraction) plug in here; the
// base worker records build metadata only.
func (w *IndexWorker) buildIndex(ctx context.Context, documentID, indexType string) (map[string]any, error) {
	return map[string]any{
		"worker_id":  w.workerID,
		"indexed_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (w *IndexWorker) reportCompleted(ctx context.Context, task *events.IndexTaskRequested, indexType string, targetVersion int64, indexData map[string]any) error {
	completed := events.IndexTaskCompleted{
		ID:            w.eventBus.GenerateID(),
		Type:          events.IndexTaskCompletedEvent,
		DocumentID:    task.DocumentID,
		IndexType:     indexType,
		Action:        task.Action,
		TargetVersion: targetVersion,
		IndexData:     indexData,
		Timestamp:     time.Now().UTC(),
	}

	return w.eventBus.Publish(ctx, task.DocumentID, completed)
}

func (w *IndexWorker) reportFailed(ctx context.Context, task *events.IndexTaskRequested, indexType string, buildErr error) error {
	failed := events.IndexTaskFailed{
		ID:         w.eventBus.GenerateID(),
		Type:       events.IndexTaskFailedEvent,
		DocumentID: task.DocumentID,
		IndexType:  indexType,
		Action:     task.Action,
		Error:      buildErr.Error(),
		Timestamp:  time.Now().UTC(),
	}

	return w.eventBus.Publish(ctx, task.DocumentID, failed)
}
