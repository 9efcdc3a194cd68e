// Package reconciler implements the level-triggered control loop that drives
// document index records from declared desired state to observed state. Each
// pass scans all records, classifies them, claims the pending ones with
// conditional updates and dispatches batched index tasks. The loop holds no
// state between passes: everything it needs is re-read from the repository,
// so a crashed pass is simply retried by the next one.
package reconciler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/otelhelper"
	"github.com/promoteai/superrag/pkg/persistence"
	"github.com/promoteai/superrag/pkg/protocol"
)

// Summary reports what one reconciliation pass did.
type Summary struct {
	DocumentsSeen       int
	DocumentsDispatched int
	DocumentsSkipped    int
	DocumentsFailed     int
	IndexesClaimed      int
}

// Reconciler runs reconciliation passes over the index record repository.
type Reconciler struct {
	repo      persistence.IndexRepository
	scheduler protocol.TaskScheduler
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewReconciler(repo persistence.IndexRepository, scheduler protocol.TaskScheduler, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		repo:      repo,
		scheduler: scheduler,
		tracer:    otel.Tracer("superrag.reconciler"),
		logger:    logger.With("module", "reconciler"),
	}
}

// ReconcileAll performs one full pass. A failure on one document is logged
// and counted, never propagated: the remaining documents still reconcile, and
// the failed one is retried on the next pass.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*Summary, error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.reconcile_all")
	defer span.End()

	records, err := r.repo.ListIndexRecords(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	plans := buildPlans(records)
	summary := &Summary{DocumentsSeen: len(plans)}

	for _, plan := range plans {
		dispatched, claimed, err := r.reconcileDocument(ctx, plan)
		if err != nil {
			summary.DocumentsFailed++

			r.logger.ErrorContext(ctx, "Failed to reconcile document",
				"document_id", plan.documentID,
				"error", err)

			continue
		}

		summary.IndexesClaimed += claimed

		if dispatched {
			summary.DocumentsDispatched++
		} else {
			summary.DocumentsSkipped++
		}
	}

	span.SetAttributes(
		attribute.Int("superrag.reconcile.documents_seen", summary.DocumentsSeen),
		attribute.Int("superrag.reconcile.documents_dispatched", summary.DocumentsDispatched),
		attribute.Int("superrag.reconcile.indexes_claimed", summary.IndexesClaimed),
	)

	r.logger.InfoContext(ctx, "Reconciliation pass complete",
		"documents_seen", summary.DocumentsSeen,
		"documents_dispatched", summary.DocumentsDispatched,
		"documents_skipped", summary.DocumentsSkipped,
		"documents_failed", summary.DocumentsFailed,
		"indexes_claimed", summary.IndexesClaimed)

	return summary, nil
}

// reconcileDocument claims the document's pending records and dispatches one
// batched task per action for the claims that won. Zero won claims means
// another pass got there first; that is a skip, not an error.
func (r *Reconciler) reconcileDocument(ctx context.Context, plan *documentPlan) (bool, int, error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.reconcile_document",
		trace.WithAttributes(attribute.String(otelhelper.DocumentIDKey, plan.documentID)))
	defer span.End()

	dispatched := false
	totalClaimed := 0

	for _, action := range []models.IndexAction{models.IndexActionCreate, models.IndexActionUpdate, models.IndexActionDelete} {
		requests := plan.requests[action]
		if len(requests) == 0 {
			continue
		}

		claimed, err := r.repo.ClaimIndexes(ctx, plan.documentID, requests)
		if err != nil {
			otelhelper.SetError(span, err)

			return dispatched, totalClaimed, err
		}

		if len(claimed) == 0 {
			continue
		}

		err = r.dispatch(ctx, plan.documentID, action, claimed)
		if err != nil {
			otelhelper.SetError(span, err)

			return dispatched, totalClaimed, err
		}

		dispatched = true
		totalClaimed += len(claimed)
	}

	return dispatched, totalClaimed, nil
}

func (r *Reconciler) dispatch(ctx context.Context, documentID string, action models.IndexAction, claimed []persistence.ClaimedIndex) error {
	indexTypes := make([]string, 0, len(claimed))
	taskContext := make(map[string]int64, len(claimed))

	for _, claim := range claimed {
		indexTypes = append(indexTypes, claim.IndexType)
		taskContext[claim.IndexType+"_version"] = claim.Version
	}

	switch action {
	case models.IndexActionCreate:
		return r.scheduler.ScheduleCreateIndex(ctx, documentID, indexTypes, taskContext)
	case models.IndexActionUpdate:
		return r.scheduler.ScheduleUpdateIndex(ctx, documentID, indexTypes, taskContext)
	case models.IndexActionDelete:
		return r.scheduler.ScheduleDeleteIndex(ctx, documentID, indexTypes)
	}

	return nil
}
