package reconciler

import (
	"context"
	"log/slog"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence"
)

// Callbacks applies index task outcomes reported by workers. Every transition
// is guarded by the repository: a completion that no longer matches the
// record's state (superseded version, already-failed record, record gone) is
// logged and dropped rather than applied.
type Callbacks struct {
	repo   persistence.IndexRepository
	logger *slog.Logger
}

func NewCallbacks(repo persistence.IndexRepository, logger *slog.Logger) *Callbacks {
	return &Callbacks{
		repo:   repo,
		logger: logger.With("module", "reconciler_callbacks"),
	}
}

// OnIndexCreated acknowledges a successful create or update task.
func (c *Callbacks) OnIndexCreated(ctx context.Context, documentID, indexType string, targetVersion int64, indexData map[string]any) error {
	applied, err := c.repo.CompleteIndexCreate(ctx, documentID, indexType, targetVersion, indexData)
	if err != nil {
		return err
	}

	if !applied {
		c.logger.WarnContext(ctx, "Dropped stale index completion",
			"document_id", documentID,
			"index_type", indexType,
			"target_version", targetVersion)

		return nil
	}

	c.logger.InfoContext(ctx, "Index became active",
		"document_id", documentID,
		"index_type", indexType,
		"version", targetVersion)

	return c.refreshDocumentStatus(ctx, documentID)
}

// OnIndexFailed marks an in-flight index task as failed.
func (c *Callbacks) OnIndexFailed(ctx context.Context, documentID, indexType, errorMessage string) error {
	applied, err := c.repo.FailIndex(ctx, documentID, indexType, errorMessage)
	if err != nil {
		return err
	}

	if !applied {
		c.logger.WarnContext(ctx, "Dropped failure report for index not in progress",
			"document_id", documentID,
			"index_type", indexType)

		return nil
	}

	c.logger.WarnContext(ctx, "Index failed",
		"document_id", documentID,
		"index_type", indexType,
		"error", errorMessage)

	return c.refreshDocumentStatus(ctx, documentID)
}

// OnIndexDeleted acknowledges a finished deletion. The record is removed
// entirely; a later re-upload starts a fresh lifecycle at version 1.
func (c *Callbacks) OnIndexDeleted(ctx context.Context, documentID, indexType string) error {
	applied, err := c.repo.CompleteIndexDelete(ctx, documentID, indexType)
	if err != nil {
		return err
	}

	if !applied {
		c.logger.WarnContext(ctx, "Dropped deletion completion for index not being deleted",
			"document_id", documentID,
			"index_type", indexType)

		return nil
	}

	c.logger.InfoContext(ctx, "Index deleted",
		"document_id", documentID,
		"index_type", indexType)

	return c.refreshDocumentStatus(ctx, documentID)
}

// refreshDocumentStatus recomputes the document aggregate from its remaining
// index records. Terminal document states are owned by the document lifecycle
// and never overwritten here.
func (c *Callbacks) refreshDocumentStatus(ctx context.Context, documentID string) error {
	current, err := c.repo.DocumentStatus(ctx, documentID)
	if err != nil && !persistence.IsDocumentNotFound(err) {
		return err
	}

	if current.IsTerminal() {
		return nil
	}

	records, err := c.repo.ListIndexRecordsByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	aggregate := models.AggregateDocumentStatus(records)
	if aggregate == current {
		return nil
	}

	return c.repo.UpdateDocumentStatus(ctx, documentID, aggregate)
}
