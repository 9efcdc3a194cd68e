// Package persistence provides the storage abstraction for document index
// records, the sole shared mutable resource between reconciler instances and
// callback invokers. All state transitions go through conditional updates
// scoped by primary key plus expected-state predicate, never blind writes.
package persistence

import (
	"context"

	"github.com/promoteai/superrag/pkg/models"
)

// ClaimRequest asks for one index record to be moved into its in-progress
// state. Version pins the desired-state generation the claim targets.
type ClaimRequest struct {
	IndexType string
	Action    models.IndexAction
	Version   int64
}

// ClaimedIndex reports a claim that actually won: the conditional update
// matched and the row moved to CREATING or DELETION_IN_PROGRESS.
type ClaimedIndex struct {
	IndexType string
	Action    models.IndexAction
	Version   int64
}

// IndexRepository stores document index records and performs every guarded
// state transition of the reconciliation protocol.
type IndexRepository interface {
	// ListIndexRecords returns every index record, across all documents.
	ListIndexRecords(ctx context.Context) ([]*models.DocumentIndexRecord, error)

	// ListIndexRecordsByDocument returns all index records of one document.
	ListIndexRecordsByDocument(ctx context.Context, documentID string) ([]*models.DocumentIndexRecord, error)

	// GetIndexRecord returns one record, or ErrIndexRecordNotFound.
	GetIndexRecord(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error)

	// DeclareIndex registers desired state: a new record starts at
	// status=PENDING, version=1, observed_version=0; an existing record has
	// its version bumped and status reset to PENDING.
	DeclareIndex(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error)

	// MarkIndexDeleting declares that the index should be torn down.
	MarkIndexDeleting(ctx context.Context, documentID, indexType string) error

	// ClaimIndexes attempts the optimistic-concurrency claim for a batch of
	// one document's records inside a single transaction. Each claim
	// re-checks the full classification predicate; only rows actually
	// updated are returned. Losing every race yields an empty slice, not an
	// error.
	ClaimIndexes(ctx context.Context, documentID string, requests []ClaimRequest) ([]ClaimedIndex, error)

	// CompleteIndexCreate acknowledges a finished create/update task. The
	// transition only fires while status=CREATING and version still equals
	// targetVersion; a stale completion returns false.
	CompleteIndexCreate(ctx context.Context, documentID, indexType string, targetVersion int64, indexData map[string]any) (bool, error)

	// FailIndex marks an in-flight create or deletion as failed. Terminal:
	// reconciliation does not auto-retry FAILED rows.
	FailIndex(ctx context.Context, documentID, indexType, errorMessage string) (bool, error)

	// CompleteIndexDelete hard-deletes the row while
	// status=DELETION_IN_PROGRESS. The record ceases to exist.
	CompleteIndexDelete(ctx context.Context, documentID, indexType string) (bool, error)

	// DocumentStatus returns the persisted aggregate status of a document,
	// or ErrDocumentNotFound.
	DocumentStatus(ctx context.Context, documentID string) (models.DocumentStatus, error)

	// UpdateDocumentStatus persists a recomputed aggregate status. Upserts
	// the document row when missing.
	UpdateDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus) error

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
