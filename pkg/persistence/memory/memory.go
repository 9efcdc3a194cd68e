// Package memory provides an in-memory IndexRepository used by tests and
// local development. Every guarded transition holds the repository mutex for
// its whole read-check-write, so the conditional-update semantics match the
// SQL implementation.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence"
)

type recordKey struct {
	documentID string
	indexType  string
}

// Repository implements persistence.IndexRepository in memory.
type Repository struct {
	logger *slog.Logger

	mu        sync.Mutex
	records   map[recordKey]*models.DocumentIndexRecord
	documents map[string]models.DocumentStatus
}

func NewRepository(logger *slog.Logger) *Repository {
	return &Repository{
		logger:    logger,
		records:   make(map[recordKey]*models.DocumentIndexRecord),
		documents: make(map[string]models.DocumentStatus),
	}
}

func (r *Repository) ListIndexRecords(ctx context.Context) ([]*models.DocumentIndexRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*models.DocumentIndexRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, copyRecord(record))
	}

	return records, nil
}

func (r *Repository) ListIndexRecordsByDocument(ctx context.Context, documentID string) ([]*models.DocumentIndexRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*models.DocumentIndexRecord, 0)

	for key, record := range r.records {
		if key.documentID == documentID {
			records = append(records, copyRecord(record))
		}
	}

	return records, nil
}

func (r *Repository) GetIndexRecord(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey{documentID, indexType}]
	if !ok {
		return nil, persistence.NewIndexRecordError("GetIndexRecord", documentID, indexType, persistence.ErrIndexRecordNotFound)
	}

	return copyRecord(record), nil
}

func (r *Repository) DeclareIndex(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{documentID, indexType}
	now := time.Now().UTC()

	record, ok := r.records[key]
	if !ok {
		record = &models.DocumentIndexRecord{
			DocumentID:      documentID,
			IndexType:       indexType,
			Status:          models.IndexStatusPending,
			Version:         1,
			ObservedVersion: 0,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		r.records[key] = record

		return copyRecord(record), nil
	}

	record.Version++
	record.Status = models.IndexStatusPending
	record.ErrorMessage = ""
	record.UpdatedAt = now

	return copyRecord(record), nil
}

func (r *Repository) MarkIndexDeleting(ctx context.Context, documentID, indexType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey{documentID, indexType}]
	if !ok {
		return persistence.NewIndexRecordError("MarkIndexDeleting", documentID, indexType, persistence.ErrIndexRecordNotFound)
	}

	record.Status = models.IndexStatusDeleting
	record.UpdatedAt = time.Now().UTC()

	return nil
}

// ClaimIndexes re-checks the classification predicate under the lock before
// each transition, so concurrent reconciler passes cannot both win a claim.
func (r *Repository) ClaimIndexes(ctx context.Context, documentID string, requests []persistence.ClaimRequest) ([]persistence.ClaimedIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed := make([]persistence.ClaimedIndex, 0, len(requests))
	now := time.Now().UTC()

	for _, request := range requests {
		record, ok := r.records[recordKey{documentID, request.IndexType}]
		if !ok {
			continue
		}

		action, pending := record.PendingAction()
		if !pending || action != request.Action || record.Version != request.Version {
			// Lost the race to another pass, or the desired state moved on.
			continue
		}

		switch request.Action {
		case models.IndexActionCreate, models.IndexActionUpdate:
			record.Status = models.IndexStatusCreating
		case models.IndexActionDelete:
			record.Status = models.IndexStatusDeletionInProgress
		}

		record.UpdatedAt = now

		claimed = append(claimed, persistence.ClaimedIndex{
			IndexType: request.IndexType,
			Action:    request.Action,
			Version:   record.Version,
		})
	}

	return claimed, nil
}

func (r *Repository) CompleteIndexCreate(ctx context.Context, documentID, indexType string, targetVersion int64, indexData map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey{documentID, indexType}]
	if !ok {
		return false, nil
	}

	// The version check rejects completions for generations that have been
	// superseded while the task was in flight.
	if record.Status != models.IndexStatusCreating || record.Version != targetVersion {
		return false, nil
	}

	record.Status = models.IndexStatusActive
	record.ObservedVersion = targetVersion
	record.IndexData = indexData
	record.ErrorMessage = ""
	record.UpdatedAt = time.Now().UTC()

	return true, nil
}

func (r *Repository) FailIndex(ctx context.Context, documentID, indexType, errorMessage string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey{documentID, indexType}]
	if !ok {
		return false, nil
	}

	if record.Status != models.IndexStatusCreating && record.Status != models.IndexStatusDeletionInProgress {
		return false, nil
	}

	record.Status = models.IndexStatusFailed
	record.ErrorMessage = errorMessage
	record.UpdatedAt = time.Now().UTC()

	return true, nil
}

func (r *Repository) CompleteIndexDelete(ctx context.Context, documentID, indexType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{documentID, indexType}

	record, ok := r.records[key]
	if !ok {
		return false, nil
	}

	if record.Status != models.IndexStatusDeletionInProgress {
		return false, nil
	}

	delete(r.records, key)

	return true, nil
}

func (r *Repository) DocumentStatus(ctx context.Context, documentID string) (models.DocumentStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.documents[documentID]
	if !ok {
		return "", persistence.ErrDocumentNotFound
	}

	return status, nil
}

func (r *Repository) UpdateDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.documents[documentID] = status

	return nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func copyRecord(record *models.DocumentIndexRecord) *models.DocumentIndexRecord {
	clone := *record

	if record.IndexData != nil {
		clone.IndexData = make(map[string]any, len(record.IndexData))
		for k, v := range record.IndexData {
			clone.IndexData[k] = v
		}
	}

	return &clone
}
