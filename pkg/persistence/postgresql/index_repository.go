package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence"
)

const recordColumns = `document_id, index_type, status, version, observed_version, index_data, error_message, created_at, updated_at`

// IndexRepository implements the guarded state transitions for document index
// records on PostgreSQL. Every transition is a conditional UPDATE whose WHERE
// clause re-checks the expected state, so lost races surface as zero rows
// affected instead of blind overwrites.
type IndexRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewIndexRepository creates a new PostgreSQL index repository.
func NewIndexRepository(db *sql.DB, logger *slog.Logger) *IndexRepository {
	return &IndexRepository{
		db:     db,
		logger: logger,
	}
}

// ListAll returns every index record across all documents.
func (r *IndexRepository) ListAll(ctx context.Context) ([]*models.DocumentIndexRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM document_indexes ORDER BY document_id, index_type`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list index records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByDocument returns all index records belonging to one document.
func (r *IndexRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentIndexRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM document_indexes WHERE document_id = $1 ORDER BY index_type`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list index records for document %s: %w", documentID, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get returns one record, or ErrIndexRecordNotFound.
func (r *IndexRepository) Get(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM document_indexes WHERE document_id = $1 AND index_type = $2`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, documentID, indexType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewIndexRecordError("GetIndexRecord", documentID, indexType, persistence.ErrIndexRecordNotFound)
		}

		return nil, fmt.Errorf("failed to get index record %s/%s: %w", documentID, indexType, err)
	}

	return record, nil
}

// Declare upserts desired state: a new record starts at version 1, an
// existing one has its version bumped and its status reset to PENDING.
func (r *IndexRepository) Declare(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure document %s: %w", documentID, err)
	}

	query := `
		INSERT INTO document_indexes (document_id, index_type)
		VALUES ($1, $2)
		ON CONFLICT (document_id, index_type) DO UPDATE SET
			version = document_indexes.version + 1,
			status = 'PENDING',
			error_message = NULL,
			updated_at = NOW()
		RETURNING ` + recordColumns

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, documentID, indexType))
	if err != nil {
		return nil, fmt.Errorf("failed to declare index %s/%s: %w", documentID, indexType, err)
	}

	return record, nil
}

// MarkDeleting flips the record's desired state to deletion.
func (r *IndexRepository) MarkDeleting(ctx context.Context, documentID, indexType string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE document_indexes SET status = 'DELETING', updated_at = NOW()
		 WHERE document_id = $1 AND index_type = $2`,
		documentID, indexType)
	if err != nil {
		return fmt.Errorf("failed to mark index %s/%s deleting: %w", documentID, indexType, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewIndexRecordError("MarkIndexDeleting", documentID, indexType, persistence.ErrIndexRecordNotFound)
	}

	return nil
}

// Claim runs all claim attempts for one document inside a single transaction.
// Each conditional UPDATE re-checks the classification predicate, so a claim
// lost to a concurrent reconciler pass simply affects zero rows and is left
// out of the result.
func (r *IndexRepository) Claim(ctx context.Context, documentID string, requests []persistence.ClaimRequest) ([]persistence.ClaimedIndex, error) {
	transaction, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction for document %s: %w", documentID, err)
	}

	claimed := make([]persistence.ClaimedIndex, 0, len(requests))

	for _, request := range requests {
		won, claimErr := r.claimOne(ctx, transaction, documentID, request)
		if claimErr != nil {
			_ = transaction.Rollback()

			return nil, claimErr
		}

		if won {
			claimed = append(claimed, persistence.ClaimedIndex{
				IndexType: request.IndexType,
				Action:    request.Action,
				Version:   request.Version,
			})
		}
	}

	err = transaction.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit claim transaction for document %s: %w", documentID, err)
	}

	return claimed, nil
}

func (r *IndexRepository) claimOne(ctx context.Context, tx *sql.Tx, documentID string, request persistence.ClaimRequest) (bool, error) {
	var query string

	switch request.Action {
	case models.IndexActionCreate:
		query = `
			UPDATE document_indexes SET status = 'CREATING', updated_at = NOW()
			WHERE document_id = $1 AND index_type = $2
			  AND status = 'PENDING' AND observed_version < version
			  AND version = $3 AND version = 1`
	case models.IndexActionUpdate:
		query = `
			UPDATE document_indexes SET status = 'CREATING', updated_at = NOW()
			WHERE document_id = $1 AND index_type = $2
			  AND status = 'PENDING' AND observed_version < version
			  AND version = $3 AND version > 1`
	case models.IndexActionDelete:
		query = `
			UPDATE document_indexes SET status = 'DELETION_IN_PROGRESS', updated_at = NOW()
			WHERE document_id = $1 AND index_type = $2
			  AND status = 'DELETING' AND version = $3`
	default:
		return false, fmt.Errorf("unknown index action: %s", request.Action)
	}

	result, err := tx.ExecContext(ctx, query, documentID, request.IndexType, request.Version)
	if err != nil {
		return false, fmt.Errorf("failed to claim index %s/%s: %w", documentID, request.IndexType, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

// CompleteCreate acknowledges a finished create or update task. The version
// guard rejects completions for generations superseded while the task ran.
func (r *IndexRepository) CompleteCreate(ctx context.Context, documentID, indexType string, targetVersion int64, indexData map[string]any) (bool, error) {
	dataJSON, err := marshalIndexData(indexData)
	if err != nil {
		return false, fmt.Errorf("failed to marshal index data for %s/%s: %w", documentID, indexType, err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE document_indexes SET
			status = 'ACTIVE',
			observed_version = $3,
			index_data = $4,
			error_message = NULL,
			updated_at = NOW()
		 WHERE document_id = $1 AND index_type = $2
		   AND status = 'CREATING' AND version = $3`,
		documentID, indexType, targetVersion, dataJSON)
	if err != nil {
		return false, fmt.Errorf("failed to complete index create %s/%s: %w", documentID, indexType, err)
	}

	return oneRowAffected(result)
}

// Fail marks an in-flight create or deletion as FAILED.
func (r *IndexRepository) Fail(ctx context.Context, documentID, indexType, errorMessage string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE document_indexes SET
			status = 'FAILED',
			error_message = $3,
			updated_at = NOW()
		 WHERE document_id = $1 AND index_type = $2
		   AND status IN ('CREATING', 'DELETION_IN_PROGRESS')`,
		documentID, indexType, errorMessage)
	if err != nil {
		return false, fmt.Errorf("failed to fail index %s/%s: %w", documentID, indexType, err)
	}

	return oneRowAffected(result)
}

// CompleteDelete removes the row. A record that is no longer in
// DELETION_IN_PROGRESS is left alone and the completion is reported stale.
func (r *IndexRepository) CompleteDelete(ctx context.Context, documentID, indexType string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM document_indexes
		 WHERE document_id = $1 AND index_type = $2 AND status = 'DELETION_IN_PROGRESS'`,
		documentID, indexType)
	if err != nil {
		return false, fmt.Errorf("failed to complete index delete %s/%s: %w", documentID, indexType, err)
	}

	return oneRowAffected(result)
}

// GetDocumentStatus returns the persisted aggregate status of a document.
func (r *IndexRepository) GetDocumentStatus(ctx context.Context, documentID string) (models.DocumentStatus, error) {
	var status string

	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM documents WHERE id = $1`, documentID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", persistence.ErrDocumentNotFound
		}

		return "", fmt.Errorf("failed to get document status for %s: %w", documentID, err)
	}

	return models.DocumentStatus(status), nil
}

// SetDocumentStatus upserts the document row with a recomputed status.
func (r *IndexRepository) SetDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, status) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET status = $2, updated_at = NOW()`,
		documentID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update document status for %s: %w", documentID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.DocumentIndexRecord, error) {
	var (
		record       models.DocumentIndexRecord
		indexData    []byte
		errorMessage sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(
		&record.DocumentID,
		&record.IndexType,
		&record.Status,
		&record.Version,
		&record.ObservedVersion,
		&indexData,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(indexData) > 0 {
		err = json.Unmarshal(indexData, &record.IndexData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal index data: %w", err)
		}
	}

	record.ErrorMessage = errorMessage.String
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt

	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]*models.DocumentIndexRecord, error) {
	records := make([]*models.DocumentIndexRecord, 0)

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan index record: %w", err)
		}

		records = append(records, record)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate index records: %w", err)
	}

	return records, nil
}

func marshalIndexData(indexData map[string]any) (any, error) {
	if indexData == nil {
		return nil, nil
	}

	data, err := json.Marshal(indexData)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func oneRowAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}
