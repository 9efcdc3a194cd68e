package models

import "time"

// IndexStatus is the lifecycle state of a single (document, index type) pair.
type IndexStatus string

const (
	IndexStatusPending            IndexStatus = "PENDING"
	IndexStatusCreating           IndexStatus = "CREATING"
	IndexStatusActive             IndexStatus = "ACTIVE"
	IndexStatusDeleting           IndexStatus = "DELETING"
	IndexStatusDeletionInProgress IndexStatus = "DELETION_IN_PROGRESS"
	IndexStatusFailed             IndexStatus = "FAILED"
)

// IndexAction is the reconciliation operation an index record needs.
type IndexAction string

const (
	IndexActionCreate IndexAction = "create"
	IndexActionUpdate IndexAction = "update"
	IndexActionDelete IndexAction = "delete"
)

// DocumentIndexRecord is the persisted desired/observed state for one index
// type of one document. Version is the desired-state generation counter,
// bumped by the declaring side; ObservedVersion is set only by a successful
// create/update completion and must equal the version that was targeted at
// claim time.
type DocumentIndexRecord struct {
	DocumentID      string         `json:"document_id"`
	IndexType       string         `json:"index_type"`
	Status          IndexStatus    `json:"status"`
	Version         int64          `json:"version"`
	ObservedVersion int64          `json:"observed_version"`
	IndexData       map[string]any `json:"index_data,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PendingAction classifies the record into the reconciliation operation it
// currently needs, if any. The same predicate is re-checked inside the
// repository claim so the scan-to-claim race window stays closed.
func (r *DocumentIndexRecord) PendingAction() (IndexAction, bool) {
	switch {
	case r.Status == IndexStatusPending && r.ObservedVersion < r.Version && r.Version == 1:
		return IndexActionCreate, true
	case r.Status == IndexStatusPending && r.ObservedVersion < r.Version && r.Version > 1:
		return IndexActionUpdate, true
	case r.Status == IndexStatusDeleting:
		return IndexActionDelete, true
	default:
		return "", false
	}
}

// DocumentStatus is the document-level aggregate over its index records. It
// is always derived, never declared.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusRunning  DocumentStatus = "RUNNING"
	DocumentStatusComplete DocumentStatus = "COMPLETE"
	DocumentStatusFailed   DocumentStatus = "FAILED"

	// Terminal document states owned by the document lifecycle itself.
	// Aggregation never overwrites these.
	DocumentStatusDeleted  DocumentStatus = "DELETED"
	DocumentStatusUploaded DocumentStatus = "UPLOADED"
	DocumentStatusExpired  DocumentStatus = "EXPIRED"
)

// IsTerminal reports whether the document status must not be recomputed from
// index records.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case DocumentStatusDeleted, DocumentStatusUploaded, DocumentStatusExpired:
		return true
	default:
		return false
	}
}

// AggregateDocumentStatus derives a document's overall status from its index
// records by worst-case aggregation: any FAILED wins, then any in-progress,
// then all-ACTIVE, otherwise PENDING.
func AggregateDocumentStatus(records []*DocumentIndexRecord) DocumentStatus {
	if len(records) == 0 {
		return DocumentStatusPending
	}

	allActive := true

	inProgress := false

	for _, record := range records {
		switch record.Status {
		case IndexStatusFailed:
			return DocumentStatusFailed
		case IndexStatusCreating, IndexStatusDeleting, IndexStatusDeletionInProgress:
			inProgress = true
			allActive = false
		case IndexStatusPending:
			allActive = false
		case IndexStatusActive:
		}
	}

	if inProgress {
		return DocumentStatusRunning
	}

	if allActive {
		return DocumentStatusComplete
	}

	return DocumentStatusPending
}
