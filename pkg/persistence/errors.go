package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrIndexRecordNotFound indicates no record exists for the given
	// (document, index type) pair.
	ErrIndexRecordNotFound = errors.New("index record not found")

	// ErrDocumentNotFound indicates the document row does not exist.
	ErrDocumentNotFound = errors.New("document not found")
)

// IndexRecordError wraps index-record errors with operation context.
type IndexRecordError struct {
	Op         string // Operation being performed (e.g., "DeclareIndex", "ClaimIndexes")
	DocumentID string
	IndexType  string
	Err        error
}

func (e *IndexRecordError) Error() string {
	if e.IndexType != "" {
		return fmt.Sprintf("%s failed for index %s/%s: %v", e.Op, e.DocumentID, e.IndexType, e.Err)
	}

	return fmt.Sprintf("%s failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *IndexRecordError) Unwrap() error {
	return e.Err
}

func (e *IndexRecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewIndexRecordError creates a new index record error with context.
func NewIndexRecordError(op, documentID, indexType string, err error) *IndexRecordError {
	return &IndexRecordError{
		Op:         op,
		DocumentID: documentID,
		IndexType:  indexType,
		Err:        err,
	}
}

// IsIndexRecordNotFound checks if an error indicates a missing index record.
func IsIndexRecordNotFound(err error) bool {
	return errors.Is(err, ErrIndexRecordNotFound)
}

// IsDocumentNotFound checks if an error indicates a missing document.
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
