package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingActionClassification(t *testing.T) {
	tests := []struct {
		name    string
		record  DocumentIndexRecord
		action  IndexAction
		pending bool
	}{
		{
			name:    "fresh record needs create",
			record:  DocumentIndexRecord{Status: IndexStatusPending, Version: 1, ObservedVersion: 0},
			action:  IndexActionCreate,
			pending: true,
		},
		{
			name:    "bumped record needs update",
			record:  DocumentIndexRecord{Status: IndexStatusPending, Version: 3, ObservedVersion: 2},
			action:  IndexActionUpdate,
			pending: true,
		},
		{
			name:    "deleting record needs delete",
			record:  DocumentIndexRecord{Status: IndexStatusDeleting, Version: 2, ObservedVersion: 2},
			action:  IndexActionDelete,
			pending: true,
		},
		{
			name:    "active up-to-date record is settled",
			record:  DocumentIndexRecord{Status: IndexStatusActive, Version: 2, ObservedVersion: 2},
			pending: false,
		},
		{
			name:    "creating record is already claimed",
			record:  DocumentIndexRecord{Status: IndexStatusCreating, Version: 1, ObservedVersion: 0},
			pending: false,
		},
		{
			name:    "failed record is not retried",
			record:  DocumentIndexRecord{Status: IndexStatusFailed, Version: 1, ObservedVersion: 0},
			pending: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, pending := tt.record.PendingAction()
			assert.Equal(t, tt.pending, pending)

			if tt.pending {
				assert.Equal(t, tt.action, action)
			}
		})
	}
}

func TestAggregateDocumentStatus(t *testing.T) {
	record := func(status IndexStatus) *DocumentIndexRecord {
		return &DocumentIndexRecord{Status: status}
	}

	tests := []struct {
		name     string
		records  []*DocumentIndexRecord
		expected DocumentStatus
	}{
		{"no records", nil, DocumentStatusPending},
		{"any failed wins", []*DocumentIndexRecord{record(IndexStatusActive), record(IndexStatusFailed)}, DocumentStatusFailed},
		{"in progress beats active", []*DocumentIndexRecord{record(IndexStatusActive), record(IndexStatusCreating)}, DocumentStatusRunning},
		{"deletion counts as in progress", []*DocumentIndexRecord{record(IndexStatusDeletionInProgress)}, DocumentStatusRunning},
		{"all active is complete", []*DocumentIndexRecord{record(IndexStatusActive), record(IndexStatusActive)}, DocumentStatusComplete},
		{"pending only", []*DocumentIndexRecord{record(IndexStatusPending)}, DocumentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateDocumentStatus(tt.records))
		})
	}
}

func TestDocumentStatusIsTerminal(t *testing.T) {
	assert.True(t, DocumentStatusDeleted.IsTerminal())
	assert.True(t, DocumentStatusUploaded.IsTerminal())
	assert.True(t, DocumentStatusExpired.IsTerminal())
	assert.False(t, DocumentStatusRunning.IsTerminal())
	assert.False(t, DocumentStatusComplete.IsTerminal())
}
