// Package postgresql provides the PostgreSQL persistence implementation for
// document index records.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/persistence"
	"github.com/promoteai/superrag/pkg/persistence/sqlbase"
)

// Persistence implements persistence.IndexRepository on PostgreSQL.
type Persistence struct {
	db        *sql.DB
	logger    *slog.Logger
	indexRepo *IndexRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	indexRepo := NewIndexRepository(database, logger)

	postgres := &Persistence{
		db:        database,
		logger:    logger,
		indexRepo: indexRepo,
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) ListIndexRecords(ctx context.Context) ([]*models.DocumentIndexRecord, error) {
	return p.indexRepo.ListAll(ctx)
}

func (p *Persistence) ListIndexRecordsByDocument(ctx context.Context, documentID string) ([]*models.DocumentIndexRecord, error) {
	return p.indexRepo.ListByDocument(ctx, documentID)
}

func (p *Persistence) GetIndexRecord(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	return p.indexRepo.Get(ctx, documentID, indexType)
}

func (p *Persistence) DeclareIndex(ctx context.Context, documentID, indexType string) (*models.DocumentIndexRecord, error) {
	return p.indexRepo.Declare(ctx, documentID, indexType)
}

func (p *Persistence) MarkIndexDeleting(ctx context.Context, documentID, indexType string) error {
	return p.indexRepo.MarkDeleting(ctx, documentID, indexType)
}

func (p *Persistence) ClaimIndexes(ctx context.Context, documentID string, requests []persistence.ClaimRequest) ([]persistence.ClaimedIndex, error) {
	return p.indexRepo.Claim(ctx, documentID, requests)
}

func (p *Persistence) CompleteIndexCreate(ctx context.Context, documentID, indexType string, targetVersion int64, indexData map[string]any) (bool, error) {
	return p.indexRepo.CompleteCreate(ctx, documentID, indexType, targetVersion, indexData)
}

func (p *Persistence) FailIndex(ctx context.Context, documentID, indexType, errorMessage string) (bool, error) {
	return p.indexRepo.Fail(ctx, documentID, indexType, errorMessage)
}

func (p *Persistence) CompleteIndexDelete(ctx context.Context, documentID, indexType string) (bool, error) {
	return p.indexRepo.CompleteDelete(ctx, documentID, indexType)
}

func (p *Persistence) DocumentStatus(ctx context.Context, documentID string) (models.DocumentStatus, error) {
	return p.indexRepo.GetDocumentStatus(ctx, documentID)
}

func (p *Persistence) UpdateDocumentStatus(ctx context.Context, documentID string, status models.DocumentStatus) error {
	return p.indexRepo.SetDocumentStatus(ctx, documentID, status)
}
