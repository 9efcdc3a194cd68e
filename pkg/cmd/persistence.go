package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promoteai/superrag/pkg/persistence"
	"github.com/promoteai/superrag/pkg/persistence/memory"
	"github.com/promoteai/superrag/pkg/persistence/postgresql"
)

// NewIndexRepository creates the index record repository for a database URL.
// "postgres://" and "postgresql://" URLs get the PostgreSQL implementation;
// "memory://" gets the in-memory one for local development.
func NewIndexRepository(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.IndexRepository, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "memory":
		return memory.NewRepository(logger), nil
	default:
		return nil, fmt.Errorf("unsupported database URL: %s", databaseURL)
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}

	return provider
}
