// Package rerank provides the node runner that orders retrieved documents by
// relevance and truncates to the requested limit.
package rerank

import (
	"context"
	"errors"
	"sort"
)

const defaultLimit = 5

// RerankRunner sorts a document list by descending score and keeps the top
// entries. Sorting is stable, so documents with equal scores keep their
// upstream order.
type RerankRunner struct {
	id string
}

// NewRerankRunner creates a new rerank runner.
func NewRerankRunner(id string, _ map[string]any) (*RerankRunner, error) {
	return &RerankRunner{id: id}, nil
}

// ID returns the node instance ID.
func (r *RerankRunner) ID() string {
	return r.id
}

// Type returns the node type.
func (r *RerankRunner) Type() string {
	return "rerank"
}

// Run reranks the input documents and truncates to limit.
func (r *RerankRunner) Run(_ context.Context, input map[string]any, _ map[string]any) (map[string]any, map[string]any, error) {
	documents, ok := input["documents"].([]any)
	if !ok {
		return nil, nil, errors.New("rerank node requires a 'documents' list")
	}

	limit := defaultLimit
	if value, ok := intValue(input["limit"]); ok && value > 0 {
		limit = value
	}

	ranked := make([]any, len(documents))
	copy(ranked, documents)

	sort.SliceStable(ranked, func(i, j int) bool {
		return documentScore(ranked[i]) > documentScore(ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return map[string]any{
		"documents": ranked,
		"count":     len(ranked),
	}, nil, nil
}

func intValue(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func documentScore(doc any) float64 {
	record, ok := doc.(map[string]any)
	if !ok {
		return 0
	}

	switch score := record["score"].(type) {
	case float64:
		return score
	case int:
		return float64(score)
	case int64:
		return float64(score)
	default:
		return 0
	}
}
