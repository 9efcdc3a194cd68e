// Package merge provides the node runner that joins retrieval branches into a
// single document list.
package merge

import (
	"context"
	"errors"
	"fmt"
)

const (
	StrategyConcat = "concat"
	StrategyDedupe = "dedupe"
)

// MergeRunner combines the document lists arriving on its input ports into
// one list. With the dedupe strategy, a document seen on an earlier port wins
// over later duplicates with the same id.
type MergeRunner struct {
	id       string
	strategy string
}

// NewMergeRunner creates a new merge runner from the node's static
// configuration.
func NewMergeRunner(id string, config map[string]any) (*MergeRunner, error) {
	strategy := StrategyDedupe
	if value, ok := config["strategy"].(string); ok && value != "" {
		strategy = value
	}

	if strategy != StrategyConcat && strategy != StrategyDedupe {
		return nil, fmt.Errorf("invalid merge strategy: %s (must be %q or %q)", strategy, StrategyConcat, StrategyDedupe)
	}

	return &MergeRunner{
		id:       id,
		strategy: strategy,
	}, nil
}

// ID returns the node instance ID.
func (r *MergeRunner) ID() string {
	return r.id
}

// Type returns the node type.
func (r *MergeRunner) Type() string {
	return "merge"
}

// Run merges the "first" and "second" document lists. Both ports must be
// bound; the engine only schedules this node once both upstream branches
// finished.
func (r *MergeRunner) Run(_ context.Context, input map[string]any, _ map[string]any) (map[string]any, map[string]any, error) {
	first, firstOK := documentList(input["first"])
	second, secondOK := documentList(input["second"])

	if !firstOK && !secondOK {
		return nil, nil, errors.New("merge node received no document lists")
	}

	merged := make([]any, 0, len(first)+len(second))
	seen := make(map[string]struct{})

	for _, doc := range append(first, second...) {
		if r.strategy == StrategyDedupe {
			if id := documentID(doc); id != "" {
				if _, duplicate := seen[id]; duplicate {
					continue
				}

				seen[id] = struct{}{}
			}
		}

		merged = append(merged, doc)
	}

	return map[string]any{
		"documents": merged,
		"count":     len(merged),
	}, nil, nil
}

func documentList(value any) ([]any, bool) {
	list, ok := value.([]any)

	return list, ok
}

func documentID(doc any) string {
	record, ok := doc.(map[string]any)
	if !ok {
		return ""
	}

	id, _ := record["id"].(string)

	return id
}
