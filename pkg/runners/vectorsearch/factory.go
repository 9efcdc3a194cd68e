package vectorsearch

import (
	"context"

	"github.com/promoteai/superrag/pkg/protocol"
)

// VectorSearchRunnerFactory creates VectorSearchRunner instances.
type VectorSearchRunnerFactory struct{}

// NewVectorSearchRunnerFactory creates a new factory instance.
func NewVectorSearchRunnerFactory() protocol.RunnerFactory {
	return &VectorSearchRunnerFactory{}
}

// Create creates a new VectorSearchRunner instance.
func (f *VectorSearchRunnerFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeRunner, error) {
	return NewVectorSearchRunner(id, config)
}

// ID returns the factory ID.
func (f *VectorSearchRunnerFactory) ID() string {
	return "vector_search"
}

// Name returns the factory name.
func (f *VectorSearchRunnerFactory) Name() string {
	return "Vector Search"
}

// Description returns the factory description.
func (f *VectorSearchRunnerFactory) Description() string {
	return "Retrieves the documents most similar to a query from a configured collection"
}

// InputSchema returns the JSON schema for the vector search input.
func (f *VectorSearchRunnerFactory) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Query text to search for",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Maximum number of documents to return",
				"default":     defaultTopK,
			},
			"threshold": map[string]any{
				"type":        "number",
				"description": "Minimum similarity score for a document to be returned",
				"default":     0,
			},
		},
		"required": []string{"query"},
	}
}

// OutputSchema returns the JSON schema for the vector search output.
func (f *VectorSearchRunnerFactory) OutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"documents": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":      map[string]any{"type": "string"},
						"content": map[string]any{"type": "string"},
						"score":   map[string]any{"type": "number"},
						"source":  map[string]any{"type": "string"},
					},
				},
			},
			"count": map[string]any{
				"type": "integer",
			},
		},
	}
}
