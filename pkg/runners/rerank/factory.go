package rerank

import (
	"context"

	"github.com/promoteai/superrag/pkg/protocol"
)

// RerankRunnerFactory creates RerankRunner instances.
type RerankRunnerFactory struct{}

// NewRerankRunnerFactory creates a new factory instance.
func NewRerankRunnerFactory() protocol.RunnerFactory {
	return &RerankRunnerFactory{}
}

// Create creates a new RerankRunner instance.
func (f *RerankRunnerFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeRunner, error) {
	return NewRerankRunner(id, config)
}

// ID returns the factory ID.
func (f *RerankRunnerFactory) ID() string {
	return "rerank"
}

// Name returns the factory name.
func (f *RerankRunnerFactory) Name() string {
	return "Rerank"
}

// Description returns the factory description.
func (f *RerankRunnerFactory) Description() string {
	return "Orders retrieved documents by relevance score and truncates to a limit"
}

// InputSchema returns the JSON schema for the rerank input.
func (f *RerankRunnerFactory) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"documents": map[string]any{
				"type":        "array",
				"description": "Documents to rerank",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of documents to keep",
				"default":     defaultLimit,
			},
		},
		"required": []string{"documents"},
	}
}

// OutputSchema returns the JSON schema for the rerank output.
func (f *RerankRunnerFactory) OutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"documents": map[string]any{
				"type": "array",
			},
			"count": map[string]any{
				"type": "integer",
			},
		},
	}
}
