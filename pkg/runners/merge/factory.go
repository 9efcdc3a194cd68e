package merge

import (
	"context"

	"github.com/promoteai/superrag/pkg/protocol"
)

// MergeRunnerFactory creates MergeRunner instances.
type MergeRunnerFactory struct{}

// NewMergeRunnerFactory creates a new factory instance.
func NewMergeRunnerFactory() protocol.RunnerFactory {
	return &MergeRunnerFactory{}
}

// Create creates a new MergeRunner instance.
func (f *MergeRunnerFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeRunner, error) {
	return NewMergeRunner(id, config)
}

// ID returns the factory ID.
func (f *MergeRunnerFactory) ID() string {
	return "merge"
}

// Name returns the factory name.
func (f *MergeRunnerFactory) Name() string {
	return "Merge"
}

// Description returns the factory description.
func (f *MergeRunnerFactory) Description() string {
	return "Combines document lists from multiple retrieval branches into one list"
}

// InputSchema returns the JSON schema for the merge input.
func (f *MergeRunnerFactory) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"first": map[string]any{
				"type":        "array",
				"description": "Documents from the first branch",
			},
			"second": map[string]any{
				"type":        "array",
				"description": "Documents from the second branch",
			},
		},
	}
}

// OutputSchema returns the JSON schema for the merge output.
func (f *MergeRunnerFactory) OutputSchema() map[string]any {
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
