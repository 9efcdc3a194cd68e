package start

import (
	"context"

	"github.com/promoteai/superrag/pkg/protocol"
)

// StartRunnerFactory creates StartRunner instances.
type StartRunnerFactory struct{}

// NewStartRunnerFactory creates a new factory instance.
func NewStartRunnerFactory() protocol.RunnerFactory {
	return &StartRunnerFactory{}
}

// Create creates a new StartRunner instance.
func (f *StartRunnerFactory) Create(_ context.Context, id string, config map[string]any) (protocol.NodeRunner, error) {
	return NewStartRunner(id, config)
}

// ID returns the factory ID.
func (f *StartRunnerFactory) ID() string {
	return "start"
}

// Name returns the factory name.
func (f *StartRunnerFactory) Name() string {
	return "Start"
}

// Description returns the factory description.
func (f *StartRunnerFactory) Description() string {
	return "Entry point of a nodeflow, forwarding request inputs to downstream nodes"
}

// InputSchema returns the JSON schema for the start node input.
func (f *StartRunnerFactory) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The user query driving this run",
			},
		},
	}
}

// OutputSchema returns the JSON schema for the start node output.
func (f *StartRunnerFactory) OutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type": "string",
			},
		},
	}
}
