// Package start provides the entry node runner that seeds a nodeflow run with
// its request inputs.
package start

import (
	"context"
)

// StartRunner is the single entry point of a nodeflow. It forwards the
// resolved workflow inputs downstream unchanged, so every run has exactly one
// place where request data enters the graph.
type StartRunner struct {
	id string
}

// NewStartRunner creates a new start runner bound to a node instance.
func NewStartRunner(id string, _ map[string]any) (*StartRunner, error) {
	return &StartRunner{id: id}, nil
}

// ID returns the node instance ID.
func (r *StartRunner) ID() string {
	return r.id
}

// Type returns the node type.
func (r *StartRunner) Type() string {
	return "start"
}

// Run passes the bound inputs through as the node output. System values are
// merged in under their own keys so downstream nodes can reference request
// metadata without re-binding it.
func (r *StartRunner) Run(_ context.Context, input map[string]any, system map[string]any) (map[string]any, map[string]any, error) {
	output := make(map[string]any, len(input)+len(system))

	for key, value := range system {
		output[key] = value
	}

	for key, value := range input {
		output[key] = value
	}

	return output, nil, nil
}
