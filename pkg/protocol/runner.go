// Package protocol defines the interfaces and contracts for pluggable node
// runners and the asynchronous index task scheduler.
package protocol

import "context"

// NodeRunner is the business-logic contract for one node instance. The
// engine resolves and validates the node's inputs before calling Run; the
// runner never sees raw expressions.
type NodeRunner interface {
	// ID returns the node instance id this runner was created for
	ID() string

	// Type returns the node type tag
	Type() string

	// Run executes the node. input is the validated user input bag; system
	// carries request-scoped values (query, user, chat_id, ...) assembled
	// from the run's global variables. The second return value is a
	// free-form side channel, used by terminal nodes to expose e.g. an
	// async content generator for streaming consumption.
	Run(ctx context.Context, input map[string]any, system map[string]any) (map[string]any, map[string]any, error)
}

// RunnerFactory creates runner instances and provides metadata about the
// node type.
type RunnerFactory interface {
	// Create creates a new runner bound to a node instance id and its static
	// configuration
	Create(ctx context.Context, id string, config map[string]any) (NodeRunner, error)

	// ID returns the unique node type tag for this runner
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// InputSchema returns the JSON schema the validated input bag must satisfy
	InputSchema() map[string]any

	// OutputSchema returns the JSON schema of the output record Run produces
	OutputSchema() map[string]any
}
