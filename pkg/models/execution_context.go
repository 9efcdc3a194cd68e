package models

import "sync"

// ExecutionContext holds the live state of a single nodeflow run: node
// outputs, node system outputs (side channels such as token streams) and
// global variables. It is created fresh per execution and discarded when the
// run returns.
//
// Outputs are written once per node id and node ids are disjoint across
// concurrent wave members, but the maps themselves are shared, so access is
// guarded by a mutex.
type ExecutionContext struct {
	ID string

	mu            sync.RWMutex
	outputs       map[string]map[string]any
	systemOutputs map[string]any
	globals       map[string]any
}

// NewExecutionContext creates an execution context seeded with the given
// global variables.
func NewExecutionContext(id string, globals map[string]any) *ExecutionContext {
	seeded := make(map[string]any, len(globals))
	for k, v := range globals {
		seeded[k] = v
	}

	return &ExecutionContext{
		ID:            id,
		outputs:       make(map[string]map[string]any),
		systemOutputs: make(map[string]any),
		globals:       seeded,
	}
}

// SetOutput records a completed node's output and optional system output.
func (ec *ExecutionContext) SetOutput(nodeID string, output map[string]any, systemOutput any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.outputs[nodeID] = output
	if systemOutput != nil {
		ec.systemOutputs[nodeID] = systemOutput
	}
}

// Output returns the output of a node, reporting whether the node has
// executed yet.
func (ec *ExecutionContext) Output(nodeID string) (map[string]any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	output, ok := ec.outputs[nodeID]

	return output, ok
}

// Outputs returns a snapshot of all node outputs.
func (ec *ExecutionContext) Outputs() map[string]map[string]any {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	snapshot := make(map[string]map[string]any, len(ec.outputs))
	for k, v := range ec.outputs {
		snapshot[k] = v
	}

	return snapshot
}

// SystemOutputs returns a snapshot of all node system outputs.
func (ec *ExecutionContext) SystemOutputs() map[string]any {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	snapshot := make(map[string]any, len(ec.systemOutputs))
	for k, v := range ec.systemOutputs {
		snapshot[k] = v
	}

	return snapshot
}

// Global returns a global variable by name.
func (ec *ExecutionContext) Global(name string) (any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	value, ok := ec.globals[name]

	return value, ok
}

// Globals returns a snapshot of the global variables.
func (ec *ExecutionContext) Globals() map[string]any {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	snapshot := make(map[string]any, len(ec.globals))
	for k, v := range ec.globals {
		snapshot[k] = v
	}

	return snapshot
}

// SetGlobal sets a global variable.
func (ec *ExecutionContext) SetGlobal(name string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.globals[name] = value
}
