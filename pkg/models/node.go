// Package models defines core node-based nodeflow models for graph execution
package models

// NodeInstance represents a single node in a nodeflow graph.
//
// A node is immutable after parse except for InputValues, which may be
// rebound through Nodeflow.UpdateNodeInput before a run starts.
type NodeInstance struct {
	ID           string         `json:"id"    validate:"required"`
	Type         string         `json:"type"  validate:"required"`
	Title        string         `json:"title,omitempty"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
	InputValues  map[string]any `json:"input_values"`
	Config       map[string]any `json:"config,omitempty"`
}

// Edge is a directed connection between two nodes. Combined with port names
// it defines both the dependency graph and the default data binding injected
// into the target node's input values.
type Edge struct {
	ID         string `json:"id,omitempty"`
	Source     string `json:"source"      validate:"required"`
	SourcePort string `json:"source_port,omitempty"`
	Target     string `json:"target"      validate:"required"`
	TargetPort string `json:"target_port,omitempty"`
}

// Default port names used when an edge omits its handles.
const (
	DefaultSourcePort = "output"
	DefaultTargetPort = "value"
)

// SourcePortName returns the edge's source port, falling back to the default.
func (e *Edge) SourcePortName() string {
	if e.SourcePort != "" {
		return e.SourcePort
	}

	return DefaultSourcePort
}

// TargetPortName returns the edge's target port, falling back to the default.
func (e *Edge) TargetPortName() string {
	if e.TargetPort != "" {
		return e.TargetPort
	}

	return DefaultTargetPort
}
