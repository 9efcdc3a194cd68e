package graph

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError indicates the node/edge set has no valid topological order.
type CycleError struct {
	// Remaining holds the node ids that could not be ordered (the residual
	// cycle plus anything downstream of it).
	Remaining []string
}

func (e *CycleError) Error() string {
	if len(e.Remaining) == 0 {
		return "graph contains a cycle"
	}

	ids := make([]string, len(e.Remaining))
	copy(ids, e.Remaining)
	sort.Strings(ids)

	return fmt.Sprintf("graph contains a cycle involving nodes: %s", strings.Join(ids, ", "))
}

// TypeMismatchError indicates an edge connects ports whose declared schema
// types cannot be bound to each other.
type TypeMismatchError struct {
	SourceNode  string
	SourcePort  string
	TargetNode  string
	TargetPort  string
	SourceTypes []string
	TargetTypes []string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"incompatible edge %s.%s (%v) -> %s.%s (%v)",
		e.SourceNode, e.SourcePort, e.SourceTypes,
		e.TargetNode, e.TargetPort, e.TargetTypes,
	)
}
