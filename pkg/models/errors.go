package models

import (
	"errors"
	"fmt"
)

// ValidationError covers every caller-side fault the engine surfaces:
// unregistered node types, input model validation failures, unresolvable
// variable references, template rendering failures and start node violations.
type ValidationError struct {
	NodeID  string // Offending node, empty for flow-level failures
	Message string
	Err     error // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		if e.Err != nil {
			return fmt.Sprintf("validation failed for node %s: %s: %v", e.NodeID, e.Message, e.Err)
		}

		return fmt.Sprintf("validation failed for node %s: %s", e.NodeID, e.Message)
	}

	if e.Err != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Message, e.Err)
	}

	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a node-scoped validation error.
func NewValidationError(nodeID, message string, err error) *ValidationError {
	return &ValidationError{NodeID: nodeID, Message: message, Err: err}
}

// NodeNotFoundError indicates a reference to an undeclared node id.
type NodeNotFoundError struct {
	NodeID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %s not found", e.NodeID)
}

// IsValidationError checks whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}

// IsNodeNotFound checks whether err is (or wraps) a NodeNotFoundError.
func IsNodeNotFound(err error) bool {
	var target *NodeNotFoundError

	return errors.As(err, &target)
}
