// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/promoteai/superrag/pkg/models"
)

// CreateTestNode creates a NodeInstance with default values that can be
// overridden.
func CreateTestNode(id, nodeType string, overrides ...func(*models.NodeInstance)) *models.NodeInstance {
	node := &models.NodeInstance{
		ID:          id,
		Type:        nodeType,
		Title:       "Test Node",
		InputValues: map[string]any{},
		Config:      map[string]any{},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithInputValues sets the node's input value bindings.
func WithInputValues(values map[string]any) func(*models.NodeInstance) {
	return func(n *models.NodeInstance) {
		n.InputValues = values
	}
}

// WithConfig sets the node's static configuration.
func WithConfig(config map[string]any) func(*models.NodeInstance) {
	return func(n *models.NodeInstance) {
		n.Config = config
	}
}

// WithSchemas sets the node's input and output schemas.
func WithSchemas(input, output map[string]any) func(*models.NodeInstance) {
	return func(n *models.NodeInstance) {
		n.InputSchema = input
		n.OutputSchema = output
	}
}

// CreateTestEdge creates an Edge between two nodes using default ports.
func CreateTestEdge(source, target string, overrides ...func(*models.Edge)) *models.Edge {
	edge := &models.Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
	}

	for _, override := range overrides {
		override(edge)
	}

	return edge
}

// WithPorts sets the source and target ports of an edge.
func WithPorts(sourcePort, targetPort string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.SourcePort = sourcePort
		e.TargetPort = targetPort
	}
}

// CreateTestNodeflow assembles a Nodeflow from nodes and edges.
func CreateTestNodeflow(name string, nodes []*models.NodeInstance, edges []*models.Edge) *models.Nodeflow {
	nodeMap := make(map[string]*models.NodeInstance, len(nodes))
	for _, node := range nodes {
		nodeMap[node.ID] = node
	}

	return &models.Nodeflow{
		ID:    uuid.New().String(),
		Name:  name,
		Nodes: nodeMap,
		Edges: edges,
	}
}

// CreateTestIndexRecord creates a DocumentIndexRecord with default values
// that can be overridden.
func CreateTestIndexRecord(documentID, indexType string, overrides ...func(*models.DocumentIndexRecord)) *models.DocumentIndexRecord {
	record := &models.DocumentIndexRecord{
		DocumentID:      documentID,
		IndexType:       indexType,
		Status:          models.IndexStatusPending,
		Version:         1,
		ObservedVersion: 0,
	}

	for _, override := range overrides {
		override(record)
	}

	return record
}

// WithRecordState sets status, version and observed version together.
func WithRecordState(status models.IndexStatus, version, observedVersion int64) func(*models.DocumentIndexRecord) {
	return func(r *models.DocumentIndexRecord) {
		r.Status = status
		r.Version = version
		r.ObservedVersion = observedVersion
	}
}
