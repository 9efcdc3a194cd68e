package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/testutil"
)

func schemaWithProperty(port string, property map[string]any) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			port: property,
		},
	}
}

func typedPair(sourceProperty, targetProperty map[string]any) (map[string]*models.NodeInstance, []*models.Edge) {
	nodes := map[string]*models.NodeInstance{
		"src": testutil.CreateTestNode("src", "start",
			testutil.WithSchemas(nil, schemaWithProperty("result", sourceProperty))),
		"dst": testutil.CreateTestNode("dst", "rerank",
			testutil.WithSchemas(schemaWithProperty("input", targetProperty), nil)),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("src", "dst", testutil.WithPorts("result", "input")),
	}

	return nodes, edges
}

func TestValidateEdgeTypesMatchingTypes(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"type": "string"},
		map[string]any{"type": "string"},
	)

	assert.NoError(t, ValidateEdgeTypes(nodes, edges))
}

func TestValidateEdgeTypesMismatch(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"type": "string"},
		map[string]any{"type": "array"},
	)

	err := ValidateEdgeTypes(nodes, edges)
	require.Error(t, err)

	var mismatch *TypeMismatchError

	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "src", mismatch.SourceNode)
	assert.Equal(t, "result", mismatch.SourcePort)
	assert.Equal(t, "dst", mismatch.TargetNode)
	assert.Equal(t, "input", mismatch.TargetPort)
}

func TestValidateEdgeTypesNumericWidening(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"type": "integer"},
		map[string]any{"type": "number"},
	)
	assert.NoError(t, ValidateEdgeTypes(nodes, edges))

	nodes, edges = typedPair(
		map[string]any{"type": "number"},
		map[string]any{"type": "integer"},
	)
	assert.NoError(t, ValidateEdgeTypes(nodes, edges))
}

func TestValidateEdgeTypesUnionOverlap(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "null"},
		}},
		map[string]any{"type": []any{"string", "number"}},
	)

	assert.NoError(t, ValidateEdgeTypes(nodes, edges))
}

func TestValidateEdgeTypesUnionDisjoint(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"oneOf": []any{
			map[string]any{"type": "boolean"},
			map[string]any{"type": "null"},
		}},
		map[string]any{"type": "array"},
	)

	var mismatch *TypeMismatchError

	require.True(t, errors.As(ValidateEdgeTypes(nodes, edges), &mismatch))
}

func TestValidateEdgeTypesUnconstrainedSidePasses(t *testing.T) {
	nodes, edges := typedPair(
		map[string]any{"description": "anything"},
		map[string]any{"type": "array"},
	)

	assert.NoError(t, ValidateEdgeTypes(nodes, edges))
}

func TestValidateEdgeTypesMissingSchemaPasses(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"src": testutil.CreateTestNode("src", "start"),
		"dst": testutil.CreateTestNode("dst", "rerank"),
	}

	edges := []*models.Edge{testutil.CreateTestEdge("src", "dst")}

	assert.NoError(t, ValidateEdgeTypes(nodes, edges))
}

func TestValidateEdgeTypesUnknownNode(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"src": testutil.CreateTestNode("src", "start"),
	}

	edges := []*models.Edge{testutil.CreateTestEdge("src", "ghost")}

	err := ValidateEdgeTypes(nodes, edges)
	require.Error(t, err)
	assert.True(t, models.IsNodeNotFound(err))
}
