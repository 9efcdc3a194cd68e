package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/testutil"
)

// diamondFlow builds start -> {left, right} -> end.
func diamondFlow() (map[string]*models.NodeInstance, []*models.Edge) {
	nodes := map[string]*models.NodeInstance{
		"start": testutil.CreateTestNode("start", "start"),
		"left":  testutil.CreateTestNode("left", "vector_search"),
		"right": testutil.CreateTestNode("right", "vector_search"),
		"end":   testutil.CreateTestNode("end", "merge"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("start", "left"),
		testutil.CreateTestEdge("start", "right"),
		testutil.CreateTestEdge("left", "end"),
		testutil.CreateTestEdge("right", "end"),
	}

	return nodes, edges
}

func TestTopologicalSortRespectsEdges(t *testing.T) {
	nodes, edges := diamondFlow()

	order, err := TopologicalSort(nodes, edges)
	require.NoError(t, err)
	require.Len(t, order, len(nodes))

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	for _, edge := range edges {
		assert.Less(t, position[edge.Source], position[edge.Target],
			"edge %s -> %s must point forward", edge.Source, edge.Target)
	}
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"a": testutil.CreateTestNode("a", "start"),
		"b": testutil.CreateTestNode("b", "merge"),
		"c": testutil.CreateTestNode("c", "rerank"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("a", "b"),
		testutil.CreateTestEdge("b", "c"),
		testutil.CreateTestEdge("c", "b"),
	}

	_, err := TopologicalSort(nodes, edges)
	require.Error(t, err)

	var cycleErr *CycleError

	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"b", "c"}, cycleErr.Remaining)
}

func TestTopologicalSortAllNodesCyclic(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"a": testutil.CreateTestNode("a", "merge"),
		"b": testutil.CreateTestNode("b", "merge"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("a", "b"),
		testutil.CreateTestEdge("b", "a"),
	}

	_, err := TopologicalSort(nodes, edges)

	var cycleErr *CycleError

	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Remaining)
}

func TestTopologicalSortEmptyGraph(t *testing.T) {
	order, err := TopologicalSort(map[string]*models.NodeInstance{}, nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestTopologicalSortIgnoresDanglingEdges(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"a": testutil.CreateTestNode("a", "start"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("a", "ghost"),
		testutil.CreateTestEdge("ghost", "a"),
	}

	order, err := TopologicalSort(nodes, edges)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
}

func TestWavesPartitionsDiamond(t *testing.T) {
	nodes, edges := diamondFlow()

	waves, err := Waves(nodes, edges)
	require.NoError(t, err)
	require.Len(t, waves, 3)

	assert.Equal(t, []string{"start"}, waves[0])
	assert.ElementsMatch(t, []string{"left", "right"}, waves[1])
	assert.Equal(t, []string{"end"}, waves[2])
}

func TestWavesSingleNode(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"only": testutil.CreateTestNode("only", "start"),
	}

	waves, err := Waves(nodes, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"only"}}, waves)
}

func TestWavesRejectsCycle(t *testing.T) {
	nodes := map[string]*models.NodeInstance{
		"a": testutil.CreateTestNode("a", "merge"),
		"b": testutil.CreateTestNode("b", "merge"),
	}

	edges := []*models.Edge{
		testutil.CreateTestEdge("a", "b"),
		testutil.CreateTestEdge("b", "a"),
	}

	_, err := Waves(nodes, edges)

	var cycleErr *CycleError

	require.True(t, errors.As(err, &cycleErr))
}

func TestStartAndEndNodes(t *testing.T) {
	nodes, edges := diamondFlow()

	assert.Equal(t, []string{"start"}, StartNodes(nodes, edges))
	assert.Equal(t, []string{"end"}, EndNodes(nodes, edges))
}
