// Package graph validates nodeflow graphs: cycle detection via topological
// sorting, parallel wave partitioning and edge port type checking.
package graph

import (
	"github.com/promoteai/superrag/pkg/models"
)

// TopologicalSort orders node ids so that every edge points forward in the
// result. It is a plain Kahn's algorithm; ordering among nodes of equal
// in-degree is arbitrary and callers must not depend on it beyond "respects
// all edge dependencies". Returns a CycleError when no valid order exists.
func TopologicalSort(nodes map[string]*models.NodeInstance, edges []*models.Edge) ([]string, error) {
	inDegree, successors := buildDegrees(nodes, edges)

	queue := make([]string, 0, len(nodes))
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	// A non-empty graph without any source node cannot be a DAG.
	if len(queue) == 0 && len(nodes) > 0 {
		return nil, &CycleError{Remaining: nodeIDs(nodes)}
	}

	order := make([]string, 0, len(nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, successor := range successors[id] {
			inDegree[successor]--
			if inDegree[successor] == 0 {
				queue = append(queue, successor)
			}
		}
	}

	if len(order) != len(nodes) {
		ordered := make(map[string]bool, len(order))
		for _, id := range order {
			ordered[id] = true
		}

		remaining := make([]string, 0, len(nodes)-len(order))

		for id := range nodes {
			if !ordered[id] {
				remaining = append(remaining, id)
			}
		}

		return nil, &CycleError{Remaining: remaining}
	}

	return order, nil
}

// Waves partitions the graph into parallel execution waves: each wave holds
// every not-yet-processed node whose remaining in-degree is zero. Nodes in
// the same wave have no data dependency on each other by construction.
func Waves(nodes map[string]*models.NodeInstance, edges []*models.Edge) ([][]string, error) {
	// Cycle check up front so the wave loop below always terminates.
	if _, err := TopologicalSort(nodes, edges); err != nil {
		return nil, err
	}

	inDegree, successors := buildDegrees(nodes, edges)

	waves := make([][]string, 0)
	processed := 0

	for processed < len(nodes) {
		wave := make([]string, 0)

		for id, degree := range inDegree {
			if degree == 0 {
				wave = append(wave, id)
			}
		}

		for _, id := range wave {
			delete(inDegree, id)

			for _, successor := range successors[id] {
				if _, pending := inDegree[successor]; pending {
					inDegree[successor]--
				}
			}
		}

		waves = append(waves, wave)
		processed += len(wave)
	}

	return waves, nil
}

// StartNodes returns the ids of all nodes with in-degree zero.
func StartNodes(nodes map[string]*models.NodeInstance, edges []*models.Edge) []string {
	inDegree, _ := buildDegrees(nodes, edges)

	starts := make([]string, 0)

	for id, degree := range inDegree {
		if degree == 0 {
			starts = append(starts, id)
		}
	}

	return starts
}

// EndNodes returns the ids of all nodes with out-degree zero. Terminal
// streaming side channels are expected to be attached to these.
func EndNodes(nodes map[string]*models.NodeInstance, edges []*models.Edge) []string {
	outDegree := make(map[string]int, len(nodes))
	for id := range nodes {
		outDegree[id] = 0
	}

	for _, edge := range edges {
		if _, ok := nodes[edge.Source]; ok {
			outDegree[edge.Source]++
		}
	}

	ends := make([]string, 0)

	for id, degree := range outDegree {
		if degree == 0 {
			ends = append(ends, id)
		}
	}

	return ends
}

func buildDegrees(nodes map[string]*models.NodeInstance, edges []*models.Edge) (map[string]int, map[string][]string) {
	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))

	for id := range nodes {
		inDegree[id] = 0
	}

	for _, edge := range edges {
		if _, ok := nodes[edge.Source]; !ok {
			continue
		}

		if _, ok := nodes[edge.Target]; !ok {
			continue
		}

		inDegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	return inDegree, successors
}

func nodeIDs(nodes map[string]*models.NodeInstance) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}

	return ids
}
