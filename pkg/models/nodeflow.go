package models

import "fmt"

// Nodeflow is a parsed, validated workflow definition. The node/edge graph is
// guaranteed to be a DAG once it comes out of the parser, and the engine never
// mutates the topology during a run.
type Nodeflow struct {
	ID           string                   `json:"id,omitempty"`
	Name         string                   `json:"name"  validate:"required"`
	Title        string                   `json:"title,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Tags         []string                 `json:"tags,omitempty"`
	Nodes        map[string]*NodeInstance `json:"nodes" validate:"required"`
	Edges        []*Edge                  `json:"edges"`
	InputSchema  map[string]any           `json:"input_schema,omitempty"`
	OutputSchema map[string]any           `json:"output_schema,omitempty"`
}

// Node returns the node with the given id.
func (f *Nodeflow) Node(id string) (*NodeInstance, error) {
	node, ok := f.Nodes[id]
	if !ok {
		return nil, &NodeNotFoundError{NodeID: id}
	}

	return node, nil
}

// UpdateNodeInput patches a single node's input value before a (re-)run. This
// is the only mutation allowed on a Nodeflow after parsing.
func (f *Nodeflow) UpdateNodeInput(nodeID, key string, value any) error {
	node, err := f.Node(nodeID)
	if err != nil {
		return err
	}

	if node.InputValues == nil {
		node.InputValues = make(map[string]any)
	}

	node.InputValues[key] = value

	return nil
}

// NodeIDs returns the ids of all nodes in the flow.
func (f *Nodeflow) NodeIDs() []string {
	ids := make([]string, 0, len(f.Nodes))
	for id := range f.Nodes {
		ids = append(ids, id)
	}

	return ids
}

func (f *Nodeflow) String() string {
	return fmt.Sprintf("nodeflow %q (%d nodes, %d edges)", f.Name, len(f.Nodes), len(f.Edges))
}
