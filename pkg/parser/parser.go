// Package parser turns graph-format nodeflow documents (JSON or YAML) into
// validated Nodeflow instances ready for execution.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/promoteai/superrag/pkg/graph"
	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/registry"
	"gopkg.in/yaml.v3"
)

// Node types whose value ports are bound to workflow-level inputs.
var startNodeTypes = map[string]bool{
	"start": true,
	"input": true,
}

// defaultConfigKeys is the fixed allow-list of common node config fields that
// are backfilled into input values when no edge binds them.
var defaultConfigKeys = []string{
	"query",
	"model",
	"temperature",
	"top_k",
	"limit",
	"prompt",
	"collection",
	"index_type",
	"threshold",
}

type document struct {
	ID           string         `json:"id"            yaml:"id"`
	Name         string         `json:"name"          yaml:"name"          validate:"required"`
	Title        string         `json:"title"         yaml:"title"`
	Description  string         `json:"description"   yaml:"description"`
	Tags         []string       `json:"tags"          yaml:"tags"`
	InputSchema  map[string]any `json:"input_schema"  yaml:"input_schema"`
	OutputSchema map[string]any `json:"output_schema" yaml:"output_schema"`
	Graph        *graphSection  `json:"graph"         yaml:"graph"         validate:"required"`
}

type graphSection struct {
	Nodes []graphNode `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges []graphEdge `json:"edges" yaml:"edges" validate:"dive"`
}

type graphNode struct {
	ID   string         `json:"id"   yaml:"id"   validate:"required"`
	Type string         `json:"type" yaml:"type" validate:"required"`
	Data map[string]any `json:"data" yaml:"data"`
}

type graphEdge struct {
	ID           string `json:"id"           yaml:"id"`
	Source       string `json:"source"       yaml:"source" validate:"required"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target"       yaml:"target" validate:"required"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
}

// Parse builds a Nodeflow from a graph-format document. When a registry is
// provided, node input/output schemas are attached from the registered runner
// factories and edges are type-checked against them. All failures surface at
// parse time, before any execution.
func Parse(data []byte, reg *registry.Registry) (*models.Nodeflow, error) {
	doc, err := unmarshalDocument(data)
	if err != nil {
		return nil, models.NewValidationError("", "malformed nodeflow document", err)
	}

	err = validator.New().Struct(doc)
	if err != nil {
		return nil, models.NewValidationError("", "invalid nodeflow document", err)
	}

	doc.InputSchema = dereference(doc.InputSchema, doc.InputSchema)
	doc.OutputSchema = dereference(doc.OutputSchema, doc.OutputSchema)

	flow := &models.Nodeflow{
		ID:           doc.ID,
		Name:         doc.Name,
		Title:        doc.Title,
		Description:  doc.Description,
		Tags:         doc.Tags,
		Nodes:        make(map[string]*models.NodeInstance, len(doc.Graph.Nodes)),
		Edges:        make([]*models.Edge, 0, len(doc.Graph.Edges)),
		InputSchema:  doc.InputSchema,
		OutputSchema: doc.OutputSchema,
	}

	for _, raw := range doc.Graph.Nodes {
		if _, exists := flow.Nodes[raw.ID]; exists {
			return nil, models.NewValidationError(raw.ID, "duplicate node id", nil)
		}

		node := &models.NodeInstance{
			ID:          raw.ID,
			Type:        raw.Type,
			InputValues: make(map[string]any),
			Config:      raw.Data,
		}

		if title, ok := raw.Data["title"].(string); ok {
			node.Title = title
		}

		if reg != nil {
			if factory, ok := reg.RunnerFactory(raw.Type); ok {
				node.InputSchema = factory.InputSchema()
				node.OutputSchema = factory.OutputSchema()
			}
		}

		flow.Nodes[raw.ID] = node
	}

	for _, raw := range doc.Graph.Edges {
		edge := &models.Edge{
			ID:         raw.ID,
			Source:     raw.Source,
			SourcePort: raw.SourceHandle,
			Target:     raw.Target,
			TargetPort: raw.TargetHandle,
		}

		if _, ok := flow.Nodes[edge.Source]; !ok {
			return nil, &models.NodeNotFoundError{NodeID: edge.Source}
		}

		target, ok := flow.Nodes[edge.Target]
		if !ok {
			return nil, &models.NodeNotFoundError{NodeID: edge.Target}
		}

		// Every edge synthesizes the target's default data binding.
		target.InputValues[edge.TargetPortName()] = fmt.Sprintf(
			"{{ nodes.%s.output.%s }}", edge.Source, edge.SourcePortName())

		flow.Edges = append(flow.Edges, edge)
	}

	backfillDefaults(flow)
	bindWorkflowInputs(flow)

	_, err = graph.TopologicalSort(flow.Nodes, flow.Edges)
	if err != nil {
		return nil, err
	}

	err = graph.ValidateEdgeTypes(flow.Nodes, flow.Edges)
	if err != nil {
		return nil, err
	}

	return flow, nil
}

func unmarshalDocument(data []byte) (*document, error) {
	doc := &document{}

	jsonErr := json.Unmarshal(data, doc)
	if jsonErr == nil {
		return doc, nil
	}

	yamlErr := yaml.Unmarshal(data, doc)
	if yamlErr == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("neither valid JSON (%v) nor valid YAML (%w)", jsonErr, yamlErr)
}

// backfillDefaults copies allow-listed config fields into input values when
// no edge already binds them.
func backfillDefaults(flow *models.Nodeflow) {
	for _, node := range flow.Nodes {
		for _, key := range defaultConfigKeys {
			if _, bound := node.InputValues[key]; bound {
				continue
			}

			if value, ok := node.Config[key]; ok {
				node.InputValues[key] = value
			}
		}
	}
}

// bindWorkflowInputs binds workflow-level input schema properties to globals
// on start/input nodes, so caller-supplied workflow inputs flow automatically
// into the corresponding node.
func bindWorkflowInputs(flow *models.Nodeflow) {
	if flow.InputSchema == nil {
		return
	}

	properties, ok := flow.InputSchema["properties"].(map[string]any)
	if !ok {
		return
	}

	for _, node := range flow.Nodes {
		if !startNodeTypes[node.Type] {
			continue
		}

		for key := range properties {
			if _, bound := node.InputValues[key]; !bound {
				node.InputValues[key] = fmt.Sprintf("{{ globals.%s }}", key)
			}
		}
	}
}
