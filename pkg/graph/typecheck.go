package graph

import (
	"github.com/promoteai/superrag/pkg/models"
)

// ValidateEdgeTypes checks that every edge connects schema-compatible ports.
// The source node's output schema property and the target node's input schema
// property are each reduced to a set of JSON-schema primitive type names
// (resolving anyOf/oneOf/allOf unions and "type" arrays). Ports are
// compatible when the sets intersect, when either side is unconstrained, or
// when one side is integer and the other number.
func ValidateEdgeTypes(nodes map[string]*models.NodeInstance, edges []*models.Edge) error {
	for _, edge := range edges {
		source, ok := nodes[edge.Source]
		if !ok {
			return &models.NodeNotFoundError{NodeID: edge.Source}
		}

		target, ok := nodes[edge.Target]
		if !ok {
			return &models.NodeNotFoundError{NodeID: edge.Target}
		}

		sourceTypes := propertyTypes(source.OutputSchema, edge.SourcePortName())
		targetTypes := propertyTypes(target.InputSchema, edge.TargetPortName())

		if !typesCompatible(sourceTypes, targetTypes) {
			return &TypeMismatchError{
				SourceNode:  edge.Source,
				SourcePort:  edge.SourcePortName(),
				TargetNode:  edge.Target,
				TargetPort:  edge.TargetPortName(),
				SourceTypes: sourceTypes,
				TargetTypes: targetTypes,
			}
		}
	}

	return nil
}

// propertyTypes extracts the primitive type-name set declared for one named
// property of a JSON schema. An empty result means the port is unconstrained.
func propertyTypes(schema map[string]any, port string) []string {
	if schema == nil {
		return nil
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	property, ok := properties[port].(map[string]any)
	if !ok {
		return nil
	}

	set := make(map[string]bool)
	collectTypes(property, set)

	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}

	return types
}

func collectTypes(property map[string]any, set map[string]bool) {
	switch typed := property["type"].(type) {
	case string:
		set[typed] = true
	case []any:
		for _, entry := range typed {
			if name, ok := entry.(string); ok {
				set[name] = true
			}
		}
	}

	for _, keyword := range []string{"anyOf", "oneOf", "allOf"} {
		variants, ok := property[keyword].([]any)
		if !ok {
			continue
		}

		for _, variant := range variants {
			if sub, ok := variant.(map[string]any); ok {
				collectTypes(sub, set)
			}
		}
	}
}

func typesCompatible(sourceTypes, targetTypes []string) bool {
	// An unconstrained side binds to anything.
	if len(sourceTypes) == 0 || len(targetTypes) == 0 {
		return true
	}

	targets := make(map[string]bool, len(targetTypes))
	for _, t := range targetTypes {
		targets[t] = true
	}

	for _, s := range sourceTypes {
		if targets[s] {
			return true
		}

		// Implicit numeric widening.
		if s == "integer" && targets["number"] {
			return true
		}

		if s == "number" && targets["integer"] {
			return true
		}
	}

	return false
}
