package engine

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/promoteai/superrag/pkg/expression"
	"github.com/promoteai/superrag/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// bindInputs resolves a node's input expressions against the execution
// context, applies global override precedence, coerces string inputs toward
// the declared property types and validates the result against the node's
// input schema.
func (e *Executor) bindInputs(node *models.NodeInstance, ec *models.ExecutionContext) (map[string]any, error) {
	resolved, err := expression.Resolve(node.InputValues, ec)
	if err != nil {
		if verr, ok := err.(*models.ValidationError); ok && verr.NodeID == "" {
			verr.NodeID = node.ID
		}

		return nil, err
	}

	input, ok := resolved.(map[string]any)
	if !ok {
		input = make(map[string]any)
	}

	// Globals always win: a run's caller-supplied globals forcibly override
	// per-node static configuration, so request-scoped values (user, chat_id)
	// reach every node without per-node wiring.
	for key := range input {
		if value, exists := ec.Global(key); exists {
			input[key] = value
		}
	}

	return e.validateInput(node, input)
}

func (e *Executor) validateInput(node *models.NodeInstance, input map[string]any) (map[string]any, error) {
	if node.InputSchema == nil {
		return input, nil
	}

	properties, _ := node.InputSchema["properties"].(map[string]any)

	for key, value := range input {
		property, ok := properties[key].(map[string]any)
		if !ok {
			continue
		}

		typeName, ok := property["type"].(string)
		if !ok {
			continue
		}

		input[key] = coerce(value, typeName)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(node.InputSchema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return nil, models.NewValidationError(node.ID, "input schema validation failed", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return nil, models.NewValidationError(node.ID, "invalid input: "+strings.Join(messages, "; "), nil)
	}

	return input, nil
}

// coerce converts string inputs toward a declared JSON-schema type. Values
// that cannot be coerced are returned unchanged and left for schema
// validation to reject.
func coerce(value any, typeName string) any {
	s, ok := value.(string)
	if !ok {
		return value
	}

	switch typeName {
	case "integer":
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	case "boolean":
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	case "array":
		var parsed []any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed
		}

		// Comma-split fallback for plain lists.
		parts := strings.Split(s, ",")
		items := make([]any, 0, len(parts))

		for _, part := range parts {
			items = append(items, strings.TrimSpace(part))
		}

		return items
	case "object":
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed
		}
	}

	return value
}
