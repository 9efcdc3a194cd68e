// Package expression resolves node input expressions against a live
// execution context: direct `{{ path }}` references as typed lookups, and
// everything else through template interpolation.
package expression

import (
	"regexp"
	"strings"

	"github.com/promoteai/superrag/pkg/models"
)

// A string that is exactly one reference, with no surrounding content.
var directReferencePattern = regexp.MustCompile(`^\{\{\s*([^{}]+?)\s*\}\}$`)

// Resolve walks value recursively, resolving every string it finds. Maps and
// slices are rebuilt with resolved members; non-string scalars pass through
// unchanged.
//
// Direct references (`{{ nodes.X.output.Y }}`, `{{ globals.Z }}`) must be
// resolved as typed lookups before falling through to templating, otherwise
// structured node outputs would be lossily stringified.
func Resolve(value any, ec *models.ExecutionContext) (any, error) {
	switch typed := value.(type) {
	case string:
		return resolveString(typed, ec)
	case map[string]any:
		resolved := make(map[string]any, len(typed))

		for key, entry := range typed {
			entryValue, err := Resolve(entry, ec)
			if err != nil {
				return nil, err
			}

			resolved[key] = entryValue
		}

		return resolved, nil
	case []any:
		resolved := make([]any, len(typed))

		for i, entry := range typed {
			entryValue, err := Resolve(entry, ec)
			if err != nil {
				return nil, err
			}

			resolved[i] = entryValue
		}

		return resolved, nil
	default:
		return value, nil
	}
}

func resolveString(value string, ec *models.ExecutionContext) (any, error) {
	if match := directReferencePattern.FindStringSubmatch(value); match != nil {
		return resolveReference(match[1], ec)
	}

	if !strings.Contains(value, "{{") {
		return value, nil
	}

	return RenderWithContext(value, ec)
}

// resolveReference resolves a dotted reference path as a typed variable
// lookup, preserving the original value's type.
func resolveReference(path string, ec *models.ExecutionContext) (any, error) {
	segments := strings.Split(path, ".")

	switch segments[0] {
	case "nodes":
		return resolveNodePath(segments[1:], ec)
	case "global", "globals":
		return resolveGlobalPath(segments[1:], ec)
	default:
		// A bare top-level name is accepted when it names a global.
		if value, ok := ec.Global(path); ok {
			return value, nil
		}

		return nil, models.NewValidationError("", "unresolvable reference "+path, nil)
	}
}

func resolveNodePath(segments []string, ec *models.ExecutionContext) (any, error) {
	if len(segments) < 2 || segments[1] != "output" {
		return nil, models.NewValidationError("", "node reference must take the form nodes.<id>.output[.<field>...]", nil)
	}

	nodeID := segments[0]

	output, ok := ec.Output(nodeID)
	if !ok {
		return nil, models.NewValidationError(nodeID, "node has not executed yet", nil)
	}

	return walkFields(nodeID, output, segments[2:])
}

func resolveGlobalPath(segments []string, ec *models.ExecutionContext) (any, error) {
	if len(segments) == 0 {
		return ec.Globals(), nil
	}

	value, ok := ec.Global(segments[0])
	if !ok {
		return nil, models.NewValidationError("", "unknown global variable "+segments[0], nil)
	}

	if len(segments) == 1 {
		return value, nil
	}

	nested, ok := value.(map[string]any)
	if !ok {
		return nil, models.NewValidationError("", "global "+segments[0]+" is not an object", nil)
	}

	return walkFields("", nested, segments[1:])
}

func walkFields(nodeID string, value any, fields []string) (any, error) {
	current := value

	for _, field := range fields {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, models.NewValidationError(nodeID, "field path ."+field+" does not exist", nil)
		}

		current, ok = object[field]
		if !ok {
			return nil, models.NewValidationError(nodeID, "field path ."+field+" does not exist", nil)
		}
	}

	return current, nil
}
