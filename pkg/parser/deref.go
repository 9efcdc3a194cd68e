package parser

import "strings"

// dereference resolves local "$ref" pointers ("#/$defs/..." and
// "#/definitions/...") against the schema's own definition sections. Unknown
// or non-local refs are left untouched.
func dereference(schema map[string]any, root map[string]any) map[string]any {
	if schema == nil {
		return nil
	}

	resolved := derefValue(schema, root)

	result, ok := resolved.(map[string]any)
	if !ok {
		return schema
	}

	return result
}

func derefValue(value any, root map[string]any) any {
	switch typed := value.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok && len(typed) == 1 {
			if target := lookupRef(ref, root); target != nil {
				return derefValue(target, root)
			}

			return typed
		}

		resolved := make(map[string]any, len(typed))
		for key, entry := range typed {
			resolved[key] = derefValue(entry, root)
		}

		return resolved
	case []any:
		resolved := make([]any, len(typed))
		for i, entry := range typed {
			resolved[i] = derefValue(entry, root)
		}

		return resolved
	default:
		return value
	}
}

func lookupRef(ref string, root map[string]any) any {
	var path string

	switch {
	case strings.HasPrefix(ref, "#/$defs/"):
		path = strings.TrimPrefix(ref, "#/$defs/")
	case strings.HasPrefix(ref, "#/definitions/"):
		path = strings.TrimPrefix(ref, "#/definitions/")
	default:
		return nil
	}

	for _, section := range []string{"$defs", "definitions"} {
		definitions, ok := root[section].(map[string]any)
		if !ok {
			continue
		}

		if target, ok := definitions[path]; ok {
			return target
		}
	}

	return nil
}
