package expression

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/promoteai/superrag/pkg/models"
)

// RenderWithContext renders a template string with `nodes` and `globals`
// bound as top-level contexts. Each global is additionally flattened to the
// top level for convenience, so `{{ .user }}` works alongside
// `{{ .globals.user }}`.
func RenderWithContext(input string, ec *models.ExecutionContext) (any, error) {
	nodes := make(map[string]any)
	for nodeID, output := range ec.Outputs() {
		nodes[nodeID] = map[string]any{"output": output}
	}

	globals := ec.Globals()

	data := map[string]any{
		"nodes":   nodes,
		"globals": globals,
	}

	for key, value := range globals {
		if _, reserved := data[key]; !reserved {
			data[key] = value
		}
	}

	return Render(input, data)
}

// Render parses and executes a template, then re-parses the rendered string
// into a JSON value, number or boolean when it looks like one.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("expression").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)

				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}
