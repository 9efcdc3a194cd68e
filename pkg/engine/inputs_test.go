package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoteai/superrag/pkg/models"
	"github.com/promoteai/superrag/pkg/testutil"
)

func inputSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

func bindNode(t *testing.T, node *models.NodeInstance, globals map[string]any) (map[string]any, error) {
	t.Helper()

	executor := NewExecutor(newTestRegistry(), &recordingEventBus{}, slog.Default())
	ec := models.NewExecutionContext("exec-bind", globals)

	return executor.bindInputs(node, ec)
}

func TestBindInputsCoercesStrings(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{
			"top_k":     "7",
			"threshold": "0.25",
			"enabled":   "yes",
			"tags":      "a, b, c",
		}),
		testutil.WithSchemas(inputSchema(map[string]any{
			"top_k":     map[string]any{"type": "integer"},
			"threshold": map[string]any{"type": "number"},
			"enabled":   map[string]any{"type": "boolean"},
			"tags":      map[string]any{"type": "array"},
		}), nil))

	input, err := bindNode(t, node, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(7), input["top_k"])
	assert.Equal(t, 0.25, input["threshold"])
	assert.Equal(t, true, input["enabled"])
	assert.Equal(t, []any{"a", "b", "c"}, input["tags"])
}

func TestBindInputsCoercesJSONArray(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{"tags": `["x","y"]`}),
		testutil.WithSchemas(inputSchema(map[string]any{
			"tags": map[string]any{"type": "array"},
		}), nil))

	input, err := bindNode(t, node, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, input["tags"])
}

func TestBindInputsRejectsUncoercibleValue(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{"top_k": "not a number"}),
		testutil.WithSchemas(inputSchema(map[string]any{
			"top_k": map[string]any{"type": "integer"},
		}), nil))

	_, err := bindNode(t, node, nil)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestBindInputsRejectsMissingRequired(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{}),
		testutil.WithSchemas(inputSchema(map[string]any{
			"query": map[string]any{"type": "string"},
		}, "query"), nil))

	_, err := bindNode(t, node, nil)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestBindInputsGlobalsWinPerKey(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{
			"query": "static",
			"model": "default-model",
		}))

	input, err := bindNode(t, node, map[string]any{"query": "from caller"})
	require.NoError(t, err)

	assert.Equal(t, "from caller", input["query"])
	assert.Equal(t, "default-model", input["model"])
}

func TestBindInputsFillsValidationErrorNodeID(t *testing.T) {
	node := testutil.CreateTestNode("n", "fake",
		testutil.WithInputValues(map[string]any{"query": "{{ globals.missing }}"}))

	_, err := bindNode(t, node, nil)
	require.Error(t, err)

	var verr *models.ValidationError

	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "n", verr.NodeID)
}
