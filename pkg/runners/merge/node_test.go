package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(id string) map[string]any {
	return map[string]any{"id": id}
}

func TestMergeDedupesByID(t *testing.T) {
	runner, err := NewMergeRunner("m", nil)
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"first":  []any{doc("a"), doc("b")},
		"second": []any{doc("b"), doc("c")},
	}, nil)
	require.NoError(t, err)

	documents := output["documents"].([]any)
	require.Len(t, documents, 3)
	assert.Equal(t, 3, output["count"])

	ids := make([]string, 0, len(documents))
	for _, d := range documents {
		ids = append(ids, d.(map[string]any)["id"].(string))
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids, "first occurrence wins, order preserved")
}

func TestMergeConcatKeepsDuplicates(t *testing.T) {
	runner, err := NewMergeRunner("m", map[string]any{"strategy": "concat"})
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"first":  []any{doc("a")},
		"second": []any{doc("a")},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, output["count"])
}

func TestMergeSingleBranch(t *testing.T) {
	runner, err := NewMergeRunner("m", nil)
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"first": []any{doc("a")},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, output["count"])
}

func TestMergeNoDocumentLists(t *testing.T) {
	runner, err := NewMergeRunner("m", nil)
	require.NoError(t, err)

	_, _, err = runner.Run(context.Background(), map[string]any{}, nil)
	assert.Error(t, err)
}

func TestMergeRejectsUnknownStrategy(t *testing.T) {
	_, err := NewMergeRunner("m", map[string]any{"strategy": "union"})
	assert.Error(t, err)
}
