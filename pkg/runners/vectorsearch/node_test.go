package vectorsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusConfig() map[string]any {
	return map[string]any{
		"collection": "kb",
		"documents": []any{
			map[string]any{"id": "go", "content": "go concurrency patterns with channels"},
			map[string]any{"id": "db", "content": "postgres transaction isolation levels"},
			map[string]any{"id": "rag", "content": "retrieval augmented generation with vector search"},
		},
	}
}

func TestVectorSearchRanksByOverlap(t *testing.T) {
	runner, err := NewVectorSearchRunner("vs", corpusConfig())
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"query": "vector search retrieval",
	}, nil)
	require.NoError(t, err)

	documents, ok := output["documents"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, documents)

	top := documents[0].(map[string]any)
	assert.Equal(t, "rag", top["id"])
	assert.Equal(t, "kb", top["source"])
	assert.Equal(t, len(documents), output["count"])
}

func TestVectorSearchHonorsTopK(t *testing.T) {
	runner, err := NewVectorSearchRunner("vs", corpusConfig())
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"query": "go postgres vector",
		"top_k": 1,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, output["count"])
}

func TestVectorSearchThresholdFiltersWeakMatches(t *testing.T) {
	runner, err := NewVectorSearchRunner("vs", corpusConfig())
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"query":     "channels",
		"threshold": 0.5,
	}, nil)
	require.NoError(t, err)

	documents := output["documents"].([]any)
	require.Len(t, documents, 1)
	assert.Equal(t, "go", documents[0].(map[string]any)["id"])
}

func TestVectorSearchEmptyQuery(t *testing.T) {
	runner, err := NewVectorSearchRunner("vs", corpusConfig())
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{
		"query":     "",
		"threshold": 0.1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, output["count"])
}

func TestVectorSearchStringCorpusEntries(t *testing.T) {
	runner, err := NewVectorSearchRunner("vs", map[string]any{
		"documents": []any{"alpha beta", "gamma delta"},
	})
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(), map[string]any{"query": "alpha"}, nil)
	require.NoError(t, err)

	documents := output["documents"].([]any)
	require.NotEmpty(t, documents)
	assert.Equal(t, "alpha beta", documents[0].(map[string]any)["id"])
}
