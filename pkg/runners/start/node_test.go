package start

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartForwardsInputs(t *testing.T) {
	runner, err := NewStartRunner("start", nil)
	require.NoError(t, err)

	output, side, err := runner.Run(context.Background(),
		map[string]any{"query": "hello"},
		map[string]any{"user": "u-1"})
	require.NoError(t, err)

	assert.Nil(t, side)
	assert.Equal(t, "hello", output["query"])
	assert.Equal(t, "u-1", output["user"])
}

func TestStartInputsShadowSystemValues(t *testing.T) {
	runner, err := NewStartRunner("start", nil)
	require.NoError(t, err)

	output, _, err := runner.Run(context.Background(),
		map[string]any{"query": "explicit"},
		map[string]any{"query": "system"})
	require.NoError(t, err)

	assert.Equal(t, "explicit", output["query"])
}
