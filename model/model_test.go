package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewmesh/crewmesh/core"
)

func TestScriptedModelReplaysInOrder(t *testing.T) {
	m := NewScriptedModel(
		ToolCallResponse(core.ToolCall{ID: "c1", Name: "bash", Arguments: `{"command":"ls"}`}),
		TextResponse("all done"),
	)

	resp, err := m.Generate(context.Background(), Request{
		Messages: []core.Content{core.NewTextContent("user", "list files")},
	})
	require.NoError(t, err)
	assert.Equal(t, "tool_use", resp.StopReason)
	require.Len(t, resp.Content.ToolCalls(), 1)
	assert.Equal(t, "bash", resp.Content.ToolCalls()[0].Name)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "all done", resp.Content.Text())

	_, err = m.Generate(context.Background(), Request{})
	require.Error(t, err, "exhausted script should error")

	assert.Len(t, m.Requests(), 3)
}
