package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/model"
	"github.com/crewmesh/crewmesh/todo"
	"github.com/crewmesh/crewmesh/tool"
)

func echoRegistry() *tool.Registry {
	return tool.NewRegistry(tool.NewFunctionTool(
		"echo",
		"Echo the input back.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return "echo: " + args["text"].(string), nil
		},
	))
}

func TestAgentRunDispatchesToolCalls(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolCallResponse(core.ToolCall{ID: "c1", Name: "echo", Arguments: `{"text":"hi"}`}),
		model.TextResponse("the echo said hi"),
	)

	a := New("worker", m, echoRegistry())
	result, err := a.Run(context.Background(), "please echo hi")
	require.NoError(t, err)
	assert.Equal(t, "the echo said hi", result)

	// Second request must carry the tool result back to the model.
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	last := reqs[1].Messages[len(reqs[1].Messages)-1]
	require.Len(t, last.Parts, 1)
	tr, ok := last.Parts[0].(core.ToolResultPart)
	require.True(t, ok)
	assert.Equal(t, "c1", tr.ToolResult.ID)
	assert.Equal(t, "echo: hi", tr.ToolResult.Content)
	assert.False(t, tr.ToolResult.IsError)
}

func TestAgentRunFeedsToolErrorsBack(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolCallResponse(core.ToolCall{ID: "c1", Name: "missing", Arguments: `{}`}),
		model.TextResponse("recovered"),
	)

	a := New("worker", m, echoRegistry())
	result, err := a.Run(context.Background(), "call a bogus tool")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)

	reqs := m.Requests()
	last := reqs[1].Messages[len(reqs[1].Messages)-1]
	tr := last.Parts[0].(core.ToolResultPart)
	assert.True(t, tr.ToolResult.IsError)
	assert.Contains(t, tr.ToolResult.Content, "unknown tool")
}

func TestAgentRunMaxIterations(t *testing.T) {
	call := model.ToolCallResponse(core.ToolCall{ID: "c", Name: "echo", Arguments: `{"text":"x"}`})
	m := model.NewScriptedModel(call, call, call)

	a := New("worker", m, echoRegistry(), func(o *Options) {
		o.MaxIterations = 2
	})
	_, err := a.Run(context.Background(), "loop forever")
	require.ErrorIs(t, err, ErrMaxIterations)
}

func TestAgentInitialReminderOnlyWithTodoTool(t *testing.T) {
	m := model.NewScriptedModel(model.TextResponse("ok"), model.TextResponse("ok"))

	plain := New("plain", m, echoRegistry())
	_, err := plain.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.NotContains(t, m.Requests()[0].Messages[0].Text(), "<reminder>")

	tools := echoRegistry()
	tools.Register(tool.NewTodoWriteTool(todo.NewManager()))
	withTodo := New("planner", m, tools)
	_, err = withTodo.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Contains(t, m.Requests()[1].Messages[0].Text(), "<reminder>")
}

func TestAgentNagsAfterRoundsWithoutTodo(t *testing.T) {
	call := model.ToolCallResponse(core.ToolCall{ID: "c", Name: "echo", Arguments: `{"text":"x"}`})
	m := model.NewScriptedModel(call, call, call, model.TextResponse("done"))

	tools := echoRegistry()
	tools.Register(tool.NewTodoWriteTool(todo.NewManager()))

	a := New("planner", m, tools, func(o *Options) {
		o.TodoNagAfter = 2
	})
	_, err := a.Run(context.Background(), "work")
	require.NoError(t, err)

	nagged := func(req model.Request) bool {
		last := req.Messages[len(req.Messages)-1]
		for _, p := range last.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text == NagReminder {
				return true
			}
		}
		return false
	}

	reqs := m.Requests()
	require.Len(t, reqs, 4)
	assert.False(t, nagged(reqs[1]), "first tool round should not nag")
	assert.True(t, nagged(reqs[2]), "second consecutive round without TodoWrite should nag")
	assert.False(t, nagged(reqs[3]), "counter resets after a nag")
}

func TestAgentSendsToolDefinitions(t *testing.T) {
	m := model.NewScriptedModel(model.TextResponse("ok"))

	a := New("worker", m, echoRegistry())
	_, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)

	req := m.Requests()[0]
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "echo", req.Tools[0].Name)
	assert.NotEmpty(t, req.Tools[0].Description)
	assert.Equal(t, "object", req.Tools[0].Parameters["type"])
}
