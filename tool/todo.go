package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crewmesh/crewmesh/todo"
)

// NewTodoWriteTool returns the todo list tool backed by mgr. The model sends
// the full replacement list on every call; the result is the rendered
// checklist so the model sees the state it just wrote.
func NewTodoWriteTool(mgr *todo.Manager) Tool {
	return NewFunctionTool(
		"TodoWrite",
		"Replace the todo list. Send the complete list every time; at most one "+
			"item may be in_progress.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"todos": map[string]any{
					"type":        "array",
					"description": "The full todo list",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"content": map[string]any{
								"type":        "string",
								"description": "Imperative item description",
							},
							"status": map[string]any{
								"type": "string",
								"enum": []any{"pending", "in_progress", "completed"},
							},
							"activeForm": map[string]any{
								"type":        "string",
								"description": "Present-continuous form shown while in progress",
							},
						},
						"required": []string{"content", "status", "activeForm"},
					},
				},
			},
			"required": []string{"todos"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			items, err := decodeTodos(args["todos"])
			if err != nil {
				return nil, err
			}
			rendered, err := mgr.Update(items)
			if err != nil {
				return nil, err
			}
			return rendered, nil
		},
	)
}

// decodeTodos converts the raw decoded JSON array into todo items. Going
// through encoding/json keeps the field mapping in one place (the struct
// tags) instead of hand-written map lookups.
func decodeTodos(raw any) ([]todo.Item, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid todos payload: %w", err)
	}
	var items []todo.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid todos payload: %w", err)
	}
	return items, nil
}
