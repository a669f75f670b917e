package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewmesh/crewmesh/tasks"
)

// NewTaskCreateTool returns the planning-task creation tool.
func NewTaskCreateTool(mgr *tasks.Manager) Tool {
	return NewFunctionTool(
		"TaskCreate",
		"Create a persistent planning task. Returns the assigned task id.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"subject": map[string]any{
					"type":        "string",
					"description": "Short imperative summary of the work",
				},
			},
			"required": []string{"subject"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			subject, _ := args["subject"].(string)
			t, err := mgr.Create(subject)
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Created task %s: %s", t.ID, t.Subject), nil
		},
	)
}

// NewTaskGetTool returns the single-task inspection tool.
func NewTaskGetTool(mgr *tasks.Manager) Tool {
	return NewFunctionTool(
		"TaskGet",
		"Get a planning task by id, including its dependency links.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "string",
					"description": "Id returned by TaskCreate",
				},
			},
			"required": []string{"task_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id, _ := args["task_id"].(string)
			t, err := mgr.Get(id)
			if err != nil {
				return nil, err
			}
			return renderTask(t), nil
		},
	)
}

// NewTaskUpdateTool returns the planning-task mutation tool. Dependency
// additions are bidirectional; completing a task unblocks its dependents.
func NewTaskUpdateTool(mgr *tasks.Manager) Tool {
	return NewFunctionTool(
		"TaskUpdate",
		"Update a planning task: change subject or status, or add dependency "+
			"links. Completing a task removes it from other tasks' blocked_by lists.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "string",
					"description": "Id of the task to update",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "New subject (unchanged if omitted)",
				},
				"status": map[string]any{
					"type": "string",
					"enum": []any{"pending", "in_progress", "completed"},
				},
				"add_blocked_by": map[string]any{
					"type":        "array",
					"description": "Ids of tasks that must finish before this one",
					"items":       map[string]any{"type": "string"},
				},
				"add_blocks": map[string]any{
					"type":        "array",
					"description": "Ids of tasks this one blocks",
					"items":       map[string]any{"type": "string"},
				},
			},
			"required": []string{"task_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id, _ := args["task_id"].(string)
			subject, _ := args["subject"].(string)
			status, _ := args["status"].(string)

			u := tasks.Update{
				Subject:      subject,
				Status:       tasks.Status(status),
				AddBlockedBy: stringSlice(args["add_blocked_by"]),
				AddBlocks:    stringSlice(args["add_blocks"]),
			}
			t, err := mgr.Update(id, u)
			if err != nil {
				return nil, err
			}
			return renderTask(t), nil
		},
	)
}

// NewTaskListTool returns the planning-task listing tool.
func NewTaskListTool(mgr *tasks.Manager) Tool {
	return NewFunctionTool(
		"TaskList",
		"List all planning tasks with status and dependency links.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			all := mgr.List()
			if len(all) == 0 {
				return "(no tasks)", nil
			}
			lines := make([]string, len(all))
			for i, t := range all {
				lines[i] = renderTask(t)
			}
			return strings.Join(lines, "\n"), nil
		},
	)
}

func renderTask(t *tasks.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%s [%s] %s", t.ID, t.Status, t.Subject)
	if len(t.BlockedBy) > 0 {
		fmt.Fprintf(&b, " (blocked by: %s)", strings.Join(t.BlockedBy, ", "))
	}
	if len(t.Blocks) > 0 {
		fmt.Fprintf(&b, " (blocks: %s)", strings.Join(t.Blocks, ", "))
	}
	return b.String()
}

// stringSlice converts a decoded JSON array to []string, dropping non-strings.
func stringSlice(raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
