package tool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/crewmesh/crewmesh/background"
)

// AgentRunner executes a nested agent run to completion and returns its final
// text. It is injected so the tool layer stays decoupled from the loop
// implementation (and trivially fakeable in tests).
type AgentRunner func(ctx context.Context, prompt string) (string, error)

// NewTaskTool returns the task-spawn tool. It schedules a shell command or a
// nested agent run on the executor and returns the task id immediately; the
// caller polls with TaskOutput or waits for a drain of the notification queue.
func NewTaskTool(exec *background.Executor, runAgent AgentRunner) Tool {
	return NewFunctionTool(
		"Task",
		"Run a shell command or a sub-agent in the background. Returns a task id "+
			"immediately; use TaskOutput to retrieve the result and TaskStop to cancel.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_type": map[string]any{
					"type":        "string",
					"enum":        []any{"bash", "agent"},
					"description": "What to run: a shell command or a sub-agent prompt",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "The shell command (bash) or the prompt (agent)",
				},
			},
			"required": []string{"task_type", "input"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			taskType, _ := args["task_type"].(string)
			input, _ := args["input"].(string)

			var work background.Work
			var kind background.Kind
			switch taskType {
			case "bash":
				kind = background.KindBash
				work = BashWork(input)
			case "agent":
				if runAgent == nil {
					return nil, fmt.Errorf("no agent runner configured")
				}
				kind = background.KindAgent
				work = func(ctx context.Context) (string, error) {
					return runAgent(ctx, input)
				}
			default:
				return nil, fmt.Errorf("unknown task_type %q", taskType)
			}

			id := exec.Run(work, kind)
			return fmt.Sprintf("Started background %s task %s", taskType, id), nil
		},
	)
}

// BashWork wraps a shell command as a unit of background work. The command
// inherits the work context, so a Stop that it honors kills the process.
func BashWork(command string) background.Work {
	return func(ctx context.Context) (string, error) {
		cmd := exec.CommandContext(ctx, "bash", "-c", command)
		out, err := cmd.CombinedOutput()
		output := strings.TrimRight(string(out), "\n")
		if err != nil {
			if output != "" {
				return "", fmt.Errorf("%s: %w", output, err)
			}
			return "", err
		}
		return output, nil
	}
}

// NewTaskOutputTool returns the task-output-poll tool.
func NewTaskOutputTool(exec *background.Executor) Tool {
	return NewFunctionTool(
		"TaskOutput",
		"Get the status and output of a background task. With block=true, waits "+
			"until the task finishes or the timeout (ms) elapses; a timeout while "+
			"still running reports status \"running\".",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "string",
					"description": "Id returned by the Task tool",
				},
				"block": map[string]any{
					"type":        "boolean",
					"description": "Wait for completion instead of returning a snapshot",
				},
				"timeout_ms": map[string]any{
					"type":        "integer",
					"description": "Max wait in milliseconds when blocking (default 30000)",
				},
			},
			"required": []string{"task_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id, _ := args["task_id"].(string)
			block, _ := args["block"].(bool)

			timeout := 30 * time.Second
			if ms, ok := args["timeout_ms"].(float64); ok && ms > 0 {
				timeout = time.Duration(ms) * time.Millisecond
			}

			snap, err := exec.GetOutput(id, block, timeout)
			if err != nil {
				return nil, err
			}
			if !snap.Status.Terminal() {
				return fmt.Sprintf("Task %s is still %s", id, snap.Status), nil
			}
			return fmt.Sprintf("Task %s %s\n%s", id, snap.Status, snap.Output), nil
		},
	)
}

// NewTaskStopTool returns the task-stop tool. Stopping is cooperative: the
// reported status flips to "stopped" immediately, while work ignoring its
// cancellation context may keep running in the background.
func NewTaskStopTool(exec *background.Executor) Tool {
	return NewFunctionTool(
		"TaskStop",
		"Request cancellation of a background task. The task is reported as "+
			"stopped immediately; the underlying work halts only if it honors "+
			"cancellation.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "string",
					"description": "Id returned by the Task tool",
				},
			},
			"required": []string{"task_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id, _ := args["task_id"].(string)
			snap, err := exec.Stop(id)
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Task %s is %s", id, snap.Status), nil
		},
	)
}
