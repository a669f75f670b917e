package tool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// defaultBashTimeout bounds foreground shell commands so a hung process
// cannot stall the whole agent loop; long work belongs in a background Task.
const defaultBashTimeout = 2 * time.Minute

// NewBashTool returns the foreground shell tool.
func NewBashTool() Tool {
	return NewFunctionTool(
		"bash",
		"Run a shell command and return its combined output. For long-running "+
			"commands use the Task tool instead.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "The shell command to execute",
				},
				"timeout_ms": map[string]any{
					"type":        "integer",
					"description": "Max runtime in milliseconds (default 120000)",
				},
			},
			"required": []string{"command"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			command, _ := args["command"].(string)

			timeout := defaultBashTimeout
			if ms, ok := args["timeout_ms"].(float64); ok && ms > 0 {
				timeout = time.Duration(ms) * time.Millisecond
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cmd := exec.CommandContext(ctx, "bash", "-c", command)
			out, err := cmd.CombinedOutput()
			output := strings.TrimRight(string(out), "\n")
			if err != nil {
				return nil, fmt.Errorf("command failed: %v\n%s", err, output)
			}
			if output == "" {
				return "(no output)", nil
			}
			return output, nil
		},
	)
}
