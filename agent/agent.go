package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/model"
	"github.com/crewmesh/crewmesh/tool"
)

// ErrMaxIterations is returned when the loop hits its iteration cap without
// the model producing a final text answer.
var ErrMaxIterations = errors.New("agent reached max iterations")

// ErrShutdown is returned by a turn preamble to end the loop cooperatively.
var ErrShutdown = errors.New("shutdown requested")

// InitialReminder is appended to the opening user message when a todo tool is
// registered, steering the model to plan before acting.
const InitialReminder = "<reminder>Use the TodoWrite tool to plan multi-step work before you start, " +
	"and keep it updated as you go.</reminder>"

// NagReminder is injected when the model has gone several rounds of tool use
// without touching its todo list.
const NagReminder = "<reminder>Your todo list has not been updated in a while. " +
	"Review it with TodoWrite: mark finished items completed and set the current one in_progress.</reminder>"

// todoToolName is the registry name the reminder logic keys on.
const todoToolName = "TodoWrite"

// Preamble runs before every model turn and contributes extra user parts,
// typically drained mailbox messages. Returning ErrShutdown ends the loop.
type Preamble func(ctx context.Context) ([]core.Part, error)

// Options configures an Agent.
type Options struct {
	// Logger receives loop progress events. Defaults to no-op.
	Logger logging.Logger

	// System is the system prompt sent with every model request.
	System string

	// MaxIterations caps model turns per Run.
	MaxIterations int

	// ContextManager, when set, enforces the conversation token budget.
	ContextManager *ContextManager

	// TodoNagAfter is how many consecutive tool rounds without a TodoWrite
	// call trigger NagReminder. Zero disables nagging.
	TodoNagAfter int

	// Preamble, when set, runs before every model turn.
	Preamble Preamble
}

// Agent drives a model against a tool registry until the model stops
// requesting tool calls. Safe for concurrent Runs; conversation state is
// per-Run, not per-Agent.
type Agent struct {
	name  string
	model model.Model
	tools *tool.Registry
	opts  Options
}

// New constructs an Agent.
func New(name string, m model.Model, tools *tool.Registry, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		MaxIterations: 50,
		TodoNagAfter:  3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{name: name, model: m, tools: tools, opts: opts}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Run executes the tool-calling loop for a single prompt and returns the
// model's final text answer.
func (a *Agent) Run(ctx context.Context, prompt string) (string, error) {
	_, hasTodo := a.tools.Get(todoToolName)

	opening := []core.Part{core.TextPart{Text: prompt}}
	if hasTodo {
		opening = append(opening, core.TextPart{Text: InitialReminder})
	}
	messages := []core.Content{{Role: "user", Parts: opening}}

	defs := a.toolDefinitions()
	roundsWithoutTodo := 0

	for i := 0; i < a.opts.MaxIterations; i++ {
		var preamble []core.Part
		if a.opts.Preamble != nil {
			parts, err := a.opts.Preamble(ctx)
			if err != nil {
				return "", err
			}
			preamble = parts
		}
		if len(preamble) > 0 {
			messages = append(messages, core.Content{Role: "user", Parts: preamble})
		}

		if cm := a.opts.ContextManager; cm != nil {
			messages = cm.Microcompact(messages)
			if cm.ShouldCompact(messages) {
				compacted, err := cm.AutoCompact(messages)
				if err != nil {
					return "", err
				}
				a.opts.Logger.Info("conversation compacted",
					"agent", a.name, "kept", len(compacted))
				messages = compacted
			}
		}

		resp, err := a.model.Generate(ctx, model.Request{
			System:   a.opts.System,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return "", fmt.Errorf("agent %s: generate: %w", a.name, err)
		}
		messages = append(messages, resp.Content)

		calls := resp.Content.ToolCalls()
		if len(calls) == 0 {
			return resp.Content.Text(), nil
		}

		results := make([]core.Part, 0, len(calls))
		sawTodo := false
		for _, call := range calls {
			if call.Name == todoToolName {
				sawTodo = true
			}
			results = append(results, a.dispatch(ctx, call))
		}

		if sawTodo {
			roundsWithoutTodo = 0
		} else {
			roundsWithoutTodo++
		}
		if hasTodo && a.opts.TodoNagAfter > 0 && roundsWithoutTodo >= a.opts.TodoNagAfter {
			results = append(results, core.TextPart{Text: NagReminder})
			roundsWithoutTodo = 0
		}

		messages = append(messages, core.Content{Role: "user", Parts: results})
	}

	return "", fmt.Errorf("agent %s: %w (%d)", a.name, ErrMaxIterations, a.opts.MaxIterations)
}

// dispatch executes one tool call. Failures become error results fed back to
// the model rather than loop errors.
func (a *Agent) dispatch(ctx context.Context, call core.ToolCall) core.Part {
	result := core.ToolResult{ID: call.ID, Name: call.Name}

	t, ok := a.tools.Get(call.Name)
	if !ok {
		result.Content = fmt.Sprintf("unknown tool %q", call.Name)
		result.IsError = true
		return core.ToolResultPart{ToolResult: result}
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			result.Content = fmt.Sprintf("invalid arguments: %v", err)
			result.IsError = true
			return core.ToolResultPart{ToolResult: result}
		}
	}

	a.opts.Logger.Debug("tool call", "agent", a.name, "tool", call.Name)

	out, err := t.Call(ctx, args)
	if err != nil {
		result.Content = err.Error()
		result.IsError = true
		return core.ToolResultPart{ToolResult: result}
	}

	content := fmt.Sprintf("%v", out)
	if cm := a.opts.ContextManager; cm != nil {
		content = cm.HandleLargeOutput(content)
	}
	result.Content = content
	return core.ToolResultPart{ToolResult: result}
}

func (a *Agent) toolDefinitions() []model.ToolDefinition {
	all := a.tools.All()
	defs := make([]model.ToolDefinition, len(all))
	for i, t := range all {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return defs
}
