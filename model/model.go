package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/crewmesh/crewmesh/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures normalized model input produced by agent loops.
type Request struct {
	System    string           `json:"system,omitempty"`
	Messages  []core.Content   `json:"messages"`
	Tools     []ToolDefinition `json:"tools,omitempty"`
	MaxTokens int64            `json:"max_tokens,omitempty"`
}

// Usage captures token accounting for a single generation.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Response is one complete model turn: assistant content (text and any tool
// calls) plus the provider's stop reason.
type Response struct {
	Content    core.Content `json:"content"`
	StopReason string       `json:"stop_reason"` // "stop", "tool_use", "length", ...
	Usage      Usage        `json:"usage"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "scripted", ...
}

// Model is the minimal interface agent loops need to drive generation.
// Providers implement it so higher layers stay decoupled from vendor SDKs.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ScriptedModel is an in-memory Model that replays a fixed sequence of
// responses, recording every request it receives. Useful for tests and
// examples that exercise a tool-calling loop deterministically.
type ScriptedModel struct {
	mu       sync.Mutex
	script   []Response
	next     int
	requests []Request
}

// NewScriptedModel constructs a ScriptedModel replaying the given responses
// in order.
func NewScriptedModel(script ...Response) *ScriptedModel {
	return &ScriptedModel{script: script}
}

// TextResponse builds a plain assistant text turn for scripting.
func TextResponse(text string) Response {
	return Response{
		Content:    core.NewTextContent("assistant", text),
		StopReason: "stop",
	}
}

// ToolCallResponse builds an assistant turn requesting the given tool calls.
func ToolCallResponse(calls ...core.ToolCall) Response {
	parts := make([]core.Part, len(calls))
	for i, c := range calls {
		parts[i] = core.ToolCallPart{ToolCall: c}
	}
	return Response{
		Content:    core.Content{Role: "assistant", Parts: parts},
		StopReason: "tool_use",
	}
}

// Generate implements Model by replaying the next scripted response.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.next >= len(m.script) {
		return nil, fmt.Errorf("scripted model exhausted after %d responses", len(m.script))
	}
	resp := m.script[m.next]
	m.next++
	return &resp, nil
}

// Requests returns a copy of every request seen so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "scripted"}
}
