// Package model defines the provider-agnostic abstractions for interacting
// with language models.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function call representation (ToolDefinition plus the
//     core package's ToolCall and ToolResult parts)
//   - Facilitate deterministic testing of agent loops (ScriptedModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so agent loops remain decoupled from vendor SDKs.
package model
