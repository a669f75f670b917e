// Package agent implements the tool-calling loop that drives a model against
// a tool registry, plus the teammate variant that participates in mailbox
// messaging.
//
// The package focuses on three concerns:
//
//  1. The core loop (Agent): call the model, dispatch requested tool calls,
//     feed results back, repeat until the model answers in plain text
//  2. Teammate execution (Teammate): the same loop with an inbox drained
//     before every model turn and cooperative shutdown on request
//  3. Context budget management (ContextManager): token estimation,
//     micro-compaction of stale tool output and full compaction with
//     transcript archival when the conversation outgrows its budget
//
// Design principles:
//   - No hidden global state; every collaborator is injected explicitly
//   - The loop never inspects tool semantics: tools are dispatched purely by
//     name through the registry
//   - Failed tool calls are reported back to the model as error results, not
//     surfaced as loop errors, so the model can recover
package agent
