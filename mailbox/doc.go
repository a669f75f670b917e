// Package mailbox provides the per-teammate persistent message store used for
// inter-agent coordination.
//
// Messages are persisted to an append-only JSONL (JSON Lines) file so that
// messages sent while the recipient is not actively polling survive until its
// next inbox check, even across processes.
//
// # Consume semantics
//
// A mailbox supports two operations: Append (send) and Drain (check inbox).
// Drain reads every stored message in send order and truncates the file as a
// single atomic consume: no message is ever returned twice, and a message
// appended concurrently with an in-flight drain is either fully included in
// that drain's result or fully deferred to the next one. Both operations take
// the same per-mailbox mutex; different teammates' mailboxes share no state
// and need no cross-locking.
//
// # Message Types
//
// Exactly five message kinds are recognized:
//
//   - [TypeMessage]: free-form text between teammates
//   - [TypeStatus]: a progress update
//   - [TypeQuestion]: a request for help
//   - [TypeAnswer]: a response to a question
//   - [TypeShutdown]: asks the recipient loop to wind down
//
// Sends carrying any other type are rejected before the store is touched.
package mailbox
