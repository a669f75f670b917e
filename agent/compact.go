package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crewmesh/crewmesh/core"
)

// CompactedPlaceholder replaces stale tool output during micro-compaction.
// The model can always re-run the originating tool if it needs the data back.
const CompactedPlaceholder = "[Output compacted - re-read if needed]"

// compactionNotice opens a compacted conversation so the model knows history
// was dropped rather than never existing.
const compactionNotice = "[Earlier conversation compacted; full transcript saved to disk]"

// ContextManagerOptions configures a ContextManager.
type ContextManagerOptions struct {
	// MaxContextTokens is the conversation budget; compaction triggers at 80%.
	MaxContextTokens int

	// MaxOutputTokens caps a single tool result before it is spilled to disk.
	MaxOutputTokens int

	// KeepRecent is how many trailing tool results micro-compaction preserves.
	KeepRecent int

	// KeepMessages is how many trailing messages full compaction preserves.
	KeepMessages int

	// CompactThresholdChars is the minimum tool result size worth compacting.
	CompactThresholdChars int
}

// ContextManager keeps a conversation inside a token budget. Token counts are
// estimated at four characters per token, which is close enough for budget
// decisions without a tokenizer dependency.
type ContextManager struct {
	dir  string
	opts ContextManagerOptions

	// compactable lists tools whose results can be re-obtained by re-running
	// the tool. Mutating tools stay out: their results record what happened.
	compactable map[string]bool
}

// NewContextManager creates a ContextManager archiving transcripts under dir.
func NewContextManager(dir string, optFns ...func(o *ContextManagerOptions)) *ContextManager {
	opts := ContextManagerOptions{
		MaxContextTokens:      100_000,
		MaxOutputTokens:       8192,
		KeepRecent:            3,
		KeepMessages:          5,
		CompactThresholdChars: 2000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ContextManager{
		dir:  dir,
		opts: opts,
		compactable: map[string]bool{
			"bash":       true,
			"read_file":  true,
			"TaskOutput": true,
			"TeamStatus": true,
			"TaskList":   true,
		},
	}
}

// Compactable reports whether results of the named tool may be compacted.
func (cm *ContextManager) Compactable(toolName string) bool {
	return cm.compactable[toolName]
}

// EstimateTokens approximates the token count of text.
func (cm *ContextManager) EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateMessages approximates the total token count of a conversation.
func (cm *ContextManager) EstimateMessages(messages []core.Content) int {
	total := 0
	for _, c := range messages {
		for _, p := range c.Parts {
			switch part := p.(type) {
			case core.TextPart:
				total += cm.EstimateTokens(part.Text)
			case core.ToolCallPart:
				total += cm.EstimateTokens(part.ToolCall.Arguments)
			case core.ToolResultPart:
				total += cm.EstimateTokens(part.ToolResult.Content)
			}
		}
	}
	return total
}

// ShouldCompact reports whether the conversation has crossed 80% of budget.
func (cm *ContextManager) ShouldCompact(messages []core.Content) bool {
	return cm.EstimateMessages(messages) > cm.opts.MaxContextTokens*8/10
}

// Microcompact replaces stale large tool results with a placeholder, keeping
// the most recent KeepRecent results intact. Only results of compactable
// (re-runnable) tools are touched. The input slice is not mutated.
func (cm *ContextManager) Microcompact(messages []core.Content) []core.Content {
	type resultRef struct{ msg, part int }
	var refs []resultRef
	for i, c := range messages {
		for j, p := range c.Parts {
			if _, ok := p.(core.ToolResultPart); ok {
				refs = append(refs, resultRef{i, j})
			}
		}
	}
	if len(refs) <= cm.opts.KeepRecent {
		return messages
	}

	out := append([]core.Content(nil), messages...)
	copied := make(map[int]bool)

	for _, ref := range refs[:len(refs)-cm.opts.KeepRecent] {
		tr := out[ref.msg].Parts[ref.part].(core.ToolResultPart).ToolResult
		if !cm.compactable[tr.Name] || len(tr.Content) <= cm.opts.CompactThresholdChars {
			continue
		}
		if !copied[ref.msg] {
			out[ref.msg].Parts = append([]core.Part(nil), out[ref.msg].Parts...)
			copied[ref.msg] = true
		}
		tr.Content = CompactedPlaceholder
		out[ref.msg].Parts[ref.part] = core.ToolResultPart{ToolResult: tr}
	}
	return out
}

// HandleLargeOutput passes normal tool output through unchanged. Output over
// the MaxOutputTokens budget is spilled to a file and replaced with a pointer
// so one oversized result cannot blow the conversation.
func (cm *ContextManager) HandleLargeOutput(output string) string {
	tokens := cm.EstimateTokens(output)
	if tokens <= cm.opts.MaxOutputTokens {
		return output
	}

	outDir := filepath.Join(cm.dir, "outputs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return cm.truncate(output)
	}
	path := filepath.Join(outDir, fmt.Sprintf("output-%s.txt", core.NewID()))
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return cm.truncate(output)
	}
	return fmt.Sprintf("Output too large (~%d tokens). Saved to %s; read it in chunks if needed.", tokens, path)
}

func (cm *ContextManager) truncate(output string) string {
	limit := cm.opts.MaxOutputTokens * 4
	return output[:limit] + "\n[truncated]"
}

// SaveTranscript appends the conversation to {dir}/transcript.jsonl, one
// message per line.
func (cm *ContextManager) SaveTranscript(messages []core.Content) error {
	if err := os.MkdirAll(cm.dir, 0o755); err != nil {
		return fmt.Errorf("agent: create transcript dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(cm.dir, "transcript.jsonl"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("agent: open transcript: %w", err)
	}
	defer f.Close()

	for _, c := range messages {
		line, err := json.Marshal(transcriptEntry{Role: c.Role, Text: c.Text()})
		if err != nil {
			return fmt.Errorf("agent: marshal transcript entry: %w", err)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("agent: write transcript: %w", err)
		}
	}
	return nil
}

type transcriptEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// AutoCompact archives the full conversation to the transcript, then returns
// a compacted conversation: a notice plus the most recent KeepMessages
// messages. Archival failure aborts the compaction so no history is lost.
func (cm *ContextManager) AutoCompact(messages []core.Content) ([]core.Content, error) {
	if err := cm.SaveTranscript(messages); err != nil {
		return nil, err
	}

	keep := cm.opts.KeepMessages
	if keep > len(messages) {
		keep = len(messages)
	}
	out := []core.Content{core.NewTextContent("user", compactionNotice)}
	return append(out, messages[len(messages)-keep:]...), nil
}
