// Package todo implements the agent-facing todo list: a small, validated set
// of work items the model maintains to plan multi-step tasks. The whole list
// is replaced on every update, which keeps the tool contract trivial for the
// model (no item ids, no partial edits).
package todo

import (
	"fmt"
	"strings"
	"sync"
)

// MaxItems caps the list size; beyond this the update is rejected.
const MaxItems = 20

// ItemStatus is the state of a single todo item.
type ItemStatus string

const (
	// StatusPending marks an item not yet started.
	StatusPending ItemStatus = "pending"

	// StatusInProgress marks the single item currently being worked on.
	StatusInProgress ItemStatus = "in_progress"

	// StatusCompleted marks a finished item.
	StatusCompleted ItemStatus = "completed"
)

// Item is one entry on the todo list. ActiveForm is the present-continuous
// phrasing shown while the item is in progress ("Running tests").
type Item struct {
	Content    string     `json:"content"`
	Status     ItemStatus `json:"status"`
	ActiveForm string     `json:"activeForm"`
}

// Manager holds the current todo list. Safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	items []Item
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Update validates and replaces the entire list, returning the rendered
// checklist. Constraints: at most MaxItems entries, at most one item
// in_progress, every item carries content, a known status, and an active
// form. A failed validation leaves the existing list untouched.
func (m *Manager) Update(items []Item) (string, error) {
	if len(items) > MaxItems {
		return "", fmt.Errorf("todo list exceeds %d items (got %d)", MaxItems, len(items))
	}

	inProgress := 0
	for i, item := range items {
		if item.Content == "" {
			return "", fmt.Errorf("item %d: content is required", i)
		}
		if item.ActiveForm == "" {
			return "", fmt.Errorf("item %d: activeForm is required", i)
		}
		switch item.Status {
		case StatusPending, StatusInProgress, StatusCompleted:
		default:
			return "", fmt.Errorf("item %d: invalid status %q", i, item.Status)
		}
		if item.Status == StatusInProgress {
			inProgress++
		}
	}
	if inProgress > 1 {
		return "", fmt.Errorf("only one item may be in_progress (got %d)", inProgress)
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()

	return m.Render(), nil
}

// Items returns a copy of the current list.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Render returns the checklist as text, one item per line. In-progress items
// show their active form so the rendered list reads as a live status display.
func (m *Manager) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return "(todo list is empty)"
	}

	var b strings.Builder
	for i, item := range m.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch item.Status {
		case StatusCompleted:
			fmt.Fprintf(&b, "[x] %s", item.Content)
		case StatusInProgress:
			fmt.Fprintf(&b, "[~] %s <- %s", item.Content, item.ActiveForm)
		default:
			fmt.Fprintf(&b, "[ ] %s", item.Content)
		}
	}
	return b.String()
}
