// Package tasks implements a persistent task list with dependency links,
// stored as one JSON file per task under a state directory. It backs the
// planning tools the lead agent uses to break work down and hand pieces to
// background runs or teammates.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no task exists under the requested id.
var ErrNotFound = errors.New("task not found")

// Status is the lifecycle state of a stored task.
type Status string

const (
	// StatusPending marks a task not yet started.
	StatusPending Status = "pending"

	// StatusInProgress marks a task being worked on.
	StatusInProgress Status = "in_progress"

	// StatusCompleted marks a finished task. Completion removes the task from
	// every other task's blocked_by list.
	StatusCompleted Status = "completed"
)

// Task is one stored work item. BlockedBy and Blocks are kept bidirectional:
// adding a blocker to one task adds the reverse link to the other.
type Task struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Status    Status    `json:"status"`
	BlockedBy []string  `json:"blocked_by,omitempty"`
	Blocks    []string  `json:"blocks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update describes a partial mutation applied by Manager.Update. Nil/empty
// fields are left unchanged.
type Update struct {
	Subject      string
	Status       Status
	AddBlockedBy []string
	AddBlocks    []string
}

// Manager is a thread-safe task store persisting each task as
// {dir}/{id}.json. State on disk is loaded once at construction; ids continue
// from the highest existing one.
type Manager struct {
	dir string

	mu     sync.Mutex
	tasks  map[string]*Task
	nextID int
}

// NewManager creates a Manager rooted at dir, loading any existing tasks.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{dir: dir, tasks: make(map[string]*Task), nextID: 1}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tasks: read dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}
		var t Task
		if err := json.Unmarshal(data, &t); err != nil || t.ID == "" {
			continue
		}
		m.tasks[t.ID] = &t
		if n, err := strconv.Atoi(t.ID); err == nil && n >= m.nextID {
			m.nextID = n + 1
		}
	}
	return nil
}

// Create stores a new pending task and returns it. Ids are sequential
// decimal strings ("1", "2", ...).
func (m *Manager) Create(subject string) (*Task, error) {
	if subject == "" {
		return nil, fmt.Errorf("tasks: subject is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	t := &Task{
		ID:        strconv.Itoa(m.nextID),
		Subject:   subject,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	m.tasks[t.ID] = t

	if err := m.persistLocked(t); err != nil {
		delete(m.tasks, t.ID)
		return nil, err
	}
	return cloneTask(t), nil
}

// Get returns a copy of the task with the given id.
func (m *Manager) Get(id string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneTask(t), nil
}

// Update applies a partial mutation. Dependency additions are bidirectional:
// AddBlockedBy(x) on task y also records y in x's Blocks, and vice versa.
// Completing a task clears it from every other task's blocked_by list.
func (m *Manager) Update(id string, u Update) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	dirty := map[string]*Task{id: t}

	if u.Subject != "" {
		t.Subject = u.Subject
	}

	for _, blockerID := range u.AddBlockedBy {
		blocker, ok := m.tasks[blockerID]
		if !ok {
			return nil, fmt.Errorf("%w: blocked_by %s", ErrNotFound, blockerID)
		}
		t.BlockedBy = appendUnique(t.BlockedBy, blockerID)
		blocker.Blocks = appendUnique(blocker.Blocks, id)
		dirty[blockerID] = blocker
	}

	for _, blockedID := range u.AddBlocks {
		blocked, ok := m.tasks[blockedID]
		if !ok {
			return nil, fmt.Errorf("%w: blocks %s", ErrNotFound, blockedID)
		}
		t.Blocks = appendUnique(t.Blocks, blockedID)
		blocked.BlockedBy = appendUnique(blocked.BlockedBy, id)
		dirty[blockedID] = blocked
	}

	if u.Status != "" {
		switch u.Status {
		case StatusPending, StatusInProgress, StatusCompleted:
			t.Status = u.Status
		default:
			return nil, fmt.Errorf("tasks: invalid status %q", u.Status)
		}
		if u.Status == StatusCompleted {
			for _, other := range m.tasks {
				if removed := removeString(other.BlockedBy, id); removed != nil {
					other.BlockedBy = removed
					dirty[other.ID] = other
				}
			}
		}
	}

	now := time.Now()
	for _, d := range dirty {
		d.UpdatedAt = now
		if err := m.persistLocked(d); err != nil {
			return nil, err
		}
	}
	return cloneTask(t), nil
}

// List returns copies of all tasks ordered by numeric id.
func (m *Manager) List() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}

// Delete removes the task and its file, and drops dangling links to it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.tasks, id)

	for _, other := range m.tasks {
		changed := false
		if removed := removeString(other.BlockedBy, id); removed != nil {
			other.BlockedBy = removed
			changed = true
		}
		if removed := removeString(other.Blocks, id); removed != nil {
			other.Blocks = removed
			changed = true
		}
		if changed {
			_ = m.persistLocked(other)
		}
	}

	if err := os.Remove(m.taskPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tasks: remove: %w", err)
	}
	return nil
}

// persistLocked atomically writes one task file. Caller must hold m.mu.
func (m *Manager) persistLocked(t *Task) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("tasks: create dir: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("tasks: marshal: %w", err)
	}

	path := m.taskPath(t.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("tasks: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("tasks: rename: %w", err)
	}
	return nil
}

func (m *Manager) taskPath(id string) string {
	return filepath.Join(m.dir, id+".json")
}

func cloneTask(t *Task) *Task {
	c := *t
	c.BlockedBy = append([]string(nil), t.BlockedBy...)
	c.Blocks = append([]string(nil), t.Blocks...)
	return &c
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// removeString returns a new slice without v, or nil when v was absent.
func removeString(list []string, v string) []string {
	for i, existing := range list {
		if existing == v {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return nil
}
