package background

import "sync"

// Registry is the thread-safe in-memory record of every task the executor has
// ever scheduled. Records are retained indefinitely so terminal tasks can be
// polled long after completion.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Add stores a task under its id.
func (r *Registry) Add(t *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID()] = t
}

// Get returns the task for id, if known.
func (r *Registry) Get(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Snapshots returns a point-in-time view of every tracked task.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := make([]Snapshot, 0, len(r.tasks))
	for _, t := range r.tasks {
		snaps = append(snaps, t.Snapshot())
	}
	return snaps
}
