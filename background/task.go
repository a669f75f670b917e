package background

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crewmesh/crewmesh/core"
)

// Status is the lifecycle state of a background task.
type Status string

const (
	// StatusRunning marks a task whose work has been launched and has not
	// reached a terminal state.
	StatusRunning Status = "running"

	// StatusCompleted marks a task whose work returned successfully.
	StatusCompleted Status = "completed"

	// StatusError marks a task whose work returned an error or panicked.
	// The failure detail is captured in the task output.
	StatusError Status = "error"

	// StatusStopped marks a task cancelled via Stop. The underlying work may
	// still be executing if it ignores its cancellation context.
	StatusStopped Status = "stopped"
)

// Terminal reports whether the status is permanent.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusStopped
}

// Kind categorizes a task for id allocation. The first letter of the kind
// becomes the task id prefix, so ids remain self-describing in logs and
// notifications ("b..." for bash, "a..." for agent).
type Kind string

const (
	// KindBash is a shell invocation run in the background.
	KindBash Kind = "bash"

	// KindAgent is a nested agent run executed in the background.
	KindAgent Kind = "agent"
)

// prefix returns the single id prefix byte for the kind.
func (k Kind) prefix() byte {
	if k == "" {
		return 't'
	}
	return k[0]
}

// Work is an opaque unit of computation. The context is the cooperative
// cancellation token: implementations should return promptly once it is
// cancelled. Work that ignores the context outlives its reported "stopped"
// status; the executor never forcibly terminates a goroutine.
type Work func(ctx context.Context) (string, error)

// Snapshot is the caller-visible view of a task at one point in time. Output
// is populated only in terminal states.
type Snapshot struct {
	TaskID        string    `json:"task_id"`
	Kind          Kind      `json:"kind"`
	Status        Status    `json:"status"`
	Output        string    `json:"output,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	StopRequested bool      `json:"stop_requested,omitempty"`
}

// Task is the executor-owned record of one scheduled unit of work. Callers
// never hold a *Task; they address it by id and observe it via Snapshot.
type Task struct {
	id        string
	kind      Kind
	createdAt time.Time
	cancel    context.CancelFunc

	mu            sync.Mutex
	status        Status
	output        string
	stopRequested bool

	// done is closed exactly once, on the first terminal transition.
	done chan struct{}
}

// newTask allocates a running task with a fresh, never-reused id.
func newTask(kind Kind, cancel context.CancelFunc) *Task {
	id := string(kind.prefix()) + strings.ReplaceAll(core.NewID(), "-", "")[:12]
	return &Task{
		id:        id,
		kind:      kind,
		createdAt: time.Now(),
		cancel:    cancel,
		status:    StatusRunning,
		done:      make(chan struct{}),
	}
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Snapshot returns a consistent point-in-time view of the task.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		TaskID:        t.id,
		Kind:          t.kind,
		Status:        t.status,
		Output:        t.output,
		CreatedAt:     t.createdAt,
		StopRequested: t.stopRequested,
	}
}

// finish moves the task to a terminal state. It returns false if the task was
// already terminal, in which case status and output are left untouched; the
// first terminal transition wins and later work results are discarded.
func (t *Task) finish(status Status, output string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return false
	}
	t.status = status
	t.output = output
	close(t.done)
	return true
}

// requestStop raises the cancellation flag and, if the task is still running,
// transitions it to stopped. The bool reports whether this call performed the
// terminal transition.
func (t *Task) requestStop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopRequested = true
	if t.status.Terminal() {
		return false
	}
	t.status = StatusStopped
	close(t.done)
	return true
}

// Done returns the channel closed on the first terminal transition.
func (t *Task) Done() <-chan struct{} { return t.done }
