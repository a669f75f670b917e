package background

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crewmesh/crewmesh/logging"
)

// ErrNotFound is returned when a task id is not present in the registry.
var ErrNotFound = errors.New("task not found")

// summaryLimit caps the output excerpt carried inside a notification.
const summaryLimit = 80

// Options configures an Executor instance.
type Options struct {
	// Logger receives structured execution logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Executor launches units of work on their own goroutines and tracks them by
// id. Its own state (registry, notification queue) is mutex-protected; the
// internals of the work are the work's own concern.
type Executor struct {
	registry *Registry
	bus      *NotificationBus
	logger   logging.Logger
}

// NewExecutor creates an Executor with an empty registry and notification
// queue. Each executor is fully self-contained: constructing a fresh instance
// per test run yields hermetic state.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{
		registry: NewRegistry(),
		bus:      NewNotificationBus(),
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Notifications returns the bus carrying this executor's terminal-state events.
func (e *Executor) Notifications() *NotificationBus { return e.bus }

// Registry exposes the task registry for status aggregation.
func (e *Executor) Registry() *Registry { return e.registry }

// Run schedules work for concurrent execution and returns its fresh task id
// immediately. The task is observable as running from the moment Run returns.
// The kind only selects the id prefix; it imposes no execution constraint.
func (e *Executor) Run(work Work, kind Kind) string {
	ctx, cancel := context.WithCancel(context.Background())
	t := newTask(kind, cancel)
	e.registry.Add(t)

	e.logger.Debug("task.scheduled", "task_id", t.ID(), "kind", kind)

	go func() {
		defer cancel()
		output, err := invoke(ctx, work)

		var transitioned bool
		if err != nil {
			transitioned = t.finish(StatusError, err.Error())
		} else {
			transitioned = t.finish(StatusCompleted, output)
		}
		if !transitioned {
			// The task was stopped while the work was still executing; its
			// terminal state is already recorded and notified.
			e.logger.Debug("task.result_discarded", "task_id", t.ID())
			return
		}

		snap := t.Snapshot()
		e.publish(snap)
		e.logger.Info("task.finished", "task_id", t.ID(), "status", snap.Status)
	}()

	return t.ID()
}

// invoke runs the work, converting a panic into an ordinary error so a
// misbehaving unit of work can never take down the executor.
func invoke(ctx context.Context, work Work) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work panicked: %v", r)
		}
	}()
	return work(ctx)
}

// GetOutput returns a status snapshot for the task. With block=false it never
// suspends the caller. With block=true it waits until the task reaches a
// terminal state or timeout elapses, whichever comes first; a timeout while
// the task is still running returns a "running" snapshot, not an error. A
// non-positive timeout waits indefinitely.
func (e *Executor) GetOutput(id string, block bool, timeout time.Duration) (Snapshot, error) {
	t, ok := e.registry.Get(id)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if !block {
		return t.Snapshot(), nil
	}

	if timeout > 0 {
		select {
		case <-t.Done():
		case <-time.After(timeout):
		}
	} else {
		<-t.Done()
	}

	return t.Snapshot(), nil
}

// Stop raises the task's cancellation flag and reports it as stopped
// immediately. Cancellation is cooperative and best-effort: the work's context
// is cancelled, but work that never observes it continues executing in the
// background even though its reported status is now "stopped". Stopping an
// already-terminal task is a no-op returning the existing snapshot.
func (e *Executor) Stop(id string) (Snapshot, error) {
	t, ok := e.registry.Get(id)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	transitioned := t.requestStop()
	t.cancel()

	snap := t.Snapshot()
	if transitioned {
		e.publish(snap)
		e.logger.Info("task.stopped", "task_id", id)
	}
	return snap, nil
}

// publish enqueues the one-and-only terminal notification for a task.
func (e *Executor) publish(snap Snapshot) {
	summary := snap.Output
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit] + "..."
	}
	e.bus.Publish(Notification{
		TaskID:    snap.TaskID,
		Status:    snap.Status,
		Summary:   summary,
		Timestamp: time.Now(),
	})
}
