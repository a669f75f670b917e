// Package background implements the task execution engine: a scheduler that
// runs opaque units of work on their own goroutines, tracks them in an
// in-memory registry, and reports terminal transitions through a drainable
// notification queue.
//
// # Architecture
//
//   - [Work]: an opaque unit of computation accepting a cancellation context
//   - [Task]: internal record owned by the executor, exposed only as [Snapshot]
//   - [Executor]: allocates ids, launches work, exposes poll/stop
//   - [NotificationBus]: FIFO of terminal-state events, drained atomically
//
// # Cancellation contract
//
// Stop is cooperative and best-effort. It cancels the context handed to the
// work function and immediately reports the task as stopped. Work that never
// observes its context keeps executing in the background even though its
// reported status is "stopped". This asymmetry is deliberate: the engine does
// not kill goroutines, it only withdraws interest in their results.
//
// # Basic Usage
//
//	exec := background.NewExecutor()
//
//	id := exec.Run(func(ctx context.Context) (string, error) {
//	    return runBuild(ctx)
//	}, background.KindBash)
//
//	// Non-blocking poll
//	snap, _ := exec.GetOutput(id, false, 0)
//
//	// Blocking poll with timeout
//	snap, _ = exec.GetOutput(id, true, 5*time.Second)
//
//	// Completion events, in completion order
//	for _, n := range exec.Notifications().Drain() {
//	    log.Printf("task %s -> %s", n.TaskID, n.Status)
//	}
//
// # Thread Safety
//
// All Executor and NotificationBus methods are safe for concurrent use. Only
// GetOutput with block=true suspends the calling goroutine; it waits on a
// per-task completion channel rather than polling.
package background
