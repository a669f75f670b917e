package background

import (
	"sync"
	"time"
)

// Notification records one task reaching a terminal state. Exactly one
// notification is produced per task over its lifetime, in completion order
// (not schedule order).
type Notification struct {
	TaskID    string    `json:"task_id"`
	Status    Status    `json:"status"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationBus is a FIFO queue of terminal-state events. Publish and Drain
// are serialized by a mutex so an event is observed by exactly one drain and
// never split across two.
type NotificationBus struct {
	mu    sync.Mutex
	queue []Notification
}

// NewNotificationBus constructs an empty bus.
func NewNotificationBus() *NotificationBus {
	return &NotificationBus{}
}

// Publish appends an event to the queue.
func (b *NotificationBus) Publish(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, n)
}

// Drain atomically empties the queue and returns its contents in arrival
// order. A drain with no intervening publishes returns an empty slice.
func (b *NotificationBus) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.queue
	b.queue = nil
	return drained
}

// Pending returns the number of queued events without consuming them.
func (b *NotificationBus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
