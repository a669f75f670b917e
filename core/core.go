package core

import "github.com/google/uuid"

// NewID returns a fresh UUIDv4 string. Used for message ids, tool call
// correlation ids and task id suffixes; uniqueness is what guarantees that
// task ids are never reused across the lifetime of an executor.
func NewID() string { return uuid.NewString() }
