package mailbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/crewmesh/crewmesh/core"
)

// Store is a file-backed mailbox for exactly one teammate. Messages are
// persisted as JSONL (one JSON object per line) in an append-only log that is
// truncated atomically on drain.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store writing to the given file path. Parent directories
// are created lazily on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the underlying JSONL file.
func (s *Store) Path() string { return s.path }

// Append validates and persists a message. If msg.ID is empty a unique id is
// generated; if msg.Timestamp is zero the current time is used. An
// unrecognized message type is rejected with ErrInvalidType before the file
// is touched.
func (s *Store) Append(msg Message) error {
	if !ValidType(msg.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidType, msg.Type)
	}
	if msg.From == "" {
		return fmt.Errorf("mailbox: message From field is required")
	}

	if msg.ID == "" {
		msg.ID = core.NewID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mailbox: marshal message: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mailbox: create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("mailbox: open for append: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("mailbox: append: %w", err)
	}
	return f.Close()
}

// Drain reads every stored message in send order, then clears the store, as a
// single atomic consume. A missing file means an empty inbox, not an error.
func (s *Store) Drain() ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	if err := os.Truncate(s.path, 0); err != nil {
		// Leave messages in place rather than risk losing them: the caller
		// sees an error and the next drain re-reads the full log.
		return nil, fmt.Errorf("mailbox: truncate: %w", err)
	}

	return messages, nil
}

// Pending returns the number of stored messages without consuming them.
func (s *Store) Pending() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.readLocked()
	if err != nil {
		return 0, err
	}
	return len(messages), nil
}

// Remove deletes the backing file. Used when the owning teammate's team is
// deleted. A missing file is not an error.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("mailbox: remove: %w", err)
	}
	return nil
}

// readLocked reads all messages from the JSONL file. Caller must hold s.mu.
// Malformed lines are skipped rather than failing the whole read.
func (s *Store) readLocked() ([]Message, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mailbox: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	var messages []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mailbox: scan: %w", err)
	}

	return messages, nil
}
