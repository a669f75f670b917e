package mailbox

import (
	"errors"
	"time"
)

// ErrInvalidType is returned when a message carries an unrecognized type.
// The send is rejected without mutating any mailbox.
var ErrInvalidType = errors.New("invalid message type")

// MessageType identifies the kind of inter-agent message.
type MessageType string

const (
	// TypeMessage is free-form text between teammates.
	TypeMessage MessageType = "message"

	// TypeStatus provides a progress update.
	TypeStatus MessageType = "status"

	// TypeQuestion requests help from another teammate.
	TypeQuestion MessageType = "question"

	// TypeAnswer responds to a question.
	TypeAnswer MessageType = "answer"

	// TypeShutdown asks the recipient loop to wind down.
	TypeShutdown MessageType = "shutdown"
)

// validTypes is the closed set of recognized message types.
var validTypes = map[MessageType]bool{
	TypeMessage:  true,
	TypeStatus:   true,
	TypeQuestion: true,
	TypeAnswer:   true,
	TypeShutdown: true,
}

// ValidType reports whether t is a recognized message type.
func ValidType(t MessageType) bool {
	return validTypes[t]
}

// Types returns the recognized message type names, for tool schema enums.
func Types() []MessageType {
	return []MessageType{TypeMessage, TypeStatus, TypeQuestion, TypeAnswer, TypeShutdown}
}

// Message is a single inter-agent communication. Lifecycle: created (unread)
// on send, consumed (removed) on the owning teammate's next inbox check.
type Message struct {
	ID        string      `json:"id"`
	From      string      `json:"from"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
