// Package chat provides the message model and the JSON transcript codec
// used as the content encoding of chat-type virtual files.
package chat

import (
	"fmt"
	"time"
)

// Role represents the author of a message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleModel marks a message produced by the assistant backend.
	RoleModel Role = "model"
)

// Message is a single chat exchange entry. It lives only inside a
// chat file's content as part of a serialized ordered sequence.
type Message struct {
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	Specialist string    `json:"specialist,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewUserMessage creates a user message with the current timestamp.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, Timestamp: time.Now()}
}

// NewModelMessage creates a model message with the current timestamp.
func NewModelMessage(text, specialist string) Message {
	return Message{Role: RoleModel, Text: text, Specialist: specialist, Timestamp: time.Now()}
}

// IsValid checks if the role is a known variant.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModel
}

// Validate validates the message.
func (m Message) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	return nil
}
