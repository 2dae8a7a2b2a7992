package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Transcript is the decoded form of a chat file's content: an ordered,
// append-only message sequence. Every mutation re-serializes the full
// sequence so the file content always holds the complete history.
type Transcript struct {
	messages []Message
}

// Decode parses a chat file's content into a transcript. Empty content and
// an empty JSON list both decode to an empty transcript.
func Decode(content string) (*Transcript, error) {
	t := &Transcript{}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return t, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &t.messages); err != nil {
		return nil, fmt.Errorf("malformed chat content: %w", err)
	}
	return t, nil
}

// Encode serializes the full message sequence back to file content.
func (t *Transcript) Encode() (string, error) {
	if t.messages == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(t.messages)
	if err != nil {
		return "", fmt.Errorf("encode chat content: %w", err)
	}
	return string(raw), nil
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the message sequence.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message, or false when the transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
