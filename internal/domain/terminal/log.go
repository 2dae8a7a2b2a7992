// Package terminal provides the process-local terminal log that collects
// code-runner output. Entries are append-only, cleared on demand, and never
// persisted into any file.
package terminal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a terminal entry.
type Kind string

const (
	KindInfo    Kind = "info"
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindOutput  Kind = "output"
)

// Entry is a single terminal log line.
type Entry struct {
	ID        string
	Kind      Kind
	Content   string
	Timestamp time.Time
}

// Log is a thread-safe append-only terminal log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLog creates an empty terminal log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry of the given kind and returns it.
func (l *Log) Append(kind Kind, content string) Entry {
	e := Entry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return e
}

// Entries returns a copy of the log in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
