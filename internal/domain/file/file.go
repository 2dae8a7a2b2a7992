// Package file defines the virtual file model at the core of the workspace.
package file

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
)

// Type identifies the content encoding of a virtual file.
type Type string

const (
	TypeChat       Type = "chat"       // JSON-encoded message list
	TypeCode       Type = "code"       // freeform source text
	TypeDoc        Type = "doc"        // freeform document text
	TypeWhiteboard Type = "whiteboard" // data-URI encoded raster image
	TypeSheet      Type = "sheet"      // newline rows, comma cells
	TypeSlide      Type = "slide"      // first line title, rest body
	TypeNote       Type = "note"       // freeform note text
)

// AllTypes lists every valid file type.
var AllTypes = []Type{TypeChat, TypeCode, TypeDoc, TypeWhiteboard, TypeSheet, TypeSlide, TypeNote}

// IsValid checks if the file type is one of the known variants.
func (t Type) IsValid() bool {
	switch t {
	case TypeChat, TypeCode, TypeDoc, TypeWhiteboard, TypeSheet, TypeSlide, TypeNote:
		return true
	default:
		return false
	}
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// ParseType converts a string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidFileType, s)
	}
	return t, nil
}

// VirtualFile is an in-memory document owned by the workspace store.
// Content is replaced wholesale on every edit; there are no partial patches.
type VirtualFile struct {
	ID        string
	Name      string
	Type      Type
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a virtual file with a fresh unique id. Empty names and
// contents are filled with type-appropriate defaults.
func New(t Type, name, content string) (*VirtualFile, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidFileType, t)
	}
	if name == "" {
		name = DefaultName(t)
	}
	if content == "" {
		content = DefaultContent(t)
	}
	now := time.Now()
	return &VirtualFile{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      t,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetContent replaces the file content wholesale. Callers are responsible
// for producing well-formed content for the file's type.
func (f *VirtualFile) SetContent(content string) {
	f.Content = content
	f.UpdatedAt = time.Now()
}

// Snippet returns up to limit leading characters of the content, used when
// embedding the file into a workspace snapshot for the assistant. The
// limit counts characters, so a multi-byte rune is never split.
func (f *VirtualFile) Snippet(limit int) string {
	if limit <= 0 || len(f.Content) <= limit {
		return f.Content
	}
	runes := []rune(f.Content)
	if len(runes) <= limit {
		return f.Content
	}
	return string(runes[:limit])
}

// DefaultName returns the name given to a new file when none is supplied.
func DefaultName(t Type) string {
	switch t {
	case TypeChat:
		return "Chat"
	case TypeCode:
		return "untitled.py"
	case TypeDoc:
		return "Untitled.doc"
	case TypeWhiteboard:
		return "Whiteboard"
	case TypeSheet:
		return "Sheet1.csv"
	case TypeSlide:
		return "Slide 1"
	case TypeNote:
		return "Note"
	default:
		return "Untitled"
	}
}

// DefaultContent returns the content given to a new file when none is
// supplied: a header/data template for sheets, a title/subtitle pair for
// slides, an empty JSON list for chats, empty text otherwise.
func DefaultContent(t Type) string {
	switch t {
	case TypeChat:
		return "[]"
	case TypeSheet:
		return "Column A,Column B,Column C\n,,"
	case TypeSlide:
		return "New Slide\nSubtitle text"
	default:
		return ""
	}
}

// Validate checks the structural invariants of the file record.
func (f *VirtualFile) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("file id cannot be empty")
	}
	if f.Name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if !f.Type.IsValid() {
		return fmt.Errorf("invalid file type: %q", f.Type)
	}
	return nil
}
