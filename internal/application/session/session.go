// Package session holds the per-session aggregate: the workspace store,
// the terminal log, the current specialist indicator, and the single
// in-flight request guard shared by the assistant and the code runner.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/omniscience-ai/omniscience/internal/application/workspace"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/domain/terminal"
)

// Session is the explicit state container for one workspace session.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	Store    *workspace.Store
	Terminal *terminal.Log

	mu         sync.RWMutex
	specialist string

	// One outstanding backend request per session, for chat sends and
	// code runs alike.
	inflight atomic.Bool
}

// New creates an empty session.
func New(name string) *Session {
	if name == "" {
		name = GenerateName()
	}
	return &Session{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
		Store:     workspace.NewStore(),
		Terminal:  terminal.NewLog(),
	}
}

// TryAcquire claims the in-flight slot, returning false when another
// backend request is still outstanding.
func (s *Session) TryAcquire() bool {
	return s.inflight.CompareAndSwap(false, true)
}

// Release frees the in-flight slot.
func (s *Session) Release() {
	s.inflight.Store(false)
}

// Busy reports whether a backend request is outstanding.
func (s *Session) Busy() bool {
	return s.inflight.Load()
}

// SetSpecialist records the current specialist indicator for the session.
func (s *Session) SetSpecialist(label string) {
	s.mu.Lock()
	s.specialist = label
	s.mu.Unlock()
}

// Specialist returns the current specialist indicator.
func (s *Session) Specialist() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specialist
}

// GenerateName produces a readable default session name.
func GenerateName() string {
	return "session-" + time.Now().Format("20060102-150405")
}

// FileSnapshot is the persisted form of one virtual file.
type FileSnapshot struct {
	ID        string
	Name      string
	Type      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is the persisted form of a session. The terminal log is
// process-local and deliberately excluded.
type Snapshot struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	SavedAt     time.Time
	Specialist  string
	Files       []FileSnapshot
	OpenTabIDs  []string
	ActiveTabID string
}

// Snapshot captures the session's persistable state.
func (s *Session) Snapshot() Snapshot {
	files := s.Store.Files()
	snaps := make([]FileSnapshot, 0, len(files))
	for _, f := range files {
		snaps = append(snaps, FileSnapshot{
			ID:        f.ID,
			Name:      f.Name,
			Type:      string(f.Type),
			Content:   f.Content,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		})
	}
	return Snapshot{
		ID:          s.ID,
		Name:        s.Name,
		CreatedAt:   s.CreatedAt,
		SavedAt:     time.Now(),
		Specialist:  s.Specialist(),
		Files:       snaps,
		OpenTabIDs:  s.Store.OpenTabIDs(),
		ActiveTabID: s.Store.ActiveTabID(),
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot) (*Session, error) {
	s := &Session{
		ID:        snap.ID,
		Name:      snap.Name,
		CreatedAt: snap.CreatedAt,
		Store:     workspace.NewStore(),
		Terminal:  terminal.NewLog(),
	}
	s.SetSpecialist(snap.Specialist)

	for _, fs := range snap.Files {
		t, err := file.ParseType(fs.Type)
		if err != nil {
			return nil, err
		}
		if err := s.Store.ImportFile(&file.VirtualFile{
			ID:        fs.ID,
			Name:      fs.Name,
			Type:      t,
			Content:   fs.Content,
			CreatedAt: fs.CreatedAt,
			UpdatedAt: fs.UpdatedAt,
		}); err != nil {
			return nil, err
		}
	}
	for _, id := range snap.OpenTabIDs {
		if err := s.Store.OpenTab(id); err != nil {
			return nil, err
		}
	}
	if snap.ActiveTabID != "" {
		if err := s.Store.SwitchTab(snap.ActiveTabID); err != nil {
			return nil, err
		}
	}
	return s, nil
}
