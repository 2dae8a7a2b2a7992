// Package workspace provides the store that owns all virtual files, the
// open-tab order, and the active-tab selection. Every other component reads
// and writes workspace state through it.
package workspace

import (
	"sync"

	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
)

// Store is the explicit state container for a session's workspace. All
// mutation entry points are synchronous and guarded by a single mutex, so
// side effects are immediately observable by every reader.
type Store struct {
	mu          sync.RWMutex
	files       map[string]*file.VirtualFile
	order       []string // file ids in creation order
	openTabIDs  []string // subset of files, in open order
	activeTabID string   // empty or a member of openTabIDs
}

// NewStore creates an empty workspace store.
func NewStore() *Store {
	return &Store{files: make(map[string]*file.VirtualFile)}
}

// CreateFile allocates a new virtual file, fills type defaults for missing
// name/content, opens it as a tab, and makes it the active tab.
func (s *Store) CreateFile(t file.Type, name, content string) (*file.VirtualFile, error) {
	f, err := file.New(t, name, content)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeValidation, "create file", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
	s.order = append(s.order, f.ID)
	s.openLocked(f.ID)
	s.activeTabID = f.ID

	cp := *f
	return &cp, nil
}

// ImportFile adds an externally built file to the store without opening a
// tab for it. Used when restoring a persisted session or syncing a linked
// directory.
func (s *Store) ImportFile(f *file.VirtualFile) error {
	if err := f.Validate(); err != nil {
		return domainErrors.NewError(domainErrors.CodeValidation, "import file", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[f.ID]; !exists {
		s.order = append(s.order, f.ID)
	}
	cp := *f
	s.files[f.ID] = &cp
	return nil
}

// UpdateFileContent replaces the named file's content wholesale. No
// type-specific validation is performed; callers produce well-formed
// content for the file's type.
func (s *Store) UpdateFileContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return domainErrors.ErrFileNotFound
	}
	f.SetContent(content)
	return nil
}

// File returns a copy of the file with the given id.
func (s *Store) File(id string) (*file.VirtualFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, domainErrors.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

// FileByName returns a copy of the first file whose name matches, in
// creation order.
func (s *Store) FileByName(name string) (*file.VirtualFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if f := s.files[id]; f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrFileNotFound
}

// Files returns copies of all files in creation order. Closing a tab does
// not delete the underlying file, so this includes files without open tabs.
func (s *Store) Files() []*file.VirtualFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*file.VirtualFile, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.files[id]
		out = append(out, &cp)
	}
	return out
}

// OpenTab adds the file to the open-tab sequence and makes it active.
// Opening an already open tab only changes the active selection.
func (s *Store) OpenTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return domainErrors.ErrFileNotFound
	}
	s.openLocked(id)
	s.activeTabID = id
	return nil
}

// CloseTab removes the file from the open-tab sequence; the file itself
// persists in the file set. Closing the active tab selects the tab
// immediately preceding it in the remaining sequence, or none. Closing a
// tab that is not open is a no-op.
func (s *Store) CloseTab(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, tabID := range s.openTabIDs {
		if tabID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	s.openTabIDs = append(s.openTabIDs[:idx], s.openTabIDs[idx+1:]...)

	if s.activeTabID != id {
		return
	}
	if len(s.openTabIDs) == 0 {
		s.activeTabID = ""
		return
	}
	fallback := idx - 1
	if fallback < 0 {
		fallback = 0
	}
	s.activeTabID = s.openTabIDs[fallback]
}

// SwitchTab makes an existing file the active tab, opening it first when
// needed.
func (s *Store) SwitchTab(id string) error {
	return s.OpenTab(id)
}

// OpenTabIDs returns a copy of the open-tab sequence.
func (s *Store) OpenTabIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.openTabIDs))
	copy(out, s.openTabIDs)
	return out
}

// ActiveTabID returns the active tab id, or empty when no tab is active.
func (s *Store) ActiveTabID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTabID
}

// ActiveFile returns a copy of the active tab's file, or ErrFileNotFound
// when no tab is active.
func (s *Store) ActiveFile() (*file.VirtualFile, error) {
	s.mu.RLock()
	id := s.activeTabID
	s.mu.RUnlock()
	if id == "" {
		return nil, domainErrors.ErrFileNotFound
	}
	return s.File(id)
}

// ActiveChat returns the active file when it is a chat, ErrNoActiveChat
// otherwise.
func (s *Store) ActiveChat() (*file.VirtualFile, error) {
	f, err := s.ActiveFile()
	if err != nil {
		return nil, domainErrors.ErrNoActiveChat
	}
	if f.Type != file.TypeChat {
		return nil, domainErrors.ErrNotChatFile
	}
	return f, nil
}

// openLocked appends the id to the open-tab sequence if absent.
// Caller holds the write lock.
func (s *Store) openLocked(id string) {
	for _, tabID := range s.openTabIDs {
		if tabID == id {
			return
		}
	}
	s.openTabIDs = append(s.openTabIDs, id)
}
