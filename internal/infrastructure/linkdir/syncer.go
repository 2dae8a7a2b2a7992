// Package linkdir imports the files of a linked local directory into the
// workspace as virtual files and keeps their content in sync while the
// engine runs.
package linkdir

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omniscience-ai/omniscience/internal/application/workspace"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/logging"
)

// maxImportSize caps how large a linked file may be before it is skipped.
const maxImportSize = 1 << 20 // 1 MiB

// Syncer mirrors a directory's files into a workspace store.
type Syncer struct {
	store  *workspace.Store
	logger *logging.Logger

	fsWatcher *fsnotify.Watcher

	mu      sync.Mutex
	fileIDs map[string]string // disk path -> virtual file id
	closed  bool
}

// NewSyncer creates a syncer bound to a store.
func NewSyncer(store *workspace.Store, logger *logging.Logger) (*Syncer, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Syncer{
		store:     store,
		logger:    logger,
		fsWatcher: fsWatcher,
		fileIDs:   make(map[string]string),
	}, nil
}

// Start imports the directory's current files and then follows disk writes
// until the context is cancelled. Removing a file on disk does not remove
// the virtual file; the workspace keeps the last synced content.
func (s *Syncer) Start(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		s.importFile(filepath.Join(dir, entry.Name()))
	}

	if err := s.fsWatcher.Add(dir); err != nil {
		return err
	}

	go s.loop(ctx)
	return nil
}

// Close stops watching.
func (s *Syncer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.fsWatcher.Close()
}

func (s *Syncer) loop(ctx context.Context) {
	// Small debounce so editors that write in bursts produce one import.
	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return

		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(100 * time.Millisecond)

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("link dir watch error", "error", err.Error())

		case <-timer.C:
			for path := range pending {
				s.importFile(path)
			}
			pending = make(map[string]struct{})
		}
	}
}

// importFile reads a disk file and creates or updates its virtual twin.
func (s *Syncer) importFile(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if info.Size() > maxImportSize {
		s.logger.Warn("linked file too large, skipped", "path", path, "size", info.Size())
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read linked file", "path", path, "error", err.Error())
		return
	}
	content := string(data)

	s.mu.Lock()
	id, known := s.fileIDs[path]
	s.mu.Unlock()

	if known {
		if err := s.store.UpdateFileContent(id, content); err != nil {
			s.logger.Warn("failed to sync linked file", "path", path, "error", err.Error())
		}
		return
	}

	// Imports never steal the active tab; the file joins the set without
	// an open tab.
	f, err := file.New(TypeForPath(path), filepath.Base(path), content)
	if err != nil {
		s.logger.Warn("failed to import linked file", "path", path, "error", err.Error())
		return
	}
	if err := s.store.ImportFile(f); err != nil {
		s.logger.Warn("failed to import linked file", "path", path, "error", err.Error())
		return
	}
	s.mu.Lock()
	s.fileIDs[path] = f.ID
	s.mu.Unlock()
	s.logger.Info("linked file imported", "path", path, "file_id", f.ID)
}

// TypeForPath maps a disk file's extension to a virtual file type.
func TypeForPath(path string) file.Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".go", ".js", ".ts", ".rb", ".rs", ".c", ".java", ".sh":
		return file.TypeCode
	case ".csv":
		return file.TypeSheet
	case ".md", ".txt", ".doc":
		return file.TypeDoc
	default:
		return file.TypeNote
	}
}
