package linkdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/omniscience-ai/omniscience/internal/application/workspace"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
)

func TestTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want file.Type
	}{
		{"main.py", file.TypeCode},
		{"server.go", file.TypeCode},
		{"app.JS", file.TypeCode},
		{"script.sh", file.TypeCode},
		{"data.csv", file.TypeSheet},
		{"notes.md", file.TypeDoc},
		{"readme.txt", file.TypeDoc},
		{"report.doc", file.TypeDoc},
		{"archive.zip", file.TypeNote},
		{"noext", file.TypeNote},
	}
	for _, tt := range tests {
		if got := TypeForPath(tt.path); got != tt.want {
			t.Errorf("TypeForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestStartImportsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("print(1)"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0750); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	store := workspace.NewStore()
	syncer, err := NewSyncer(store, nil)
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	defer syncer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := syncer.Start(ctx, dir); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	files := store.Files()
	if len(files) != 2 {
		t.Fatalf("expected 2 imported files, got %d", len(files))
	}

	code, err := store.FileByName("main.py")
	if err != nil {
		t.Fatalf("FileByName failed: %v", err)
	}
	if code.Type != file.TypeCode || code.Content != "print(1)" {
		t.Errorf("unexpected import: %+v", code)
	}

	// Imports never steal focus or open tabs.
	if store.ActiveTabID() != "" {
		t.Errorf("import must not activate a tab, got %q", store.ActiveTabID())
	}
	if len(store.OpenTabIDs()) != 0 {
		t.Errorf("import must not open tabs, got %d", len(store.OpenTabIDs()))
	}
}

func TestStartMissingDir(t *testing.T) {
	store := workspace.NewStore()
	syncer, err := NewSyncer(store, nil)
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	defer syncer.Close()

	if err := syncer.Start(context.Background(), filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDiskWriteUpdatesVirtualFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("v1"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	store := workspace.NewStore()
	syncer, err := NewSyncer(store, nil)
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	defer syncer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := syncer.Start(ctx, dir); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	imported, err := store.FileByName("notes.md")
	if err != nil {
		t.Fatalf("FileByName failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("v2"), 0600); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		f, err := store.File(imported.ID)
		if err != nil {
			t.Fatalf("File failed: %v", err)
		}
		if f.Content == "v2" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("virtual file never synced, content %q", f.Content)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	syncer, err := NewSyncer(workspace.NewStore(), nil)
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	if err := syncer.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := syncer.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
