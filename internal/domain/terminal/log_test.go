package terminal

import (
	"sync"
	"testing"
)

func TestAppendAndEntries(t *testing.T) {
	l := NewLog()

	first := l.Append(KindInfo, "running script.py")
	second := l.Append(KindOutput, "hello world")

	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	if first.ID == "" || second.ID == "" {
		t.Error("expected entry ids to be assigned")
	}
	if first.ID == second.ID {
		t.Error("expected unique entry ids")
	}

	entries := l.Entries()
	if entries[0].Content != "running script.py" || entries[1].Content != "hello world" {
		t.Errorf("entries out of order: %+v", entries)
	}
	if entries[0].Kind != KindInfo || entries[1].Kind != KindOutput {
		t.Errorf("unexpected kinds: %q %q", entries[0].Kind, entries[1].Kind)
	}
}

func TestClear(t *testing.T) {
	l := NewLog()
	l.Append(KindError, "boom")
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("expected empty log after clear, got %d", l.Len())
	}
}

func TestConcurrentAppend(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(KindOutput, "line")
		}()
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("expected 50 entries, got %d", l.Len())
	}
}
