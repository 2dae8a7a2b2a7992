package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/domain/terminal"
)

type fakeProvider struct {
	reply    string
	err      error
	lastReq  ports.GenerateRequest
	requests int
}

func (p *fakeProvider) Info() ports.ProviderInfo {
	return ports.ProviderInfo{Name: "fake"}
}

func (p *fakeProvider) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	p.requests++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &ports.GenerateResponse{Content: p.reply, ModelUsed: req.ModelID}, nil
}

func (p *fakeProvider) HealthCheck(ctx context.Context) (*ports.HealthStatus, error) {
	return &ports.HealthStatus{Healthy: true}, nil
}

// mapCache is a minimal in-memory CachePort for tests.
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Clear(ctx context.Context) error {
	c.entries = make(map[string]string)
	return nil
}

func newTestService(t *testing.T, provider ports.ProviderPort, cache ports.CachePort) (*Service, *session.Session) {
	t.Helper()
	sess := session.New("test")
	svc, err := NewService(provider, sess, cache, nil, nil, Config{
		ModelID:   "test-model",
		MaxTokens: 1024,
		CacheTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, sess
}

func TestRunAppendsOutputEntry(t *testing.T) {
	provider := &fakeProvider{reply: "42\n"}
	svc, sess := newTestService(t, provider, nil)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print(42)")

	entry, err := svc.Run(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if entry.Kind != terminal.KindOutput {
		t.Errorf("expected output entry, got %q", entry.Kind)
	}
	if entry.Content != "42\n" {
		t.Errorf("unexpected content: %q", entry.Content)
	}

	// An info entry precedes the output in the terminal log.
	entries := sess.Terminal.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 terminal entries, got %d", len(entries))
	}
	if entries[0].Kind != terminal.KindInfo {
		t.Errorf("expected leading info entry, got %q", entries[0].Kind)
	}
}

func TestRunSendsCodeWithoutHistory(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	svc, sess := newTestService(t, provider, nil)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print('x')")

	if _, err := svc.Run(context.Background(), f.ID); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	req := provider.lastReq
	if len(req.Messages) != 1 {
		t.Fatalf("expected a one-shot request, got %d messages", len(req.Messages))
	}
	if req.Messages[0].Role != "user" {
		t.Errorf("expected user role, got %q", req.Messages[0].Role)
	}
	if req.SystemInstruction != "" {
		t.Error("runs must not carry the chat system instruction")
	}
}

func TestRunRejectsNonCodeFile(t *testing.T) {
	svc, sess := newTestService(t, &fakeProvider{reply: "x"}, nil)
	doc, _ := sess.Store.CreateFile(file.TypeDoc, "d", "text")

	if _, err := svc.Run(context.Background(), doc.ID); !domainErrors.Is(err, domainErrors.ErrNotCodeFile) {
		t.Errorf("expected ErrNotCodeFile, got %v", err)
	}
}

func TestRunRejectsMissingFile(t *testing.T) {
	svc, _ := newTestService(t, &fakeProvider{reply: "x"}, nil)
	if _, err := svc.Run(context.Background(), "ghost"); !domainErrors.Is(err, domainErrors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRunRejectsBlankCode(t *testing.T) {
	svc, sess := newTestService(t, &fakeProvider{reply: "x"}, nil)
	f, _ := sess.Store.CreateFile(file.TypeCode, "empty.py", "   \n\t")

	if _, err := svc.Run(context.Background(), f.ID); !domainErrors.Is(err, domainErrors.ErrBlankInput) {
		t.Errorf("expected ErrBlankInput, got %v", err)
	}
}

func TestRunRejectedWhileInFlight(t *testing.T) {
	provider := &fakeProvider{reply: "x"}
	svc, sess := newTestService(t, provider, nil)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print(1)")

	if !sess.TryAcquire() {
		t.Fatal("setup: acquire failed")
	}
	defer sess.Release()

	if _, err := svc.Run(context.Background(), f.ID); !domainErrors.Is(err, domainErrors.ErrRequestInFlight) {
		t.Errorf("expected ErrRequestInFlight, got %v", err)
	}
	if provider.requests != 0 {
		t.Error("rejected run must not reach the backend")
	}
}

func TestRunFailureAppendsErrorEntry(t *testing.T) {
	provider := &fakeProvider{err: errors.New("backend down")}
	svc, sess := newTestService(t, provider, nil)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print(1)")

	entry, err := svc.Run(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("backend failure must not surface as error: %v", err)
	}
	if entry.Kind != terminal.KindError {
		t.Errorf("expected error entry, got %q", entry.Kind)
	}
	if entry.Content != "backend down" {
		t.Errorf("unexpected content: %q", entry.Content)
	}

	// The guard is released for the next run.
	provider.err = nil
	provider.reply = "fine"
	if _, err := svc.Run(context.Background(), f.ID); err != nil {
		t.Fatalf("follow-up run failed: %v", err)
	}
}

func TestRunServedFromCache(t *testing.T) {
	provider := &fakeProvider{reply: "cached output"}
	cache := newMapCache()
	svc, sess := newTestService(t, provider, cache)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print(9)")

	if _, err := svc.Run(context.Background(), f.ID); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	entry, err := svc.Run(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if provider.requests != 1 {
		t.Errorf("expected one backend call, got %d", provider.requests)
	}
	if entry.Kind != terminal.KindOutput || entry.Content != "cached output" {
		t.Errorf("unexpected cached entry: %+v", entry)
	}
}

func TestRunCacheMissOnChangedCode(t *testing.T) {
	provider := &fakeProvider{reply: "v1"}
	cache := newMapCache()
	svc, sess := newTestService(t, provider, cache)
	f, _ := sess.Store.CreateFile(file.TypeCode, "main.py", "print(1)")

	if _, err := svc.Run(context.Background(), f.ID); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	sess.Store.UpdateFileContent(f.ID, "print(2)")
	provider.reply = "v2"
	entry, err := svc.Run(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if provider.requests != 2 {
		t.Errorf("expected cache miss on changed code, got %d requests", provider.requests)
	}
	if entry.Content != "v2" {
		t.Errorf("expected fresh output, got %q", entry.Content)
	}
}
