package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("levels below warn must be filtered: %s", out)
	}
	if !strings.Contains(out, "warn msg") || !strings.Contains(out, "error msg") {
		t.Errorf("warn and error must pass: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output: %s", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected attribute in JSON output: %s", out)
	}
}

func TestContextEnrichment(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithFileID(ctx, "file-2")
	ctx = WithProvider(ctx, "gemini")

	logger.InfoContext(ctx, "enriched")

	out := buf.String()
	for _, want := range []string{"session_id=sess-1", "file_id=file-2", "provider=gemini"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}
}

func TestContextWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	logger.InfoContext(context.Background(), "plain", "k", "v")

	out := buf.String()
	if strings.Contains(out, "session_id") {
		t.Errorf("unexpected enrichment: %s", out)
	}
	if !strings.Contains(out, "k=v") {
		t.Errorf("expected caller attribute: %s", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	logger.With("component", "store").Info("attached")

	if !strings.Contains(buf.String(), "component=store") {
		t.Errorf("expected bound attribute: %s", buf.String())
	}
}
