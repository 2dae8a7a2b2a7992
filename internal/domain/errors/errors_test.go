package errors

import (
	stderrors "errors"
	"testing"
)

func TestEngineErrorFormatting(t *testing.T) {
	e := NewError(CodeValidation, "bad input", nil)
	if got := e.Error(); got != "[VALIDATION] bad input" {
		t.Errorf("unexpected message: %q", got)
	}

	wrapped := NewError(CodeProvider, "request failed", stderrors.New("timeout"))
	if got := wrapped.Error(); got != "[PROVIDER] request failed: timeout" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root")
	e := NewError(CodeNotFound, "missing", cause)
	if !stderrors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewError(CodeBusy, "busy", nil)); got != CodeBusy {
		t.Errorf("expected BUSY, got %q", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != "" {
		t.Errorf("expected empty code, got %q", got)
	}

	// The code survives wrapping.
	wrapped := NewError(CodeConfiguration, "outer", NewError(CodeBusy, "inner", nil))
	if got := CodeOf(wrapped); got != CodeConfiguration {
		t.Errorf("expected outermost code, got %q", got)
	}
}

func TestSentinels(t *testing.T) {
	e := NewError(CodeNotFound, "lookup", ErrFileNotFound)
	if !Is(e, ErrFileNotFound) {
		t.Error("expected sentinel match through wrapping")
	}
	if Is(e, ErrSessionNotFound) {
		t.Error("unexpected sentinel match")
	}
}
