package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"  text ", FormatText, false},
		{"", FormatText, false},
		{"yaml", FormatText, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestColorizeRespectsToggle(t *testing.T) {
	colored := NewFormatter(WithColor(true))
	if got := colored.Colorize("hi", ColorRed); got != string(ColorRed)+"hi"+string(ColorReset) {
		t.Errorf("expected ANSI wrapping, got %q", got)
	}

	plain := NewFormatter(WithColor(false))
	if got := plain.Colorize("hi", ColorRed); got != "hi" {
		t.Errorf("expected plain text, got %q", got)
	}
}

func TestStatusMessages(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithColor(false))

	f.Success("created %s", "main.py")
	f.Error("broken")
	f.Warning("careful")
	f.Info("note")

	out := buf.String()
	for _, want := range []string{"✓ created main.py", "✗ broken", "⚠ careful", "ℹ note"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithColor(false))

	f.Header("Files")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected title and underline, got %q", buf.String())
	}
	if lines[0] != "Files" {
		t.Errorf("unexpected title: %q", lines[0])
	}
	if lines[1] != strings.Repeat("─", len([]rune("Files"))) {
		t.Errorf("underline must match title width: %q", lines[1])
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithFormat(FormatJSON), WithColor(false))

	if err := f.JSON(map[string]string{"name": "alpha"}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "alpha"`) {
		t.Errorf("expected indented JSON: %s", buf.String())
	}
	if f.Format() != FormatJSON {
		t.Errorf("unexpected format: %q", f.Format())
	}
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithColor(false))

	err := f.Table(TableData{
		Headers: []string{"NAME", "TYPE"},
		Rows: [][]string{
			{"main.py", "code"},
			{"x", "doc"},
		},
	})
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %q", buf.String())
	}
	if lines[0] != "NAME     TYPE" {
		t.Errorf("header not padded to widest cell: %q", lines[0])
	}
	if lines[1] != "-------  ----" {
		t.Errorf("unexpected separator: %q", lines[1])
	}
	if lines[2] != "main.py  code" {
		t.Errorf("unexpected row: %q", lines[2])
	}
	if lines[3] != "x        doc" {
		t.Errorf("row not padded: %q", lines[3])
	}
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithColor(false))

	if err := f.Table(TableData{}); err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty table, got %q", buf.String())
	}
}

func TestSpinnerStopClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "thinking...")

	s.Start()
	s.Stop()

	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("expected line clear at end: %q", buf.String())
	}

	// Stopping twice is harmless.
	s.Stop()
}
