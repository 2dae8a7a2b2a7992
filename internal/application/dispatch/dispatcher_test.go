package dispatch

import (
	"strings"
	"testing"

	"github.com/omniscience-ai/omniscience/internal/application/workspace"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
)

func TestExtractNoDirective(t *testing.T) {
	text := "Just a plain reply with no fenced block."
	cleaned, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d != nil {
		t.Fatal("expected no directive")
	}
	if cleaned != text {
		t.Errorf("text altered: %q", cleaned)
	}
}

func TestExtractTrailingDirective(t *testing.T) {
	text := "I created the file for you.\n\n```json\n{\"action\": \"create_file\", \"file_type\": \"doc\", \"file_name\": \"plan.doc\", \"content\": \"Step 1\"}\n```"
	cleaned, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d == nil {
		t.Fatal("expected a directive")
	}
	if d.Action != ActionCreateFile {
		t.Errorf("expected create_file, got %q", d.Action)
	}
	if d.FileName != "plan.doc" || d.Content != "Step 1" {
		t.Errorf("unexpected fields: %+v", d)
	}
	if cleaned != "I created the file for you." {
		t.Errorf("expected block stripped, got %q", cleaned)
	}
}

func TestExtractFenceWithoutLanguageTag(t *testing.T) {
	text := "Done.\n```\n{\"action\": \"switch_tab\", \"file_name\": \"Chat\"}\n```"
	_, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d == nil || d.Action != ActionSwitchTab {
		t.Fatalf("expected switch_tab directive, got %+v", d)
	}
}

func TestExtractMidTextFenceIgnored(t *testing.T) {
	text := "Here is an example:\n```json\n{\"action\": \"create_file\"}\n```\nAnd some trailing prose."
	cleaned, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d != nil {
		t.Error("a fence that is not at the end must not dispatch")
	}
	if cleaned != text {
		t.Errorf("text altered: %q", cleaned)
	}
}

func TestExtractPrefersTrailingFence(t *testing.T) {
	text := "Here is an example:\n```json\n{\"example\": true}\n```\nNow I will create the file.\n```json\n{\"action\": \"create_file\", \"file_type\": \"doc\", \"file_name\": \"plan.doc\", \"content\": \"Q3 plan\"}\n```"
	cleaned, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d == nil || d.Action != ActionCreateFile {
		t.Fatalf("expected create_file from the trailing fence, got %+v", d)
	}
	if d.FileName != "plan.doc" || d.Content != "Q3 plan" {
		t.Errorf("directive fields lost: %+v", d)
	}

	want := "Here is an example:\n```json\n{\"example\": true}\n```\nNow I will create the file."
	if cleaned != want {
		t.Errorf("expected only the trailing fence stripped, got %q", cleaned)
	}
}

func TestExtractMalformedJSONLeavesTextIntact(t *testing.T) {
	text := "Reply body.\n```json\n{\"action\": \"create_file\", broken}\n```"
	cleaned, d, err := Extract(text)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if d != nil {
		t.Error("malformed block must not produce a directive")
	}
	// The visible reply keeps the block; nothing is half-stripped.
	if cleaned != text {
		t.Errorf("expected original text intact, got %q", cleaned)
	}
}

func TestExtractActionlessObjectIgnored(t *testing.T) {
	text := "See data:\n```json\n{\"rows\": 3}\n```"
	cleaned, d, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if d != nil {
		t.Error("an object without an action is not a directive")
	}
	if cleaned != text {
		t.Errorf("text altered: %q", cleaned)
	}
}

func TestSpecialist(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"**Data Analyst** Here is the breakdown.", "Data Analyst"},
		{"  **Coder**: done", "Coder"},
		{"No label here", ""},
		{"Mid **bold** is not a label", ""},
	}
	for _, tt := range tests {
		if got := Specialist(tt.text); got != tt.want {
			t.Errorf("Specialist(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestProcessCreateFile(t *testing.T) {
	store := workspace.NewStore()
	d := NewDispatcher(store, nil)

	reply := "Created a sheet.\n```json\n{\"action\": \"create_file\", \"file_type\": \"sheet\", \"file_name\": \"budget.csv\", \"content\": \"a,b\\n1,2\"}\n```"
	cleaned := d.Process(reply)

	if strings.Contains(cleaned, "```") {
		t.Errorf("expected block stripped from display text: %q", cleaned)
	}

	f, err := store.FileByName("budget.csv")
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if f.Type != file.TypeSheet {
		t.Errorf("expected sheet, got %q", f.Type)
	}
	if f.Content != "a,b\n1,2" {
		t.Errorf("unexpected content: %q", f.Content)
	}
	if store.ActiveTabID() != f.ID {
		t.Error("expected created file to become the active tab")
	}
}

func TestProcessCreateFileUnknownTypeFallsBackToDoc(t *testing.T) {
	store := workspace.NewStore()
	d := NewDispatcher(store, nil)

	d.Process("x\n```json\n{\"action\": \"create_file\", \"file_type\": \"spreadsheet\", \"file_name\": \"f\"}\n```")

	f, err := store.FileByName("f")
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if f.Type != file.TypeDoc {
		t.Errorf("expected doc fallback, got %q", f.Type)
	}
}

func TestProcessUpdateFileByName(t *testing.T) {
	store := workspace.NewStore()
	target, _ := store.CreateFile(file.TypeDoc, "report.doc", "old")
	d := NewDispatcher(store, nil)

	d.Process("Updated.\n```json\n{\"action\": \"update_file\", \"file_name\": \"report.doc\", \"content\": \"new body\"}\n```")

	got, _ := store.File(target.ID)
	if got.Content != "new body" {
		t.Errorf("expected content replaced, got %q", got.Content)
	}
	if got.Name != "report.doc" || got.Type != file.TypeDoc {
		t.Error("update must not change name or type")
	}
}

func TestProcessUpdateFileNameWinsOverID(t *testing.T) {
	store := workspace.NewStore()
	byName, _ := store.CreateFile(file.TypeDoc, "target", "a")
	byID, _ := store.CreateFile(file.TypeDoc, "other", "b")
	d := NewDispatcher(store, nil)

	reply := "x\n```json\n{\"action\": \"update_file\", \"file_name\": \"target\", \"file_id\": \"" + byID.ID + "\", \"content\": \"changed\"}\n```"
	d.Process(reply)

	got, _ := store.File(byName.ID)
	if got.Content != "changed" {
		t.Error("expected file_name match to win over file_id")
	}
	other, _ := store.File(byID.ID)
	if other.Content != "b" {
		t.Error("file_id target must be untouched when the name resolves")
	}
}

func TestProcessUpdateMissingTargetDropped(t *testing.T) {
	store := workspace.NewStore()
	d := NewDispatcher(store, nil)

	cleaned := d.Process("Tried.\n```json\n{\"action\": \"update_file\", \"file_name\": \"ghost\", \"content\": \"x\"}\n```")

	if strings.Contains(cleaned, "```") {
		t.Error("a dropped directive is still stripped from the reply")
	}
	if len(store.Files()) != 0 {
		t.Error("dropped update must not create files")
	}
}

func TestProcessSwitchTab(t *testing.T) {
	store := workspace.NewStore()
	a, _ := store.CreateFile(file.TypeDoc, "a", "")
	store.CreateFile(file.TypeDoc, "b", "")
	d := NewDispatcher(store, nil)

	d.Process("Switching.\n```json\n{\"action\": \"switch_tab\", \"file_name\": \"a\"}\n```")

	if store.ActiveTabID() != a.ID {
		t.Error("expected switch_tab to activate the target")
	}
}

func TestProcessMalformedDirectiveShowsFullReply(t *testing.T) {
	store := workspace.NewStore()
	d := NewDispatcher(store, nil)

	reply := "Body.\n```json\n{nope}\n```"
	cleaned := d.Process(reply)

	if cleaned != reply {
		t.Errorf("malformed directive must leave the reply intact, got %q", cleaned)
	}
	if len(store.Files()) != 0 {
		t.Error("malformed directive must not mutate the store")
	}
}

func TestApplyUnknownAction(t *testing.T) {
	d := NewDispatcher(workspace.NewStore(), nil)
	if err := d.Apply(&Directive{Action: "delete_file"}); err == nil {
		t.Error("expected error for unknown action")
	}
}
