// Package dispatch extracts the trailing structured directive from an
// assistant reply and applies it to the workspace store.
package dispatch

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/omniscience-ai/omniscience/internal/application/workspace"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/logging"
)

// Action names the file mutations the backend may request.
type Action string

const (
	ActionCreateFile Action = "create_file"
	ActionUpdateFile Action = "update_file"
	ActionSwitchTab  Action = "switch_tab"
)

// Directive is the structured surface of a backend reply: a JSON object in
// a fenced block at the very end of the text.
type Directive struct {
	Action   Action `json:"action"`
	FileID   string `json:"file_id,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Content  string `json:"content,omitempty"`
}

// leadingBold matches a bold-emphasis span at the start of the reply text,
// interpreted as the responding specialist's label.
var leadingBold = regexp.MustCompile(`^\s*\*\*([^*\n]+)\*\*`)

// Dispatcher applies reply directives to a workspace store.
type Dispatcher struct {
	store  *workspace.Store
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher bound to a store.
func NewDispatcher(store *workspace.Store, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Extract searches text for a trailing fenced JSON directive. On a parsed
// directive it returns the text with the block stripped. When the reply
// ends in a fence whose JSON is malformed, the original text is returned
// intact (block included) and the parse error is reported; the visible
// reply is never left half-stripped. Only the final fence pair is
// considered, so earlier fenced blocks quoted in prose never shadow the
// directive.
func Extract(text string) (cleaned string, d *Directive, err error) {
	trimmed := strings.TrimRight(text, " \t\n")
	if !strings.HasSuffix(trimmed, "```") {
		return text, nil, nil
	}
	body := trimmed[:len(trimmed)-3]
	open := strings.LastIndex(body, "```")
	if open < 0 {
		return text, nil, nil
	}

	inner := strings.TrimSpace(strings.TrimPrefix(body[open+3:], "json"))
	if !strings.HasPrefix(inner, "{") || !strings.HasSuffix(inner, "}") {
		return text, nil, nil
	}

	var directive Directive
	if jsonErr := json.Unmarshal([]byte(inner), &directive); jsonErr != nil {
		return text, nil, jsonErr
	}
	if directive.Action == "" {
		return text, nil, nil
	}
	return strings.TrimRight(body[:open], " \t\n"), &directive, nil
}

// Specialist returns the reply's leading bold-emphasis span, if present.
func Specialist(text string) string {
	m := leadingBold.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Process extracts and applies the directive carried by a reply, returning
// the text to display. Malformed directives are logged and swallowed; the
// reply is still shown to the user.
func (d *Dispatcher) Process(text string) string {
	cleaned, directive, err := Extract(text)
	if err != nil {
		d.logger.Warn("malformed reply directive", "error", err.Error())
		return cleaned
	}
	if directive == nil {
		return cleaned
	}
	if err := d.Apply(directive); err != nil {
		d.logger.Warn("directive dropped", "action", string(directive.Action), "error", err.Error())
	}
	return cleaned
}

// Apply performs the file mutation a directive requests. An update or
// switch whose target resolves to no file is silently dropped.
func (d *Dispatcher) Apply(directive *Directive) error {
	switch directive.Action {
	case ActionCreateFile:
		t, err := file.ParseType(directive.FileType)
		if err != nil {
			t = file.TypeDoc
		}
		created, err := d.store.CreateFile(t, directive.FileName, directive.Content)
		if err != nil {
			return err
		}
		d.logger.Info("assistant created file",
			"file_id", created.ID, "file_name", created.Name, "file_type", string(created.Type))
		return nil

	case ActionUpdateFile:
		target, err := d.resolve(directive)
		if err != nil {
			return err
		}
		if err := d.store.UpdateFileContent(target.ID, directive.Content); err != nil {
			return err
		}
		d.logger.Info("assistant updated file", "file_id", target.ID, "file_name", target.Name)
		return nil

	case ActionSwitchTab:
		target, err := d.resolve(directive)
		if err != nil {
			return err
		}
		return d.store.SwitchTab(target.ID)

	default:
		return domainErrors.NewError(domainErrors.CodeValidation, "unknown directive action: "+string(directive.Action), nil)
	}
}

// resolve finds the directive's target file, matching file_name first and
// falling back to file_id.
func (d *Dispatcher) resolve(directive *Directive) (*file.VirtualFile, error) {
	if directive.FileName != "" {
		if f, err := d.store.FileByName(directive.FileName); err == nil {
			return f, nil
		}
	}
	if directive.FileID != "" {
		if f, err := d.store.File(directive.FileID); err == nil {
			return f, nil
		}
	}
	return nil, domainErrors.ErrFileNotFound
}
