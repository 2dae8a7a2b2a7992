// Package assistant provides the chat send pipeline: it ships the active
// chat's history plus a workspace snapshot to the backend and routes the
// reply through the action dispatcher.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/omniscience-ai/omniscience/internal/application/dispatch"
	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	"github.com/omniscience-ai/omniscience/internal/domain/chat"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/logging"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/tracing"
)

// SnippetLimit caps how many leading content characters of each file are
// embedded in the workspace snapshot sent to the backend.
const SnippetLimit = 3000

// preamble is the fixed behavioral prolog placed ahead of the workspace
// snapshot in the system instruction.
const preamble = `You are OmniScience, an AI assistant inside a multi-document workspace.
You can read every open document and you can create or rewrite documents.
To act on the workspace, end your reply with exactly one fenced JSON object:

` + "```json" + `
{"action": "create_file|update_file|switch_tab", "file_id": "...", "file_type": "doc|code|sheet|whiteboard|slide", "file_name": "...", "content": "..."}
` + "```" + `

Rules: the block must be the last thing in the reply; "content" always holds
the complete new file content, never a fragment; sheets are comma-separated
rows, slides are a title line followed by the body. When no workspace action
is needed, reply with plain text only. You may start a reply with a bold
**Specialist** label naming the expertise you are answering with.

The current workspace is:`

// Config holds the generation parameters for assistant requests.
type Config struct {
	ModelID        string
	ThinkingBudget int
	MaxTokens      int
	Temperature    float32
}

// Service drives assistant conversations for a single session.
type Service struct {
	provider   ports.ProviderPort
	sess       *session.Session
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger
	tracer     *tracing.Tracer
	cfg        Config
}

// NewService creates an assistant service bound to a session.
func NewService(provider ports.ProviderPort, sess *session.Session, dispatcher *dispatch.Dispatcher, logger *logging.Logger, tracer *tracing.Tracer, cfg Config) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if tracer == nil {
		tracer = tracing.Default()
	}
	return &Service{
		provider:   provider,
		sess:       sess,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     tracer,
		cfg:        cfg,
	}, nil
}

// SendResult reports the outcome of one send cycle. Backend failures are
// not fatal: they surface as a synthetic model-authored message and set
// Failed, leaving all prior state intact.
type SendResult struct {
	Reply        string
	Specialist   string
	Failed       bool
	ModelUsed    string
	InputTokens  int
	OutputTokens int
}

// Send submits user input on the active chat file. The user message is
// appended and persisted before the network call so the transcript always
// reflects submitted input immediately. A send is rejected when the input
// is blank, no chat file is active, or another backend request is in
// flight.
func (s *Service) Send(ctx context.Context, input string) (*SendResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domainErrors.ErrBlankInput
	}

	chatFile, err := s.sess.Store.ActiveChat()
	if err != nil {
		return nil, err
	}

	if !s.sess.TryAcquire() {
		return nil, domainErrors.ErrRequestInFlight
	}
	defer s.sess.Release()

	transcript, err := chat.Decode(chatFile.Content)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeValidation, "decode chat history", err)
	}

	// Optimistic append: the user's message is visible before the call
	// settles.
	transcript.Append(chat.NewUserMessage(input))
	if err := s.persist(chatFile.ID, transcript); err != nil {
		return nil, err
	}

	ctx = logging.WithSessionID(ctx, s.sess.ID)
	ctx = logging.WithProvider(ctx, s.provider.Info().Name)
	ctx, span := s.tracer.StartSendSpan(ctx, chatFile.ID, transcript.Len())
	defer span.End()

	req := ports.GenerateRequest{
		ModelID:           s.cfg.ModelID,
		Messages:          historyMessages(transcript),
		SystemInstruction: s.systemInstruction(),
		ThinkingBudget:    s.cfg.ThinkingBudget,
		MaxTokens:         s.cfg.MaxTokens,
		Temperature:       s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "assistant request failed", "error", err.Error())
		errText := fmt.Sprintf("Sorry, I could not reach the backend: %v", err)
		transcript.Append(chat.NewModelMessage(errText, ""))
		if perr := s.persist(chatFile.ID, transcript); perr != nil {
			return nil, perr
		}
		return &SendResult{Reply: errText, Failed: true}, nil
	}

	specialist := dispatch.Specialist(resp.Content)
	if specialist != "" {
		s.sess.SetSpecialist(specialist)
	}
	cleaned := s.dispatcher.Process(resp.Content)

	transcript.Append(chat.NewModelMessage(cleaned, specialist))
	if err := s.persist(chatFile.ID, transcript); err != nil {
		return nil, err
	}

	span.SetTokens(resp.InputTokens, resp.OutputTokens)
	s.logger.InfoContext(ctx, "assistant reply appended",
		"file_id", chatFile.ID,
		"model", resp.ModelUsed,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)

	return &SendResult{
		Reply:        cleaned,
		Specialist:   specialist,
		ModelUsed:    resp.ModelUsed,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// persist re-serializes the transcript into the chat file.
func (s *Service) persist(fileID string, t *chat.Transcript) error {
	content, err := t.Encode()
	if err != nil {
		return err
	}
	return s.sess.Store.UpdateFileContent(fileID, content)
}

// systemInstruction embeds the workspace snapshot into the behavioral
// prolog: for every file its id, name, type, and up to SnippetLimit leading
// content characters.
func (s *Service) systemInstruction() string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n")
	for _, f := range s.sess.Store.Files() {
		fmt.Fprintf(&b, "\n--- file id=%s name=%q type=%s ---\n", f.ID, f.Name, f.Type)
		b.WriteString(f.Snippet(SnippetLimit))
		b.WriteString("\n")
	}
	return b.String()
}

// historyMessages maps the transcript to ordered role/text pairs.
func historyMessages(t *chat.Transcript) []ports.Message {
	msgs := t.Messages()
	out := make([]ports.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ports.Message{Role: string(m.Role), Content: m.Text})
	}
	return out
}

// EnsureChat returns the active chat file, creating and activating one when
// the workspace has none.
func EnsureChat(sess *session.Session) (*file.VirtualFile, error) {
	if f, err := sess.Store.ActiveChat(); err == nil {
		return f, nil
	}
	for _, f := range sess.Store.Files() {
		if f.Type == file.TypeChat {
			if err := sess.Store.SwitchTab(f.ID); err != nil {
				return nil, err
			}
			return f, nil
		}
	}
	return sess.Store.CreateFile(file.TypeChat, "", "")
}
