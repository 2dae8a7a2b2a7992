// Package runner provides the code-runner pipeline: it asks the backend to
// act as an interpreter for a code file and appends the textual result to
// the session's terminal log. No code is ever executed locally.
package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/domain/terminal"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/logging"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/tracing"
)

// interpretPrompt is the fixed instruction wrapped around the code text.
const interpretPrompt = `Act as a code interpreter. Execute the following code mentally and return only what the program would print to stdout/stderr. Do not explain, do not add markdown fences.

%s`

// Config holds the generation and caching parameters for code runs.
type Config struct {
	ModelID     string
	MaxTokens   int
	Temperature float32
	CacheTTL    time.Duration
}

// Service runs code files through the backend for a single session.
type Service struct {
	provider ports.ProviderPort
	sess     *session.Session
	cache    ports.CachePort
	logger   *logging.Logger
	tracer   *tracing.Tracer
	cfg      Config
}

// NewService creates a runner service bound to a session. The cache is
// optional; pass nil to always hit the backend.
func NewService(provider ports.ProviderPort, sess *session.Session, cache ports.CachePort, logger *logging.Logger, tracer *tracing.Tracer, cfg Config) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if tracer == nil {
		tracer = tracing.Default()
	}
	return &Service{
		provider: provider,
		sess:     sess,
		cache:    cache,
		logger:   logger,
		tracer:   tracer,
		cfg:      cfg,
	}, nil
}

// Run sends a code file's content to the backend as a one-shot interpret
// request (no history) and appends the raw returned text to the terminal
// log as an output entry, or the failure message as an error entry. The
// session's single in-flight guard applies here exactly as it does to chat
// sends.
func (s *Service) Run(ctx context.Context, fileID string) (terminal.Entry, error) {
	f, err := s.sess.Store.File(fileID)
	if err != nil {
		return terminal.Entry{}, err
	}
	if f.Type != file.TypeCode {
		return terminal.Entry{}, domainErrors.ErrNotCodeFile
	}
	if strings.TrimSpace(f.Content) == "" {
		return terminal.Entry{}, domainErrors.ErrBlankInput
	}

	if !s.sess.TryAcquire() {
		return terminal.Entry{}, domainErrors.ErrRequestInFlight
	}
	defer s.sess.Release()

	ctx = logging.WithSessionID(ctx, s.sess.ID)
	ctx = logging.WithFileID(ctx, f.ID)
	ctx = logging.WithProvider(ctx, s.provider.Info().Name)
	ctx, span := s.tracer.StartRunSpan(ctx, f.ID, f.Name)
	defer span.End()

	s.sess.Terminal.Append(terminal.KindInfo, fmt.Sprintf("running %s", f.Name))

	key := cacheKey(s.cfg.ModelID, f.Content)
	if s.cache != nil {
		if cached, ok, cerr := s.cache.Get(ctx, key); cerr == nil && ok {
			s.logger.DebugContext(ctx, "run served from cache", "cache_key", key)
			span.SetCacheHit(true)
			return s.sess.Terminal.Append(terminal.KindOutput, cached), nil
		}
	}

	resp, err := s.provider.Generate(ctx, ports.GenerateRequest{
		ModelID: s.cfg.ModelID,
		Messages: []ports.Message{
			{Role: "user", Content: fmt.Sprintf(interpretPrompt, f.Content)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "run request failed", "error", err.Error())
		return s.sess.Terminal.Append(terminal.KindError, err.Error()), nil
	}

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, key, resp.Content, s.cfg.CacheTTL); cerr != nil {
			s.logger.DebugContext(ctx, "run result not cached", "error", cerr.Error())
		}
	}

	span.SetTokens(resp.InputTokens, resp.OutputTokens)
	s.logger.InfoContext(ctx, "run completed",
		"model", resp.ModelUsed,
		"output_tokens", resp.OutputTokens,
	)
	return s.sess.Terminal.Append(terminal.KindOutput, resp.Content), nil
}

// cacheKey hashes the model and code text so unchanged code re-runs hit
// the cache instead of the backend.
func cacheKey(modelID, code string) string {
	h := sha256.Sum256([]byte(modelID + "\x00" + code))
	return "run:" + hex.EncodeToString(h[:])
}
