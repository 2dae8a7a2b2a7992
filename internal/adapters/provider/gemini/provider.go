package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/tracing"
)

// Compile-time check that Provider implements ProviderPort.
var _ ports.ProviderPort = (*Provider)(nil)

// Provider adapts the Gemini client to the ProviderPort interface.
type Provider struct {
	client *Client
	info   ports.ProviderInfo
}

// NewProvider creates a Gemini provider from a client.
func NewProvider(client *Client) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if client.config.APIKey == "" {
		return nil, errors.NewError(errors.CodeConfiguration, "gemini API key is required", nil)
	}
	return &Provider{
		client: client,
		info: ports.ProviderInfo{
			Name:        "gemini",
			Description: "Google Gemini generateContent API",
			BaseURL:     client.config.BaseURL,
		},
	}, nil
}

// Info returns provider metadata.
func (p *Provider) Info() ports.ProviderInfo {
	return p.info
}

// Generate executes a generation request against the Gemini API.
func (p *Provider) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	if req.ModelID == "" {
		return nil, errors.NewError(errors.CodeValidation, "model id is required", nil)
	}
	if len(req.Messages) == 0 {
		return nil, errors.NewError(errors.CodeValidation, "at least one message is required", nil)
	}

	wireReq := &generateRequest{Contents: toContents(req.Messages)}
	if req.SystemInstruction != "" {
		wireReq.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}
	if req.MaxTokens > 0 || req.Temperature > 0 || req.ThinkingBudget > 0 {
		gc := &generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
		if req.ThinkingBudget > 0 {
			gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: req.ThinkingBudget}
		}
		wireReq.GenerationConfig = gc
	}

	ctx, span := tracing.Default().StartProviderSpan(ctx, p.info.Name, req.ModelID)
	defer span.End()

	start := time.Now()
	resp, err := p.client.GenerateContent(ctx, req.ModelID, wireReq)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.NewError(errors.CodeProvider, "empty response from gemini", nil)
	}

	var text strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}

	out := &ports.GenerateResponse{
		Content:   text.String(),
		ModelUsed: req.ModelID,
		Duration:  time.Since(start),
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = resp.UsageMetadata.PromptTokenCount
		out.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	span.SetTokens(out.InputTokens, out.OutputTokens)
	return out, nil
}

// HealthCheck verifies API connectivity and credentials via the model
// listing endpoint, which consumes no tokens.
func (p *Provider) HealthCheck(ctx context.Context) (*ports.HealthStatus, error) {
	start := time.Now()
	_, err := p.client.ListModels(ctx)
	status := &ports.HealthStatus{
		Healthy:     err == nil,
		Latency:     time.Since(start),
		LastChecked: time.Now(),
	}
	if err != nil {
		status.Message = err.Error()
	}
	return status, nil
}

// toContents maps role/text pairs to the Gemini wire format. Roles other
// than "model" are sent as "user".
func toContents(messages []ports.Message) []content {
	out := make([]content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		out = append(out, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	return out
}
