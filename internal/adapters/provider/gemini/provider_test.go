package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/domain/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *generateRequest) {
	t.Helper()
	captured := &generateRequest{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(captured)
		handler(w, r)
	})
	p, err := NewProvider(client)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	return p, captured
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := NewProvider(client); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewProvider(nil); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestProviderInfo(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	p, err := NewProvider(client)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Info().Name != "gemini" {
		t.Errorf("expected gemini, got %q", p.Info().Name)
	}
}

func TestGenerateMapsRolesAndConfig(t *testing.T) {
	p, captured := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []candidate{{Content: content{Parts: []part{{Text: "A"}, {Text: "B"}}}}},
			UsageMetadata: &usageMetadata{
				PromptTokenCount:     5,
				CandidatesTokenCount: 7,
			},
		})
	})

	resp, err := p.Generate(context.Background(), ports.GenerateRequest{
		ModelID: "gemini-2.5-flash",
		Messages: []ports.Message{
			{Role: "user", Content: "hi"},
			{Role: "model", Content: "hello"},
			{Role: "assistant", Content: "also model"},
			{Role: "system", Content: "odd role"},
		},
		SystemInstruction: "be helpful",
		ThinkingBudget:    4096,
		MaxTokens:         2048,
		Temperature:       0.7,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	wantRoles := []string{"user", "model", "model", "user"}
	if len(captured.Contents) != len(wantRoles) {
		t.Fatalf("expected %d contents, got %d", len(wantRoles), len(captured.Contents))
	}
	for i, want := range wantRoles {
		if captured.Contents[i].Role != want {
			t.Errorf("content %d: expected role %q, got %q", i, want, captured.Contents[i].Role)
		}
	}

	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Error("system instruction not forwarded")
	}
	if captured.GenerationConfig == nil {
		t.Fatal("generation config not forwarded")
	}
	if captured.GenerationConfig.MaxOutputTokens != 2048 {
		t.Errorf("unexpected max tokens: %d", captured.GenerationConfig.MaxOutputTokens)
	}
	if captured.GenerationConfig.ThinkingConfig == nil || captured.GenerationConfig.ThinkingConfig.ThinkingBudget != 4096 {
		t.Error("thinking budget not forwarded")
	}

	// Candidate parts are concatenated.
	if resp.Content != "AB" {
		t.Errorf("expected concatenated parts, got %q", resp.Content)
	}
	if resp.InputTokens != 5 || resp.OutputTokens != 7 {
		t.Errorf("usage not mapped: %+v", resp)
	}
}

func TestGenerateValidation(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	p, _ := NewProvider(client)

	_, err := p.Generate(context.Background(), ports.GenerateRequest{
		Messages: []ports.Message{{Role: "user", Content: "x"}},
	})
	if errors.CodeOf(err) != errors.CodeValidation {
		t.Errorf("expected VALIDATION for missing model, got %v", err)
	}

	_, err = p.Generate(context.Background(), ports.GenerateRequest{ModelID: "m"})
	if errors.CodeOf(err) != errors.CodeValidation {
		t.Errorf("expected VALIDATION for empty messages, got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	_, err := p.Generate(context.Background(), ports.GenerateRequest{
		ModelID:  "m",
		Messages: []ports.Message{{Role: "user", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
	if errors.CodeOf(err) != errors.CodeProvider {
		t.Errorf("expected PROVIDER code, got %s", errors.CodeOf(err))
	}
}

func TestHealthCheck(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": []map[string]string{{"name": "m"}}})
	})

	status, err := p.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Errorf("expected healthy, got %+v", status)
	}
	if status.LastChecked.IsZero() {
		t.Error("expected LastChecked set")
	}
}

func TestHealthCheckUnhealthy(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad key"}})
	})

	status, err := p.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck must not error: %v", err)
	}
	if status.Healthy {
		t.Error("expected unhealthy status")
	}
	if status.Message == "" {
		t.Error("expected failure detail in message")
	}
}
