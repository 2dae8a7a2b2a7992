// Package ports defines the interfaces between the application layer and
// its adapters.
package ports

import (
	"context"
	"time"
)

// ProviderInfo contains provider metadata.
type ProviderInfo struct {
	Name        string
	Description string
	BaseURL     string
}

// Message is a single role/text pair sent to the backend.
type Message struct {
	Role    string // user, model
	Content string
}

// GenerateRequest is the input for a backend generation call.
type GenerateRequest struct {
	ModelID           string
	Messages          []Message
	SystemInstruction string
	ThinkingBudget    int
	MaxTokens         int
	Temperature       float32
}

// GenerateResponse is the output from a backend generation call.
type GenerateResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	ModelUsed    string
	Duration     time.Duration
}

// HealthStatus for provider health checks.
type HealthStatus struct {
	Healthy     bool
	Message     string
	Latency     time.Duration
	LastChecked time.Time
}

// ProviderPort is the interface the assistant and code runner use to reach
// the generative backend.
type ProviderPort interface {
	Info() ProviderInfo
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}
