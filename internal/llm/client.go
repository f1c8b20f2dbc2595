// Package llm provides completion API client interfaces and implementations.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited marks upstream rate-limit responses. Wrapped by the
// provider clients; callers check with errors.Is.
var ErrRateLimited = errors.New("llm: upstream rate limited")

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for the completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for completion API providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of completion API provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new completion client for the provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}

// Approximate per-million-token rates for the default model. Policy
// constants; callers must not recompute cost differently.
const (
	inputCostPerMillionUSD  = 0.15
	outputCostPerMillionUSD = 0.60
)

// Cost estimates the monetary cost of a completion call in USD.
func Cost(tokensIn, tokensOut int) float64 {
	return float64(tokensIn)*inputCostPerMillionUSD/1e6 +
		float64(tokensOut)*outputCostPerMillionUSD/1e6
}
