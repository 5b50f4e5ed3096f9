// Package oracle defines the boundary to the natural-language inference
// service. The pipeline treats the oracle as opaque: a text prompt goes in,
// free text expected to contain a JSON object comes out, and DecodeObject is
// the single parse boundary both inference passes share.
package oracle

import "context"

// Oracle is the interface for the inference service. Concrete
// implementations live under modules/oracle and also implement core.Module
// for lifecycle management.
type Oracle interface {
	// Complete sends a single-shot prompt and returns the full reply.
	Complete(ctx context.Context, req Request) (*Reply, error)

	// Name returns the provider identifier, e.g. "gemini".
	Name() string
}

// HealthChecker is an optional interface oracles may implement to support
// active probing from the readiness endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Request is one blocking prompt round trip. The pipeline issues exactly
// two per command: intent generation and intent validation.
type Request struct {
	// System is the instruction preamble, may be empty for providers
	// without a distinct system channel.
	System string

	// Prompt is the user-turn text.
	Prompt string

	// MaxTokens caps the reply length. Zero means provider default.
	MaxTokens int

	// Temperature overrides the sampling temperature when non-nil.
	// Both passes run cold (0) for reproducible extraction.
	Temperature *float64
}

// Reply is the raw outcome of a completion.
type Reply struct {
	Text  string
	Model string
	Usage TokenUsage
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
