package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// maxResponseSize is the maximum response body size (10 MB).
// Protects against OOM from malformed or huge responses.
const maxResponseSize = 10 * 1024 * 1024

// buildRequest creates a generateContent request from an oracle Request,
// merging request-level overrides with config defaults.
func buildRequest(cfg Config, req oracle.Request) generateRequest {
	gr := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
	}

	if req.System != "" {
		gr.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	switch {
	case req.MaxTokens > 0:
		gr.GenerationConfig.MaxOutputTokens = req.MaxTokens
	case cfg.MaxTokens > 0:
		gr.GenerationConfig.MaxOutputTokens = cfg.MaxTokens
	}

	switch {
	case req.Temperature != nil:
		gr.GenerationConfig.Temperature = req.Temperature
	case cfg.Temperature != nil:
		gr.GenerationConfig.Temperature = cfg.Temperature
	}

	return gr
}

// Complete sends a single-shot generateContent request and returns the
// concatenated text reply.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	cfg, client := o.snapshot()

	payload, err := json.Marshal(buildRequest(cfg, req))
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", cfg.BaseURL, cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", cfg.APIKey)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, mapConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	if httpErr := mapHTTPError(resp.StatusCode, body); httpErr != nil {
		return nil, httpErr
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("gemini: unmarshal response: %w", err)
	}
	if gr.Error != nil {
		return nil, fmt.Errorf("gemini: API error: %s", gr.Error.Message)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates", oracle.ErrEmptyReply)
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return nil, fmt.Errorf("%w: blank completion", oracle.ErrEmptyReply)
	}

	model := gr.ModelVersion
	if model == "" {
		model = cfg.Model
	}

	return &oracle.Reply{
		Text:  out,
		Model: model,
		Usage: oracle.TokenUsage{
			PromptTokens:     gr.UsageMetadata.PromptTokenCount,
			CompletionTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gr.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// HealthCheck validates the oracle is reachable by sending a minimal
// 1-token completion.
func (o *Oracle) HealthCheck(ctx context.Context) error {
	_, err := o.Complete(ctx, oracle.Request{Prompt: "hi", MaxTokens: 1})
	if err != nil && !errors.Is(err, oracle.ErrEmptyReply) {
		return err
	}
	return nil
}
