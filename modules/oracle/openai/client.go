package openai

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

// buildChatRequest creates an OpenAI API chat request from an oracle
// Request, merging request-level overrides with config defaults.
func buildChatRequest(cfg Config, req oracle.Request) chatRequest {
	cr := chatRequest{
		Model: cfg.Model,
	}

	if req.System != "" {
		cr.Messages = append(cr.Messages, chatMessage{Role: "system", Content: req.System})
	}
	cr.Messages = append(cr.Messages, chatMessage{Role: "user", Content: req.Prompt})

	// Request-level overrides take precedence over config defaults.
	switch {
	case req.MaxTokens > 0:
		cr.MaxTokens = req.MaxTokens
	case cfg.MaxTokens > 0:
		cr.MaxTokens = cfg.MaxTokens
	}

	switch {
	case req.Temperature != nil:
		cr.Temperature = req.Temperature
	case cfg.Temperature != nil:
		cr.Temperature = cfg.Temperature
	}

	return cr
}

// newHTTPRequest creates an authenticated HTTP request for the OpenAI API.
func newHTTPRequest(ctx context.Context, cfg Config, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := cfg.BaseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	return httpReq, nil
}

// doPost sends a POST request and returns the response body and status code.
// The response body is limited to maxResponseSize bytes.
func doPost(ctx context.Context, cfg Config, client *http.Client, path string, payload any) ([]byte, int, error) {
	httpReq, err := newHTTPRequest(ctx, cfg, path, payload)
	if err != nil {
		return nil, 0, err
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, 0, mapConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("openai: read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Complete sends a single-shot completion request and returns the full reply.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	cfg, client := o.snapshot()

	body, statusCode, err := doPost(ctx, cfg, client, "/chat/completions", buildChatRequest(cfg, req))
	if err != nil {
		return nil, err
	}

	if httpErr := mapHTTPError(statusCode, body); httpErr != nil {
		return nil, httpErr
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", oracle.ErrEmptyReply)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: blank completion", oracle.ErrEmptyReply)
	}

	model := resp.Model
	if model == "" {
		model = cfg.Model
	}

	return &oracle.Reply{
		Text:  text,
		Model: model,
		Usage: oracle.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// HealthCheck validates the oracle is reachable by sending a minimal
// 1-token completion. This tests the full path: authentication, model
// access, and quota.
func (o *Oracle) HealthCheck(ctx context.Context) error {
	_, err := o.Complete(ctx, oracle.Request{Prompt: "hi", MaxTokens: 1})
	if err != nil && !errors.Is(err, oracle.ErrEmptyReply) {
		return err
	}
	return nil
}
