package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// Complete sends a single-shot request to the Anthropic Messages API and
// returns the concatenated text reply.
func (a *Oracle) Complete(ctx context.Context, req oracle.Request) (*oracle.Reply, error) {
	cfg, client := a.snapshot()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	params := convertRequest(req, &cfg)

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return nil, fmt.Errorf("%w: no text blocks", oracle.ErrEmptyReply)
	}

	return &oracle.Reply{
		Text:  out,
		Model: string(msg.Model),
		Usage: oracle.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// HealthCheck validates connectivity and authentication by sending a minimal
// completion request. The Anthropic API has no dedicated health endpoint,
// so a 1-token completion is the cheapest probe available.
func (a *Oracle) HealthCheck(ctx context.Context) error {
	cfg, client := a.snapshot()

	_, err := client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(cfg.Model),
		MaxTokens: 1,
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock("hi")),
		},
	})
	return mapError(err)
}
