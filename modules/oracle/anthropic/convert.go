package anthropic

import (
	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// convertRequest transforms an oracle Request into Anthropic SDK parameters.
// The system instruction goes into the dedicated System field; the prompt
// becomes a single user turn.
func convertRequest(req oracle.Request, cfg *Config) sdkanthropic.MessageNewParams {
	params := sdkanthropic.MessageNewParams{
		Model: sdkanthropic.Model(cfg.Model),
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(req.Prompt)),
		},
	}

	if req.System != "" {
		params.System = []sdkanthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	// MaxTokens: request-level override takes precedence over config default.
	params.MaxTokens = int64(cfg.MaxTokens)
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	if req.Temperature != nil {
		params.Temperature = sdkanthropic.Float(*req.Temperature)
	}

	return params
}
