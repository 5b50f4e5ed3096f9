package intent

import (
	"context"
	"log/slog"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// Validator issues the second, independent oracle pass judging a proposal.
// Splitting generation and validation catches single-pass hallucinations:
// a plausible-looking parameter value that is not grounded in the text.
type Validator struct {
	oracle oracle.Oracle
	logger *slog.Logger
}

// NewValidator builds a validator over the given oracle.
func NewValidator(o oracle.Oracle, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		oracle: o,
		logger: logger.With("component", "intent.validator"),
	}
}

// Validate judges whether the intent reflects the user's text. It never
// returns an error: oracle failures and malformed replies yield
// IsValid=false with empty correction sets.
func (v *Validator) Validate(ctx context.Context, userText string, in Intent, op capability.Operation) ValidationResult {
	reply, err := v.oracle.Complete(ctx, oracle.Request{
		Prompt:      validationPrompt(userText, in, op),
		MaxTokens:   validateMaxTokens,
		Temperature: &coldTemperature,
	})
	if err != nil {
		v.logger.Warn("validation call failed, treating proposal as unvalidated", "error", err)
		return invalidResult("")
	}

	obj, err := oracle.DecodeObject(reply.Text)
	if err != nil {
		v.logger.Warn("validation reply undecodable, treating proposal as unvalidated", "error", err)
		return invalidResult("")
	}

	result := normalizeValidation(obj)
	v.logger.Debug("intent validated",
		"is_valid", result.IsValid,
		"missing", len(result.MissingParameters),
		"corrections", len(result.SuggestedCorrections))
	return result
}
