package intent

import (
	"context"
	"log/slog"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// Inference passes run cold and short: the replies are small JSON objects.
const (
	generateMaxTokens = 1024
	validateMaxTokens = 1024
)

var coldTemperature = 0.0

// Generator produces the first-pass Intent from user text.
type Generator struct {
	oracle oracle.Oracle
	logger *slog.Logger
	system string
}

// NewGenerator builds a generator over the given oracle and registry. The
// prompt table is rendered once; descriptors never change at runtime.
func NewGenerator(o oracle.Oracle, reg *capability.Registry, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		oracle: o,
		logger: logger.With("component", "intent.generator"),
		system: generationSystemPrompt(reg.Operations()),
	}
}

// Generate maps user text to an Intent. It never returns an error: oracle
// failures and malformed replies consult the deterministic fallback first,
// then degrade to the clarify sentinel.
func (g *Generator) Generate(ctx context.Context, userText string) Intent {
	reply, err := g.oracle.Complete(ctx, oracle.Request{
		System:      g.system,
		Prompt:      userText,
		MaxTokens:   generateMaxTokens,
		Temperature: &coldTemperature,
	})
	if err != nil {
		g.logger.Warn("generation call failed, using fallback", "error", err)
		return g.fallback(userText)
	}

	obj, err := oracle.DecodeObject(reply.Text)
	if err != nil {
		g.logger.Warn("generation reply undecodable, using fallback", "error", err)
		return g.fallback(userText)
	}

	in := normalizeIntent(obj)
	g.logger.Debug("intent generated", "function", in.FunctionName, "parameters", len(in.Parameters))
	return in
}

func (g *Generator) fallback(userText string) Intent {
	if in, ok := FallbackIntent(userText); ok {
		g.logger.Info("deterministic fallback matched", "function", in.FunctionName)
		return in
	}
	return Clarify()
}
