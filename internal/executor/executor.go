// Package executor invokes bound operation handlers and reports outcomes
// as response envelopes. It is the last stage of the pipeline: by the time
// a call reaches it, parameters are complete, typed, and confirmed.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// Executor runs resolved calls against the registry's bound handlers.
type Executor struct {
	registry *capability.Registry
	logger   *slog.Logger
}

// New builds an Executor over the given registry.
func New(registry *capability.Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, logger: logger.With("component", "executor")}
}

// Execute invokes the handler for a resolved call. Arguments are filtered
// to the names the operation accepts, so a call submitted directly over
// the API cannot smuggle extra keys past the schema. Handler panics are
// recovered and reported as error envelopes.
func (e *Executor) Execute(ctx context.Context, call resolve.ResolvedCall) envelope.Response {
	op, err := e.registry.Lookup(call.FunctionName)
	if err != nil {
		return envelope.Errorf("unknown operation %q", call.FunctionName)
	}
	handler, err := e.registry.Handler(op.Name)
	if err != nil {
		return envelope.Errorf("operation %q has no backend bound", op.Name)
	}

	args := make(map[string]any, len(call.Parameters))
	for name, value := range call.Parameters {
		if op.Accepts(name) {
			args[name] = value
		}
	}

	start := time.Now()
	result, err := e.invoke(ctx, handler, args)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Error("operation failed", "operation", op.Name, "elapsed", elapsed, "error", err)
		msg := err.Error()
		if isAuthFailure(msg) {
			return envelope.Errorf("%s (authentication failed; check the backend credentials)", msg)
		}
		return envelope.Error(msg)
	}

	e.logger.Info("operation executed", "operation", op.Name, "elapsed", elapsed)
	return envelope.Success(result, elapsed.Milliseconds())
}

// invoke isolates handler panics so one bad backend call cannot take the
// daemon down with it.
func (e *Executor) invoke(ctx context.Context, handler capability.Handler, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, args)
}

// isAuthFailure spots credential problems in backend error text so the
// envelope can carry a hint instead of a bare status code.
func isAuthFailure(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "401") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "authentication")
}
