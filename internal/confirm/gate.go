package confirm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
)

// Prompter asks the caller to approve a critical call and blocks for the
// answer. The CLI implements it with a terminal form; tests script it.
type Prompter interface {
	Prompt(ctx context.Context, action, details string) (bool, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, action, details string) (bool, error)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(ctx context.Context, action, details string) (bool, error) {
	return f(ctx, action, details)
}

// Gate is the consent check in front of critical operations.
type Gate struct {
	store  *Store
	logger *slog.Logger
}

// NewGate builds a Gate over the given token store.
func NewGate(store *Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, logger: logger.With("component", "confirm.gate")}
}

// Confirm runs the synchronous flow: render the call, prompt, and return
// nil only on an explicit yes. A declined prompt is ErrDeclined.
func (g *Gate) Confirm(ctx context.Context, p Prompter, op capability.Operation, call resolve.ResolvedCall) error {
	details := op.Describe(call.Parameters)
	approved, err := p.Prompt(ctx, call.FunctionName, details)
	if err != nil {
		return fmt.Errorf("confirmation prompt: %w", err)
	}
	if !approved {
		g.logger.Info("critical operation declined", "action", call.FunctionName)
		return ErrDeclined
	}
	g.logger.Info("critical operation confirmed", "action", call.FunctionName)
	return nil
}

// Defer parks the call for a later resume and returns the single-use token
// plus the human-readable rendering of what will run.
func (g *Gate) Defer(op capability.Operation, call resolve.ResolvedCall) (token, details string, err error) {
	details = op.Describe(call.Parameters)
	token, err = g.store.Put(call, details)
	if err != nil {
		g.logger.Warn("cannot park critical operation", "action", call.FunctionName, "error", err)
		return "", "", err
	}
	g.logger.Info("critical operation parked", "action", call.FunctionName, "pending", g.store.Len())
	return token, details, nil
}

// Resume redeems a deferred token. The token is consumed whether the
// caller confirmed or declined; a decline returns ErrDeclined.
func (g *Gate) Resume(token string, confirmed bool) (resolve.ResolvedCall, string, error) {
	p, err := g.store.Take(token)
	if err != nil {
		return resolve.ResolvedCall{}, "", err
	}
	if !confirmed {
		g.logger.Info("deferred confirmation declined", "action", p.Call.FunctionName)
		return resolve.ResolvedCall{}, "", ErrDeclined
	}
	return p.Call, p.Details, nil
}
