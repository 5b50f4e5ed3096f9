package resolve

import (
	"context"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
)

// DefaultAnswer is the sentinel a caller types to request the configured
// per-operation default for the solicited parameter.
const DefaultAnswer = "default"

// Solicitor supplies values for missing parameters in interactive mode.
// The CLI implements it with terminal forms; tests script it. A nil
// Solicitor puts the resolver in programmatic mode.
type Solicitor interface {
	// Solicit asks the caller for the named parameter and returns the raw
	// answer. An empty answer triggers a re-prompt; the DefaultAnswer
	// sentinel substitutes the configured default when one exists.
	Solicit(ctx context.Context, op capability.Operation, param capability.ParamSpec) (string, error)
}

// SolicitorFunc adapts a function to the Solicitor interface.
type SolicitorFunc func(ctx context.Context, op capability.Operation, param capability.ParamSpec) (string, error)

// Solicit implements Solicitor.
func (f SolicitorFunc) Solicit(ctx context.Context, op capability.Operation, param capability.ParamSpec) (string, error) {
	return f(ctx, op, param)
}
