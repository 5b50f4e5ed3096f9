// Package resolve merges the two inference passes into a final, type-correct
// argument set. The core is mode-agnostic: interactive callers pass a
// Solicitor and block on prompts, programmatic callers pass nil and receive
// a typed Missing result instead.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/intent"
)

// defaultMaxAttempts bounds re-prompting per parameter before the resolver
// fails closed.
const defaultMaxAttempts = 3

// builtinMarkers are placeholder prefixes a suggested correction must not
// begin with. A correction like "Please provide a value" is the validator
// asking for input, not supplying it.
var builtinMarkers = []string{"please provide", "please specify"}

// ResolvedCall is an intent after corrections, defaults, solicitation, and
// coercion. On the success path every required ParamSpec is satisfied.
type ResolvedCall struct {
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
}

// Missing is the programmatic-mode outcome when parameters remain
// unresolved: the operation, everything gathered so far, and the gap.
type Missing struct {
	FunctionName string
	Provided     map[string]any
	Params       []capability.ParamSpec
}

// Options configures a Resolver.
type Options struct {
	Logger *slog.Logger

	// Defaults is the per-operation default map consulted on the
	// DefaultAnswer sentinel. Nil means BuiltinDefaults().
	Defaults DefaultParams

	// ExtraMarkers adds placeholder prefixes to the built-in set.
	ExtraMarkers []string

	// MaxAttempts bounds re-prompting per parameter. Zero means the
	// package default.
	MaxAttempts int
}

// Resolver computes the final argument set for one operation call.
type Resolver struct {
	logger      *slog.Logger
	defaults    DefaultParams
	markers     []string
	maxAttempts int
}

// New builds a Resolver.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaults := opts.Defaults
	if defaults == nil {
		defaults = BuiltinDefaults()
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	markers := make([]string, 0, len(builtinMarkers)+len(opts.ExtraMarkers))
	markers = append(markers, builtinMarkers...)
	for _, m := range opts.ExtraMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return &Resolver{
		logger:      logger.With("component", "resolver"),
		defaults:    defaults,
		markers:     markers,
		maxAttempts: attempts,
	}
}

// Resolve merges intent parameters with validator corrections, computes the
// missing-parameter gap, optionally solicits the caller, and coerces types.
// Exactly one of the three results is meaningful: a complete ResolvedCall,
// a Missing gap (programmatic mode only), or an error.
func (r *Resolver) Resolve(
	ctx context.Context,
	in intent.Intent,
	val intent.ValidationResult,
	op capability.Operation,
	sol Solicitor,
) (ResolvedCall, *Missing, error) {
	merged := make(map[string]any, len(in.Parameters))
	for name, value := range in.Parameters {
		merged[name] = value
	}

	// Overlay corrections, discarding placeholder values: a correction that
	// itself asks for input must not mask a real gap.
	for name, value := range val.SuggestedCorrections {
		if r.isPlaceholder(value) {
			r.logger.Debug("discarding placeholder correction", "operation", op.Name, "parameter", name, "value", value)
			continue
		}
		merged[name] = value
	}

	missing := r.missingParams(op, val, merged)

	if len(missing) > 0 {
		if sol == nil {
			return ResolvedCall{}, &Missing{
				FunctionName: op.Name,
				Provided:     providedParams(op, merged),
				Params:       missing,
			}, nil
		}
		if err := r.solicit(ctx, sol, op, missing, merged); err != nil {
			return ResolvedCall{}, nil, err
		}
		// Fail closed: nothing may execute while a required value is
		// still absent after collection. Validator-named optionals the
		// caller declined to answer are dropped, not fatal.
		if still := requiredGap(op, merged); len(still) > 0 {
			return ResolvedCall{}, nil, fmt.Errorf("%w: %s", ErrMissingRequired, paramNames(still))
		}
	}

	params, err := r.coerceAll(op, merged)
	if err != nil {
		return ResolvedCall{}, nil, err
	}
	return ResolvedCall{FunctionName: op.Name, Parameters: params}, nil, nil
}

// missingParams computes the solicitation gap: every required ParamSpec
// absent or empty in merged, plus validator-named parameters that are valid
// for the operation and not yet present. The validator's judgment can
// surface soft requirements the schema marks optional.
func (r *Resolver) missingParams(op capability.Operation, val intent.ValidationResult, merged map[string]any) []capability.ParamSpec {
	var missing []capability.ParamSpec
	seen := make(map[string]bool)

	for _, p := range op.Params {
		if p.Required && isAbsent(merged, p.Name) {
			missing = append(missing, p)
			seen[p.Name] = true
		}
	}

	for _, name := range val.MissingParameters {
		if seen[name] {
			continue
		}
		p, ok := op.Param(name)
		if !ok {
			r.logger.Debug("validator named unknown parameter", "operation", op.Name, "parameter", name)
			continue
		}
		if isAbsent(merged, name) {
			missing = append(missing, p)
			seen[name] = true
		}
	}
	return missing
}

// solicit collects each missing parameter from the caller, re-prompting on
// empty answers and substituting the configured default on the sentinel.
// A parameter still unanswered after maxAttempts fails closed.
func (r *Resolver) solicit(ctx context.Context, sol Solicitor, op capability.Operation, missing []capability.ParamSpec, merged map[string]any) error {
	for _, p := range missing {
		answered := false
		for attempt := 0; attempt < r.maxAttempts; attempt++ {
			answer, err := sol.Solicit(ctx, op, p)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrSolicitationAborted, p.Name, err)
			}
			answer = strings.TrimSpace(answer)
			if answer == "" {
				continue
			}
			if strings.EqualFold(answer, DefaultAnswer) {
				value, ok := r.defaults.Lookup(op.Name, p.Name)
				if !ok {
					r.logger.Info("no configured default", "operation", op.Name, "parameter", p.Name)
					continue
				}
				merged[p.Name] = value
				answered = true
				break
			}
			// An explicit answer wins over any earlier correction.
			merged[p.Name] = answer
			answered = true
			break
		}
		if !answered && p.Required {
			return fmt.Errorf("%w: %s", ErrMissingRequired, p.Name)
		}
	}
	return nil
}

// coerceAll applies per-spec type coercion to every merged parameter.
// Unknown names are dropped with a warning, never forwarded. Optional
// parameters that resolved to nothing are omitted entirely.
func (r *Resolver) coerceAll(op capability.Operation, merged map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(merged))
	for name, value := range merged {
		spec, ok := op.Param(name)
		if !ok {
			r.logger.Warn("dropping parameter not in operation schema", "operation", op.Name, "parameter", name)
			continue
		}
		if value == nil || isEmptyString(value) {
			// Only optional parameters can reach coercion empty; they
			// are omitted rather than sent as null.
			continue
		}
		coerced, err := Coerce(spec, value)
		if err != nil {
			return nil, err
		}
		out[name] = coerced
	}
	return out, nil
}

func (r *Resolver) isPlaceholder(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(s))
	for _, marker := range r.markers {
		if strings.HasPrefix(t, marker) {
			return true
		}
	}
	return strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">")
}

// requiredGap returns the required specs still unsatisfied in merged.
func requiredGap(op capability.Operation, merged map[string]any) []capability.ParamSpec {
	var gap []capability.ParamSpec
	for _, p := range op.Params {
		if p.Required && isAbsent(merged, p.Name) {
			gap = append(gap, p)
		}
	}
	return gap
}

// isAbsent reports whether a parameter has no usable value yet: absent,
// null, or an all-whitespace string.
func isAbsent(merged map[string]any, name string) bool {
	value, ok := merged[name]
	if !ok || value == nil {
		return true
	}
	return isEmptyString(value)
}

func isEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// providedParams filters merged values down to names the operation accepts,
// for the missing_parameters envelope.
func providedParams(op capability.Operation, merged map[string]any) map[string]any {
	out := make(map[string]any)
	for name, value := range merged {
		if op.Accepts(name) && !isAbsent(merged, name) {
			out[name] = value
		}
	}
	return out
}

func paramNames(specs []capability.ParamSpec) string {
	names := make([]string, len(specs))
	for i, p := range specs {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
