// Package pipeline chains the command-resolution stages: intent generation,
// validation, parameter resolution, the confirmation gate, and execution.
// Every request ends in exactly one response envelope; stage failures
// degrade into envelopes, never panics or ambiguous state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/confirm"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/executor"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/intent"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

const tracerName = "github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"

// clarifyMessage is returned when neither the oracle nor the deterministic
// fallback could map the text to an operation.
const clarifyMessage = `I could not map that to an operation. Name the action and the resource, for example "list servers" or "create a volume named logs-01 with 20 GB".`

// Options wires a Pipeline. Registry through Executor are required;
// Tracer and Metrics default to no-ops.
type Options struct {
	Registry  *capability.Registry
	Generator *intent.Generator
	Validator *intent.Validator
	Resolver  *resolve.Resolver
	Gate      *confirm.Gate
	Executor  *executor.Executor
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Metrics   *Metrics
}

// HandleOptions select the interaction mode for one request. A nil
// Solicitor returns missing-parameter envelopes instead of prompting; a
// nil Prompter defers critical operations behind a token instead of
// blocking.
type HandleOptions struct {
	Solicitor resolve.Solicitor
	Prompter  confirm.Prompter
}

// Pipeline turns free-form text into exactly one response envelope.
type Pipeline struct {
	registry  *capability.Registry
	generator *intent.Generator
	validator *intent.Validator
	resolver  *resolve.Resolver
	gate      *confirm.Gate
	executor  *executor.Executor
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics
}

// New builds a Pipeline, rejecting incomplete wiring.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("pipeline: registry is required")
	case opts.Generator == nil:
		return nil, fmt.Errorf("pipeline: generator is required")
	case opts.Validator == nil:
		return nil, fmt.Errorf("pipeline: validator is required")
	case opts.Resolver == nil:
		return nil, fmt.Errorf("pipeline: resolver is required")
	case opts.Gate == nil:
		return nil, fmt.Errorf("pipeline: confirmation gate is required")
	case opts.Executor == nil:
		return nil, fmt.Errorf("pipeline: executor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Pipeline{
		registry:  opts.Registry,
		generator: opts.Generator,
		validator: opts.Validator,
		resolver:  opts.Resolver,
		gate:      opts.Gate,
		executor:  opts.Executor,
		logger:    logger.With("component", "pipeline"),
		tracer:    tracer,
		metrics:   opts.Metrics,
	}, nil
}

// Handle processes one request end to end and always returns an envelope.
func (p *Pipeline) Handle(ctx context.Context, req envelope.Request, opts HandleOptions) envelope.Response {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "pipeline.handle",
		trace.WithAttributes(attribute.Bool("request.resume", req.IsResume())))
	defer span.End()

	resp := p.handle(ctx, req, opts)

	elapsed := time.Since(start)
	span.SetAttributes(attribute.String("response.status", string(resp.Status)))
	if resp.Status == envelope.StatusError {
		span.SetStatus(codes.Error, resp.Message)
	}
	p.metrics.ObserveCommand(resp.Status, elapsed)
	p.logger.Info("command handled", "status", resp.Status, "elapsed", elapsed)
	return resp
}

func (p *Pipeline) handle(ctx context.Context, req envelope.Request, opts HandleOptions) envelope.Response {
	if req.IsResume() {
		return p.resume(ctx, req.Resume)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return envelope.Clarification(clarifyMessage)
	}

	in := p.generate(ctx, text)
	if in.IsClarify() {
		return envelope.Clarification(clarifyMessage)
	}

	op, err := p.registry.Lookup(in.FunctionName)
	if err != nil {
		p.logger.Warn("intent named unknown operation", "operation", in.FunctionName)
		return envelope.Errorf("unknown operation %q", in.FunctionName)
	}

	val := p.validate(ctx, text, in, op)

	call, missing, err := p.resolve(ctx, in, val, op, opts.Solicitor)
	if err != nil {
		return envelope.Error(err.Error())
	}
	if missing != nil {
		return missingEnvelope(missing)
	}

	if op.Critical {
		resp, proceed := p.confirmStage(ctx, opts.Prompter, op, call)
		if !proceed {
			return resp
		}
	}
	return p.execute(ctx, call)
}

// resume redeems a deferred confirmation token and, on an affirmative
// answer, executes the parked call.
func (p *Pipeline) resume(ctx context.Context, r *envelope.Resume) envelope.Response {
	ctx, span := p.tracer.Start(ctx, "pipeline.resume",
		trace.WithAttributes(attribute.Bool("resume.confirmed", r.Confirmed)))
	defer span.End()

	call, details, err := p.gate.Resume(r.Token, r.Confirmed)
	if err != nil {
		span.RecordError(err)
		return envelope.Error(err.Error())
	}
	p.logger.Info("resuming confirmed operation", "action", call.FunctionName, "details", details)
	return p.execute(ctx, call)
}

func (p *Pipeline) generate(ctx context.Context, text string) intent.Intent {
	ctx, span := p.tracer.Start(ctx, "pipeline.generate")
	defer span.End()

	in := p.generator.Generate(ctx, text)
	span.SetAttributes(attribute.String("intent.function", in.FunctionName))
	return in
}

func (p *Pipeline) validate(ctx context.Context, text string, in intent.Intent, op capability.Operation) intent.ValidationResult {
	ctx, span := p.tracer.Start(ctx, "pipeline.validate",
		trace.WithAttributes(attribute.String("operation", op.Name)))
	defer span.End()

	val := p.validator.Validate(ctx, text, in, op)
	span.SetAttributes(
		attribute.Bool("validation.is_valid", val.IsValid),
		attribute.Int("validation.missing", len(val.MissingParameters)),
		attribute.Int("validation.corrections", len(val.SuggestedCorrections)),
	)
	return val
}

func (p *Pipeline) resolve(ctx context.Context, in intent.Intent, val intent.ValidationResult, op capability.Operation, sol resolve.Solicitor) (resolve.ResolvedCall, *resolve.Missing, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.resolve",
		trace.WithAttributes(attribute.String("operation", op.Name)))
	defer span.End()

	call, missing, err := p.resolver.Resolve(ctx, in, val, op, sol)
	if err != nil {
		span.RecordError(err)
	}
	return call, missing, err
}

// confirmStage runs the consent check for a critical call. The bool is
// true when execution may proceed; otherwise the returned envelope is
// final (a parked token or a decline).
func (p *Pipeline) confirmStage(ctx context.Context, prompter confirm.Prompter, op capability.Operation, call resolve.ResolvedCall) (envelope.Response, bool) {
	ctx, span := p.tracer.Start(ctx, "pipeline.confirm",
		trace.WithAttributes(attribute.String("operation", op.Name)))
	defer span.End()

	if prompter == nil {
		token, details, err := p.gate.Defer(op, call)
		if err != nil {
			span.RecordError(err)
			return envelope.Error(err.Error()), false
		}
		span.SetAttributes(attribute.Bool("confirm.deferred", true))
		return envelope.ConfirmationRequired(token, call.FunctionName, details), false
	}

	if err := p.gate.Confirm(ctx, prompter, op, call); err != nil {
		span.RecordError(err)
		return envelope.Error(err.Error()), false
	}
	return envelope.Response{}, true
}

func (p *Pipeline) execute(ctx context.Context, call resolve.ResolvedCall) envelope.Response {
	ctx, span := p.tracer.Start(ctx, "pipeline.execute",
		trace.WithAttributes(attribute.String("operation", call.FunctionName)))
	defer span.End()

	return p.executor.Execute(ctx, call)
}

func missingEnvelope(m *resolve.Missing) envelope.Response {
	params := make([]envelope.MissingParam, len(m.Params))
	for i, ps := range m.Params {
		params[i] = envelope.MissingParam{
			Name:     ps.Name,
			Type:     string(ps.Type),
			Required: ps.Required,
			Doc:      ps.Doc,
		}
	}
	return envelope.MissingParameters(m.FunctionName, m.Provided, params)
}
