package resolve

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/intent"
)

// scriptedSolicitor replays canned answers and records every prompt.
type scriptedSolicitor struct {
	answers []string
	err     error
	calls   []string
}

var _ Solicitor = (*scriptedSolicitor)(nil)

func (s *scriptedSolicitor) Solicit(_ context.Context, op capability.Operation, p capability.ParamSpec) (string, error) {
	s.calls = append(s.calls, op.Name+"/"+p.Name)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func newTestResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return New(opts)
}

func volumeOp() capability.Operation {
	return capability.Operation{
		Name: "create_volume",
		Params: []capability.ParamSpec{
			{Name: "name", Type: capability.TypeString, Required: true},
			{Name: "size_gb", Type: capability.TypeInteger, Required: true},
		},
		Critical: true,
	}
}

func usageOp() capability.Operation {
	return capability.Operation{
		Name: "get_usage",
		Params: []capability.ParamSpec{
			{Name: "identifier", Type: capability.TypeString},
			{Name: "detailed", Type: capability.TypeBoolean, Default: false},
		},
	}
}

func TestResolve_CompleteIntent(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "create_volume",
		Parameters:   map[string]any{"name": "logs-01", "size_gb": "20 GB"},
	}
	call, missing, err := r.Resolve(context.Background(), in, intent.ValidationResult{IsValid: true}, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing != nil {
		t.Fatalf("Resolve() missing = %+v, want nil", missing)
	}
	if call.FunctionName != "create_volume" {
		t.Errorf("FunctionName = %q, want %q", call.FunctionName, "create_volume")
	}
	if got := call.Parameters["name"]; got != "logs-01" {
		t.Errorf("name = %v, want logs-01", got)
	}
	if got := call.Parameters["size_gb"]; got != 20 {
		t.Errorf("size_gb = %v (%T), want 20", got, got)
	}
}

func TestResolve_ProgrammaticMissing(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{}}
	call, missing, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing == nil {
		t.Fatalf("Resolve() = %+v, want missing envelope", call)
	}
	if missing.FunctionName != "create_volume" {
		t.Errorf("FunctionName = %q, want create_volume", missing.FunctionName)
	}
	if len(missing.Params) != 2 {
		t.Fatalf("Params = %v, want name and size_gb", missing.Params)
	}
	if missing.Params[0].Name != "name" || missing.Params[1].Name != "size_gb" {
		t.Errorf("Params order = [%s %s], want [name size_gb]", missing.Params[0].Name, missing.Params[1].Name)
	}
	if len(missing.Provided) != 0 {
		t.Errorf("Provided = %v, want empty", missing.Provided)
	}
}

func TestResolve_ProvidedSurvivesInMissing(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "create_volume",
		Parameters:   map[string]any{"name": "logs-01", "junk": "x"},
	}
	_, missing, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing == nil {
		t.Fatal("want missing envelope for absent size_gb")
	}
	if got := missing.Provided["name"]; got != "logs-01" {
		t.Errorf("Provided[name] = %v, want logs-01", got)
	}
	if _, ok := missing.Provided["junk"]; ok {
		t.Error("Provided includes parameter outside the schema")
	}
	if len(missing.Params) != 1 || missing.Params[0].Name != "size_gb" {
		t.Errorf("Params = %v, want [size_gb]", missing.Params)
	}
}

func TestResolve_PlaceholderCorrectionDiscarded(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	placeholders := []string{
		"Please provide a value",
		"please specify the volume name",
		"<volume name>",
		"  Please Provide the name  ",
	}
	for _, p := range placeholders {
		val := intent.ValidationResult{
			IsValid:              false,
			SuggestedCorrections: map[string]any{"name": p},
		}
		in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{"size_gb": 20}}
		_, missing, err := r.Resolve(context.Background(), in, val, volumeOp(), nil)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", p, err)
		}
		if missing == nil {
			t.Fatalf("Resolve(%q): placeholder masked the gap", p)
		}
		if len(missing.Params) != 1 || missing.Params[0].Name != "name" {
			t.Errorf("Resolve(%q) Params = %v, want [name]", p, missing.Params)
		}
	}
}

func TestResolve_CorrectionOverridesIntent(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "create_volume",
		Parameters:   map[string]any{"name": "logs-01", "size_gb": 10},
	}
	val := intent.ValidationResult{
		IsValid:              true,
		SuggestedCorrections: map[string]any{"size_gb": 30},
	}
	call, _, err := r.Resolve(context.Background(), in, val, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := call.Parameters["size_gb"]; got != 30 {
		t.Errorf("size_gb = %v, want corrected 30", got)
	}
}

func TestResolve_ValidatorNamesOptionalParameter(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	val := intent.ValidationResult{
		IsValid:           false,
		MissingParameters: []string{"identifier", "no_such_param"},
	}
	in := intent.Intent{FunctionName: "get_usage", Parameters: map[string]any{}}
	_, missing, err := r.Resolve(context.Background(), in, val, usageOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing == nil {
		t.Fatal("validator-named optional should surface in programmatic mode")
	}
	if len(missing.Params) != 1 || missing.Params[0].Name != "identifier" {
		t.Errorf("Params = %v, want [identifier] with unknown name dropped", missing.Params)
	}
}

func TestResolve_OptionalDeclinedDuringSolicitation(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	val := intent.ValidationResult{MissingParameters: []string{"identifier"}}
	sol := &scriptedSolicitor{} // empty answers: the caller declines
	in := intent.Intent{FunctionName: "get_usage", Parameters: map[string]any{}}
	call, missing, err := r.Resolve(context.Background(), in, val, usageOp(), sol)
	if err != nil {
		t.Fatalf("declining an optional parameter must not fail: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v, want nil in interactive mode", missing)
	}
	if _, ok := call.Parameters["identifier"]; ok {
		t.Error("declined optional parameter should be omitted")
	}
}

func TestResolve_SolicitorCollectsAnswers(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	sol := &scriptedSolicitor{answers: []string{"logs-01", "20GB"}}
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{}}
	call, missing, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), sol)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v, want nil when a solicitor is present", missing)
	}
	if got := call.Parameters["name"]; got != "logs-01" {
		t.Errorf("name = %v, want logs-01", got)
	}
	if got := call.Parameters["size_gb"]; got != 20 {
		t.Errorf("size_gb = %v, want 20", got)
	}
	want := []string{"create_volume/name", "create_volume/size_gb"}
	if len(sol.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sol.calls, want)
	}
	for i := range want {
		if sol.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, sol.calls[i], want[i])
		}
	}
}

func TestResolve_DefaultSentinel(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	sol := &scriptedSolicitor{answers: []string{"logs-01", "default"}}
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{}}
	call, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), sol)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := call.Parameters["size_gb"]; got != 10 {
		t.Errorf("size_gb = %v, want builtin default 10", got)
	}
}

func TestResolve_DefaultSentinelWithoutConfiguredDefault(t *testing.T) {
	t.Parallel()
	// delete_server has no configured defaults, so "default" re-prompts
	// and the second answer wins.
	op := capability.Operation{
		Name:     "delete_server",
		Params:   []capability.ParamSpec{{Name: "id_or_name", Type: capability.TypeString, Required: true}},
		Critical: true,
	}
	r := newTestResolver(t, Options{})
	sol := &scriptedSolicitor{answers: []string{"default", "web-01"}}
	in := intent.Intent{FunctionName: "delete_server", Parameters: map[string]any{}}
	call, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, op, sol)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := call.Parameters["id_or_name"]; got != "web-01" {
		t.Errorf("id_or_name = %v, want web-01 from the re-prompt", got)
	}
	if len(sol.calls) != 2 {
		t.Errorf("prompt count = %d, want 2", len(sol.calls))
	}
}

func TestResolve_EmptyAnswersFailClosed(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{MaxAttempts: 2})

	sol := &scriptedSolicitor{} // always empty
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{"size_gb": 20}}
	_, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), sol)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("Resolve() error = %v, want ErrMissingRequired", err)
	}
	if len(sol.calls) != 2 {
		t.Errorf("prompt count = %d, want bounded at 2", len(sol.calls))
	}
}

func TestResolve_SolicitationAborted(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	sol := &scriptedSolicitor{err: errors.New("interrupted")}
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{}}
	_, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), sol)
	if !errors.Is(err, ErrSolicitationAborted) {
		t.Fatalf("Resolve() error = %v, want ErrSolicitationAborted", err)
	}
}

func TestResolve_LaterAnswerOverridesCorrection(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	// The correction fills size_gb, the solicitor is asked only for name,
	// and an explicit answer for name wins over the merged state.
	val := intent.ValidationResult{SuggestedCorrections: map[string]any{"size_gb": 40}}
	sol := &scriptedSolicitor{answers: []string{"archive-01"}}
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{}}
	call, _, err := r.Resolve(context.Background(), in, val, volumeOp(), sol)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := call.Parameters["size_gb"]; got != 40 {
		t.Errorf("size_gb = %v, want 40 from correction", got)
	}
	if got := call.Parameters["name"]; got != "archive-01" {
		t.Errorf("name = %v, want archive-01", got)
	}
	if len(sol.calls) != 1 || sol.calls[0] != "create_volume/name" {
		t.Errorf("calls = %v, want only the name prompt", sol.calls)
	}
}

func TestResolve_UnknownParameterDropped(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "create_volume",
		Parameters:   map[string]any{"name": "logs-01", "size_gb": 20, "region": "us-east"},
	}
	call, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{}, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := call.Parameters["region"]; ok {
		t.Error("parameter outside the schema must be dropped")
	}
	if len(call.Parameters) != 2 {
		t.Errorf("Parameters = %v, want exactly name and size_gb", call.Parameters)
	}
}

func TestResolve_OptionalEmptyOmitted(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "get_usage",
		Parameters:   map[string]any{"identifier": "   ", "detailed": "yes"},
	}
	call, missing, err := r.Resolve(context.Background(), in, intent.ValidationResult{IsValid: true}, usageOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v, want nil", missing)
	}
	if _, ok := call.Parameters["identifier"]; ok {
		t.Error("blank optional parameter should be omitted, not sent empty")
	}
	if got := call.Parameters["detailed"]; got != true {
		t.Errorf("detailed = %v, want true", got)
	}
}

func TestResolve_CoercionErrorPropagates(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{})

	in := intent.Intent{
		FunctionName: "create_volume",
		Parameters:   map[string]any{"name": "logs-01", "size_gb": "abc"},
	}
	_, _, err := r.Resolve(context.Background(), in, intent.ValidationResult{IsValid: true}, volumeOp(), nil)
	if !errors.Is(err, ErrInvalidParameterValue) {
		t.Fatalf("Resolve() error = %v, want ErrInvalidParameterValue", err)
	}
}

func TestResolve_ExtraMarkers(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, Options{ExtraMarkers: []string{"tbd"}})

	val := intent.ValidationResult{SuggestedCorrections: map[string]any{"name": "TBD by user"}}
	in := intent.Intent{FunctionName: "create_volume", Parameters: map[string]any{"size_gb": 5}}
	_, missing, err := r.Resolve(context.Background(), in, val, volumeOp(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if missing == nil || len(missing.Params) != 1 || missing.Params[0].Name != "name" {
		t.Fatalf("missing = %+v, want [name] after extra marker rejection", missing)
	}
}

func TestDefaultParams_Merge(t *testing.T) {
	t.Parallel()
	d := BuiltinDefaults().Merge(DefaultParams{
		"create_volume": {"size_gb": 50},
		"delete_server": {"id_or_name": "never"},
	})
	if v, _ := d.Lookup("create_volume", "size_gb"); v != 50 {
		t.Errorf("Lookup(create_volume, size_gb) = %v, want merged 50", v)
	}
	if v, _ := d.Lookup("create_volume", "name"); v != "default-volume" {
		t.Errorf("Lookup(create_volume, name) = %v, want builtin kept", v)
	}
	if v, _ := d.Lookup("delete_server", "id_or_name"); v != "never" {
		t.Errorf("Lookup(delete_server, id_or_name) = %v, want new entry", v)
	}
	if _, ok := d.Lookup("no_such_op", "x"); ok {
		t.Error("Lookup on unknown operation should miss")
	}
}
