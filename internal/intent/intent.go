// Package intent implements the two inference passes of the pipeline:
// generation (user text to a proposed operation call) and validation (an
// independent judgment of that proposal). Both passes degrade to well-defined
// fallback values on any oracle failure; neither ever returns an error.
package intent

import "strings"

// FunctionClarify is the sentinel operation name meaning "no confident match".
const FunctionClarify = "clarify"

// Intent is the first-pass guess at which operation and parameters match the
// user's text.
type Intent struct {
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
}

// Clarify returns the degraded-state intent.
func Clarify() Intent {
	return Intent{FunctionName: FunctionClarify, Parameters: map[string]any{}}
}

// IsClarify reports whether the intent is the no-match sentinel.
func (in Intent) IsClarify() bool {
	return in.FunctionName == FunctionClarify
}

// ValidationResult is the second-pass judgment. All four fields are always
// present; a malformed oracle reply yields the zero judgment with
// IsValid=false rather than an error.
type ValidationResult struct {
	IsValid              bool           `json:"is_valid"`
	Feedback             string         `json:"feedback"`
	MissingParameters    []string       `json:"missing_parameters_based_on_intent"`
	SuggestedCorrections map[string]any `json:"suggested_corrections"`
}

// invalidResult returns the degraded-state judgment.
func invalidResult(feedback string) ValidationResult {
	return ValidationResult{
		IsValid:              false,
		Feedback:             feedback,
		MissingParameters:    []string{},
		SuggestedCorrections: map[string]any{},
	}
}

// normalizeIntent converts a decoded oracle object into an Intent,
// degrading to clarify when the shape is unusable.
func normalizeIntent(obj map[string]any) Intent {
	name, _ := obj["function_name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return Clarify()
	}

	params, _ := obj["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return Intent{FunctionName: name, Parameters: params}
}

// normalizeValidation converts a decoded oracle object into a fully
// populated ValidationResult. Field absence and wrong types default rather
// than fail.
func normalizeValidation(obj map[string]any) ValidationResult {
	out := ValidationResult{
		MissingParameters:    []string{},
		SuggestedCorrections: map[string]any{},
	}

	switch v := obj["is_valid"].(type) {
	case bool:
		out.IsValid = v
	case string:
		out.IsValid = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if s, ok := obj["feedback"].(string); ok {
		out.Feedback = strings.TrimSpace(s)
	}

	if list, ok := obj["missing_parameters_based_on_intent"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out.MissingParameters = append(out.MissingParameters, strings.TrimSpace(s))
			}
		}
	}

	if m, ok := obj["suggested_corrections"].(map[string]any); ok {
		out.SuggestedCorrections = m
	}

	return out
}
