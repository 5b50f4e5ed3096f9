// Package envelope defines the caller-facing request/response contract shared
// by the HTTP gateway, the WebSocket channel, the CLI, and the MCP surface.
// Programmatic callers branch on the Status discriminator, never on message text.
package envelope

import "fmt"

// Status discriminates the Response variant.
type Status string

// The five terminal statuses every request resolves to.
const (
	StatusSuccess              Status = "success"
	StatusMissingParameters    Status = "missing_parameters"
	StatusClarificationNeeded  Status = "clarification_needed"
	StatusConfirmationRequired Status = "confirmation_required"
	StatusError                Status = "error"
)

// Request is a single command round trip: free-form text, or a resume
// referencing a confirmation token minted by an earlier response.
type Request struct {
	Text   string  `json:"text"`
	Resume *Resume `json:"resume,omitempty"`
}

// Resume carries the caller's verdict on a pending confirmation.
type Resume struct {
	Token     string `json:"token"`
	Confirmed bool   `json:"confirmed"`
}

// IsResume reports whether the request resolves a pending confirmation
// rather than submitting new text.
func (r Request) IsResume() bool {
	return r.Resume != nil && r.Resume.Token != ""
}

// MissingParam describes one still-unresolved parameter of a
// missing_parameters response, enough for the caller to re-prompt.
type MissingParam struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Doc      string `json:"doc,omitempty"`
}

// Response is the uniform, status-tagged reply produced for every request.
// Only the fields relevant to Status are populated.
type Response struct {
	Status Status `json:"status"`

	// Populated for success.
	Result    any   `json:"result,omitempty"`
	ElapsedMS int64 `json:"elapsed_ms,omitempty"`

	// Populated for missing_parameters.
	FunctionName string         `json:"function_name,omitempty"`
	Provided     map[string]any `json:"provided,omitempty"`
	Missing      []MissingParam `json:"missing,omitempty"`

	// Populated for clarification_needed and error.
	Message string `json:"message,omitempty"`

	// Populated for confirmation_required.
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	Action            string `json:"action,omitempty"`
	ActionDetails     string `json:"action_details,omitempty"`
}

// Success wraps an operation result and its wall-clock duration.
func Success(result any, elapsedMS int64) Response {
	return Response{
		Status:    StatusSuccess,
		Result:    result,
		ElapsedMS: elapsedMS,
	}
}

// MissingParameters reports the parameters still needed before the named
// operation can execute, along with everything resolved so far.
func MissingParameters(functionName string, provided map[string]any, missing []MissingParam) Response {
	return Response{
		Status:       StatusMissingParameters,
		FunctionName: functionName,
		Provided:     provided,
		Missing:      missing,
	}
}

// Clarification asks the caller to rephrase; no operation matched the text
// with confidence.
func Clarification(message string) Response {
	return Response{
		Status:  StatusClarificationNeeded,
		Message: message,
	}
}

// ConfirmationRequired suspends a critical operation behind a token the
// caller must present in a follow-up request.
func ConfirmationRequired(token, action, details string) Response {
	return Response{
		Status:            StatusConfirmationRequired,
		ConfirmationToken: token,
		Action:            action,
		ActionDetails:     details,
	}
}

// Error reports a terminal failure.
func Error(message string) Response {
	return Response{
		Status:  StatusError,
		Message: message,
	}
}

// Errorf reports a terminal failure with fmt-style formatting.
func Errorf(format string, args ...any) Response {
	return Error(fmt.Sprintf(format, args...))
}
