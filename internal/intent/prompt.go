package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
)

// renderOperation renders one descriptor line for the prompt table, e.g.
//
//	create_volume(name: string (required), size_gb: integer (required)) - Create a new block storage volume.
func renderOperation(op capability.Operation) string {
	var b strings.Builder
	b.WriteString(op.Name)
	b.WriteByte('(')
	for i, p := range op.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Name, p.Type)
		switch {
		case p.Required:
			b.WriteString(" (required)")
		case p.Default != nil:
			fmt.Fprintf(&b, " (default: %v)", p.Default)
		}
	}
	b.WriteString(") - ")
	b.WriteString(op.Doc)
	return b.String()
}

// renderTable renders the full operation table, one line per operation.
func renderTable(ops []capability.Operation) string {
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, "- "+renderOperation(op))
	}
	return strings.Join(lines, "\n")
}

// renderRequiredHints lists each operation's required parameters so the
// model does not silently drop them.
func renderRequiredHints(ops []capability.Operation) string {
	var lines []string
	for _, op := range ops {
		req := op.RequiredParams()
		if len(req) == 0 {
			continue
		}
		names := make([]string, len(req))
		for i, p := range req {
			names[i] = p.Name
		}
		lines = append(lines, fmt.Sprintf("- %s requires: %s", op.Name, strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}

// generationSystemPrompt builds the pass-1 instruction preamble from the
// operation table. Built once per generator; the registry is immutable.
func generationSystemPrompt(ops []capability.Operation) string {
	return fmt.Sprintf(`You are the command parser for a cloud infrastructure assistant.
Map the user's request to exactly one of these operations:

%s

Required parameters per operation:
%s

Rules:
- Respond with a single JSON object: {"function_name": "<operation>", "parameters": {<name>: <value>}}
- Extract only parameter values explicitly present in the request. Never invent or guess values.
- Omit parameters the user did not state, even optional ones.
- If no operation clearly matches, respond with {"function_name": "clarify", "parameters": {}}
- No prose, no markdown, JSON only.`,
		renderTable(ops), renderRequiredHints(ops))
}

// validationPrompt builds the pass-2 judgment prompt for one proposal.
func validationPrompt(userText string, in Intent, op capability.Operation) string {
	proposal, err := json.Marshal(in)
	if err != nil {
		proposal = []byte(`{}`)
	}
	return fmt.Sprintf(`You are the validation layer of a cloud infrastructure assistant.
Judge whether the proposed call reflects the user's request.

User request: %q
Proposed call: %s
Operation schema: %s

Respond with a single JSON object:
{"is_valid": <bool>, "feedback": "<short explanation>", "missing_parameters_based_on_intent": [<names>], "suggested_corrections": {<name>: <value>}}

- is_valid: true when the operation matches the request's intent.
- missing_parameters_based_on_intent: parameter names the request implies but the proposal lacks.
- suggested_corrections: corrected values grounded in the request text. Never invent a value that is not in the request.
- No prose, no markdown, JSON only.`,
		userText, proposal, renderOperation(op))
}
