package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// parametersNoneRe matches the known artifact where the model answers
// `"parameters": "none"` (or "null") instead of an empty object.
var parametersNoneRe = regexp.MustCompile(`("parameters"\s*:\s*)"(?i:none|null|n/a)"`)

// DecodeObject extracts and decodes the first JSON object embedded in an
// oracle reply. It tolerates markdown fencing, surrounding prose, the
// `"parameters": "none"` artifact, and truncated replies missing closing
// braces. Both inference passes decode through this one boundary.
func DecodeObject(raw string) (map[string]any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrMalformedReply, snippet(s))
	}

	candidate := extractObject(s[start:])
	candidate = parametersNoneRe.ReplaceAllString(candidate, `${1}{}`)

	var m map[string]any
	if err := json.Unmarshal([]byte(candidate), &m); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedReply, snippet(s))
	}
	return m, nil
}

// extractObject scans s (which starts at '{') for the matching closing
// brace, ignoring braces inside string literals. A reply truncated before
// the object closes gets the missing braces appended.
func extractObject(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// string content, braces inside do not count
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	// Truncated mid-object. A dangling string or trailing comma must be
	// repaired before the braces or the result cannot parse.
	if inString {
		s += `"`
	}
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, ",")
	return s + strings.Repeat("}", depth)
}

// snippet shortens a reply for error messages.
func snippet(s string) string {
	const max = 120
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
