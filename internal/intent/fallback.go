package intent

import "strings"

// fallbackPhrases maps literal substrings to read-only list operations.
// Order matters: first match wins. This is best-effort coverage for the
// most common phrasings when the oracle is unreachable, never a substitute
// for generation.
var fallbackPhrases = []struct {
	substr   string
	function string
}{
	{"list servers", "list_servers"},
	{"show servers", "list_servers"},
	{"list images", "list_images"},
	{"show images", "list_images"},
	{"list flavors", "list_flavors"},
	{"list networks", "list_networks"},
	{"show networks", "list_networks"},
	{"list volumes", "list_volumes"},
	{"show volumes", "list_volumes"},
	{"list floating ips", "list_floating_ips"},
	{"usage", "get_usage"},
}

// FallbackIntent attempts a literal substring match against the known
// phrasings. Only parameterless operations are matched; anything needing
// extraction must go through the oracle.
func FallbackIntent(userText string) (Intent, bool) {
	text := strings.ToLower(userText)
	for _, p := range fallbackPhrases {
		if strings.Contains(text, p.substr) {
			return Intent{FunctionName: p.function, Parameters: map[string]any{}}, true
		}
	}
	return Intent{}, false
}
