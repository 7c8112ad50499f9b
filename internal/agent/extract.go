package agent

import "strings"

// ExtractJSON pulls the first complete JSON object or array out of text that
// may wrap it in prose or a markdown code fence. Backends frequently decorate
// structured responses ("Here is the result: {...}" or ```json fences), so
// callers that asked for JSON should run responses through this before
// unmarshalling. Returns "" when no balanced JSON value is found.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)

	// Strip a markdown code fence if the whole payload is fenced
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	open := s[start]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
