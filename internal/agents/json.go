package agents

import (
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object found in response")

// ExtractJSON pulls the first balanced JSON object out of a model
// response. Models often wrap their output in prose or markdown fences,
// so a plain json.Unmarshal over the whole body is not enough.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	// Strip a markdown code fence if present
	if strings.HasPrefix(response, "```") {
		if idx := strings.Index(response, "\n"); idx >= 0 {
			response = response[idx+1:]
		}
		if idx := strings.LastIndex(response, "```"); idx >= 0 {
			response = response[:idx]
		}
	}

	start := strings.Index(response, "{")
	if start < 0 {
		return "", errNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return response[start : i+1], nil
				}
			}
		}
	}

	return "", errNoJSON
}
