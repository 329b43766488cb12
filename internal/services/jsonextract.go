package services

import (
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object found in model output")

// trimCodeFences removes a surrounding ```json ... ``` block if present.
func trimCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractJSONObject is the best-effort cleanup applied to schedule replies:
// fences and prose around the outermost {...} are dropped, then line and
// block comments outside string literals are removed.
func extractJSONObject(text string) (string, error) {
	text = trimCodeFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errNoJSONObject
	}

	return strings.TrimSpace(stripJSONComments(text[start : end+1])), nil
}

func stripJSONComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				// skip to end of line, keep the newline
				for i+1 < len(src) && src[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				closeIdx := strings.Index(src[i+2:], "*/")
				if closeIdx < 0 {
					return b.String()
				}
				i += 2 + closeIdx + 1
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}
