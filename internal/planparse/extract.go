package planparse

import (
	"regexp"
	"strings"
)

// fencePattern matches the body of a markdown code fence, with or without a language tag.
var fencePattern = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?[ \\t]*\\n?(.*?)```")

// ExtractObject locates a JSON object embedded in free text. A fenced code
// block containing an object takes precedence over bare text. Returns "" when
// no object start is found.
func ExtractObject(content string) string {
	for _, m := range fencePattern.FindAllStringSubmatch(content, -1) {
		if obj := balancedObject(m[1]); obj != "" {
			return obj
		}
	}
	return balancedObject(content)
}

// balancedObject returns the text from the first '{' to its matching '}'.
// Braces inside string literals are ignored. When the object never closes,
// the span up to the last '}' is returned so the decoder can report the error.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1]
	}
	return ""
}

// cleanJSON removes // comments outside strings and trailing commas, both of
// which models produce routinely.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return stripTrailingCommas(strings.Join(lines, "\n"))
}

// stripTrailingCommas drops commas that directly precede a closing ] or },
// ignoring anything inside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == ',':
			rest := strings.TrimLeft(s[i+1:], " \t\r\n")
			if rest != "" && (rest[0] == '}' || rest[0] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
