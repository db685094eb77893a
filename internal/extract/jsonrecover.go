package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// quoteNormalizer maps typographic quote characters to their ASCII
// equivalents so model output with smart quotes still parses.
var quoteNormalizer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"«", `"`, "»", `"`,
)

var leadingFenceRe = regexp.MustCompile("(?i)^```(?:json)?")

// normalizeJSONText strips markdown code fences, smart quotes, and any
// leading prose up to the first brace or bracket.
func normalizeJSONText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(quoteNormalizer.Replace(s))
	s = strings.TrimSpace(leadingFenceRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}
	return s
}

// findBalancedSpan returns the first substring of s whose brackets
// fully balance, honoring quoted strings and escapes. Mismatched
// open/close kinds invalidate the scan. Returns "" when no balanced
// span exists.
func findBalancedSpan(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var stack []byte
	inStr, esc := false, false
	for j := start; j < len(s); j++ {
		ch := s[j]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) == 0 {
				return ""
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if (top == '{' && ch != '}') || (top == '[' && ch != ']') {
				return ""
			}
			if len(stack) == 0 {
				return s[start : j+1]
			}
		}
	}
	return ""
}

func parseJSONValue(s string, expectObject bool) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	if expectObject {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return obj, true
	}
	return v, true
}

// RecoverJSON extracts a JSON value from untrusted model output. It
// first normalizes the text and attempts a direct parse; failing that,
// it parses the first balanced bracket span. When expectObject is set,
// only a JSON object satisfies the result. The boolean reports whether
// a usable value was recovered.
func RecoverJSON(raw string, expectObject bool) (any, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	txt := normalizeJSONText(raw)
	if v, ok := parseJSONValue(txt, expectObject); ok {
		return v, true
	}
	seg := findBalancedSpan(txt)
	if seg == "" {
		return nil, false
	}
	return parseJSONValue(seg, expectObject)
}
