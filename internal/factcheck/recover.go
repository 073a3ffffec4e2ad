package factcheck

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/agora-platform/agora/internal/model"
)

// unableToParseReasoning is substituted when a reasoning string is present
// but its closing delimiter cannot be located.
const unableToParseReasoning = "Unable to parse reasoning from response"

// verdictFields holds best-effort partial verdict fields recovered from a
// model response. Nil pointers mean the field was absent; component-level
// defaults are applied by the synthesizer.
type verdictFields struct {
	IsRelevant    *bool
	ValidityScore *int
	Reasoning     *string
	KeyURLs       []string
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)```")
	relevantRe    = regexp.MustCompile(`(?i)"?is_?relevant"?\s*:\s*(true|false)`)
	scoreRe       = regexp.MustCompile(`(?i)"?validity_?score"?\s*:\s*([0-9]+)`)
	urlsArrayRe   = regexp.MustCompile(`(?is)"?key_?urls"?\s*:\s*\[(.*?)\]`)
	// String literals that may themselves contain escaped quotes.
	stringLitRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// parseVerdictResponse extracts verdict fields from raw model output that was
// requested to be a single JSON object but cannot be trusted to be one. It
// never fails: malformed input degrades to partial or absent fields.
func parseVerdictResponse(raw string) verdictFields {
	candidate := extractCandidate(raw)

	// Strict parse first. Most responses are valid JSON and need no recovery.
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return fieldsFromObject(obj)
	}

	return recoverFields(candidate)
}

// extractCandidate narrows raw text down to the region most likely to hold
// the JSON object: a fenced code block, then a brace-matched span, then the
// whole text.
func extractCandidate(raw string) string {
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.IndexByte(raw, '{')
	if start >= 0 {
		// Naive depth counter: quotes are deliberately not tracked, since
		// corrupted responses are exactly the ones with broken quoting.
		depth := 0
		for i := start; i < len(raw); i++ {
			switch raw[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return raw[start : i+1]
				}
			}
		}
	}

	return raw
}

// fieldsFromObject maps a strictly-parsed JSON object onto verdict fields,
// tolerating snake_case aliases and loosely-typed values.
func fieldsFromObject(obj map[string]any) verdictFields {
	var f verdictFields

	if v, ok := lookupField(obj, "isRelevant", "is_relevant"); ok {
		f.IsRelevant = coerceBool(v)
	}
	if v, ok := lookupField(obj, "validityScore", "validity_score"); ok {
		f.ValidityScore = coerceInt(v)
	}
	if v, ok := obj["reasoning"]; ok {
		if s := coerceString(v); s != nil {
			f.Reasoning = s
		}
	}
	if v, ok := lookupField(obj, "keyUrls", "key_urls"); ok {
		f.KeyURLs = coerceStringList(v)
	}

	return f
}

// recoverFields performs field-level regex and scan recovery on text that
// failed strict JSON parsing.
func recoverFields(candidate string) verdictFields {
	var f verdictFields

	if m := relevantRe.FindStringSubmatch(candidate); m != nil {
		b := strings.EqualFold(m[1], "true")
		f.IsRelevant = &b
	}

	if m := scoreRe.FindStringSubmatch(candidate); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if n < model.MinValidityScore || n > model.MaxValidityScore {
				n = model.DefaultValidityScore
			}
			f.ValidityScore = &n
		}
	}

	if r, ok := scanQuotedField(candidate, "reasoning"); ok {
		f.Reasoning = &r
	}

	if m := urlsArrayRe.FindStringSubmatch(candidate); m != nil {
		var urls []string
		for _, lit := range stringLitRe.FindAllStringSubmatch(m[1], -1) {
			u := unescapeJSONString(lit[1])
			if u == "" {
				continue
			}
			urls = append(urls, u)
			if len(urls) == model.MaxKeyURLs {
				break
			}
		}
		if urls == nil {
			urls = []string{}
		}
		f.KeyURLs = urls
	}

	return f
}

// scanQuotedField recovers a JSON string field even when its value contains
// unescaped quotes. The closing delimiter is the first quote whose next
// non-whitespace character is ',' or '}' (or end of input), which separates
// quotes embedded in the prose from the field terminator.
func scanQuotedField(text, field string) (string, bool) {
	pos := indexCaseInsensitive(text, field)
	if pos < 0 {
		return "", false
	}

	colon := strings.IndexByte(text[pos:], ':')
	if colon < 0 {
		return "", false
	}

	open := strings.IndexByte(text[pos+colon+1:], '"')
	if open < 0 {
		return "", false
	}
	start := pos + colon + 1 + open + 1

	// Finite-state scan over {normal, escaped} with lookahead on each
	// candidate terminator.
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != '"' {
			continue
		}

		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j >= len(text) || text[j] == ',' || text[j] == '}' {
			return unescapeJSONString(text[start:i]), true
		}
		// A quote embedded in the prose; keep scanning.
	}

	return unableToParseReasoning, true
}

// unescapeJSONString resolves the escape sequences the recovery layer cares
// about. Unknown escapes pass through with the backslash dropped.
func unescapeJSONString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			// Covers \" and \\ as well.
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func indexCaseInsensitive(s, sub string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(sub))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// lookupField returns the first of the camelCase or snake_case keys present.
func lookupField(obj map[string]any, camel, snake string) (any, bool) {
	if v, ok := obj[camel]; ok {
		return v, true
	}
	if v, ok := obj[snake]; ok {
		return v, true
	}
	return nil, false
}

// coerceBool accepts booleans and common textual truthy/falsy forms.
func coerceBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			b := true
			return &b
		case "false", "no", "0":
			b := false
			return &b
		}
	case float64:
		b := t != 0
		return &b
	}
	return nil
}

// coerceInt accepts numbers and numeric strings.
func coerceInt(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return &n
		}
	}
	return nil
}

func coerceString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// coerceStringList accepts a string array or a single bare string.
func coerceStringList(v any) []string {
	switch t := v.(type) {
	case []any:
		urls := []string{}
		for _, item := range t {
			s, ok := item.(string)
			if !ok || s == "" {
				continue
			}
			urls = append(urls, s)
			if len(urls) == model.MaxKeyURLs {
				break
			}
		}
		return urls
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	}
	return nil
}
