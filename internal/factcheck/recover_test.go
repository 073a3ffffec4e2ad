package factcheck

import (
	"strings"
	"testing"
)

func TestParseVerdictResponse_StrictJSON(t *testing.T) {
	raw := `{"isRelevant": true, "validityScore": 4, "reasoning": "Well supported.", "keyUrls": ["http://a.com", "http://b.com"]}`

	fields := parseVerdictResponse(raw)

	if fields.IsRelevant == nil || !*fields.IsRelevant {
		t.Error("expected isRelevant true")
	}
	if fields.ValidityScore == nil || *fields.ValidityScore != 4 {
		t.Errorf("expected score 4, got %v", fields.ValidityScore)
	}
	if fields.Reasoning == nil || *fields.Reasoning != "Well supported." {
		t.Errorf("unexpected reasoning: %v", fields.Reasoning)
	}
	if len(fields.KeyURLs) != 2 {
		t.Errorf("expected 2 urls, got %v", fields.KeyURLs)
	}
}

func TestParseVerdictResponse_SnakeCaseAliases(t *testing.T) {
	raw := `{"is_relevant": false, "validity_score": 2, "reasoning": "Weak.", "key_urls": ["http://a.com"]}`

	fields := parseVerdictResponse(raw)

	if fields.IsRelevant == nil || *fields.IsRelevant {
		t.Error("expected isRelevant false")
	}
	if fields.ValidityScore == nil || *fields.ValidityScore != 2 {
		t.Errorf("expected score 2, got %v", fields.ValidityScore)
	}
	if len(fields.KeyURLs) != 1 || fields.KeyURLs[0] != "http://a.com" {
		t.Errorf("unexpected urls: %v", fields.KeyURLs)
	}
}

func TestParseVerdictResponse_FencedBlock(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"validityScore\": 5, \"reasoning\": \"Strong.\"}\n```\nHope that helps."

	fields := parseVerdictResponse(raw)

	if fields.ValidityScore == nil || *fields.ValidityScore != 5 {
		t.Errorf("expected score 5, got %v", fields.ValidityScore)
	}
	if fields.Reasoning == nil || *fields.Reasoning != "Strong." {
		t.Errorf("unexpected reasoning: %v", fields.Reasoning)
	}
}

func TestParseVerdictResponse_BraceExtraction(t *testing.T) {
	raw := `Sure! The verdict is {"isRelevant": true, "validityScore": 3, "reasoning": "Mixed evidence."} as requested.`

	fields := parseVerdictResponse(raw)

	if fields.ValidityScore == nil || *fields.ValidityScore != 3 {
		t.Errorf("expected score 3, got %v", fields.ValidityScore)
	}
}

// Unescaped quotes inside reasoning break strict JSON; the recovery layer
// must still return the full field values.
func TestParseVerdictResponse_UnescapedInnerQuotes(t *testing.T) {
	raw := `I think {"isRelevant": true, "validityScore": 4, "reasoning": "Strong support from "official" sources", "keyUrls": ["http://a.com"]} done`

	fields := parseVerdictResponse(raw)

	if fields.ValidityScore == nil || *fields.ValidityScore != 4 {
		t.Fatalf("expected score 4, got %v", fields.ValidityScore)
	}
	if fields.Reasoning == nil {
		t.Fatal("expected reasoning to be recovered")
	}
	if !strings.Contains(*fields.Reasoning, "official") {
		t.Errorf("reasoning truncated: %q", *fields.Reasoning)
	}
	if *fields.Reasoning != `Strong support from "official" sources` {
		t.Errorf("unexpected reasoning: %q", *fields.Reasoning)
	}
	if len(fields.KeyURLs) != 1 || fields.KeyURLs[0] != "http://a.com" {
		t.Errorf("unexpected urls: %v", fields.KeyURLs)
	}
	if fields.IsRelevant == nil || !*fields.IsRelevant {
		t.Error("expected isRelevant true")
	}
}

func TestParseVerdictResponse_ScoreRecovery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"in range", `garbage "validityScore": 2, more garbage"`, 2},
		{"above range reset", `garbage "validityScore": 9, more garbage"`, 3},
		{"zero reset", `garbage "validityScore": 0, more garbage"`, 3},
		{"snake case", `garbage "validity_score": 5 tail"`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := parseVerdictResponse(tt.raw)
			if fields.ValidityScore == nil {
				t.Fatal("expected score to be recovered")
			}
			if *fields.ValidityScore != tt.want {
				t.Errorf("score = %d, want %d", *fields.ValidityScore, tt.want)
			}
		})
	}
}

func TestParseVerdictResponse_ScoreAbsent(t *testing.T) {
	fields := parseVerdictResponse(`{"reasoning": broken`)
	if fields.ValidityScore != nil {
		t.Errorf("expected absent score, got %d", *fields.ValidityScore)
	}
}

func TestParseVerdictResponse_ReasoningEscapedQuote(t *testing.T) {
	// A literal escaped quote inside the value must not terminate the scan.
	raw := `{"validityScore": 4, "reasoning": "The \"carbon tax\" study confirms it", "keyUrls": []`

	fields := parseVerdictResponse(raw)

	if fields.Reasoning == nil {
		t.Fatal("expected reasoning")
	}
	if *fields.Reasoning != `The "carbon tax" study confirms it` {
		t.Errorf("unexpected reasoning: %q", *fields.Reasoning)
	}
}

func TestParseVerdictResponse_ReasoningUnterminated(t *testing.T) {
	raw := `{"validityScore": 2, "reasoning": "It just keeps going and never closes`

	fields := parseVerdictResponse(raw)

	if fields.Reasoning == nil {
		t.Fatal("expected placeholder reasoning")
	}
	if *fields.Reasoning != unableToParseReasoning {
		t.Errorf("expected placeholder, got %q", *fields.Reasoning)
	}
}

func TestParseVerdictResponse_KeyURLsCappedAndNonEmpty(t *testing.T) {
	raw := `broken json "keyUrls": ["http://a.com", "", "http://b.com",
	"http://c.com", "http://d.com"] tail`

	fields := parseVerdictResponse(raw)

	if len(fields.KeyURLs) != 3 {
		t.Fatalf("expected 3 urls, got %v", fields.KeyURLs)
	}
	for _, u := range fields.KeyURLs {
		if u == "" {
			t.Error("empty url survived filtering")
		}
	}
	want := []string{"http://a.com", "http://b.com", "http://c.com"}
	for i, u := range want {
		if fields.KeyURLs[i] != u {
			t.Errorf("url[%d] = %q, want %q", i, fields.KeyURLs[i], u)
		}
	}
}

func TestParseVerdictResponse_KeyURLsEscapedQuotes(t *testing.T) {
	raw := `nope "keyUrls": ["http://a.com/\"quoted\""] nope`

	fields := parseVerdictResponse(raw)

	if len(fields.KeyURLs) != 1 || fields.KeyURLs[0] != `http://a.com/"quoted"` {
		t.Errorf("unexpected urls: %v", fields.KeyURLs)
	}
}

func TestParseVerdictResponse_NoStructureAtAll(t *testing.T) {
	fields := parseVerdictResponse("I'm sorry, I can't help with that.")

	if fields.IsRelevant != nil || fields.ValidityScore != nil || fields.KeyURLs != nil {
		t.Errorf("expected all fields absent, got %+v", fields)
	}
}

func TestParseVerdictResponse_BoolFromString(t *testing.T) {
	raw := `{"isRelevant": "false", "validityScore": "2", "reasoning": "text"}`

	fields := parseVerdictResponse(raw)

	if fields.IsRelevant == nil || *fields.IsRelevant {
		t.Error("expected isRelevant coerced to false")
	}
	if fields.ValidityScore == nil || *fields.ValidityScore != 2 {
		t.Errorf("expected score coerced to 2, got %v", fields.ValidityScore)
	}
}

func TestParseVerdictResponse_BareStringKeyURLs(t *testing.T) {
	raw := `{"validityScore": 3, "keyUrls": "http://only.com"}`

	fields := parseVerdictResponse(raw)

	if len(fields.KeyURLs) != 1 || fields.KeyURLs[0] != "http://only.com" {
		t.Errorf("expected single-element list, got %v", fields.KeyURLs)
	}
}

func TestExtractCandidate_UnbalancedBraces(t *testing.T) {
	raw := `prefix {"never": "closes"`
	if got := extractCandidate(raw); got != raw {
		t.Errorf("expected whole text fallback, got %q", got)
	}
}

func TestUnescapeJSONString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, `plain`},
		{`a \"quote\"`, `a "quote"`},
		{`back\\slash`, `back\slash`},
		{`line\nbreak`, "line\nbreak"},
		{`tab\there`, "tab\there"},
	}
	for _, tt := range tests {
		if got := unescapeJSONString(tt.in); got != tt.want {
			t.Errorf("unescapeJSONString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
