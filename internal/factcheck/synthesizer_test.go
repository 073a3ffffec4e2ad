package factcheck

import (
	"context"
	"strings"
	"testing"

	"github.com/agora-platform/agora/internal/model"
)

func evidenceSet() []model.EvidenceItem {
	return []model.EvidenceItem{
		{Title: "A", URL: "http://a.com", Score: 0.9, Snippet: "first"},
		{Title: "B", URL: "http://b.com", Score: 0.85, Snippet: "second"},
	}
}

func TestSynthesize_WellFormedResponse(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"isRelevant": true, "validityScore": 4, "reasoning": "Mostly supported.", "keyUrls": ["http://model.com"]}`,
	}}
	synth := NewVerdictSynthesizer(provider)

	verdict, err := synth.Synthesize(context.Background(), "claim", evidenceSet(), "question", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verdict.ValidityScore != 4 {
		t.Errorf("score = %d, want 4", verdict.ValidityScore)
	}
	if verdict.Reasoning != "Mostly supported." {
		t.Errorf("reasoning = %q", verdict.Reasoning)
	}
	if verdict.SourceCount != 7 {
		t.Errorf("sourceCount = %d, want pre-filter count 7", verdict.SourceCount)
	}
	// keyUrls come from the evidence items, not the model.
	if len(verdict.KeyURLs) != 2 || verdict.KeyURLs[0] != "http://a.com" || verdict.KeyURLs[1] != "http://b.com" {
		t.Errorf("unexpected key urls: %v", verdict.KeyURLs)
	}
}

func TestSynthesize_DefaultsOnGarbageResponse(t *testing.T) {
	provider := &fakeProvider{responses: []string{"complete nonsense, no json here"}}
	synth := NewVerdictSynthesizer(provider)

	verdict, err := synth.Synthesize(context.Background(), "claim", evidenceSet(), "question", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verdict.ValidityScore != 3 {
		t.Errorf("score = %d, want mid-point default 3", verdict.ValidityScore)
	}
	if !verdict.IsRelevant {
		t.Error("expected isRelevant default true")
	}
	if verdict.Reasoning == "" {
		t.Error("expected a non-empty reasoning default")
	}
}

func TestSynthesize_OutOfRangeScoreClamped(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"isRelevant": true, "validityScore": 11, "reasoning": "Over-enthusiastic.", "keyUrls": []}`,
	}}
	synth := NewVerdictSynthesizer(provider)

	verdict, err := synth.Synthesize(context.Background(), "claim", evidenceSet(), "question", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.ValidityScore != 3 {
		t.Errorf("score = %d, want 3", verdict.ValidityScore)
	}
}

func TestSynthesize_StripsStrayReasoningQuotes(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"isRelevant": true, "validityScore": 2, "reasoning": "\"Thin evidence.\"", "keyUrls": []}`,
	}}
	synth := NewVerdictSynthesizer(provider)

	verdict, err := synth.Synthesize(context.Background(), "claim", evidenceSet(), "question", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Reasoning != "Thin evidence." {
		t.Errorf("reasoning = %q", verdict.Reasoning)
	}
}

func TestSynthesize_IrrelevantForcesFloor(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"isRelevant": false, "validityScore": 5, "reasoning": "Off-topic.", "keyUrls": ["http://a.com"]}`,
	}}
	synth := NewVerdictSynthesizer(provider)

	verdict, err := synth.Synthesize(context.Background(), "claim", evidenceSet(), "question", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.IsRelevant {
		t.Error("expected isRelevant false")
	}
	if verdict.ValidityScore != 1 {
		t.Errorf("score = %d, want 1", verdict.ValidityScore)
	}
	if len(verdict.KeyURLs) != 0 {
		t.Errorf("key urls = %v, want empty", verdict.KeyURLs)
	}
}

func TestBuildVerdictPrompt_IncludesRubricAndEvidence(t *testing.T) {
	prompt := buildVerdictPrompt("the claim", evidenceSet(), "the question")

	for _, want := range []string{
		"the claim",
		"the question",
		"http://a.com",
		"5 stars",
		"Average relevance score",
		"Escape any double quotes",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFormatEvidence_TruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("x", 600)
	out := formatEvidence([]model.EvidenceItem{{Title: "T", URL: "http://a.com", Score: 0.9, Snippet: long}})

	if strings.Contains(out, long) {
		t.Error("snippet was not truncated")
	}
	if !strings.Contains(out, strings.Repeat("x", 500)+"...") {
		t.Error("expected 500-char truncation marker")
	}
}

func TestFormatEvidence_Empty(t *testing.T) {
	if out := formatEvidence(nil); out != "No sources found." {
		t.Errorf("out = %q", out)
	}
}
