package factcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/agora-platform/agora/internal/llm"
	"github.com/agora-platform/agora/internal/model"
)

const (
	synthesizeMaxTokens = 1000
	maxSnippetChars     = 500
)

// VerdictSynthesizer asks the text-generation service to judge a claim
// against filtered evidence and converts the response, however malformed,
// into a structured verdict
type VerdictSynthesizer struct {
	provider llm.Provider
}

// NewVerdictSynthesizer creates a new verdict synthesizer
func NewVerdictSynthesizer(provider llm.Provider) *VerdictSynthesizer {
	return &VerdictSynthesizer{provider: provider}
}

// Synthesize scores the claim against the filtered evidence. sourceCount is
// the pre-filter evidence count and is carried into the verdict unchanged.
// A provider failure is fatal for the verification run; a malformed response
// is not, and degrades to recovered or default fields.
func (s *VerdictSynthesizer) Synthesize(ctx context.Context, claim string, evidence []model.EvidenceItem, question string, sourceCount int) (model.Verdict, error) {
	prompt := buildVerdictPrompt(claim, evidence, question)

	resp, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:    prompt,
		MaxTokens: synthesizeMaxTokens,
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("synthesize verdict: %w", err)
	}

	fields := parseVerdictResponse(resp.Text)
	return buildVerdict(fields, evidence, sourceCount), nil
}

// buildVerdict applies component-level defaults and invariants on top of the
// recovered fields.
func buildVerdict(fields verdictFields, evidence []model.EvidenceItem, sourceCount int) model.Verdict {
	verdict := model.Verdict{
		IsRelevant:    true,
		ValidityScore: model.DefaultValidityScore,
		Reasoning:     "No reasoning provided",
		SourceCount:   sourceCount,
	}

	if fields.IsRelevant != nil {
		verdict.IsRelevant = *fields.IsRelevant
	}
	if fields.ValidityScore != nil {
		verdict.ValidityScore = model.ClampValidityScore(*fields.ValidityScore)
	}
	if fields.Reasoning != nil {
		if r := strings.Trim(strings.TrimSpace(*fields.Reasoning), `"`); r != "" {
			verdict.Reasoning = r
		}
	}

	if !verdict.IsRelevant {
		// Off-topic or rhetoric-only: lowest score, no sources to cite.
		verdict.ValidityScore = model.MinValidityScore
		verdict.KeyURLs = []string{}
		return verdict
	}

	// The model is asked for key URLs but never trusted on them: links are
	// taken from the evidence actually used for scoring, so every returned
	// URL is a real, known source.
	urls := make([]string, 0, model.MaxKeyURLs)
	for _, item := range evidence {
		if item.URL == "" {
			continue
		}
		urls = append(urls, item.URL)
		if len(urls) == model.MaxKeyURLs {
			break
		}
	}
	verdict.KeyURLs = urls

	return verdict
}

func buildVerdictPrompt(claim string, evidence []model.EvidenceItem, question string) string {
	formatted := formatEvidence(evidence)
	avg := averageScore(evidence)

	return fmt.Sprintf(`You are fact-checking a claim made in a debate on: %s

CLAIM:
%s

SEARCH RESULTS:
%s

First decide whether the claim is RELEVANT: it is irrelevant if it carries no factual claim, is off-topic for the debate question, or is pure rhetoric or insult.

If relevant, assign a validity score from 1-5 stars:

- 5 stars: fully supported by 3 or more high-relevance sources (average relevance score > 0.8)
- 4 stars: mostly supported by 2 or more good sources (average relevance score > 0.6)
- 3 stars: partially supported by 1-2 sources, mixed or moderate evidence
- 2 stars: single source or low average relevance
- 1 star: no credible support, or contradicted by sources

Consider BOTH the number of sources AND their quality (relevance scores).
Weigh primary sources (government, academic, standards bodies) above secondary ones (established news outlets), and secondary above tertiary.

Average relevance score of sources: %.3f
Number of sources: %d

Return a single JSON object with this exact structure and nothing else:
{
    "isRelevant": <true|false>,
    "validityScore": <1-5>,
    "reasoning": "<2-3 sentences explaining the score>",
    "keyUrls": ["<top 3 most relevant URLs from the search results>"]
}

Escape any double quotes inside string values with a backslash.`,
		question, claim, formatted, avg, len(evidence))
}

// formatEvidence renders evidence items as numbered sources for the prompt.
func formatEvidence(evidence []model.EvidenceItem) string {
	if len(evidence) == 0 {
		return "No sources found."
	}

	var b strings.Builder
	for i, item := range evidence {
		snippet := item.Snippet
		if len(snippet) > maxSnippetChars {
			snippet = snippet[:maxSnippetChars] + "..."
		}
		fmt.Fprintf(&b, "\nSource %d (%s source):\nTitle: %s\nURL: %s\nRelevance Score: %.3f\nContent: %s\n",
			i+1, ClassifySource(item.URL), item.Title, item.URL, item.Score, snippet)
	}
	return b.String()
}

func averageScore(evidence []model.EvidenceItem) float64 {
	if len(evidence) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range evidence {
		sum += item.Score
	}
	return sum / float64(len(evidence))
}
