package factcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/agora-platform/agora/internal/llm"
)

// NoClaim is the sentinel returned when an argument carries no checkable
// factual claim.
const NoClaim = "NO_CLAIM"

const extractMaxTokens = 200

// ClaimExtractor distills an argument into a single verifiable claim
type ClaimExtractor struct {
	provider llm.Provider
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(provider llm.Provider) *ClaimExtractor {
	return &ClaimExtractor{provider: provider}
}

// ExtractClaim reduces (title, content, question) to one verifiable claim,
// or NoClaim when the argument is pure opinion or rhetoric. A provider
// failure is fatal for the verification run.
func (e *ClaimExtractor) ExtractClaim(ctx context.Context, title, content, question string) (string, error) {
	prompt := buildExtractPrompt(title, content, question)

	resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:    prompt,
		MaxTokens: extractMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("extract claim: %w", err)
	}

	claim := strings.TrimSpace(resp.Text)
	if claim == "" || strings.Contains(claim, NoClaim) {
		return NoClaim, nil
	}

	return claim, nil
}

func buildExtractPrompt(title, content, question string) string {
	return fmt.Sprintf(`Extract the core verifiable claim from this debate argument. Focus on factual statements that can be researched and verified, not opinions or rhetoric.

Debate question: %s
Argument title: %s
Argument content: %s

Return ONLY the core factual claim in 2 sentences or less. Remove all opinion, rhetoric, and emotional language, and keep only what relates to the debate question and can be factually verified.

If the argument contains no checkable factual claim at all (pure opinion, rhetoric, or insult), return exactly: %s`,
		question, title, content, NoClaim)
}
