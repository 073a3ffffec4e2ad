package factcheck

import (
	"context"
	"fmt"

	"github.com/agora-platform/agora/internal/cache"
	"github.com/agora-platform/agora/internal/llm"
	"github.com/agora-platform/agora/internal/model"
	"github.com/agora-platform/agora/internal/search"
)

// Checker runs the full argument verification pipeline: claim extraction,
// evidence retrieval, quality filtering, verdict synthesis. Each run is
// strictly sequential and independent; a Checker is safe for concurrent use.
type Checker struct {
	extractor   *ClaimExtractor
	retriever   *EvidenceRetriever
	synthesizer *VerdictSynthesizer
	threshold   float64
	maxEvidence int
	verdicts    *cache.VerdictCache // optional
}

// Option configures a Checker.
type Option func(*Checker)

// WithCache enables verdict caching for repeated verification of unchanged
// arguments.
func WithCache(c *cache.VerdictCache) Option {
	return func(ch *Checker) { ch.verdicts = c }
}

// NewChecker wires the pipeline from its two remote-service ports and the
// fact-check tuning parameters.
func NewChecker(provider llm.Provider, searcher search.Searcher, cfg model.FactCheckConfig, searchCfg model.SearchConfig, opts ...Option) *Checker {
	threshold := cfg.RelevanceThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	maxEvidence := cfg.MaxEvidence
	if maxEvidence <= 0 {
		maxEvidence = model.MaxKeyURLs
	}

	c := &Checker{
		extractor:   NewClaimExtractor(provider),
		retriever:   NewEvidenceRetriever(searcher, searchCfg.MaxResults, search.Depth(searchCfg.Depth)),
		synthesizer: NewVerdictSynthesizer(provider),
		threshold:   threshold,
		maxEvidence: maxEvidence,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// VerifyArgument runs the verification pipeline for one argument. The
// returned verdict is always well-typed with validityScore in [1,5] and at
// most 3 key URLs. A non-nil error is returned only for remote-service
// failures, alongside a failed verdict describing them, so callers may
// choose to retry at a higher layer; this pipeline never retries.
func (c *Checker) VerifyArgument(ctx context.Context, title, content, question string) (model.Verdict, error) {
	key := cache.Key(title, content, question)
	if c.verdicts != nil {
		if verdict, ok := c.verdicts.Get(key); ok {
			return verdict, nil
		}
	}

	claim, err := c.extractor.ExtractClaim(ctx, title, content, question)
	if err != nil {
		return failedVerdict(err), err
	}

	if claim == NoClaim {
		// No factual claim present: not relevant, nothing to search.
		return model.Verdict{
			IsRelevant:    false,
			ValidityScore: model.MinValidityScore,
			Reasoning:     "The argument contains no checkable factual claim tied to the debate question.",
			KeyURLs:       []string{},
			SourceCount:   0,
		}, nil
	}

	items, err := c.retriever.RetrieveEvidence(ctx, claim)
	if err != nil {
		return failedVerdict(err), err
	}

	filtered := FilterEvidence(items, c.threshold, c.maxEvidence)
	if len(filtered) == 0 {
		// Evidence absence, not a parsing failure: the claim exists but
		// nothing above the quality bar supports it.
		return model.Verdict{
			IsRelevant:    true,
			ValidityScore: model.MinValidityScore,
			Reasoning:     "No high-quality evidence was found for the claim.",
			KeyURLs:       []string{},
			SourceCount:   len(items),
		}, nil
	}

	verdict, err := c.synthesizer.Synthesize(ctx, claim, filtered, question, len(items))
	if err != nil {
		return failedVerdict(err), err
	}

	if c.verdicts != nil {
		c.verdicts.Set(key, verdict)
	}

	return verdict, nil
}

// failedVerdict converts a remote-service failure into a well-typed verdict.
// Callers never see a raw provider error in place of a verdict.
func failedVerdict(err error) model.Verdict {
	return model.Verdict{
		IsRelevant:    true,
		ValidityScore: model.MinValidityScore,
		Reasoning:     fmt.Sprintf("Verification failed: %v", err),
		KeyURLs:       []string{},
		SourceCount:   0,
	}
}
