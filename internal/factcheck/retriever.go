package factcheck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agora-platform/agora/internal/model"
	"github.com/agora-platform/agora/internal/search"
)

// EvidenceRetriever issues one search per claim and normalizes the
// provider's heterogeneous response shapes
type EvidenceRetriever struct {
	searcher   search.Searcher
	maxResults int
	depth      search.Depth
}

// NewEvidenceRetriever creates a new evidence retriever
func NewEvidenceRetriever(searcher search.Searcher, maxResults int, depth search.Depth) *EvidenceRetriever {
	if maxResults <= 0 {
		maxResults = 10
	}
	if depth == "" {
		depth = search.DepthAdvanced
	}
	return &EvidenceRetriever{
		searcher:   searcher,
		maxResults: maxResults,
		depth:      depth,
	}
}

// searchResult is the provider's per-item shape.
type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// RetrieveEvidence searches for the claim and returns ranked results.
// Callers must short-circuit on the NoClaim sentinel before invoking this.
// A provider failure is fatal for the verification run; an unknown response
// shape is not, and yields an empty sequence.
func (r *EvidenceRetriever) RetrieveEvidence(ctx context.Context, claim string) ([]model.EvidenceItem, error) {
	resp, err := r.searcher.Search(ctx, search.SearchRequest{
		Query:       claim,
		MaxResults:  r.maxResults,
		SearchDepth: r.depth,
	})
	if err != nil {
		return nil, fmt.Errorf("search evidence: %w", err)
	}

	return normalizeResults(resp.Raw), nil
}

// normalizeResults accepts either an object wrapping a list under "results",
// a bare list, or anything else (treated as no results).
func normalizeResults(raw json.RawMessage) []model.EvidenceItem {
	var wrapped struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Results != nil {
		return toEvidenceItems(wrapped.Results)
	}

	var bare []searchResult
	if err := json.Unmarshal(raw, &bare); err == nil {
		return toEvidenceItems(bare)
	}

	return []model.EvidenceItem{}
}

func toEvidenceItems(results []searchResult) []model.EvidenceItem {
	items := make([]model.EvidenceItem, 0, len(results))
	for _, res := range results {
		items = append(items, model.EvidenceItem{
			Title:   res.Title,
			URL:     res.URL,
			Score:   res.Score,
			Snippet: res.Content,
		})
	}
	return items
}
