package model

// EvidenceItem represents one search result backing (or undermining) a claim
type EvidenceItem struct {
	Title   string  `json:"title"`             // Result title
	URL     string  `json:"url"`               // Full URL
	Score   float64 `json:"score"`             // Provider-assigned relevance (nominally 0-1, not guaranteed normalized)
	Snippet string  `json:"snippet,omitempty"` // Content excerpt returned by the provider
}

// Verdict is the structured outcome of verifying one argument
type Verdict struct {
	IsRelevant    bool     `json:"is_relevant"`    // Whether the argument carries a checkable, on-topic claim
	ValidityScore int      `json:"validity_score"` // 1-5 star score, always within range
	Reasoning     string   `json:"reasoning"`      // Explanation for the score
	KeyURLs       []string `json:"key_urls"`       // Up to 3 supporting source URLs (always real, known sources)
	SourceCount   int      `json:"source_count"`   // Evidence found before quality filtering
}

// Score bounds and defaults shared across the verification pipeline.
const (
	MinValidityScore     = 1
	MaxValidityScore     = 5
	DefaultValidityScore = 3 // Mid-point fallback for absent/out-of-range scores
	MaxKeyURLs           = 3
)

// ClampValidityScore forces a score into [MinValidityScore, MaxValidityScore],
// substituting the mid-point default when out of range.
func ClampValidityScore(score int) int {
	if score < MinValidityScore || score > MaxValidityScore {
		return DefaultValidityScore
	}
	return score
}
