package factcheck

import (
	"sort"

	"github.com/agora-platform/agora/internal/model"
)

// FilterEvidence retains only items scoring strictly above the threshold,
// orders them by relevance descending, and caps the set at limit. Pure: the
// input slice is not modified.
func FilterEvidence(items []model.EvidenceItem, threshold float64, limit int) []model.EvidenceItem {
	kept := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.Score > threshold {
			kept = append(kept, item)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	return kept
}
