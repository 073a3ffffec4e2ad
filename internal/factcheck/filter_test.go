package factcheck

import (
	"testing"

	"github.com/agora-platform/agora/internal/model"
)

func TestFilterEvidence_ThresholdIsStrict(t *testing.T) {
	items := []model.EvidenceItem{
		{URL: "http://a.com", Score: 0.5},
		{URL: "http://b.com", Score: 0.51},
		{URL: "http://c.com", Score: 0.0},
	}

	got := FilterEvidence(items, 0.5, 3)

	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].URL != "http://b.com" {
		t.Errorf("kept %q, want the item scoring strictly above 0.5", got[0].URL)
	}
}

func TestFilterEvidence_SortsDescendingAndCaps(t *testing.T) {
	items := []model.EvidenceItem{
		{URL: "http://low.com", Score: 0.6},
		{URL: "http://top.com", Score: 0.95},
		{URL: "http://mid.com", Score: 0.8},
		{URL: "http://also.com", Score: 0.7},
	}

	got := FilterEvidence(items, 0.5, 3)

	if len(got) != 3 {
		t.Fatalf("expected cap at 3, got %d", len(got))
	}
	want := []string{"http://top.com", "http://mid.com", "http://also.com"}
	for i, url := range want {
		if got[i].URL != url {
			t.Errorf("got[%d] = %q, want %q", i, got[i].URL, url)
		}
	}
}

func TestFilterEvidence_InputNotModified(t *testing.T) {
	items := []model.EvidenceItem{
		{URL: "http://a.com", Score: 0.6},
		{URL: "http://b.com", Score: 0.9},
	}

	_ = FilterEvidence(items, 0.5, 3)

	if items[0].URL != "http://a.com" || items[1].URL != "http://b.com" {
		t.Error("input slice was reordered")
	}
}

func TestFilterEvidence_Empty(t *testing.T) {
	if got := FilterEvidence(nil, 0.5, 3); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
