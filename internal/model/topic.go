package model

import "time"

// Side identifies which side of the debate an argument supports
type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

// Valid reports whether the side is one of the two recognized values.
func (s Side) Valid() bool {
	return s == SidePro || s == SideCon
}

// Topic represents a debate question
type Topic struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicSummary is a topic with aggregate argument metrics for list views
type TopicSummary struct {
	Topic
	ProCount         int      `json:"pro_count"`
	ConCount         int      `json:"con_count"`
	ProAvgValidity   *float64 `json:"pro_avg_validity"`         // nil until a pro argument is verified
	ConAvgValidity   *float64 `json:"con_avg_validity"`         // nil until a con argument is verified
	ControversyLevel string   `json:"controversy_level,omitempty"` // "", "Highly Contested", "Moderately Contested", "Clear Consensus"
}

// Argument represents one pro or con argument on a topic
type Argument struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	Side      Side      `json:"side"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sources   string    `json:"sources,omitempty"` // Free-text sources supplied by the author
	Author    string    `json:"author"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"created_at"`

	// Verification fields, populated once the argument has been fact-checked
	ValidityScore     *int       `json:"validity_score,omitempty"`
	ValidityReasoning string     `json:"validity_reasoning,omitempty"`
	KeyURLs           []string   `json:"key_urls,omitempty"`
	ValidityCheckedAt *time.Time `json:"validity_checked_at,omitempty"`
}

// Verified reports whether the argument has a persisted verdict.
func (a *Argument) Verified() bool {
	return a.ValidityScore != nil
}

// ControversyLevel buckets the pro/con balance of a topic.
// A smaller side holding 40%+ of arguments reads as highly contested.
func ControversyLevel(proCount, conCount int) string {
	total := proCount + conCount
	if total == 0 {
		return ""
	}
	smaller := proCount
	if conCount < smaller {
		smaller = conCount
	}
	balance := float64(smaller) / float64(total)
	switch {
	case balance >= 0.4:
		return "Highly Contested"
	case balance >= 0.25:
		return "Moderately Contested"
	default:
		return "Clear Consensus"
	}
}
