package model

import "testing"

func TestControversyLevel(t *testing.T) {
	tests := []struct {
		name string
		pro  int
		con  int
		want string
	}{
		{"no arguments", 0, 0, ""},
		{"even split", 5, 5, "Highly Contested"},
		{"forty percent minority", 6, 4, "Highly Contested"},
		{"third minority", 8, 4, "Moderately Contested"},
		{"quarter minority", 9, 3, "Moderately Contested"},
		{"lopsided", 9, 1, "Clear Consensus"},
		{"one sided", 4, 0, "Clear Consensus"},
		{"symmetric", 4, 6, "Highly Contested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ControversyLevel(tt.pro, tt.con); got != tt.want {
				t.Errorf("ControversyLevel(%d, %d) = %q, want %q", tt.pro, tt.con, got, tt.want)
			}
		})
	}
}

func TestSideValid(t *testing.T) {
	if !SidePro.Valid() || !SideCon.Valid() {
		t.Error("pro and con must be valid sides")
	}
	for _, s := range []Side{"", "neutral", "PRO"} {
		if s.Valid() {
			t.Errorf("Side(%q).Valid() = true, want false", s)
		}
	}
}

func TestClampValidityScore(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 3},
		{-3, 3},
		{1, 1},
		{3, 3},
		{5, 5},
		{6, 3},
		{100, 3},
	}
	for _, tt := range tests {
		if got := ClampValidityScore(tt.in); got != tt.want {
			t.Errorf("ClampValidityScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestArgumentVerified(t *testing.T) {
	var a Argument
	if a.Verified() {
		t.Error("fresh argument must not count as verified")
	}
	score := 3
	a.ValidityScore = &score
	if !a.Verified() {
		t.Error("argument with a persisted score is verified")
	}
}
