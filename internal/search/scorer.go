package search

import (
	"sort"
	"strings"
)

// Bonuses are additive. Only their ordering matters:
// exact title > cover > community > author match, title prefix.
const (
	BonusExactTitle  = 100
	BonusCover       = 50
	BonusCommunity   = 25
	BonusAuthorMatch = 10
	BonusTitlePrefix = 10
)

// ScoreOf computes the heuristic relevance of c for q.
func ScoreOf(q Query, c Candidate) int {
	query := strings.ToLower(q.String())
	title := strings.ToLower(strings.TrimSpace(c.Title))
	author := strings.ToLower(c.Author)

	score := 0
	if title == query {
		score += BonusExactTitle
	}
	if c.HasCover() {
		score += BonusCover
	}
	if c.Source == SourceCommunity {
		score += BonusCommunity
	}
	if strings.Contains(author, query) {
		score += BonusAuthorMatch
	}
	if strings.HasPrefix(title, query) {
		score += BonusTitlePrefix
	}
	return score
}

// Score returns a copy of in with Score set, ordered by descending score.
// Equal scores keep their input order.
func Score(q Query, in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		c.Score = ScoreOf(q, c)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
