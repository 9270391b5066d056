package search

// Result is the caller-facing shape of a ranked candidate.
type Result struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	CoverURL   *string `json:"coverUrl"`
	Popularity int     `json:"popularity"`
	Score      int     `json:"score"`
	Source     Source  `json:"source"`
	ISBN       string  `json:"isbn,omitempty"`
	PageCount  int     `json:"pageCount,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
}

// ApplyOrder moves the candidates named by ids to the front, in that order,
// followed by every other candidate in its existing order. Unknown ids are
// ignored; callers validate them beforehand. No candidate is dropped.
func ApplyOrder(scored []Candidate, ids []string) []Candidate {
	if len(ids) == 0 {
		return scored
	}

	pos := make(map[string]int, len(scored))
	for i, c := range scored {
		if _, dup := pos[c.ID]; !dup {
			pos[c.ID] = i
		}
	}

	taken := make([]bool, len(scored))
	out := make([]Candidate, 0, len(scored))
	for _, id := range ids {
		i, ok := pos[id]
		if !ok || taken[i] {
			continue
		}
		taken[i] = true
		out = append(out, scored[i])
	}
	for i, c := range scored {
		if !taken[i] {
			out = append(out, c)
		}
	}
	return out
}

// Assemble converts ranked candidates to results and keeps at most limit of
// them. A limit of zero or less keeps everything.
func Assemble(ranked []Candidate, limit int) []Result {
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]Result, len(ranked))
	for i, c := range ranked {
		out[i] = Result{
			ID:         c.ID,
			Title:      c.Title,
			Author:     c.Author,
			CoverURL:   c.CoverURL,
			Popularity: c.Popularity,
			Score:      c.Score,
			Source:     c.Source,
			ISBN:       c.ISBN,
			PageCount:  c.PageCount,
			Rating:     c.Rating,
		}
	}
	return out
}
