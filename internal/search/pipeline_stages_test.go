package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func mustQuery(t *testing.T, raw string) Query {
	t.Helper()
	q, err := ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestParseQuery(t *testing.T) {
	for _, raw := range []string{"", " ", "a", "  b  ", "é", "\t\n"} {
		_, err := ParseQuery(raw)
		assert.ErrorIs(t, err, ErrQueryTooShort, "query %q", raw)
	}

	q, err := ParseQuery("  ab ")
	require.NoError(t, err)
	assert.Equal(t, "ab", q.String())

	q, err = ParseQuery("éé")
	require.NoError(t, err)
	assert.Equal(t, "éé", q.String())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Gruffalo", "thegruffalo"},
		{"the gruffalo!", "thegruffalo"},
		{"  Harry Potter & the Philosopher's Stone ", "harrypotterthephilosophersstone"},
		{"Catch-22", "catch22"},
		{"Éclair", "éclair"},
		{"", ""},
		{"...", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestDeduplicate(t *testing.T) {
	t.Run("community replaces catalog in place", func(t *testing.T) {
		in := []Candidate{
			{ID: "g1", Title: "The Gruffalo", Author: "Julia Donaldson", Source: SourceCatalog},
			{ID: "x", Title: "Other", Author: "Someone", Source: SourceCatalog},
			{ID: "community-7", Title: "the gruffalo", Author: "julia donaldson", Source: SourceCommunity},
		}

		got := Deduplicate(in)

		require.Len(t, got, 2)
		assert.Equal(t, "community-7", got[0].ID)
		assert.Equal(t, SourceCommunity, got[0].Source)
		assert.Equal(t, "x", got[1].ID)
	})

	t.Run("first record wins within a source", func(t *testing.T) {
		in := []Candidate{
			{ID: "a", Title: "Dune", Author: "Frank Herbert", Source: SourceCatalog},
			{ID: "b", Title: "DUNE", Author: "Frank Herbert.", Source: SourceCatalog},
			{ID: "c", Title: "Dune", Author: "Frank Herbert", Source: SourceCommunity},
			{ID: "d", Title: "Dune", Author: "Frank Herbert", Source: SourceCommunity},
		}

		got := Deduplicate(in)

		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("different authors stay distinct", func(t *testing.T) {
		in := []Candidate{
			{ID: "a", Title: "Emma", Author: "Jane Austen"},
			{ID: "b", Title: "Emma", Author: "Alexander McCall Smith"},
		}
		assert.Len(t, Deduplicate(in), 2)
	})

	t.Run("no duplicate identities", func(t *testing.T) {
		in := []Candidate{
			{ID: "1", Title: "A-B", Author: "x", Source: SourceCatalog},
			{ID: "2", Title: "a b", Author: "X", Source: SourceCommunity},
			{ID: "3", Title: "ab", Author: "x!", Source: SourceCatalog},
			{ID: "4", Title: "abc", Author: "x", Source: SourceCatalog},
		}
		seen := map[IdentityKey]bool{}
		for _, c := range Deduplicate(in) {
			key := KeyOf(c)
			assert.False(t, seen[key], "duplicate key %v", key)
			seen[key] = true
		}
		assert.Len(t, seen, 2)
	})
}

func TestScoreOf(t *testing.T) {
	q := mustQuery(t, "Hungry Caterpillar")

	tests := map[string]struct {
		c    Candidate
		want int
	}{
		"nothing":       {Candidate{Title: "Moon", Author: "Someone"}, 0},
		"exact title":   {Candidate{Title: " hungry caterpillar "}, BonusExactTitle + BonusTitlePrefix},
		"cover only":    {Candidate{Title: "Moon", CoverURL: strPtr("https://c/1.jpg")}, BonusCover},
		"empty cover":   {Candidate{Title: "Moon", CoverURL: strPtr("")}, 0},
		"community":     {Candidate{Title: "Moon", Source: SourceCommunity}, BonusCommunity},
		"author match":  {Candidate{Title: "Moon", Author: "The Hungry Caterpillar Trust"}, BonusAuthorMatch},
		"title prefix":  {Candidate{Title: "Hungry Caterpillar Board Book"}, BonusTitlePrefix},
		"infix is none": {Candidate{Title: "The Very Hungry Caterpillar"}, 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreOf(q, tt.c))
		})
	}
}

func TestScoreOf_SignalPriority(t *testing.T) {
	q := mustQuery(t, "dune")
	cover := strPtr("https://c/1.jpg")

	exact := ScoreOf(q, Candidate{Title: "Dune"})
	everythingElse := ScoreOf(q, Candidate{Title: "Arrakis", Author: "dune", CoverURL: cover, Source: SourceCommunity})
	assert.Greater(t, exact, everythingElse)

	for _, source := range []Source{SourceCatalog, SourceCommunity} {
		best := ScoreOf(q, Candidate{Title: "Dune", CoverURL: cover, Source: source})
		bare := ScoreOf(q, Candidate{Title: "Frank's Other Book", Source: source})
		assert.Greater(t, best, bare, "source %s", source)
	}

	assert.Greater(t, BonusExactTitle, BonusCover+BonusCommunity+BonusAuthorMatch+BonusTitlePrefix)
	assert.Greater(t, BonusCover, BonusCommunity+BonusAuthorMatch+BonusTitlePrefix)
	assert.Greater(t, BonusCommunity, BonusAuthorMatch+BonusTitlePrefix)
}

func TestScore_StableAndPure(t *testing.T) {
	q := mustQuery(t, "cat")
	in := []Candidate{
		{ID: "1", Title: "Dog"},
		{ID: "2", Title: "Cat", CoverURL: strPtr("https://c/2.jpg")},
		{ID: "3", Title: "Bird"},
		{ID: "4", Title: "Cats"},
		{ID: "5", Title: "Fish"},
	}

	first := Score(q, in)
	second := Score(q, in)

	assert.Equal(t, []string{"2", "4", "1", "3", "5"}, ids(first))
	assert.Equal(t, first, second)
	assert.Zero(t, in[1].Score)
}

func TestApplyOrder(t *testing.T) {
	scored := []Candidate{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}, {ID: "b4"}}

	tests := map[string]struct {
		ids  []string
		want []string
	}{
		"none":           {nil, []string{"b1", "b2", "b3", "b4"}},
		"partial":        {[]string{"b2", "b1"}, []string{"b2", "b1", "b3", "b4"}},
		"full":           {[]string{"b4", "b3", "b2", "b1"}, []string{"b4", "b3", "b2", "b1"}},
		"single tail id": {[]string{"b4"}, []string{"b4", "b1", "b2", "b3"}},
		"unknown skip":   {[]string{"zz", "b3"}, []string{"b3", "b1", "b2", "b4"}},
		"repeat ignored": {[]string{"b3", "b3"}, []string{"b3", "b1", "b2", "b4"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := ApplyOrder(scored, tt.ids)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestAssemble(t *testing.T) {
	ranked := []Candidate{
		{ID: "a", Title: "A", Author: "X", CoverURL: strPtr("https://c/a.jpg"), Source: SourceCommunity, Popularity: 3, Score: 75},
		{ID: "b", Title: "B", Author: "Y", Source: SourceCatalog, ISBN: "9780000000002", PageCount: 10, Rating: 4},
		{ID: "c", Title: "C", Author: "Z", Source: SourceCatalog},
	}

	got := Assemble(ranked, 2)
	require.Len(t, got, 2)
	assert.Equal(t, Result{
		ID: "a", Title: "A", Author: "X", CoverURL: strPtr("https://c/a.jpg"),
		Popularity: 3, Score: 75, Source: SourceCommunity,
	}, got[0])
	assert.Equal(t, "9780000000002", got[1].ISBN)
	assert.Nil(t, got[1].CoverURL)

	assert.Len(t, Assemble(ranked, 0), 3)
	assert.Len(t, Assemble(ranked, 10), 3)
	assert.NotNil(t, Assemble(nil, 5))
}

func TestSecureURL(t *testing.T) {
	tests := map[string]struct {
		in   string
		want *string
	}{
		"https kept":    {"https://books.google.com/a?id=1", strPtr("https://books.google.com/a?id=1")},
		"http upgraded": {"http://books.google.com/a?id=1", strPtr("https://books.google.com/a?id=1")},
		"upper scheme":  {"HTTP://covers.example.com/x.jpg", strPtr("https://covers.example.com/x.jpg")},
		"scheme-less":   {"//covers.example.com/x.jpg", strPtr("https://covers.example.com/x.jpg")},
		"trimmed":       {"  https://c.example.com/1.jpg ", strPtr("https://c.example.com/1.jpg")},
		"empty":         {"", nil},
		"blank":         {"   ", nil},
		"other scheme":  {"ftp://covers.example.com/x.jpg", nil},
		"data uri":      {"data:image/png;base64,AAAA", nil},
		"relative path": {"/covers/x.jpg", nil},
		"missing host":  {"https:///x.jpg", nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureURL(tt.in))
		})
	}
}
