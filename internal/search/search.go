// Package search aggregates book candidates from the community table and the
// external metadata catalog, deduplicates and scores them, optionally lets a
// generative model reorder the head of the list, and shapes the result.
package search

//go:generate mockgen -source=search.go -destination=mock_search.go -package=search

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest trimmed query, in runes, that reaches the sources.
const MinQueryLength = 2

var (
	// ErrQueryTooShort is returned by ParseQuery for queries under MinQueryLength.
	ErrQueryTooShort = errors.New("query too short")
	// ErrNotConfigured marks failures caused by missing setup, such as an absent
	// provider key. Its message is safe to show to the user.
	ErrNotConfigured = errors.New("book search is not configured")
)

// Source identifies where a candidate came from.
type Source string

const (
	SourceCommunity Source = "community"
	SourceCatalog   Source = "catalog"
)

// Candidate is one discovered book. It lives for a single request.
type Candidate struct {
	// ID is unique within its source only.
	ID     string
	Title  string
	Author string
	// CoverURL is an https image URL, or nil when the book has no art.
	CoverURL   *string
	Source     Source
	Popularity int
	// Score is assigned by Score and never by a source.
	Score int

	ISBN      string
	PageCount int
	Rating    float64
}

// HasCover reports whether the candidate carries cover art.
func (c Candidate) HasCover() bool {
	return c.CoverURL != nil && *c.CoverURL != ""
}

// Query is a validated, trimmed search string.
type Query struct {
	text string
}

// ParseQuery trims raw and rejects it when shorter than MinQueryLength.
func ParseQuery(raw string) (Query, error) {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) < MinQueryLength {
		return Query{}, ErrQueryTooShort
	}
	return Query{text: text}, nil
}

func (q Query) String() string { return q.text }

// CandidateSource turns a query into raw candidates.
type CandidateSource interface {
	Name() Source
	Search(ctx context.Context, q Query) ([]Candidate, error)
}

// Reranker asks an external model for a better order of the top candidates.
// It returns candidate ids, all known and distinct, in the preferred order.
// The list may name only a subset of top. Any error means the heuristic
// order stands.
type Reranker interface {
	Rerank(ctx context.Context, q Query, top []Candidate) ([]string, error)
}
