package search

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s and drops every rune that is not a letter or digit,
// so "The Gruffalo!" and "the gruffalo" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IdentityKey is the deduplication key of a book.
type IdentityKey struct {
	Title  string
	Author string
}

func KeyOf(c Candidate) IdentityKey {
	return IdentityKey{Title: Normalize(c.Title), Author: Normalize(c.Author)}
}

// Deduplicate keeps one candidate per IdentityKey. A community record replaces
// any catalog record with the same key; otherwise the first record seen wins.
// Survivors keep the position of the first record with their key.
func Deduplicate(in []Candidate) []Candidate {
	out := make([]Candidate, 0, len(in))
	index := make(map[IdentityKey]int, len(in))

	for _, c := range in {
		key := KeyOf(c)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		if out[i].Source != SourceCommunity && c.Source == SourceCommunity {
			out[i] = c
		}
	}
	return out
}
