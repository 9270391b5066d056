// Package rerank asks a generative model to reorder the best heuristic
// candidates. The model's answer is untrusted text; anything short of a clean
// list of known ids is reported as ErrUnavailable.
package rerank

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"booksearch/internal/search"
)

// ErrUnavailable is the only error Rerank returns. The caller keeps its
// heuristic order whenever it sees it.
var ErrUnavailable = errors.New("rerank unavailable")

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Reranker struct {
	gen Generator
}

func New(gen Generator) *Reranker {
	return &Reranker{gen: gen}
}

// projection is all the model gets to see of a candidate.
type projection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

const promptTemplate = `You rank children's and family book search results.
Search query: %s

Candidates (JSON):
%s

Order the candidate ids from most to least relevant to the query. Prefer exact
title matches and the canonical edition of a book over study guides, summaries,
box sets and companion books. Use only ids from the list.

Return ONLY a JSON object of the form {"rankedIds": ["id", ...]}.`

// BuildPrompt renders the ranking prompt for q and top.
func BuildPrompt(q search.Query, top []search.Candidate) (string, error) {
	items := make([]projection, len(top))
	for i, c := range top {
		items[i] = projection{ID: c.ID, Title: c.Title, Author: c.Author}
	}
	list, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	query, err := json.Marshal(q.String())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, query, list), nil
}

// Rerank implements search.Reranker.
func (r *Reranker) Rerank(ctx context.Context, q search.Query, top []search.Candidate) ([]string, error) {
	known := make(map[string]struct{}, len(top))
	for _, c := range top {
		if _, dup := known[c.ID]; dup || c.ID == "" {
			return nil, fmt.Errorf("%w: candidate ids are not unique", ErrUnavailable)
		}
		known[c.ID] = struct{}{}
	}

	prompt, err := BuildPrompt(q, top)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %v", ErrUnavailable, err)
	}

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %v", ErrUnavailable, err)
	}

	ids, err := ParseRanking(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := validate(ids, known); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ids, nil
}

// validate requires every id to name a distinct known candidate.
func validate(ids []string, known map[string]struct{}) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("unknown candidate id %q", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("candidate id %q repeated", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

var _ search.Reranker = (*Reranker)(nil)
