package community

import (
	"context"
	"fmt"
	"strings"

	"booksearch/internal/logging"
	"booksearch/internal/metrics"
	"booksearch/internal/search"
)

// idPrefix keeps community ids apart from catalog volume ids.
const idPrefix = "community-"

const unknownAuthor = "Unknown"

// Source exposes a Repository as a search candidate source.
type Source struct {
	repo  Repository
	limit int
}

func NewSource(repo Repository, limit int) *Source {
	if limit <= 0 {
		limit = 15
	}
	return &Source{repo: repo, limit: limit}
}

func (s *Source) Name() search.Source { return search.SourceCommunity }

func (s *Source) Search(ctx context.Context, q search.Query) ([]search.Candidate, error) {
	rows, err := s.repo.Lookup(ctx, q.String(), s.limit)
	if err != nil {
		return nil, fmt.Errorf("community lookup: %w", err)
	}

	out := make([]search.Candidate, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			metrics.SkippedRows.WithLabelValues(string(search.SourceCommunity), "missing_title").Inc()
			logging.Ctx(ctx).Debug().Str("source", string(search.SourceCommunity)).Str("reason", "missing_title").Str("id", row.ID).Msg("skipped community row")
			continue
		}
		author := strings.TrimSpace(row.Author)
		if author == "" {
			author = unknownAuthor
		}
		out = append(out, search.Candidate{
			ID:         idPrefix + row.ID,
			Title:      title,
			Author:     author,
			CoverURL:   secureCover(row.CoverURL),
			Source:     search.SourceCommunity,
			Popularity: max(row.Popularity, 0),
		})
	}
	return out, nil
}

func secureCover(raw *string) *string {
	if raw == nil {
		return nil
	}
	return search.SecureURL(*raw)
}
