// Package catalog adapts the external book metadata catalog into a search
// candidate source. It is the primary provider, so its failures are returned.
package catalog

//go:generate mockgen -source=source.go -destination=mock_volume_searcher.go -package=catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"booksearch/internal/logging"
	"booksearch/internal/metrics"
	"booksearch/internal/platform/googlebooks"
	"booksearch/internal/search"
)

// ErrUnavailable wraps every hard failure of the catalog.
var ErrUnavailable = errors.New("catalog unavailable")

const (
	unknownAuthor = "Unknown"
	matureRating  = "MATURE"
)

// VolumeSearcher is the metadata catalog client.
type VolumeSearcher interface {
	SearchVolumes(ctx context.Context, query string, maxResults int) (*googlebooks.SearchResult, error)
}

type Source struct {
	client     VolumeSearcher
	maxResults int
}

func NewSource(client VolumeSearcher, maxResults int) *Source {
	return &Source{client: client, maxResults: maxResults}
}

func (s *Source) Name() search.Source { return search.SourceCatalog }

// Search queries the catalog and keeps titled, age-appropriate volumes.
// A missing API key is reported as search.ErrNotConfigured.
func (s *Source) Search(ctx context.Context, q search.Query) ([]search.Candidate, error) {
	res, err := s.client.SearchVolumes(ctx, q.String(), s.maxResults)
	if err != nil {
		if errors.Is(err, googlebooks.ErrMissingKey) {
			return nil, fmt.Errorf("%w: missing Google Books API key", search.ErrNotConfigured)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	out := make([]search.Candidate, 0, len(res.Items))
	for _, item := range res.Items {
		c, reason := toCandidate(item)
		if reason != "" {
			metrics.SkippedRows.WithLabelValues(string(search.SourceCatalog), reason).Inc()
			logging.Ctx(ctx).Debug().Str("source", string(search.SourceCatalog)).Str("reason", reason).Str("id", item.Volume.ID).Msg("skipped catalog item")
			continue
		}
		out = append(out, c)
		if s.maxResults > 0 && len(out) == s.maxResults {
			break
		}
	}
	return out, nil
}

// toCandidate returns the candidate for item, or the reason it was dropped.
func toCandidate(item googlebooks.Item) (search.Candidate, string) {
	if item.Skipped() {
		return search.Candidate{}, item.SkipReason
	}
	v := item.Volume

	title := strings.TrimSpace(v.Title)
	if title == "" {
		return search.Candidate{}, "missing_title"
	}
	if strings.EqualFold(v.MaturityRating, matureRating) {
		return search.Candidate{}, "mature"
	}

	author := unknownAuthor
	if len(v.Authors) > 0 {
		if first := strings.TrimSpace(v.Authors[0]); first != "" {
			author = first
		}
	}

	cover := search.SecureURL(v.Thumbnail)
	if cover == nil {
		cover = search.SecureURL(v.SmallThumbnail)
	}

	isbn := v.ISBN13
	if isbn == "" {
		isbn = v.ISBN10
	}

	return search.Candidate{
		ID:         v.ID,
		Title:      title,
		Author:     author,
		CoverURL:   cover,
		Source:     search.SourceCatalog,
		Popularity: max(v.RatingsCount, 0),
		ISBN:       isbn,
		PageCount:  max(v.PageCount, 0),
		Rating:     v.AverageRating,
	}, ""
}
