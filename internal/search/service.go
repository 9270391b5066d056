package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"booksearch/internal/logging"
	"booksearch/internal/metrics"
)

// Options tunes the pipeline. Zero values fall back to the defaults below.
type Options struct {
	CommunityTimeout time.Duration
	CatalogTimeout   time.Duration
	RerankTimeout    time.Duration
	// RerankTopK is how many of the best heuristic candidates the reranker sees.
	RerankTopK int
	// MaxPageSize caps the number of results returned.
	MaxPageSize int
}

func (o Options) withDefaults() Options {
	if o.CommunityTimeout <= 0 {
		o.CommunityTimeout = 2 * time.Second
	}
	if o.CatalogTimeout <= 0 {
		o.CatalogTimeout = 5 * time.Second
	}
	if o.RerankTimeout <= 0 {
		o.RerankTimeout = 4 * time.Second
	}
	if o.RerankTopK <= 0 || o.RerankTopK > 25 {
		o.RerankTopK = 25
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 40
	}
	return o
}

// Service runs the search pipeline. Clients are injected; the service keeps no
// state between calls.
type Service struct {
	community CandidateSource
	catalog   CandidateSource
	reranker  Reranker
	opts      Options
}

// NewService wires the pipeline. community and reranker may be nil.
func NewService(community, catalog CandidateSource, reranker Reranker, opts Options) *Service {
	return &Service{
		community: community,
		catalog:   catalog,
		reranker:  reranker,
		opts:      opts.withDefaults(),
	}
}

// Search returns ranked results for raw. A query that is too short yields an
// empty list and touches no source. A catalog failure is returned as an error
// with nil results; errors wrapping ErrNotConfigured carry a user-facing message.
func (s *Service) Search(ctx context.Context, raw string, limit int) ([]Result, error) {
	q, err := ParseQuery(raw)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("empty_query").Inc()
		return []Result{}, nil
	}

	gathered, err := s.gather(ctx, q)
	if err != nil {
		outcome := "catalog_failure"
		if errors.Is(err, ErrNotConfigured) {
			outcome = "not_configured"
		}
		metrics.SearchRequests.WithLabelValues(outcome).Inc()
		return nil, err
	}

	scored := Score(q, Deduplicate(gathered))
	ranked := s.rerank(ctx, q, scored)

	metrics.SearchRequests.WithLabelValues("ok").Inc()
	return Assemble(ranked, s.pageSize(limit)), nil
}

func (s *Service) pageSize(limit int) int {
	if limit <= 0 || limit > s.opts.MaxPageSize {
		return s.opts.MaxPageSize
	}
	return limit
}

// gather queries both sources concurrently. Neither call cancels the other.
// Community results come first so that, on equal scores, curated records lead.
func (s *Service) gather(ctx context.Context, q Query) ([]Candidate, error) {
	defer observe("gather", time.Now())

	var (
		g             errgroup.Group
		fromCommunity []Candidate
		fromCatalog   []Candidate
		catalogErr    error
	)

	if s.community != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.opts.CommunityTimeout)
			defer cancel()
			res, err := s.community.Search(cctx, q)
			if err != nil {
				metrics.SourceErrors.WithLabelValues(string(SourceCommunity)).Inc()
				logging.Ctx(ctx).Warn().Err(err).Str("source", string(SourceCommunity)).Int("query_len", len(q.String())).Msg("community source failed, continuing without it")
				return nil
			}
			fromCommunity = res
			return nil
		})
	}

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.opts.CatalogTimeout)
		defer cancel()
		res, err := s.catalog.Search(cctx, q)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(string(SourceCatalog)).Inc()
			catalogErr = err
			return nil
		}
		fromCatalog = res
		return nil
	})

	_ = g.Wait()

	if catalogErr != nil {
		if errors.Is(catalogErr, ErrNotConfigured) {
			return nil, catalogErr
		}
		return nil, fmt.Errorf("catalog source: %w", catalogErr)
	}

	metrics.SourceCandidates.WithLabelValues(string(SourceCommunity)).Add(float64(len(fromCommunity)))
	metrics.SourceCandidates.WithLabelValues(string(SourceCatalog)).Add(float64(len(fromCatalog)))

	out := make([]Candidate, 0, len(fromCommunity)+len(fromCatalog))
	out = append(out, fromCommunity...)
	return append(out, fromCatalog...), nil
}

// rerank lets the reranker reorder the top of scored. Any failure leaves
// scored untouched.
func (s *Service) rerank(ctx context.Context, q Query, scored []Candidate) []Candidate {
	if s.reranker == nil || len(scored) < 2 {
		metrics.RerankOutcomes.WithLabelValues("skipped").Inc()
		return scored
	}
	defer observe("rerank", time.Now())

	top := scored
	if len(top) > s.opts.RerankTopK {
		top = top[:s.opts.RerankTopK]
	}

	rctx, cancel := context.WithTimeout(ctx, s.opts.RerankTimeout)
	defer cancel()

	ids, err := s.reranker.Rerank(rctx, q, top)
	if err != nil {
		metrics.RerankOutcomes.WithLabelValues("unavailable").Inc()
		logging.Ctx(ctx).Warn().Err(err).Int("candidates", len(top)).Msg("rerank unavailable, keeping heuristic order")
		return scored
	}

	metrics.RerankOutcomes.WithLabelValues("applied").Inc()
	return ApplyOrder(scored, ids)
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
