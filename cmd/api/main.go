package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"booksearch/internal/catalog"
	"booksearch/internal/community"
	"booksearch/internal/config"
	"booksearch/internal/httpx"
	"booksearch/internal/logging"
	"booksearch/internal/platform/genai"
	"booksearch/internal/platform/googlebooks"
	"booksearch/internal/rerank"
	"booksearch/internal/search"
)

const (
	generationTTL   = 10 * time.Minute
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, ready, closeRepo := openCommunity(ctx, cfg.Community)
	defer closeRepo()

	var communitySource search.CandidateSource
	if repo != nil {
		communitySource = community.NewSource(repo, cfg.Community.Limit)
	}

	booksClient := googlebooks.NewClient(googlebooks.Config{
		BaseURL:         cfg.Catalog.BaseURL,
		APIKey:          cfg.Catalog.APIKey,
		UserAgent:       cfg.Catalog.UserAgent,
		RPS:             cfg.Catalog.RPS,
		MaxRetries:      cfg.Catalog.MaxRetries,
		KeylessFallback: cfg.Catalog.KeylessFallback,
	})
	if cfg.Catalog.APIKey == "" {
		logging.Warn().Bool("keyless_fallback", cfg.Catalog.KeylessFallback).Msg("GOOGLE_BOOKS_API_KEY is not set")
	}
	catalogSource := catalog.NewSource(booksClient, cfg.Catalog.MaxResults)

	svc := search.NewService(communitySource, catalogSource, newReranker(cfg.Rerank), search.Options{
		CommunityTimeout: cfg.Community.Timeout,
		CatalogTimeout:   cfg.Catalog.Timeout,
		RerankTimeout:    cfg.Rerank.Timeout,
		RerankTopK:       cfg.Rerank.TopK,
		MaxPageSize:      cfg.Search.MaxPageSize,
	})

	generations := search.NewGenerations(generationTTL)
	go generations.RunSweeper(sweepInterval, ctx.Done())

	limiter := httpx.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer limiter.Close()

	handler := httpx.Chain(
		newRouter(search.NewHTTPHandler(svc, generations), ready),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(false),
		httpx.CORSMiddleware(cfg.Server.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes),
		limiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Str("community", cfg.Community.Driver).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openCommunity connects the configured community store. An unreachable
// database is logged, not fatal: lookups fail softly until it comes back.
func openCommunity(ctx context.Context, cfg config.CommunityConfig) (community.Repository, readinessCheck, func()) {
	log := logging.WithComponent("community")

	switch cfg.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Str("dsn", config.RedactDSN(cfg.DSN)).Msg("cannot create db pool, community source disabled")
			return nil, nil, func() {}
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("dsn", config.RedactDSN(cfg.DSN)).Msg("cannot ping database")
		} else {
			log.Info().Msg("database connection OK")
		}
		repo := community.NewPostgresRepo(pool, cfg.Timeout)
		return repo, repo.Ping, pool.Close

	case "sqlite":
		repo, err := community.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.DSN).Msg("cannot open sqlite, community source disabled")
			return nil, nil, func() {}
		}
		return repo, repo.Ping, func() { _ = repo.Close() }

	default:
		log.Info().Msg("community source disabled")
		return nil, nil, func() {}
	}
}

// newReranker returns nil, which disables reranking, unless it is enabled and
// has a key.
func newReranker(cfg config.RerankConfig) search.Reranker {
	if !cfg.Enabled {
		logging.Info().Msg("reranking disabled")
		return nil
	}
	if cfg.APIKey == "" {
		logging.Warn().Msg("GEMINI_API_KEY is not set, reranking disabled")
		return nil
	}
	return rerank.New(genai.NewClient(genai.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}))
}
