// Command seed loads curated community books into the configured store.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"booksearch/internal/community"
	"booksearch/internal/config"
	"booksearch/internal/logging"
)

//go:embed books.json
var defaultBooks []byte

type seedBook struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	CoverURL   *string `json:"coverUrl"`
	Popularity int     `json:"popularity"`
}

func main() {
	file := flag.String("file", "", "JSON file of books to seed (defaults to the built-in list)")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.WithComponent("seed")

	data := defaultBooks
	if *file != "" {
		if data, err = os.ReadFile(*file); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("cannot read seed file")
		}
	}
	books, err := parseBooks(data)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed data")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, closeRepo, err := openRepo(ctx, cfg.Community)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Community.Driver).Msg("cannot open community store")
	}
	defer closeRepo()

	n, err := seed(ctx, repo, books)
	if err != nil {
		log.Fatal().Err(err).Int("seeded", n).Msg("seeding failed")
	}
	log.Info().Int("books", n).Str("driver", cfg.Community.Driver).Msg("seeding complete")
}

// loadConfig reads the shared configuration and applies its log settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})
	return cfg, nil
}

func parseBooks(data []byte) ([]community.Row, error) {
	var books []seedBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	rows := make([]community.Row, len(books))
	for i, b := range books {
		rows[i] = community.Row{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.Author,
			CoverURL:   b.CoverURL,
			Popularity: b.Popularity,
		}
	}
	return rows, nil
}

// seed upserts rows in order and stops at the first failure.
func seed(ctx context.Context, repo community.Repository, rows []community.Row) (int, error) {
	for i, row := range rows {
		if err := repo.Upsert(ctx, row); err != nil {
			return i, fmt.Errorf("upsert %q: %w", row.ID, err)
		}
	}
	return len(rows), nil
}

func openRepo(ctx context.Context, cfg config.CommunityConfig) (community.Repository, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping %s: %w", config.RedactDSN(cfg.DSN), err)
		}
		return community.NewPostgresRepo(pool, cfg.Timeout), pool.Close, nil
	case "sqlite":
		repo, err := community.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("community driver %q has no store to seed", cfg.Driver)
	}
}
