package community

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Lookup(ctx context.Context, query string, limit int) ([]Row, error) {
	const sql = `
		SELECT id, title, author, cover_url, popularity
		FROM community_books
		WHERE title ILIKE $1 ESCAPE '\' OR author ILIKE $1 ESCAPE '\'
		ORDER BY popularity DESC, id ASC
		LIMIT $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, containsPattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Title, &row.Author, &row.CoverURL, &row.Popularity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Upsert(ctx context.Context, row Row) error {
	if err := validateRow(row); err != nil {
		return err
	}
	const sql = `
		INSERT INTO community_books (id, title, author, cover_url, popularity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			cover_url = EXCLUDED.cover_url,
			popularity = EXCLUDED.popularity,
			updated_at = NOW()
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, row.ID, row.Title, row.Author, row.CoverURL, row.Popularity)
	return err
}

// Ping reports whether the database is reachable.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}
