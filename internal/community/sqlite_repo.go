package community

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS community_books (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	cover_url  TEXT,
	popularity INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_community_books_popularity ON community_books(popularity DESC);
`

// SQLiteRepo keeps community books in an embedded database, for local
// development and tests.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens path (":memory:" is fine) and creates the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// An in-memory database lives as long as its connection.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepo{db: db}
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepo) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create community schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Lookup(ctx context.Context, query string, limit int) ([]Row, error) {
	// SQLite LIKE is case-insensitive for ASCII.
	const q = `
		SELECT id, title, author, cover_url, popularity
		FROM community_books
		WHERE title LIKE ?1 ESCAPE '\' OR author LIKE ?1 ESCAPE '\'
		ORDER BY popularity DESC, id ASC
		LIMIT ?2
	`
	rows, err := r.db.QueryContext(ctx, q, containsPattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row   Row
			cover sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Title, &row.Author, &cover, &row.Popularity); err != nil {
			return nil, err
		}
		if cover.Valid {
			row.CoverURL = &cover.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Upsert(ctx context.Context, row Row) error {
	if err := validateRow(row); err != nil {
		return err
	}
	const q = `
		INSERT INTO community_books (id, title, author, cover_url, popularity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			cover_url = excluded.cover_url,
			popularity = excluded.popularity,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, q, row.ID, row.Title, row.Author, row.CoverURL, row.Popularity)
	return err
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
