// Package community serves books curated by the application's own users. It is
// the secondary search source: lookups are fast and small, and the service
// treats their failure as soft.
package community

//go:generate mockgen -source=community.go -destination=mock_repository.go -package=community

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidRow is returned by Upsert for rows that cannot be stored.
var ErrInvalidRow = errors.New("invalid community book")

// Row is one curated community book.
type Row struct {
	ID         string
	Title      string
	Author     string
	CoverURL   *string
	Popularity int
}

// Repository defines the contract for community book storage.
type Repository interface {
	// Lookup returns at most limit rows whose title or author contains query,
	// case-insensitively, most popular first.
	Lookup(ctx context.Context, query string, limit int) ([]Row, error)
	Upsert(ctx context.Context, row Row) error
}

func validateRow(row Row) error {
	if strings.TrimSpace(row.ID) == "" {
		return errors.Join(ErrInvalidRow, errors.New("id is required"))
	}
	if strings.TrimSpace(row.Title) == "" {
		return errors.Join(ErrInvalidRow, errors.New("title is required"))
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching query anywhere, with the
// wildcard characters in query taken literally.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
