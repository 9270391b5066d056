package main

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksearch/internal/community"
	"booksearch/internal/config"
	"booksearch/internal/logging"
)

func TestParseBooks_Default(t *testing.T) {
	rows, err := parseBooks(defaultBooks)

	require.NoError(t, err)
	require.NotEmpty(t, rows)
	ids := map[string]bool{}
	for _, row := range rows {
		assert.NotEmpty(t, row.Title, row.ID)
		assert.False(t, ids[row.ID], "duplicate id %s", row.ID)
		ids[row.ID] = true
	}
}

func TestParseBooks_Invalid(t *testing.T) {
	_, err := parseBooks([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestSeed_SQLite(t *testing.T) {
	ctx := context.Background()
	repo, closeRepo, err := openRepo(ctx, config.CommunityConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(closeRepo)

	rows, err := parseBooks(defaultBooks)
	require.NoError(t, err)

	n, err := seed(ctx, repo, rows)
	require.NoError(t, err)
	assert.Equal(t, len(rows), n)

	// Seeding twice updates in place.
	_, err = seed(ctx, repo, rows)
	require.NoError(t, err)

	got, err := repo.Lookup(ctx, "gruffalo", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gruffalo", got[0].ID)
}

func TestSeed_StopsAtInvalidRow(t *testing.T) {
	ctx := context.Background()
	repo, closeRepo, err := openRepo(ctx, config.CommunityConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(closeRepo)

	n, err := seed(ctx, repo, []community.Row{{ID: "a", Title: "A"}, {ID: "b"}, {ID: "c", Title: "C"}})

	assert.ErrorIs(t, err, community.ErrInvalidRow)
	assert.Equal(t, 1, n)
}

func TestOpenRepo_NoStore(t *testing.T) {
	_, _, err := openRepo(context.Background(), config.CommunityConfig{Driver: "none"})
	assert.Error(t, err)
}

func TestLoadConfig_AppliesLogLevel(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
		logging.Init(logging.Config{Level: "info", Format: "json"})
	})
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
