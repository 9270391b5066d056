package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return tmp
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 25, cfg.Rerank.TopK)
	assert.Equal(t, "postgres", cfg.Community.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "gb-key")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("COMMUNITY_DRIVER", "none")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "gb-key", cfg.Catalog.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "none", cfg.Community.Driver)
}

func TestLoad_YAMLFile(t *testing.T) {
	tmp := chdirTemp(t)
	yml := "rerank:\n  top_k: 10\n  model: test-model\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Rerank.TopK)
	assert.Equal(t, "test-model", cfg.Rerank.Model)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	tmp := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("APP_ADDR=:7000\nRERANK_MODEL=from-file\n"), 0o644))
	t.Setenv("APP_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("RERANK_MODEL") })

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "from-file", cfg.Rerank.Model)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Rerank.TopK = 30
	cfg.Community.Driver = "mysql"
	cfg.Catalog.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rerank.top_k")
	assert.Contains(t, err.Error(), "community.driver")
	assert.Contains(t, err.Error(), "catalog.timeout")
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/x", RedactDSN("postgres://u:p@db:5432/x"))
	assert.Equal(t, "file::memory:", RedactDSN("file::memory:"))
}
