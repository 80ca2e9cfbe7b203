package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_A", "va")
	in := []byte("a: ${X_A:da}\nb: ${X_B:db}\nc: ${X_C}\n")
	out := resolveEnv(in)
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
	assert.Contains(t, string(out), "c: \n")
}

func TestLoadConfig_APIServer(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	_ = os.Chdir(tmp)

	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("FRONTEND_ORIGIN", "http://localhost:3000, https://dash.example.com")

	yaml := `
server:
  port: 9000
database:
  url: ${DATABASE_URL:sqlite:///./data/test.db}
jwt:
  secret_key: ${SECRET_KEY}
cors:
  allow_origins:
    - "${FRONTEND_ORIGIN:*}"
rate_limit:
  enabled: true
  login:
    limit: 3
`
	file := filepath.Join(tmp, "apiserver.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig[APIServerConfig]("apiserver.yaml")
	require.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite:///./data/test.db", cfg.Database.URL)
	assert.Equal(t, "s3cr3t", cfg.JWT.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Duration)
	assert.Equal(t, []string{"http://localhost:3000", "https://dash.example.com"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 3, cfg.RateLimit.Login.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, 10, cfg.RateLimit.Read.Limit)
	assert.Equal(t, 30*time.Minute, cfg.Collector.Interval)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "postgresql://dash:pw@db:5432/ifood")
	t.Setenv("FRONTEND_ORIGIN", "https://dash.example.com")
	t.Setenv("RATE_LIMIT_STORE", "redis")

	file, err := filepath.Abs(filepath.Join("..", "..", "..", "configs", "apiserver.yaml"))
	require.NoError(t, err)
	cfg, _, err := LoadConfig[APIServerConfig](file)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	dbType, dsn, err := cfg.Database.Resolve()
	require.NoError(t, err)
	assert.Equal(t, DatabaseTypePostgres, dbType)
	assert.Equal(t, "postgres://dash:pw@db:5432/ifood", dsn)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "redis", cfg.RateLimit.Store)
	assert.Equal(t, 5, cfg.RateLimit.Login.Limit)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Duration)
	assert.Equal(t, "/prometheus", cfg.Metrics.Path)
	assert.True(t, cfg.Collector.Enabled)
	assert.Equal(t, "https://example.com/ifood", cfg.Collector.URL)
	assert.Equal(t, 30*time.Minute, cfg.Collector.Interval)
}
