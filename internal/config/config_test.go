package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unshorten/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 200, cfg.Expander.Concurrency)
	require.Equal(t, 10*time.Second, cfg.Expander.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Expander.DNSCacheTTL)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, 0, cfg.Redis.DB)
	require.Empty(t, cfg.Debug.Addr, "debug listener is off by default")
}

func TestLoad_ReadsYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
expander:
  concurrency: 50
  timeout: 3s
redis:
  host: cache.internal
  port: 6380
  db: 2
debug:
  addr: ":9090"
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, 50, cfg.Expander.Concurrency)
	require.Equal(t, 3*time.Second, cfg.Expander.Timeout)
	require.Equal(t, "cache.internal", cfg.Redis.Host)
	require.Equal(t, 6380, cfg.Redis.Port)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, ":9090", cfg.Debug.Addr)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("EXPANDER_CONCURRENCY", "17")
	t.Setenv("REDIS_HOST", "elsewhere")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	require.Equal(t, 17, cfg.Expander.Concurrency)
	require.Equal(t, "elsewhere", cfg.Redis.Host)
}
