package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Invoker.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 4, cfg.Engine.MaxParallel)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
invoker:
  backend: http
  endpoint: http://bridge:8081
engine:
  max_parallel: 8
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "http", cfg.Invoker.Backend)
	assert.Equal(t, "http://bridge:8081", cfg.Invoker.Endpoint)
	assert.Equal(t, 8, cfg.Engine.MaxParallel)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset fields keep their defaults.
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("AE_SERVER_ADDRESS", ":7070")
	t.Setenv("AE_SESSION_TTL", "5m")
	t.Setenv("AE_ENGINE_MAX_PARALLEL", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2, cfg.Engine.MaxParallel)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Invoker.Backend = "carrier-pigeon" }},
		{"http without endpoint", func(c *Config) { c.Invoker.Backend = "http" }},
		{"mcp without endpoint", func(c *Config) { c.Invoker.Backend = "mcp" }},
		{"script without dir", func(c *Config) { c.Invoker.Backend = "script" }},
		{"non-positive parallelism", func(c *Config) { c.Engine.MaxParallel = 0 }},
		{"non-positive ttl", func(c *Config) { c.Session.TTL = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
