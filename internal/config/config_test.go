package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, SourceEmbedded, cfg.Catalog.Source)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 33.0, cfg.Scoring.Thresholds.Intermediate)
	assert.Equal(t, 66.0, cfg.Scoring.Thresholds.Advanced)
	assert.False(t, cfg.NeedsMongo())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  cors_allowed_origins: [https://assess.example.com]
session:
  store: redis
  ttl: 2h
redis:
  addr: redis://cache:6379
scoring:
  thresholds:
    intermediate: 40
    advanced: 75
results:
  archive: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://assess.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 40.0, cfg.Scoring.Thresholds.Intermediate)
	assert.True(t, cfg.NeedsMongo())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MATURITY_LOG_LEVEL", "debug")
	t.Setenv("MATURITY_CATALOG_SOURCE", "mongo")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourceMongo, cfg.Catalog.Source)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("MATURITY_SERVER_PORT", "6060")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]func(*Config){
		"port":        func(c *Config) { c.Server.Port = 0 },
		"source":      func(c *Config) { c.Catalog.Source = "s3" },
		"dir missing": func(c *Config) { c.Catalog.Source = SourceDir },
		"store":       func(c *Config) { c.Session.Store = "etcd" },
		"capacity":    func(c *Config) { c.Session.Capacity = 0 },
		"secret":      func(c *Config) { c.Auth.JWTSecret = "" },
		"token ttl":   func(c *Config) { c.Auth.TokenTTL = 0 },
		"thresholds":  func(c *Config) { c.Scoring.Thresholds.Advanced = 10 },
		"mongo uri": func(c *Config) {
			c.Results.Archive = true
			c.Mongo.URI = ""
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
