package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, bunstore.DriverSQLite, cfg.Store.Driver)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_DSN", "postgres://localhost/inventory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CACHE_CAPACITY", "128")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, bunstore.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, 128, cfg.Cache.Capacity)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())

	opts := cfg.StoreOptions()
	assert.Equal(t, []byte("s3cret"), opts.JWTSecret)
	assert.Equal(t, "postgres://localhost/inventory", opts.DSN)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVENTORY_TEST_SERVICE=from-file\n"), 0o600))
	t.Setenv("INVENTORY_TEST_SERVICE", "")
	os.Unsetenv("INVENTORY_TEST_SERVICE")

	_, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("INVENTORY_TEST_SERVICE"))
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("CACHE_CAPACITY", "lots")
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_CAPACITY")
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Auth.JWTSecret = "s3cret"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad driver", func(c *Config) { c.Store.Driver = "oracle" }, `STORE_DRIVER "oracle"`},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = bunstore.DriverPostgres; c.Store.DSN = "" }, "STORE_DSN"},
		{"cache", func(c *Config) { c.Cache.Capacity = 0 }, "cache"},
		{"session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }, "SESSION_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
