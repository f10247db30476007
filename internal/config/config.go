// Package config loads service configuration from the environment, with
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-inventory/cache"
	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Service ServiceConfig
	Logging LoggingConfig
	Store   StoreConfig
	Auth    AuthConfig
	Cache   cache.Config
	HTTP    HTTPConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
}

type LoggingConfig struct {
	Level string
	// Pretty switches to the human readable console writer.
	Pretty bool
}

type StoreConfig struct {
	Driver string
	DSN    string
	// AutoConfirm marks new accounts as confirmed, for local development.
	AutoConfirm bool
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	// CookieName is the cookie that carries the access token.
	CookieName string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Service: ServiceConfig{Name: "inventory", Version: "dev", Env: "development"},
		Logging: LoggingConfig{Level: "info"},
		Store:   StoreConfig{Driver: bunstore.DriverSQLite, DSN: "file:inventory.db?cache=shared"},
		Auth:    AuthConfig{SessionTTL: time.Hour, CookieName: "inventory_session"},
		Cache:   cache.DefaultConfig(),
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads envFiles (missing files are skipped) and then the process
// environment on top of Default. Variables already set in the environment
// win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	cfg := Default()
	env := &envReader{lookup: os.LookupEnv}

	env.str("SERVICE_NAME", &cfg.Service.Name)
	env.str("SERVICE_VERSION", &cfg.Service.Version)
	env.str("SERVICE_ENV", &cfg.Service.Env)

	env.str("LOG_LEVEL", &cfg.Logging.Level)
	env.boolean("LOG_PRETTY", &cfg.Logging.Pretty)

	env.str("STORE_DRIVER", &cfg.Store.Driver)
	env.str("STORE_DSN", &cfg.Store.DSN)
	env.boolean("STORE_AUTO_CONFIRM", &cfg.Store.AutoConfirm)

	env.str("JWT_SECRET", &cfg.Auth.JWTSecret)
	env.duration("SESSION_TTL", &cfg.Auth.SessionTTL)
	env.str("SESSION_COOKIE", &cfg.Auth.CookieName)

	env.integer("CACHE_CAPACITY", &cfg.Cache.Capacity)
	env.integer("CACHE_SHARDS", &cfg.Cache.NumShards)
	env.duration("CACHE_TTL", &cfg.Cache.TTL)
	env.integer("CACHE_EVICTION_PERCENTAGE", &cfg.Cache.EvictionPercentage)
	env.duration("CACHE_EVICTION_INTERVAL", &cfg.Cache.EvictionInterval)

	env.str("HTTP_ADDR", &cfg.HTTP.Addr)
	env.duration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	env.duration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	env.duration("HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout)

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL: %w", err))
	}
	switch c.Store.Driver {
	case bunstore.DriverSQLite:
	case bunstore.DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("config: STORE_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: STORE_DRIVER %q is not supported", c.Store.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("config: SESSION_TTL must be positive"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("config: SESSION_COOKIE must not be empty"))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: cache: %w", err))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("config: HTTP_ADDR must not be empty"))
	}
	if c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("config: HTTP_SHUTDOWN_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// StoreOptions maps the store and auth sections to bunstore options.
func (c Config) StoreOptions() bunstore.Options {
	return bunstore.Options{
		Driver:      c.Store.Driver,
		DSN:         c.Store.DSN,
		JWTSecret:   []byte(c.Auth.JWTSecret),
		SessionTTL:  c.Auth.SessionTTL,
		AutoConfirm: c.Store.AutoConfirm,
	}
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %q is not an integer", key, v))
		return
	}
	*dst = n
}

func (r *envReader) boolean(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %q is not a boolean", key, v))
		return
	}
	*dst = b
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %q is not a duration", key, v))
		return
	}
	*dst = d
}
