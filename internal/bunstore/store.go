// Package bunstore implements the backend contract on a SQL database through
// bun. SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq) are supported.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures a Store.
type Options struct {
	Driver string
	DSN    string

	// JWTSecret signs access tokens. Required.
	JWTSecret []byte
	// SessionTTL bounds access token and session lifetime.
	SessionTTL time.Duration
	// AutoConfirm marks new accounts as confirmed at sign-up.
	AutoConfirm bool

	// Now replaces time.Now, for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = time.Hour
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Store is a backend.Client over a bun database.
type Store struct {
	db         *bun.DB
	auth       *authService
	products   *table[model.Product]
	categories *table[model.Category]
}

var _ backend.Client = (*Store)(nil)

// Open connects to the database named by opts and returns a Store. Call
// Migrate before first use.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		db  *bun.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		db, err = openSQLite(opts.DSN)
	case DriverPostgres:
		db, err = openPostgres(opts.DSN)
	default:
		return nil, fmt.Errorf("bunstore: unsupported driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("bunstore: ping %s: %w", opts.Driver, err)
	}

	s, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
	}
	// a single connection keeps in-memory databases alive and serializes writers
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func openPostgres(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, errors.New("bunstore: postgres requires a DSN")
	}
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open postgres: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// New wraps an open bun database.
func New(db *bun.DB, opts Options) (*Store, error) {
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("bunstore: JWTSecret is required")
	}
	opts = opts.withDefaults()

	return &Store{
		db:   db,
		auth: newAuthService(db, opts),
		products: newTable(db, "products", opts.Now, productColumns, func(p *model.Product, now time.Time) string {
			p.ID = 0
			p.CreatedAt = now
			return p.UserID
		}),
		categories: newTable(db, "categories", opts.Now, categoryColumns, func(c *model.Category, now time.Time) string {
			c.ID = 0
			c.CreatedAt = now
			return c.UserID
		}),
	}, nil
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{
		(*userRecord)(nil),
		(*sessionRecord)(nil),
		(*model.Category)(nil),
		(*model.Product)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: create table for %T: %w", m, err)
		}
	}

	indexes := []struct {
		model any
		name  string
		cols  []string
	}{
		{(*model.Product)(nil), "products_user_id_idx", []string{"user_id"}},
		{(*model.Category)(nil), "categories_user_id_idx", []string{"user_id"}},
		{(*sessionRecord)(nil), "auth_sessions_user_id_idx", []string{"user_id"}},
	}
	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.cols...).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// DB exposes the underlying database.
func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Auth() backend.Auth {
	return s.auth
}

func (s *Store) Products() backend.Table[model.Product] {
	return s.products
}

func (s *Store) Categories() backend.Table[model.Category] {
	return s.categories
}

// ConfirmEmail marks the account registered under email as confirmed.
func (s *Store) ConfirmEmail(ctx context.Context, email string) error {
	return s.auth.confirmEmail(ctx, email)
}
