// Package postgres loads the user directory from a PostgreSQL table.
// The table is read once at startup; the resulting directory is static and
// later changes to the table are not observed until restart.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/adminguard/pkg/directory"
)

// source labels load errors coming from this package.
const source = "postgres"

// Store is a PostgreSQL-backed directory source.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL. If MigrateOnStart is true, schema
// migrations are applied.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = 0

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Load reads every row of console_users into a Directory. Any row that
// would be rejected by directory.New fails the whole load.
func (s *Store) Load(ctx context.Context) (*directory.Directory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, secret, authorities, enabled
		FROM console_users
		ORDER BY username
	`)
	if err != nil {
		return nil, &directory.LoadError{Source: source, Err: err}
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (directory.User, error) {
		var u directory.User
		err := row.Scan(&u.Username, &u.Secret, &u.Authorities, &u.Enabled)
		return u, err
	})
	if err != nil {
		return nil, &directory.LoadError{Source: source, Err: err}
	}

	return directory.New(source, users)
}

// Upsert inserts or replaces a user. It is used by the operator CLI to
// import a properties file; the running server never writes.
func (s *Store) Upsert(ctx context.Context, u directory.User) error {
	authorities := u.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO console_users (username, secret, authorities, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET secret = EXCLUDED.secret,
		    authorities = EXCLUDED.authorities,
		    enabled = EXCLUDED.enabled
	`, u.Username, u.Secret, authorities, u.Enabled)
	if err != nil {
		return fmt.Errorf("upserting user %q: %w", u.Username, err)
	}
	return nil
}

// Load is a convenience that connects, loads the directory and closes.
func Load(ctx context.Context, cfg Config) (*directory.Directory, error) {
	s, err := New(ctx, cfg)
	if err != nil {
		return nil, &directory.LoadError{Source: source, Err: err}
	}
	defer s.Close()
	return s.Load(ctx)
}
