//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides connection management for the load targets:
// PostgreSQL through a pgx pool and SQLite files through database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
)

// Dialect identifies the kind of database behind a Store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Store is an open load target.
type Store struct {
	dialect Dialect
	pool    *pgxpool.Pool
	sqlDB   *sql.DB
	qb      sq.StatementBuilderType
}

// ParseTarget splits a connection target into its dialect and the string
// handed to the driver. sqlite://path and file: URIs select SQLite;
// anything else is a PostgreSQL connection string.
func ParseTarget(target string) (Dialect, string, error) {
	switch {
	case target == "":
		return "", "", fmt.Errorf("connection string is empty")
	case strings.HasPrefix(target, "sqlite://"):
		path := strings.TrimPrefix(target, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite target %q has no path", target)
		}
		return SQLite, path, nil
	case strings.HasPrefix(target, "file:"):
		return SQLite, target, nil
	default:
		return Postgres, target, nil
	}
}

// Open connects to target and verifies the connection.
func Open(ctx context.Context, target string) (*Store, error) {
	dialect, dsn, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		sqlDB, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(sqlDB), nil
	}

	pool, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		dialect: Postgres,
		pool:    pool,
		qb:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// NewSQLiteStore wraps an existing database handle.
func NewSQLiteStore(sqlDB *sql.DB) *Store {
	return &Store{
		dialect: SQLite,
		sqlDB:   sqlDB,
		qb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// Dialect returns the database kind.
func (s *Store) Dialect() Dialect { return s.dialect }

// Pool returns the PostgreSQL pool, or nil for SQLite.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// DB returns the SQLite handle, or nil for PostgreSQL.
func (s *Store) DB() *sql.DB { return s.sqlDB }

// Builder returns a statement builder using the dialect's placeholders.
func (s *Store) Builder() sq.StatementBuilderType { return s.qb }

// Close releases the connection.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if s.dialect == Postgres {
		_, err := s.pool.Exec(ctx, query, args...)
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, query, args...)
	return err
}

// QueryRow runs a single-row query and scans it into dest.
func (s *Store) QueryRow(ctx context.Context, query string, args []any, dest ...any) error {
	if s.dialect == Postgres {
		return s.pool.QueryRow(ctx, query, args...).Scan(dest...)
	}
	return s.sqlDB.QueryRowContext(ctx, query, args...).Scan(dest...)
}

// Query runs query and calls each once per row with the row's Scan.
func (s *Store) Query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	if s.dialect == Postgres {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := each(rows.Scan); err != nil {
				return err
			}
		}
		return rows.Err()
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QuoteIdent quotes a table or column name. The double-quote form is
// understood by both dialects.
func QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// DefaultPoolConfig returns default connection pool configuration. Loads
// run on one connection at a time, so the pool stays small.
func DefaultPoolConfig() *pgxpool.Config {
	config, _ := pgxpool.ParseConfig("")

	// Connection pool settings
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	return config
}

// Connect establishes a connection pool to the PostgreSQL database.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Apply default pool settings
	defaults := DefaultPoolConfig()
	config.MaxConns = defaults.MaxConns
	config.MinConns = defaults.MinConns
	config.MaxConnLifetime = defaults.MaxConnLifetime
	config.MaxConnIdleTime = defaults.MaxConnIdleTime
	config.HealthCheckPeriod = defaults.HealthCheckPeriod

	logging.Debug().
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Connected to database")

	return pool, nil
}

// OpenSQLite opens a SQLite database file with foreign keys enforced.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; also keeps pragmas on a single connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logging.Info().Str("database", dsn).Msg("Opened sqlite database")
	return sqlDB, nil
}
