//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides load targets for tests: SQLite files in a
// temporary directory and, in integration tests, throwaway PostgreSQL
// databases. Every store it returns already has the warehouse schema.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-wmsgen/internal/db"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

const (
	// DefaultTestConnString is the server used when WMSGEN_TEST_CONN is
	// not set.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix prefixes every throwaway database name.
	TestDBPrefix = "wmsgen_test_"
)

// PostgresAvailable returns the connection string of a reachable server,
// or "" when none answers.
func PostgresAvailable() string {
	connStr := os.Getenv("WMSGEN_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}
	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	t.Helper()
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// SQLiteTarget returns a connection target for a fresh SQLite file in a
// per-test temporary directory.
func SQLiteTarget(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "wms.db")
}

// SQLiteStore opens a fresh SQLite target with the warehouse schema.
func SQLiteStore(t *testing.T) *db.Store {
	t.Helper()
	return openWithSchema(t, SQLiteTarget(t))
}

// PostgresStore creates a throwaway database named after suite, creates
// the warehouse schema in it and returns an open store. The test is
// skipped when no server is available. The database is dropped when the
// test passes and kept for diagnostics when it fails.
func PostgresStore(t *testing.T, suite string) *db.Store {
	t.Helper()
	base := SkipIfNoPostgres(t)

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	name := TestDBPrefix + suite + "_" + hex.EncodeToString(suffix)

	if err := adminExec(base, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", name)
			return
		}
		if err := adminExec(base, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)"); err != nil {
			t.Logf("Warning: failed to drop test database: %v", err)
		}
	})

	target, err := databaseURL(base, name)
	if err != nil {
		t.Fatalf("Failed to build test connection string: %v", err)
	}
	return openWithSchema(t, target)
}

// adminExec runs one statement on the base server.
func adminExec(base, stmt string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, base)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, stmt)
	return err
}

// databaseURL points base at another database on the same server.
func databaseURL(base, name string) (string, error) {
	cfg, err := pgx.ParseConfig(base)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host + ":" + strconv.Itoa(int(cfg.Port)),
		Path:   "/" + name,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}
	return u.String(), nil
}

func openWithSchema(t *testing.T, target string) *db.Store {
	t.Helper()
	ctx := context.Background()

	store, err := db.Open(ctx, target)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", target, err)
	}
	t.Cleanup(store.Close)

	if err := db.CreateSchema(ctx, store, warehouse.Schemas()); err != nil {
		t.Fatalf("Failed to create warehouse schema: %v", err)
	}
	return store
}

// RowCounts returns the row count of every warehouse table.
func RowCounts(t *testing.T, store *db.Store) map[string]int64 {
	t.Helper()
	out := make(map[string]int64, len(warehouse.TableNames()))
	for _, name := range warehouse.TableNames() {
		n, err := db.CountRows(context.Background(), store, name)
		if err != nil {
			t.Fatalf("Failed to count %s: %v", name, err)
		}
		out[name] = n
	}
	return out
}
