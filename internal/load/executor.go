//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package load writes flat tables into a database with idempotent,
// foreign-key-ordered upserts.
package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-wmsgen/internal/csvio"
	"github.com/pgEdge/pgedge-wmsgen/internal/db"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
)

// Bind parameter limits per statement.
const (
	PostgresMaxParams = 65535
	SQLiteMaxParams   = 32766
)

// Result reports one table upsert.
type Result struct {
	Table      string
	Rows       int
	Duplicates int
	Statements int
	Duration   time.Duration
}

// Executor applies one table as a single transaction. Rows whose conflict
// key already exists are updated in place.
type Executor interface {
	Upsert(ctx context.Context, t csvio.Table, conflictKey string) (Result, error)
}

// statement is one built INSERT .. ON CONFLICT with its arguments.
type statement struct {
	sql  string
	args []any
}

// planner turns a table into chunked upsert statements.
type planner struct {
	qb        sq.StatementBuilderType
	batchSize int
	maxParams int
}

func (p planner) plan(t csvio.Table, conflictKey string) ([]statement, Result, error) {
	res := Result{Table: t.Name}
	if len(t.Columns) == 0 {
		return nil, res, fmt.Errorf("table %s has no columns", t.Name)
	}
	keyIdx := t.ColumnIndex(conflictKey)
	if keyIdx < 0 {
		return nil, res, fmt.Errorf("conflict key %s is not a column of %s", conflictKey, t.Name)
	}

	rows, dups, err := dedupe(t, keyIdx)
	if err != nil {
		return nil, res, err
	}
	res.Rows = len(rows)
	res.Duplicates = dups

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = db.QuoteIdent(c)
	}
	suffix := onConflict(t.Columns, conflictKey)

	perStmt := max(1, min(p.batchSize, p.maxParams/len(cols)))
	var stmts []statement
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))

		ib := p.qb.Insert(db.QuoteIdent(t.Name)).Columns(cols...)
		for _, row := range rows[start:end] {
			ib = ib.Values(values(row)...)
		}
		query, args, err := ib.Suffix(suffix).ToSql()
		if err != nil {
			return nil, res, fmt.Errorf("failed to build upsert for %s: %w", t.Name, err)
		}
		stmts = append(stmts, statement{sql: query, args: args})
	}
	res.Statements = len(stmts)
	return stmts, res, nil
}

// dedupe keeps the last row for each conflict key, at the position of the
// key's first occurrence. One statement may not touch a row twice.
func dedupe(t csvio.Table, keyIdx int) ([][]string, int, error) {
	pos := make(map[string]int, len(t.Rows))
	out := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, 0, fmt.Errorf("%s row %d has %d fields, expected %d", t.Name, i+1, len(row), len(t.Columns))
		}
		key := row[keyIdx]
		if key == "" {
			return nil, 0, fmt.Errorf("%s row %d has an empty conflict key", t.Name, i+1)
		}
		if p, ok := pos[key]; ok {
			out[p] = row
			continue
		}
		pos[key] = len(out)
		out = append(out, row)
	}
	return out, len(t.Rows) - len(out), nil
}

// values converts a row to bind arguments. Empty fields become NULL.
func values(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v == "" {
			out[i] = nil
		} else {
			out[i] = v
		}
	}
	return out
}

func onConflict(columns []string, conflictKey string) string {
	var sets []string
	for _, c := range columns {
		if c == conflictKey {
			continue
		}
		q := db.QuoteIdent(c)
		sets = append(sets, q+" = EXCLUDED."+q)
	}
	target := "ON CONFLICT (" + db.QuoteIdent(conflictKey) + ")"
	if len(sets) == 0 {
		return target + " DO NOTHING"
	}
	return target + " DO UPDATE SET " + strings.Join(sets, ", ")
}

// Beginner starts pgx transactions; *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgxExecutor upserts into PostgreSQL.
type PgxExecutor struct {
	conn Beginner
	planner
}

// NewPgxExecutor creates an executor sending at most batchSize rows per
// statement.
func NewPgxExecutor(conn Beginner, batchSize int) *PgxExecutor {
	return &PgxExecutor{
		conn: conn,
		planner: planner{
			qb:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
			batchSize: batchSize,
			maxParams: PostgresMaxParams,
		},
	}
}

// Upsert applies t in one transaction.
func (e *PgxExecutor) Upsert(ctx context.Context, t csvio.Table, conflictKey string) (Result, error) {
	start := time.Now()
	stmts, res, err := e.plan(t, conflictKey)
	if err != nil {
		return res, err
	}

	tx, err := e.conn.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, st := range stmts {
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return res, fmt.Errorf("statement %d of %d failed: %w", i+1, len(stmts), err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("failed to commit: %w", err)
	}

	res.Duration = time.Since(start)
	logUpsert(res)
	return res, nil
}

// SQLExecutor upserts through database/sql; used for SQLite.
type SQLExecutor struct {
	sqlDB *sql.DB
	planner
}

// NewSQLExecutor creates an executor using ? placeholders.
func NewSQLExecutor(sqlDB *sql.DB, batchSize, maxParams int) *SQLExecutor {
	return &SQLExecutor{
		sqlDB: sqlDB,
		planner: planner{
			qb:        sq.StatementBuilder.PlaceholderFormat(sq.Question),
			batchSize: batchSize,
			maxParams: maxParams,
		},
	}
}

// Upsert applies t in one transaction.
func (e *SQLExecutor) Upsert(ctx context.Context, t csvio.Table, conflictKey string) (Result, error) {
	start := time.Now()
	stmts, res, err := e.plan(t, conflictKey)
	if err != nil {
		return res, err
	}

	tx, err := e.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.sql, st.args...); err != nil {
			return res, fmt.Errorf("statement %d of %d failed: %w", i+1, len(stmts), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit: %w", err)
	}

	res.Duration = time.Since(start)
	logUpsert(res)
	return res, nil
}

// NewExecutor returns the executor matching the store's dialect.
func NewExecutor(store *db.Store, batchSize int) Executor {
	if store.Dialect() == db.Postgres {
		return NewPgxExecutor(store.Pool(), batchSize)
	}
	return NewSQLExecutor(store.DB(), batchSize, SQLiteMaxParams)
}

func logUpsert(res Result) {
	event := logging.Debug().
		Str("table", res.Table).
		Int("rows", res.Rows).
		Int("statements", res.Statements).
		Dur("elapsed", res.Duration)
	if res.Duplicates > 0 {
		event = event.Int("duplicates", res.Duplicates)
	}
	event.Msg("Upsert committed")
}
