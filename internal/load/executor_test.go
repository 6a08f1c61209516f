package load

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-wmsgen/internal/csvio"
	"github.com/pgEdge/pgedge-wmsgen/internal/db"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "load.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE products (key TEXT PRIMARY KEY, value INTEGER, note TEXT)`)
	require.NoError(t, err)
	return sqlDB
}

func products(rows ...[]string) csvio.Table {
	return csvio.Table{Name: "products", Columns: []string{"key", "value", "note"}, Rows: rows}
}

func readProducts(t *testing.T, sqlDB *sql.DB) map[string]sql.NullInt64 {
	t.Helper()
	rows, err := sqlDB.Query(`SELECT key, value FROM products`)
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]sql.NullInt64{}
	for rows.Next() {
		var key string
		var value sql.NullInt64
		require.NoError(t, rows.Scan(&key, &value))
		out[key] = value
	}
	require.NoError(t, rows.Err())
	return out
}

func TestUpsertUpdatesExistingKey(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)
	exec := NewSQLExecutor(sqlDB, 1000, SQLiteMaxParams)

	_, err := exec.Upsert(ctx, products([]string{"P1", "10", "a"}), "key")
	require.NoError(t, err)
	_, err = exec.Upsert(ctx, products([]string{"P1", "20", "b"}), "key")
	require.NoError(t, err)

	got := readProducts(t, sqlDB)
	require.Len(t, got, 1)
	assert.Equal(t, int64(20), got["P1"].Int64)
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)
	exec := NewSQLExecutor(sqlDB, 1000, SQLiteMaxParams)
	in := products([]string{"P1", "1", ""}, []string{"P2", "2", "x"})

	_, err := exec.Upsert(ctx, in, "key")
	require.NoError(t, err)
	first := readProducts(t, sqlDB)

	_, err = exec.Upsert(ctx, in, "key")
	require.NoError(t, err)
	assert.Equal(t, first, readProducts(t, sqlDB))
}

func TestUpsertChunksStatements(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)
	exec := NewSQLExecutor(sqlDB, 2, SQLiteMaxParams)

	res, err := exec.Upsert(ctx, products(
		[]string{"P1", "1", ""}, []string{"P2", "2", ""}, []string{"P3", "3", ""},
		[]string{"P4", "4", ""}, []string{"P5", "5", ""},
	), "key")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Statements)
	assert.Equal(t, 5, res.Rows)
	assert.Len(t, readProducts(t, sqlDB), 5)

	// The parameter limit caps the rows per statement too: 7 / 3 columns.
	exec = NewSQLExecutor(sqlDB, 1000, 7)
	res, err = exec.Upsert(ctx, products(
		[]string{"P1", "1", ""}, []string{"P2", "2", ""}, []string{"P3", "3", ""},
	), "key")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Statements)
}

func TestUpsertEmptyFieldsAreNull(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)
	exec := NewSQLExecutor(sqlDB, 1000, SQLiteMaxParams)

	_, err := exec.Upsert(ctx, products([]string{"P1", "", ""}), "key")
	require.NoError(t, err)

	var note sql.NullString
	require.NoError(t, sqlDB.QueryRow(`SELECT note FROM products WHERE key = 'P1'`).Scan(&note))
	assert.False(t, note.Valid)
	assert.False(t, readProducts(t, sqlDB)["P1"].Valid)
}

func TestUpsertCollapsesDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	sqlDB := openSQLite(t)
	exec := NewSQLExecutor(sqlDB, 1000, SQLiteMaxParams)

	res, err := exec.Upsert(ctx, products(
		[]string{"P1", "1", ""}, []string{"P2", "2", ""}, []string{"P1", "3", ""},
	), "key")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, int64(3), readProducts(t, sqlDB)["P1"].Int64)
}

func TestUpsertRejectsBadInput(t *testing.T) {
	exec := NewSQLExecutor(nil, 1000, SQLiteMaxParams)

	tests := []struct {
		name string
		t    csvio.Table
		key  string
	}{
		{"unknown key", products([]string{"P1", "1", ""}), "id"},
		{"ragged row", products([]string{"P1", "1"}), "key"},
		{"empty key", products([]string{"", "1", ""}), "key"},
		{"no columns", csvio.Table{Name: "x"}, "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exec.Upsert(context.Background(), tt.t, tt.key)
			assert.Error(t, err)
		})
	}
}

func TestOnConflict(t *testing.T) {
	got := onConflict([]string{"key", "value"}, "key")
	assert.Equal(t, `ON CONFLICT ("key") DO UPDATE SET "value" = EXCLUDED."value"`, got)

	got = onConflict([]string{"key"}, "key")
	assert.Equal(t, `ON CONFLICT ("key") DO NOTHING`, got)
}

func TestPlanUsesDialectPlaceholders(t *testing.T) {
	tbl := products([]string{"P1", "1", "a"})

	stmts, _, err := NewPgxExecutor(nil, 100).plan(tbl, "key")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.True(t, strings.HasPrefix(stmts[0].sql, `INSERT INTO "products" ("key","value","note") VALUES ($1,$2,$3)`), stmts[0].sql)

	stmts, _, err = NewSQLExecutor(nil, 100, SQLiteMaxParams).plan(tbl, "key")
	require.NoError(t, err)
	assert.Contains(t, stmts[0].sql, "VALUES (?,?,?)")
}

func TestUpsertRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "products"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "products"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	exec := NewSQLExecutor(sqlDB, 2, SQLiteMaxParams)
	_, err = exec.Upsert(context.Background(), products(
		[]string{"P1", "1", ""}, []string{"P2", "2", ""}, []string{"P3", "3", ""},
	), "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2 of 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCommits(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "products"`).
		WithArgs("P1", "1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	exec := NewSQLExecutor(sqlDB, 10, SQLiteMaxParams)
	res, err := exec.Upsert(context.Background(), products([]string{"P1", "1", ""}), "key")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
