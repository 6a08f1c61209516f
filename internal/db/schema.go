package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for def.
func CreateTableSQL(def warehouse.TableDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", QuoteIdent(def.Name))

	lines := make([]string, 0, len(def.Columns)+len(def.References))
	for _, c := range def.Columns {
		line := "    " + QuoteIdent(c.Name) + " " + c.Type
		if c.Name == def.Key {
			line += " PRIMARY KEY"
		} else if c.NotNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}
	for _, fk := range def.References {
		lines = append(lines, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s (%s)",
			QuoteIdent(fk.Column), QuoteIdent(fk.RefTable), QuoteIdent(fk.RefColumn)))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

// CreateSchema creates the tables of defs in the given order.
func CreateSchema(ctx context.Context, s *Store, defs []warehouse.TableDef) error {
	for _, def := range defs {
		if err := s.Exec(ctx, CreateTableSQL(def)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", def.Name, err)
		}
		logging.Debug().Str("table", def.Name).Msg("Created table")
	}
	logging.Info().Int("tables", len(defs)).Msg("Schema ready")
	return nil
}

// DropSchema drops the tables of defs in reverse order, so referencing
// tables go first.
func DropSchema(ctx context.Context, s *Store, defs []warehouse.TableDef) error {
	for _, def := range slices.Backward(defs) {
		if err := s.Exec(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(def.Name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", def.Name, err)
		}
		logging.Debug().Str("table", def.Name).Msg("Dropped table")
	}
	return nil
}

// TableExists reports whether table exists in the target.
func TableExists(ctx context.Context, s *Store, table string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if s.Dialect() == Postgres {
		query = `SELECT COUNT(*) FROM information_schema.tables
            WHERE table_schema = current_schema() AND table_name = $1`
	}

	var n int64
	if err := s.QueryRow(ctx, query, []any{table}, &n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, s *Store, table string) (int64, error) {
	query, args, err := s.Builder().Select("COUNT(*)").From(QuoteIdent(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.QueryRow(ctx, query, args, &n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}
