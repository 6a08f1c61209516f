//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package csvio reads and writes flat tables, one CSV file per table with a
// header row. Empty fields stand for NULL.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Read when the table's file does not exist.
var ErrNotFound = errors.New("csv file not found")

// Table is a named set of string rows under a column header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of column, or -1.
func (t Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// FileName returns the file name used for a table.
func FileName(table string) string {
	return table + ".csv"
}

// Path returns the file path of a table inside dir.
func Path(dir, table string) string {
	return filepath.Join(dir, FileName(table))
}

// Write writes t to dir, creating dir if needed, and returns the file path.
func Write(dir string, t Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := Path(dir, t.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(f, t); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// Encode writes the header and rows of t as CSV.
func Encode(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d fields, expected %d", i, len(row), len(t.Columns))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read reads the table named table from dir. A missing file yields
// ErrNotFound; a zero-length file yields an empty table.
func Read(dir, table string) (Table, error) {
	path := Path(dir, table)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Decode(f, table)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// Decode parses CSV with a header row into a Table.
func Decode(r io.Reader, table string) (Table, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return Table{Name: table}, nil
		}
		return Table{}, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, err
	}
	return Table{Name: table, Columns: header, Rows: rows}, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
