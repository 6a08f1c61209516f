package load

import (
	"github.com/pgEdge/pgedge-wmsgen/internal/csvio"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

// Source supplies the flat table for a sequence entry. A table that does
// not exist returns an error wrapping csvio.ErrNotFound.
type Source interface {
	Read(table string) (csvio.Table, error)
	String() string
}

// DirSource reads one CSV file per table from a directory.
type DirSource struct {
	Dir string
}

// Read reads the table's CSV file.
func (s DirSource) Read(table string) (csvio.Table, error) {
	return csvio.Read(s.Dir, table)
}

func (s DirSource) String() string { return s.Dir }

// DatasetSource serves tables straight from a generated dataset.
type DatasetSource struct {
	Dataset *warehouse.Dataset
}

// Read flattens the named table.
func (s DatasetSource) Read(table string) (csvio.Table, error) {
	t, ok := s.Dataset.Table(table)
	if !ok {
		return csvio.Table{}, csvio.ErrNotFound
	}
	return t, nil
}

func (s DatasetSource) String() string { return "memory" }
