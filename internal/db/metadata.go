//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/pkg/version"
)

const metadataTable = "wmsgen_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS wmsgen_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// RunInfo describes one load run.
type RunInfo struct {
	ID           string
	Command      string
	Source       string
	StartedAt    time.Time
	TablesLoaded int
	TablesFailed int
	RowsLoaded   int64
}

// NewRunInfo starts a RunInfo with a fresh run id.
func NewRunInfo(command, source string) RunInfo {
	return RunInfo{
		ID:        uuid.NewString(),
		Command:   command,
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// SaveMetadata records the last run in the metadata table.
func SaveMetadata(ctx context.Context, s *Store, run RunInfo) error {
	// Create table if it doesn't exist
	if err := s.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	// Insert or update metadata
	metadata := [][2]string{
		{"run_id", run.ID},
		{"command", run.Command},
		{"source", run.Source},
		{"version", version.Short()},
		{"started_at", run.StartedAt.Format(time.RFC3339)},
		{"finished_at", time.Now().UTC().Format(time.RFC3339)},
		{"tables_loaded", strconv.Itoa(run.TablesLoaded)},
		{"tables_failed", strconv.Itoa(run.TablesFailed)},
		{"rows_loaded", strconv.FormatInt(run.RowsLoaded, 10)},
	}

	// All keys go in one statement
	ib := s.Builder().
		Insert(metadataTable).
		Columns("key", "value")
	for _, kv := range metadata {
		ib = ib.Values(kv[0], kv[1])
	}
	query, args, err := ib.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return err
	}
	if err := s.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Debug().
		Str("run_id", run.ID).
		Str("command", run.Command).
		Msg("Saved metadata")

	return nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, s *Store) (map[string]string, error) {
	metadata := make(map[string]string)
	err := s.Query(ctx, `SELECT key, value FROM wmsgen_metadata`, nil, func(scan func(...any) error) error {
		var key, value string
		if err := scan(&key, &value); err != nil {
			return err
		}
		metadata[key] = value
		return nil
	})
	return metadata, err
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, s *Store) error {
	return s.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, s *Store) (bool, error) {
	return TableExists(ctx, s, metadataTable)
}
