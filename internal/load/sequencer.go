package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-wmsgen/internal/csvio"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/internal/warehouse"
)

// Entry is one step of a load: read Source, upsert into Target on
// ConflictKey.
type Entry struct {
	Source      string
	Target      string
	ConflictKey string
}

// LoadError is a failed table upsert. It does not stop the run.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DefaultSequence loads every generated table into the table of the same
// name, base tables first.
func DefaultSequence() []Entry {
	defs := warehouse.Schemas()
	seq := make([]Entry, len(defs))
	for i, def := range defs {
		seq[i] = Entry{Source: def.Name, Target: def.Name, ConflictKey: def.Key}
	}
	return seq
}

// ValidateSequence checks that every entry names a conflict key and comes
// after the tables it references. A referenced table that is not part of
// the sequence is assumed to be loaded already.
func ValidateSequence(seq []Entry) error {
	targets := make([]string, len(seq))
	present := make(map[string]bool, len(seq))
	for i, e := range seq {
		if e.Target == "" || e.ConflictKey == "" {
			return fmt.Errorf("sequence entry %d needs a target and a conflict key", i+1)
		}
		targets[i] = e.Target
		present[e.Target] = true
	}

	deps := make(map[string][]string)
	for table, refs := range warehouse.Dependencies() {
		for _, ref := range refs {
			if present[ref] {
				deps[table] = append(deps[table], ref)
			}
		}
	}
	return warehouse.CheckOrder(targets, deps)
}

// Status is the outcome of one entry.
type Status string

const (
	StatusLoaded  Status = "loaded"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// TableResult is the outcome of one entry.
type TableResult struct {
	Entry    Entry
	Status   Status
	Rows     int
	Duration time.Duration
	Reason   string
	Err      error
}

// Summary reports a whole run. A run with failures is a partial success.
// Err is set when the sequence was rejected and nothing was loaded.
type Summary struct {
	Err      error
	Results  []TableResult
	Loaded   int
	Skipped  int
	Failed   int
	Rows     int64
	Duration time.Duration
}

// OK reports whether no entry failed.
func (s Summary) OK() bool {
	return s.Err == nil && s.Failed == 0
}

// Errors returns the LoadErrors of failed entries.
func (s Summary) Errors() []error {
	var errs []error
	if s.Err != nil {
		errs = append(errs, s.Err)
	}
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

func (s *Summary) add(r TableResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusLoaded:
		s.Loaded++
		s.Rows += int64(r.Rows)
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Sequencer runs a load sequence against one executor.
type Sequencer struct {
	source Source
	exec   Executor
}

// NewSequencer creates a sequencer reading from source.
func NewSequencer(source Source, exec Executor) *Sequencer {
	return &Sequencer{source: source, exec: exec}
}

// Run validates seq and loads every entry in order. Missing or empty
// sources are skipped; a failed entry is logged and recorded, and the run
// continues.
func (s *Sequencer) Run(ctx context.Context, seq []Entry) Summary {
	started := time.Now()
	var summary Summary

	if err := ValidateSequence(seq); err != nil {
		logging.Error().Err(err).Msg("Load sequence rejected")
		summary.Err = err
		return summary
	}

	logging.Info().
		Str("source", s.source.String()).
		Int("tables", len(seq)).
		Msg("Data load started")

	for _, entry := range seq {
		summary.add(s.runEntry(ctx, entry))
	}
	summary.Duration = time.Since(started)

	event := logging.Info()
	if !summary.OK() {
		event = logging.Warn()
	}
	event.
		Int("loaded", summary.Loaded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int64("rows", summary.Rows).
		Dur("elapsed", summary.Duration).
		Msg("Data load finished")

	return summary
}

func (s *Sequencer) runEntry(ctx context.Context, entry Entry) TableResult {
	res := TableResult{Entry: entry}
	fail := func(err error) TableResult {
		res.Status = StatusFailed
		res.Err = &LoadError{Table: entry.Target, Err: err}
		logging.Error().Err(err).Str("table", entry.Target).Msg("Failed to load table")
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	t, err := s.source.Read(entry.Source)
	if err != nil {
		if errors.Is(err, csvio.ErrNotFound) {
			res.Status = StatusSkipped
			res.Reason = "source not found"
			logging.Warn().Str("table", entry.Target).Str("source", entry.Source).Msg("Source not found, skipping")
			return res
		}
		return fail(err)
	}
	if t.Empty() {
		res.Status = StatusSkipped
		res.Reason = "source is empty"
		logging.Warn().Str("table", entry.Target).Msg("Source is empty, skipping")
		return res
	}

	t.Name = entry.Target
	logging.Info().Str("table", entry.Target).Int("rows", len(t.Rows)).Msg("Loading table")

	result, err := s.exec.Upsert(ctx, t, entry.ConflictKey)
	if err != nil {
		return fail(err)
	}

	res.Status = StatusLoaded
	res.Rows = result.Rows
	res.Duration = result.Duration
	logging.Info().Str("table", entry.Target).Int("rows", result.Rows).Msg("Loaded table")
	return res
}
