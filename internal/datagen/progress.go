package datagen

import (
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
)

// DefaultProgressInterval is how often progress is logged, in rows.
const DefaultProgressInterval int64 = 10000

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rows int64) {
	oldRow := p.currentRow
	p.currentRow += rows

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		event := logging.Debug().
			Str("table", p.tableName).
			Int64("rows", p.currentRow)
		// Derived tables do not know their size up front
		if p.totalRows > 0 {
			event = event.
				Int64("total", p.totalRows).
				Float64("percent", float64(p.currentRow)/float64(p.totalRows)*100)
		}
		event.Msg("Generating rows")
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Percent returns the share of totalRows reported so far, or 0 when the
// total is unknown.
func (p *ProgressReporter) Percent() float64 {
	if p.totalRows <= 0 {
		return 0
	}
	return float64(p.currentRow) / float64(p.totalRows) * 100
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
