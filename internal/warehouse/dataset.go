package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-wmsgen/internal/config"
	"github.com/pgEdge/pgedge-wmsgen/internal/csvio"
	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
	"github.com/pgEdge/pgedge-wmsgen/internal/textgen"
)

// Dataset holds every generated table.
type Dataset struct {
	Vehicles    []Vehicle
	Suppliers   []Supplier
	Customers   []Customer
	Employees   []Employee
	Products    []Product
	Inbound     []InboundEntry
	Outbound    []OutboundEntry
	Returns     []ReturnEntry
	VehicleNCRs []VehicleNCR
	Hygiene     []HygieneCheck
	Inspections []InboundInspectionEntry
	Complaints  []Complaint
	CycleCounts []CycleCount
	Disposals   []Disposal
	Incidents   []IncidentReport
}

// generator carries the state shared by the table builders of one run.
type generator struct {
	names  textgen.NameService
	faker  *datagen.Faker
	tables config.TablesConfig
	start  time.Time
	end    time.Time
	ds     *Dataset

	progress *datagen.ProgressReporter
}

type buildFunc func(ctx context.Context, g *generator) error

var builders = map[string]buildFunc{
	VehicleDetails:     buildVehicles,
	SupplierDetails:    buildSuppliers,
	CustomerDetails:    buildCustomers,
	EmployeeDetails:    buildEmployees,
	ProductDetails:     buildProducts,
	InboundLog:         buildInbound,
	OutboundLog:        buildOutbound,
	ReturnHandlingLog:  buildReturns,
	VehicleNCRLog:      buildVehicleNCRs,
	VehicleHygieneLog:  buildHygiene,
	InboundInspection:  buildInspections,
	ComplaintLog:       buildComplaints,
	CycleCountLog:      buildCycleCounts,
	ProductDisposalLog: buildDisposals,
	IncidentLog:        buildIncidents,
}

// BuildDataset generates every table in dependency order. Nothing is
// written anywhere; callers serialize or load the result.
func BuildDataset(ctx context.Context, cfg config.GenerateConfig, names textgen.NameService) (*Dataset, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}

	order, err := GenerationOrder()
	if err != nil {
		return nil, err
	}

	if err := cfg.Tables.Check(); err != nil {
		return nil, err
	}

	faker := datagen.NewFaker()
	if cfg.Seed != 0 {
		faker = datagen.NewFakerWithSeed(cfg.Seed)
	}

	g := &generator{
		names:  names,
		faker:  faker,
		tables: cfg.Tables,
		start:  start,
		end:    end,
		ds:     &Dataset{},
	}

	logging.Info().
		Str("start_date", cfg.StartDate).
		Str("end_date", cfg.EndDate).
		Uint64("seed", cfg.Seed).
		Msg("Generating warehouse dataset")

	for _, table := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		build, ok := builders[table]
		if !ok {
			return nil, fmt.Errorf("no builder for table %s", table)
		}

		started := time.Now()
		g.progress = datagen.NewProgressReporter(table, g.expectedRows(table), 0)
		if err := build(ctx, g); err != nil {
			return nil, datagen.ForTable(err, table)
		}
		logging.Debug().Str("table", table).Dur("elapsed", time.Since(started)).Msg("Table generated")
		g.progress.Done()
	}

	return g.ds, nil
}

// expectedRows is the row count a table will have once built. Derived
// tables are sized by their already generated parents.
func (g *generator) expectedRows(table string) int64 {
	switch table {
	case VehicleHygieneLog:
		return int64(len(g.ds.Outbound))
	case InboundInspection:
		return int64(len(g.ds.Inbound))
	case IncidentLog:
		return int64(datagen.DaysBetween(g.start, g.end) + 1)
	}
	return int64(g.tables.ByName()[table].Rows)
}

// requirePool fails with a DependencyError when any referenced pool is
// empty.
func requirePool(table string, pools map[string]int) error {
	var missing []string
	for _, name := range TableNames() {
		if n, ok := pools[name]; ok && n == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Table: table, Missing: missing}
	}
	return nil
}

// sequenceID builds synthetic business keys such as ORD00001.
func sequenceID(prefix string, i int) string {
	return fmt.Sprintf("%s%05d", prefix, i+1)
}

func records[T Record](rows []T) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Values()
	}
	return out
}

func (d *Dataset) rows(table string) [][]string {
	switch table {
	case VehicleDetails:
		return records(d.Vehicles)
	case SupplierDetails:
		return records(d.Suppliers)
	case CustomerDetails:
		return records(d.Customers)
	case EmployeeDetails:
		return records(d.Employees)
	case ProductDetails:
		return records(d.Products)
	case InboundLog:
		return records(d.Inbound)
	case OutboundLog:
		return records(d.Outbound)
	case ReturnHandlingLog:
		return records(d.Returns)
	case VehicleNCRLog:
		return records(d.VehicleNCRs)
	case VehicleHygieneLog:
		return records(d.Hygiene)
	case InboundInspection:
		return records(d.Inspections)
	case ComplaintLog:
		return records(d.Complaints)
	case CycleCountLog:
		return records(d.CycleCounts)
	case ProductDisposalLog:
		return records(d.Disposals)
	case IncidentLog:
		return records(d.Incidents)
	}
	return nil
}

// Table flattens the named table. The second result is false for an
// unknown table name.
func (d *Dataset) Table(name string) (csvio.Table, bool) {
	def, ok := Schema(name)
	if !ok {
		return csvio.Table{}, false
	}
	return csvio.Table{
		Name:    def.Name,
		Columns: def.ColumnNames(),
		Rows:    d.rows(name),
	}, true
}

// Tables flattens every table in generation order.
func (d *Dataset) Tables() []csvio.Table {
	order, err := GenerationOrder()
	if err != nil {
		order = TableNames()
	}
	out := make([]csvio.Table, 0, len(order))
	for _, name := range order {
		t, _ := d.Table(name)
		out = append(out, t)
	}
	return out
}
