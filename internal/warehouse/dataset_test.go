package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-wmsgen/internal/config"
	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
	"github.com/pgEdge/pgedge-wmsgen/internal/textgen"
)

// numberedNames answers every prompt with distinct numbered names.
type numberedNames struct{}

func (numberedNames) GenerateNames(_ context.Context, prompt string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prompt, i)
	}
	return out
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, int) ([]string, error) {
	return nil, errors.New("service unavailable")
}

func (failingGenerator) Model() string { return "down" }

func defaultGenerateConfig() config.GenerateConfig {
	cfg := config.DefaultConfig().Generate
	cfg.Seed = 20240101
	return cfg
}

func smallGenerateConfig() config.GenerateConfig {
	cfg := defaultGenerateConfig()
	cfg.StartDate = "2023-01-01"
	cfg.EndDate = "2023-03-31"
	t := &cfg.Tables
	t.Vehicles = config.TableConfig{Rows: 4, Distribution: []datagen.CategoryCount{{Category: "10 ton", Count: 3}, {Category: "20 ton", Count: 1}}}
	t.Suppliers.Rows = 5
	t.Suppliers.PoolSize = 3
	t.Customers.Rows = 5
	t.Employees = config.TableConfig{Rows: 3, Distribution: []datagen.CategoryCount{{Category: "Manager", Count: 1}, {Category: "WH labour - inbound", Count: 2}}}
	t.Products.Rows = 10
	t.Inbound = config.TableConfig{Rows: 20, Distribution: []datagen.CategoryCount{{Category: "Accepted", Count: 15}, {Category: "Rejected", Count: 5}}}
	t.Outbound = config.TableConfig{Rows: 30, Anomalies: 3}
	t.Returns.Rows = 5
	t.VehicleNCR = config.TableConfig{Rows: 4, Distribution: []datagen.CategoryCount{{Category: "CA completed", Count: 2}, {Category: "CA pending", Count: 2}}}
	t.Complaints = config.TableConfig{Rows: 4, Distribution: []datagen.CategoryCount{{Category: "Resolved", Count: 3}, {Category: "Pending", Count: 1}}}
	t.CycleCounts = config.TableConfig{Rows: 10, Anomalies: 2}
	t.Disposals = config.TableConfig{Rows: 4, Distribution: []datagen.CategoryCount{{Category: "Approved", Count: 4}}}
	return cfg
}

var (
	defaultOnce    sync.Once
	defaultDataset *Dataset
	defaultErr     error
)

// fullDataset builds the default-sized dataset once for all tests.
func fullDataset(t *testing.T) *Dataset {
	t.Helper()
	defaultOnce.Do(func() {
		defaultDataset, defaultErr = BuildDataset(context.Background(), defaultGenerateConfig(), numberedNames{})
	})
	require.NoError(t, defaultErr)
	return defaultDataset
}

func countBy[T any](rows []T, key func(T) string) map[string]int {
	out := map[string]int{}
	for _, r := range rows {
		out[key(r)]++
	}
	return out
}

func TestVehicleCapacities(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Vehicles, 40)
	assert.Equal(t, map[string]int{"10 ton": 20, "12 ton": 12, "20 ton": 8},
		countBy(ds.Vehicles, func(v Vehicle) string { return v.Capacity }))

	seen := map[string]bool{}
	for _, v := range ds.Vehicles {
		assert.Len(t, v.No, 6)
		assert.False(t, seen[v.No], "duplicate vehicle_no %s", v.No)
		seen[v.No] = true
	}
}

func TestProductsReferenceSuppliers(t *testing.T) {
	ds := fullDataset(t)

	suppliers := map[string]bool{}
	for _, s := range ds.Suppliers {
		suppliers[s.ID] = true
	}
	ids := map[string]bool{}
	for _, p := range ds.Products {
		assert.True(t, suppliers[p.SupplierID], "unknown supplier %s", p.SupplierID)
		assert.False(t, ids[p.ID], "duplicate product_id %s", p.ID)
		ids[p.ID] = true
		assert.True(t, p.Cost.IsPositive())
		assert.True(t, p.Price.GreaterThanOrEqual(p.Cost))
		assert.True(t, p.CartonVolume.IsPositive())
	}
}

func TestSupplierCountriesComeFromPool(t *testing.T) {
	ds := fullDataset(t)

	countries := map[string]bool{}
	for _, s := range ds.Suppliers {
		countries[s.Country] = true
	}
	assert.LessOrEqual(t, len(countries), 20)
	assert.Equal(t, SupplierPrompt+" 0", ds.Suppliers[0].Name)
	assert.Equal(t, "SUP000", ds.Suppliers[0].ID)
	assert.Equal(t, "CUST099", ds.Customers[99].ID)
}

func TestEmployees(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Employees, 65)
	assert.Equal(t, map[string]int{"Manager": 5, "WH labour - inbound": 30, "WH labour - outbound": 30},
		countBy(ds.Employees, func(e Employee) string { return e.Designation }))

	ids := map[string]bool{}
	for _, e := range ds.Employees {
		assert.False(t, ids[e.ID], "duplicate emp_id %s", e.ID)
		ids[e.ID] = true
		assert.False(t, e.JoinedDate.Before(e.DateOfBirth.AddDate(18, 0, 0)),
			"%s joined before turning 18", e.ID)
		if e.Designation == DesignationManager {
			assert.GreaterOrEqual(t, e.DateOfBirth.Year(), 1970)
			assert.LessOrEqual(t, e.DateOfBirth.Year(), 1979)
		}
		assert.Contains(t, e.Email, "@logisticsone.com")
	}
}

func TestInboundRejections(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Inbound, 25000)
	assert.Equal(t, map[string]int{"Accepted": 22500, "Rejected": 2000, "On-hold": 500},
		countBy(ds.Inbound, func(e InboundEntry) string { return e.Status }))

	for _, e := range ds.Inbound {
		if e.Status == StatusAccepted {
			require.Zero(t, e.RejectedQty, "%s accepted with rejections", e.ID)
			require.Empty(t, e.RejectedReason)
		} else {
			require.LessOrEqual(t, e.RejectedQty, e.ReceivedQty)
			require.NotEmpty(t, e.RejectedReason)
		}
		require.GreaterOrEqual(t, e.RejectedQty, 0)
		require.True(t, e.UnloadingComplete.After(e.UnloadingStarted))
		require.True(t, e.PutawayComplete.After(e.UnloadingComplete))
	}
}

func TestOutboundMismatches(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Outbound, 25000)
	short, equal := 0, 0
	for _, e := range ds.Outbound {
		switch {
		case e.PickedQty < e.OrderedQty:
			require.GreaterOrEqual(t, e.PickedQty, 1)
			short++
		case e.PickedQty == e.OrderedQty:
			equal++
		default:
			t.Fatalf("%s picked more than ordered", e.OrderID)
		}
		require.True(t, e.PickCompleted.After(e.PickSheetIssued))
		require.True(t, e.LoadingCompleted.After(e.PickCompleted))
	}
	assert.Equal(t, 750, short)
	assert.Equal(t, 24250, equal)
}

func TestReturnsStayBelowOrderedQuantity(t *testing.T) {
	ds := fullDataset(t)

	orders := map[string]OutboundEntry{}
	for _, o := range ds.Outbound {
		orders[o.OrderID] = o
	}
	for _, r := range ds.Returns {
		o, ok := orders[r.OrderID]
		require.True(t, ok, "unknown order %s", r.OrderID)
		require.GreaterOrEqual(t, r.ReturnedQty, 1)
		require.Less(t, r.ReturnedQty, o.OrderedQty)
		require.False(t, r.Date.Before(o.Date), "%s returned before it was shipped", r.ID)
		require.True(t, r.PutawayComplete.After(r.UnloadingStarted))
	}
}

func TestReturnedQuantityClamp(t *testing.T) {
	f := datagen.NewFakerWithSeed(1)

	// A single-unit order cannot return fewer units; the quantity is
	// clamped to 1 and equals the ordered quantity.
	assert.Equal(t, 1, returnedQuantity(f, 1))
	assert.Equal(t, 1, returnedQuantity(f, 2))
	for i := 0; i < 100; i++ {
		q := returnedQuantity(f, 11)
		assert.True(t, q >= 1 && q < 11, "returned %d of 11", q)
	}
}

func TestCountedQuantityBand(t *testing.T) {
	f := datagen.NewFakerWithSeed(1)

	// The 5% band collapses below the floor of 20.
	assert.Equal(t, 20, countedQuantity(f, 10))
	for i := 0; i < 100; i++ {
		q := countedQuantity(f, 1000)
		assert.True(t, q >= 950 && q <= 1050, "counted %d for 1000", q)
	}
}

func TestDerivedLogs(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Hygiene, len(ds.Outbound))
	for i, h := range ds.Hygiene {
		o := ds.Outbound[i]
		require.Equal(t, o.OrderID, h.OrderID)
		require.Equal(t, o.Date, h.Date)
		require.Equal(t, o.VehicleNo, h.VehicleNo)
		for _, v := range []string{h.GoodTruckBox, h.GoodTruckFloor, h.GoodTruckDoor, h.GoodCurtain, h.GoodCooling, h.PestCheck, h.OdorCheck} {
			require.Contains(t, []string{"Yes", "No"}, v)
		}
	}

	require.Len(t, ds.Inspections, len(ds.Inbound))
	for i, in := range ds.Inspections {
		src := ds.Inbound[i]
		require.Equal(t, src.ID, in.InboundID)
		require.Equal(t, src.ReceivedQty, in.ReceivedQty)
		require.Equal(t, src.RejectedQty, in.RejectedQty)
		require.Equal(t, src.RejectedReason, in.RejectedReason)
	}
}

func TestFollowUpDates(t *testing.T) {
	ds := fullDataset(t)

	assert.Equal(t, map[string]int{"CA completed": 100, "CA pending": 100},
		countBy(ds.VehicleNCRs, func(n VehicleNCR) string { return n.Status }))
	for _, n := range ds.VehicleNCRs {
		if n.Status == NCRCompleted {
			require.NotNil(t, n.CACompleted)
			require.True(t, n.CACompleted.After(n.RaisedDate))
		} else {
			require.Nil(t, n.CACompleted)
		}
	}

	assert.Equal(t, map[string]int{"Resolved": 100, "Pending": 25},
		countBy(ds.Complaints, func(c Complaint) string { return c.Status }))
	for _, c := range ds.Complaints {
		require.Equal(t, c.Status == ComplaintResolved, c.Resolved != nil)
	}

	assert.Equal(t, map[string]int{"Approved": 679, "Pending": 21},
		countBy(ds.Disposals, func(d Disposal) string { return d.QCMApproval }))
}

func TestCycleCounts(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.CycleCounts, 2500)
	differ := 0
	for _, c := range ds.CycleCounts {
		if c.CountedQty != c.SystemQty {
			differ++
			require.GreaterOrEqual(t, c.CountedQty, 20)
		}
	}
	assert.LessOrEqual(t, differ, 125)
	assert.Greater(t, differ, 0)
}

func TestIncidentsCoverEveryDay(t *testing.T) {
	ds := fullDataset(t)

	require.Len(t, ds.Incidents, 1096)
	assert.Equal(t, "INC00001", ds.Incidents[0].ID)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ds.Incidents[len(ds.Incidents)-1].Date)
	for _, r := range ds.Incidents {
		require.True(t, r.Incidents >= 0 && r.Incidents <= 3)
	}
}

func TestEventDatesWithinRange(t *testing.T) {
	ds := fullDataset(t)
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for _, e := range ds.Inbound {
		dates = append(dates, e.Date)
	}
	for _, e := range ds.Outbound {
		dates = append(dates, e.Date)
	}
	for _, e := range ds.Returns {
		dates = append(dates, e.Date)
	}
	for _, e := range ds.VehicleNCRs {
		dates = append(dates, e.RaisedDate)
	}
	for _, e := range ds.Complaints {
		dates = append(dates, e.Date)
	}
	for _, e := range ds.CycleCounts {
		dates = append(dates, e.Date)
	}
	for _, e := range ds.Disposals {
		dates = append(dates, e.Date)
	}
	for _, d := range dates {
		require.False(t, d.Before(start) || d.After(end), "date %v outside range", d)
	}
}

func TestForeignKeysResolve(t *testing.T) {
	ds := fullDataset(t)

	keys := map[string]map[string]bool{}
	for _, tbl := range ds.Tables() {
		def, _ := Schema(tbl.Name)
		idx := tbl.ColumnIndex(def.Key)
		set := map[string]bool{}
		for _, row := range tbl.Rows {
			require.False(t, set[row[idx]], "%s: duplicate key %s", tbl.Name, row[idx])
			set[row[idx]] = true
		}
		keys[tbl.Name] = set
	}

	for _, tbl := range ds.Tables() {
		def, _ := Schema(tbl.Name)
		for _, fk := range def.References {
			idx := tbl.ColumnIndex(fk.Column)
			for _, row := range tbl.Rows {
				require.True(t, keys[fk.RefTable][row[idx]],
					"%s.%s=%s not in %s", tbl.Name, fk.Column, row[idx], fk.RefTable)
			}
		}
	}
}

func TestTablesFlatten(t *testing.T) {
	ds, err := BuildDataset(context.Background(), smallGenerateConfig(), numberedNames{})
	require.NoError(t, err)

	tables := ds.Tables()
	require.Len(t, tables, len(TableNames()))
	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			require.Len(t, row, len(tbl.Columns), "%s row width", tbl.Name)
		}
	}

	ncr, ok := ds.Table(VehicleNCRLog)
	require.True(t, ok)
	status := ncr.ColumnIndex("ncr_status")
	completed := ncr.ColumnIndex("ca_completed_date")
	for _, row := range ncr.Rows {
		if row[status] == NCRCompleted {
			assert.NotEmpty(t, row[completed])
		} else {
			assert.Empty(t, row[completed], "pending NCR must load as NULL")
		}
	}

	_, ok = ds.Table("nope")
	assert.False(t, ok)
}

func TestBuildDatasetIsReproducible(t *testing.T) {
	a, err := BuildDataset(context.Background(), smallGenerateConfig(), numberedNames{})
	require.NoError(t, err)
	b, err := BuildDataset(context.Background(), smallGenerateConfig(), numberedNames{})
	require.NoError(t, err)

	assert.Equal(t, a.Tables(), b.Tables())
}

func TestBuildDatasetEmptyPool(t *testing.T) {
	cfg := smallGenerateConfig()
	cfg.Tables.Suppliers.Rows = 0

	_, err := BuildDataset(context.Background(), cfg, numberedNames{})
	var de *DependencyError
	require.True(t, errors.As(err, &de), "expected DependencyError, got %v", err)
	assert.Equal(t, ProductDetails, de.Table)
	assert.Equal(t, []string{SupplierDetails}, de.Missing)
}

func TestBuildDatasetConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.GenerateConfig)
		table  string
	}{
		{
			name:   "vehicle counts do not sum",
			mutate: func(c *config.GenerateConfig) { c.Tables.Vehicles.Rows = 5 },
			table:  VehicleDetails,
		},
		{
			name:   "too many outbound anomalies",
			mutate: func(c *config.GenerateConfig) { c.Tables.Outbound.Anomalies = 31 },
			table:  OutboundLog,
		},
		{
			name: "non-numeric incident count",
			mutate: func(c *config.GenerateConfig) {
				c.Tables.Incidents.Weights = []datagen.CategoryCount{{Category: "many", Count: 1}}
			},
			table: IncidentLog,
		},
		{
			name:   "negative customer rows",
			mutate: func(c *config.GenerateConfig) { c.Tables.Customers.Rows = -1 },
			table:  CustomerDetails,
		},
		{
			name:   "negative supplier rows",
			mutate: func(c *config.GenerateConfig) { c.Tables.Suppliers.Rows = -3 },
			table:  SupplierDetails,
		},
		{
			name:   "negative return rows",
			mutate: func(c *config.GenerateConfig) { c.Tables.Returns.Rows = -1 },
			table:  ReturnHandlingLog,
		},
		{
			name:   "negative cycle count anomalies",
			mutate: func(c *config.GenerateConfig) { c.Tables.CycleCounts.Anomalies = -1 },
			table:  CycleCountLog,
		},
		{
			name:   "negative country pool",
			mutate: func(c *config.GenerateConfig) { c.Tables.Suppliers.PoolSize = -1 },
			table:  SupplierDetails,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallGenerateConfig()
			tt.mutate(&cfg)
			_, err := BuildDataset(context.Background(), cfg, numberedNames{})
			var ce *datagen.ConfigurationError
			require.True(t, errors.As(err, &ce), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.table, ce.Table)
		})
	}
}

func TestBuildDatasetFallbackNames(t *testing.T) {
	names, err := textgen.NewService(failingGenerator{}, 10)
	require.NoError(t, err)

	ds, err := BuildDataset(context.Background(), smallGenerateConfig(), names)
	require.NoError(t, err)
	assert.Equal(t, "Fallback_0", ds.Suppliers[0].Name)
	assert.Equal(t, "Fallback_4", ds.Customers[4].Name)
	assert.Equal(t, "fallback_1@logisticsone.com", ds.Employees[1].Email)
}

func TestBuildDatasetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildDataset(ctx, smallGenerateConfig(), numberedNames{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpectedRows(t *testing.T) {
	cfg := smallGenerateConfig()
	start, end, err := cfg.DateRange()
	require.NoError(t, err)

	g := &generator{
		tables: cfg.Tables,
		start:  start,
		end:    end,
		ds: &Dataset{
			Outbound: make([]OutboundEntry, 7),
			Inbound:  make([]InboundEntry, 5),
		},
	}

	assert.Equal(t, int64(cfg.Tables.Customers.Rows), g.expectedRows(CustomerDetails))
	assert.Equal(t, int64(cfg.Tables.Outbound.Rows), g.expectedRows(OutboundLog))
	assert.Equal(t, int64(7), g.expectedRows(VehicleHygieneLog))
	assert.Equal(t, int64(5), g.expectedRows(InboundInspection))
	assert.Equal(t, int64(90), g.expectedRows(IncidentLog))
}
