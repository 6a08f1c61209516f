package warehouse

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
)

// Category values with special meaning to the log builders.
const (
	StatusAccepted    = "Accepted"
	StatusRejected    = "Rejected"
	StatusOnHold      = "On-hold"
	NCRCompleted      = "CA completed"
	ComplaintResolved = "Resolved"
)

var (
	rejectedReasons = []string{"Quality Issue", "Regulatory issue"}
	returnReasons   = []string{"Low shelf life", "Quality issue", "Incorrect item", "Temperature issue"}
	disposalReasons = []string{"Expired", "Quality issue", "Physical damage", "Regulatory issue"}
	operationShifts = []string{"Day Shift", "Night Shift"}

	ncrReasons = []string{
		"Defective truck box",
		"Defective truck floor",
		"Defective truck door",
		"Defective cooling unit",
		"Odor",
		"Pest",
	}
	complaintCategories = []string{
		"Spoilage/ Contamination",
		"Damaged",
		"Off-Taste/ Off-Smell/ Off-Color",
		"Expired",
		"Foreign Substance",
		"Mold Growth",
		"Defrosted",
	}
)

func isRejection(status string) bool {
	return status == StatusRejected || status == StatusOnHold
}

func (g *generator) day() time.Time {
	return g.faker.Day(g.start, g.end)
}

func (g *generator) after(t time.Time, minMinutes, maxMinutes int) time.Time {
	return t.Add(g.faker.Minutes(minMinutes, maxMinutes))
}

func buildInbound(_ context.Context, g *generator) error {
	cfg := g.tables.Inbound
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(InboundLog, map[string]int{
		SupplierDetails: len(g.ds.Suppliers),
		ProductDetails:  len(g.ds.Products),
	}); err != nil {
		return err
	}

	statuses, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}

	g.ds.Inbound = make([]InboundEntry, cfg.Rows)
	for i := range g.ds.Inbound {
		day := g.day()
		product := datagen.Choose(g.faker, g.ds.Products)
		received := g.faker.Int(100, 2500)

		var rejected int
		var reason string
		if isRejection(statuses[i]) {
			rejected = int(math.Round(float64(received) * g.faker.Float64(0, 0.05)))
			reason = datagen.Choose(g.faker, rejectedReasons)
		}

		started := g.faker.ClockTime(day, 9, 14)
		unloaded := g.after(started, 60, 180)
		g.ds.Inbound[i] = InboundEntry{
			ID:                sequenceID("INB", i),
			Date:              day,
			SupplierID:        datagen.Choose(g.faker, g.ds.Suppliers).ID,
			DeliveryNoteID:    product.DeliveryNoteID,
			ProductID:         product.ID,
			ReceivedQty:       received,
			RejectedQty:       rejected,
			Status:            statuses[i],
			RejectedReason:    reason,
			UnloadingStarted:  started,
			UnloadingComplete: unloaded,
			PutawayComplete:   g.after(unloaded, 10, 45),
		}
		g.progress.Update(1)
	}
	return nil
}

func buildOutbound(_ context.Context, g *generator) error {
	cfg := g.tables.Outbound
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(OutboundLog, map[string]int{
		CustomerDetails: len(g.ds.Customers),
		ProductDetails:  len(g.ds.Products),
		VehicleDetails:  len(g.ds.Vehicles),
	}); err != nil {
		return err
	}

	mismatches, err := datagen.SampleAnomalyIndices(g.faker, cfg.Rows, cfg.Anomalies)
	if err != nil {
		return err
	}

	g.ds.Outbound = make([]OutboundEntry, cfg.Rows)
	for i := range g.ds.Outbound {
		day := g.day()
		ordered := g.faker.Int(11, 1000)
		picked := ordered
		if mismatches.Has(i) {
			picked = g.faker.Int(1, ordered-1)
		}

		issued := g.faker.ClockTime(day, 21, 23)
		pickDone := g.after(issued, 30, 90)
		g.ds.Outbound[i] = OutboundEntry{
			OrderID:          sequenceID("ORD", i),
			Date:             day,
			CustomerID:       datagen.Choose(g.faker, g.ds.Customers).ID,
			ProductID:        datagen.Choose(g.faker, g.ds.Products).ID,
			OrderedQty:       ordered,
			PickedQty:        picked,
			PickSheetIssued:  issued,
			PickCompleted:    pickDone,
			VehicleNo:        datagen.Choose(g.faker, g.ds.Vehicles).No,
			LoadingCompleted: g.after(pickDone, 20, 40),
		}
		g.progress.Update(1)
	}
	return nil
}

// returnedQuantity picks a quantity strictly below ordered. A single-unit
// order has no smaller valid value, so it returns 1.
func returnedQuantity(f *datagen.Faker, ordered int) int {
	if ordered <= 1 {
		return 1
	}
	return f.Int(1, ordered-1)
}

func buildReturns(_ context.Context, g *generator) error {
	cfg := g.tables.Returns
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(ReturnHandlingLog, map[string]int{OutboundLog: len(g.ds.Outbound)}); err != nil {
		return err
	}

	g.ds.Returns = make([]ReturnEntry, cfg.Rows)
	for i := range g.ds.Returns {
		order := datagen.Choose(g.faker, g.ds.Outbound)
		day := g.faker.Day(order.Date, g.end)
		started := g.faker.ClockTime(day, 9, 14)
		g.ds.Returns[i] = ReturnEntry{
			ID:               sequenceID("RET", i),
			Date:             day,
			CustomerID:       order.CustomerID,
			OrderID:          order.OrderID,
			ProductID:        order.ProductID,
			ReturnedQty:      returnedQuantity(g.faker, order.OrderedQty),
			Reason:           datagen.Choose(g.faker, returnReasons),
			UnloadingStarted: started,
			PutawayComplete:  g.after(started, 20, 40),
		}
		g.progress.Update(1)
	}
	return nil
}

func buildVehicleNCRs(_ context.Context, g *generator) error {
	cfg := g.tables.VehicleNCR
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(VehicleNCRLog, map[string]int{VehicleDetails: len(g.ds.Vehicles)}); err != nil {
		return err
	}

	statuses, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}

	g.ds.VehicleNCRs = make([]VehicleNCR, cfg.Rows)
	for i := range g.ds.VehicleNCRs {
		raised := g.day()
		var completed *time.Time
		if statuses[i] == NCRCompleted {
			d := raised.AddDate(0, 0, g.faker.Int(3, 10))
			completed = &d
		}
		g.ds.VehicleNCRs[i] = VehicleNCR{
			ID:          sequenceID("NCR", i),
			RaisedDate:  raised,
			VehicleNo:   datagen.Choose(g.faker, g.ds.Vehicles).No,
			Reason:      datagen.Choose(g.faker, ncrReasons),
			Status:      statuses[i],
			CACompleted: completed,
		}
		g.progress.Update(1)
	}
	return nil
}

// buildHygiene writes one inspection per outbound order, on the same day
// and vehicle.
func buildHygiene(_ context.Context, g *generator) error {
	if len(g.ds.Outbound) == 0 {
		return nil
	}
	weights := g.tables.Hygiene.Weights
	if datagen.Total(weights) <= 0 {
		return &datagen.ConfigurationError{Reason: "hygiene check weights are empty"}
	}
	values := make([]string, len(weights))
	w := make([]int, len(weights))
	for i, c := range weights {
		values[i], w[i] = c.Category, c.Count
	}
	check := func() string { return datagen.ChooseWeighted(g.faker, values, w) }

	g.ds.Hygiene = make([]HygieneCheck, len(g.ds.Outbound))
	for i, order := range g.ds.Outbound {
		g.ds.Hygiene[i] = HygieneCheck{
			ID:             sequenceID("HYG", i),
			OrderID:        order.OrderID,
			Date:           order.Date,
			VehicleNo:      order.VehicleNo,
			GoodTruckBox:   check(),
			GoodTruckFloor: check(),
			GoodTruckDoor:  check(),
			GoodCurtain:    check(),
			GoodCooling:    check(),
			PestCheck:      check(),
			OdorCheck:      check(),
		}
		g.progress.Update(1)
	}
	return nil
}

// buildInspections projects the inbound log; it draws no random values.
func buildInspections(_ context.Context, g *generator) error {
	g.ds.Inspections = make([]InboundInspectionEntry, len(g.ds.Inbound))
	for i, in := range g.ds.Inbound {
		g.ds.Inspections[i] = InboundInspectionEntry{
			ID:             sequenceID("INS", i),
			InboundID:      in.ID,
			Date:           in.Date,
			DeliveryNoteID: in.DeliveryNoteID,
			ProductID:      in.ProductID,
			ReceivedQty:    in.ReceivedQty,
			RejectedQty:    in.RejectedQty,
			RejectedReason: in.RejectedReason,
		}
		g.progress.Update(1)
	}
	return nil
}

func buildComplaints(_ context.Context, g *generator) error {
	cfg := g.tables.Complaints
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(ComplaintLog, map[string]int{
		CustomerDetails: len(g.ds.Customers),
		ProductDetails:  len(g.ds.Products),
	}); err != nil {
		return err
	}

	statuses, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}

	g.ds.Complaints = make([]Complaint, cfg.Rows)
	for i := range g.ds.Complaints {
		day := g.day()
		var resolved *time.Time
		if statuses[i] == ComplaintResolved {
			d := day.AddDate(0, 0, g.faker.Int(2, 4))
			resolved = &d
		}
		g.ds.Complaints[i] = Complaint{
			ID:         sequenceID("CMP", i),
			Date:       day,
			CustomerID: datagen.Choose(g.faker, g.ds.Customers).ID,
			ProductID:  datagen.Choose(g.faker, g.ds.Products).ID,
			Qty:        g.faker.Int(1, 100),
			Category:   datagen.Choose(g.faker, complaintCategories),
			Status:     statuses[i],
			Resolved:   resolved,
		}
		g.progress.Update(1)
	}
	return nil
}

// countedQuantity draws a count within 5% of the system quantity, never
// below 20. When that band is empty the lower bound is used.
func countedQuantity(f *datagen.Faker, system int) int {
	lower := max(20, system*95/100)
	upper := system * 105 / 100
	if upper < lower {
		return lower
	}
	return f.Int(lower, upper)
}

func buildCycleCounts(_ context.Context, g *generator) error {
	cfg := g.tables.CycleCounts
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(CycleCountLog, map[string]int{ProductDetails: len(g.ds.Products)}); err != nil {
		return err
	}

	mismatches, err := datagen.SampleAnomalyIndices(g.faker, cfg.Rows, cfg.Anomalies)
	if err != nil {
		return err
	}

	g.ds.CycleCounts = make([]CycleCount, cfg.Rows)
	for i := range g.ds.CycleCounts {
		product := datagen.Choose(g.faker, g.ds.Products)
		counted := product.SystemQty
		if mismatches.Has(i) {
			counted = countedQuantity(g.faker, product.SystemQty)
		}
		g.ds.CycleCounts[i] = CycleCount{
			ID:         sequenceID("CYC", i),
			Date:       g.day(),
			ProductID:  product.ID,
			SystemQty:  product.SystemQty,
			CountedQty: counted,
		}
		g.progress.Update(1)
	}
	return nil
}

func buildDisposals(_ context.Context, g *generator) error {
	cfg := g.tables.Disposals
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(ProductDisposalLog, map[string]int{ProductDetails: len(g.ds.Products)}); err != nil {
		return err
	}

	approvals, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}

	g.ds.Disposals = make([]Disposal, cfg.Rows)
	for i := range g.ds.Disposals {
		g.ds.Disposals[i] = Disposal{
			ID:          sequenceID("DSP", i),
			Date:        g.day(),
			ProductID:   datagen.Choose(g.faker, g.ds.Products).ID,
			Reason:      datagen.Choose(g.faker, disposalReasons),
			Qty:         g.faker.Int(6, 99),
			QCMApproval: approvals[i],
		}
		g.progress.Update(1)
	}
	return nil
}

// buildIncidents writes one report per calendar day in the date range.
func buildIncidents(_ context.Context, g *generator) error {
	weights := g.tables.Incidents.Weights
	if datagen.Total(weights) <= 0 {
		return &datagen.ConfigurationError{Reason: "incident count weights are empty"}
	}
	counts := make([]int, len(weights))
	w := make([]int, len(weights))
	for i, c := range weights {
		n, err := strconv.Atoi(c.Category)
		if err != nil || n < 0 {
			return &datagen.ConfigurationError{Reason: "incident count category " + strconv.Quote(c.Category) + " is not a non-negative integer"}
		}
		counts[i], w[i] = n, c.Count
	}

	days := datagen.DaysBetween(g.start, g.end) + 1
	g.ds.Incidents = make([]IncidentReport, days)
	for i := range g.ds.Incidents {
		g.ds.Incidents[i] = IncidentReport{
			ID:        sequenceID("INC", i),
			Date:      g.start.AddDate(0, 0, i),
			Shift:     datagen.Choose(g.faker, operationShifts),
			Incidents: datagen.ChooseWeighted(g.faker, counts, w),
		}
		g.progress.Update(1)
	}
	return nil
}
