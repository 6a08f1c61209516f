package warehouse

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts used when records are flattened.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Record is a generated row that can be flattened into column order.
type Record interface {
	Values() []string
}

func fmtDate(t time.Time) string { return t.Format(DateLayout) }
func fmtTimestamp(t time.Time) string { return t.Format(TimestampLayout) }
func fmtInt(n int) string { return strconv.Itoa(n) }
func fmtMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// fmtOptionalDate renders nil as an empty field, which loads as NULL.
func fmtOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtDate(*t)
}

type Vehicle struct {
	No       string
	Capacity string
}

func (v Vehicle) Values() []string { return []string{v.No, v.Capacity} }

type Supplier struct {
	ID      string
	Name    string
	Country string
}

func (s Supplier) Values() []string { return []string{s.ID, s.Name, s.Country} }

type Customer struct {
	ID   string
	Name string
}

func (c Customer) Values() []string { return []string{c.ID, c.Name} }

type Employee struct {
	ID          string
	Name        string
	Designation string
	Department  string
	Email       string
	DateOfBirth time.Time
	JoinedDate  time.Time
}

func (e Employee) Values() []string {
	return []string{
		e.ID, e.Name, e.Designation, e.Department, e.Email,
		fmtDate(e.DateOfBirth), fmtDate(e.JoinedDate),
	}
}

type Product struct {
	ID             string
	SupplierID     string
	DeliveryNoteID string
	Name           string
	SystemQty      int
	Cost           decimal.Decimal
	Price          decimal.Decimal
	CartonVolume   decimal.Decimal
}

func (p Product) Values() []string {
	return []string{
		p.ID, p.SupplierID, p.DeliveryNoteID, p.Name, fmtInt(p.SystemQty),
		fmtMoney(p.Cost), fmtMoney(p.Price), fmtMoney(p.CartonVolume),
	}
}

// InboundEntry is a received delivery. RejectedReason is empty for
// accepted deliveries.
type InboundEntry struct {
	ID                string
	Date              time.Time
	SupplierID        string
	DeliveryNoteID    string
	ProductID         string
	ReceivedQty       int
	RejectedQty       int
	Status            string
	RejectedReason    string
	UnloadingStarted  time.Time
	UnloadingComplete time.Time
	PutawayComplete   time.Time
}

func (e InboundEntry) Values() []string {
	return []string{
		e.ID, fmtDate(e.Date), e.SupplierID, e.DeliveryNoteID, e.ProductID,
		fmtInt(e.ReceivedQty), fmtInt(e.RejectedQty), e.Status, e.RejectedReason,
		fmtTimestamp(e.UnloadingStarted), fmtTimestamp(e.UnloadingComplete), fmtTimestamp(e.PutawayComplete),
	}
}

type OutboundEntry struct {
	OrderID          string
	Date             time.Time
	CustomerID       string
	ProductID        string
	OrderedQty       int
	PickedQty        int
	PickSheetIssued  time.Time
	PickCompleted    time.Time
	VehicleNo        string
	LoadingCompleted time.Time
}

func (e OutboundEntry) Values() []string {
	return []string{
		e.OrderID, fmtDate(e.Date), e.CustomerID, e.ProductID,
		fmtInt(e.OrderedQty), fmtInt(e.PickedQty),
		fmtTimestamp(e.PickSheetIssued), fmtTimestamp(e.PickCompleted),
		e.VehicleNo, fmtTimestamp(e.LoadingCompleted),
	}
}

type ReturnEntry struct {
	ID               string
	Date             time.Time
	CustomerID       string
	OrderID          string
	ProductID        string
	ReturnedQty      int
	Reason           string
	UnloadingStarted time.Time
	PutawayComplete  time.Time
}

func (e ReturnEntry) Values() []string {
	return []string{
		e.ID, fmtDate(e.Date), e.CustomerID, e.OrderID, e.ProductID,
		fmtInt(e.ReturnedQty), e.Reason,
		fmtTimestamp(e.UnloadingStarted), fmtTimestamp(e.PutawayComplete),
	}
}

type VehicleNCR struct {
	ID          string
	RaisedDate  time.Time
	VehicleNo   string
	Reason      string
	Status      string
	CACompleted *time.Time
}

func (n VehicleNCR) Values() []string {
	return []string{
		n.ID, fmtDate(n.RaisedDate), n.VehicleNo, n.Reason, n.Status, fmtOptionalDate(n.CACompleted),
	}
}

// HygieneCheck is the vehicle inspection done for one outbound order.
type HygieneCheck struct {
	ID             string
	OrderID        string
	Date           time.Time
	VehicleNo      string
	GoodTruckBox   string
	GoodTruckFloor string
	GoodTruckDoor  string
	GoodCurtain    string
	GoodCooling    string
	PestCheck      string
	OdorCheck      string
}

func (h HygieneCheck) Values() []string {
	return []string{
		h.ID, h.OrderID, fmtDate(h.Date), h.VehicleNo,
		h.GoodTruckBox, h.GoodTruckFloor, h.GoodTruckDoor, h.GoodCurtain,
		h.GoodCooling, h.PestCheck, h.OdorCheck,
	}
}

type InboundInspectionEntry struct {
	ID             string
	InboundID      string
	Date           time.Time
	DeliveryNoteID string
	ProductID      string
	ReceivedQty    int
	RejectedQty    int
	RejectedReason string
}

func (e InboundInspectionEntry) Values() []string {
	return []string{
		e.ID, e.InboundID, fmtDate(e.Date), e.DeliveryNoteID, e.ProductID,
		fmtInt(e.ReceivedQty), fmtInt(e.RejectedQty), e.RejectedReason,
	}
}

type Complaint struct {
	ID         string
	Date       time.Time
	CustomerID string
	ProductID  string
	Qty        int
	Category   string
	Status     string
	Resolved   *time.Time
}

func (c Complaint) Values() []string {
	return []string{
		c.ID, fmtDate(c.Date), c.CustomerID, c.ProductID, fmtInt(c.Qty),
		c.Category, c.Status, fmtOptionalDate(c.Resolved),
	}
}

type CycleCount struct {
	ID         string
	Date       time.Time
	ProductID  string
	SystemQty  int
	CountedQty int
}

func (c CycleCount) Values() []string {
	return []string{c.ID, fmtDate(c.Date), c.ProductID, fmtInt(c.SystemQty), fmtInt(c.CountedQty)}
}

type Disposal struct {
	ID          string
	Date        time.Time
	ProductID   string
	Reason      string
	Qty         int
	QCMApproval string
}

func (d Disposal) Values() []string {
	return []string{d.ID, fmtDate(d.Date), d.ProductID, d.Reason, fmtInt(d.Qty), d.QCMApproval}
}

type IncidentReport struct {
	ID        string
	Date      time.Time
	Shift     string
	Incidents int
}

func (r IncidentReport) Values() []string {
	return []string{r.ID, fmtDate(r.Date), r.Shift, fmtInt(r.Incidents)}
}
