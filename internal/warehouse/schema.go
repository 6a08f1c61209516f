//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse generates the warehouse operations dataset: five base
// entity tables and ten log tables that reference them by foreign key.
package warehouse

// Table names.
const (
	VehicleDetails     = "vehicle_details"
	SupplierDetails    = "supplier_details"
	CustomerDetails    = "customer_details"
	EmployeeDetails    = "employee_details"
	ProductDetails     = "product_details"
	InboundLog         = "inbound_log"
	OutboundLog        = "outbound_log"
	ReturnHandlingLog  = "return_handling_log"
	VehicleNCRLog      = "vehicle_ncr_log"
	VehicleHygieneLog  = "vehicle_hygiene_log"
	InboundInspection  = "inbound_inspection_log"
	ComplaintLog       = "complaint_handling_log"
	CycleCountLog      = "cycle_count_log"
	ProductDisposalLog = "product_disposal_log"
	IncidentLog        = "warehouse_incident_reporting_log"
)

// Column types. They are understood by both PostgreSQL and SQLite.
const (
	TypeText      = "TEXT"
	TypeInteger   = "INTEGER"
	TypeNumeric   = "NUMERIC(12,2)"
	TypeDate      = "DATE"
	TypeTimestamp = "TIMESTAMP"
)

// Column describes one table column.
type Column struct {
	Name    string
	Type    string
	NotNull bool
}

// ForeignKey references the key column of another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef describes a generated table. Key is both the primary key and
// the upsert conflict key.
type TableDef struct {
	Name       string
	Key        string
	Columns    []Column
	References []ForeignKey
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Dependencies returns the distinct tables t references.
func (t TableDef) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, fk := range t.References {
		if !seen[fk.RefTable] {
			seen[fk.RefTable] = true
			deps = append(deps, fk.RefTable)
		}
	}
	return deps
}

func colText(name string) Column { return Column{Name: name, Type: TypeText, NotNull: true} }
func colNullText(name string) Column { return Column{Name: name, Type: TypeText} }
func colInteger(name string) Column { return Column{Name: name, Type: TypeInteger, NotNull: true} }
func colNumeric(name string) Column { return Column{Name: name, Type: TypeNumeric, NotNull: true} }
func colDate(name string) Column { return Column{Name: name, Type: TypeDate, NotNull: true} }
func colNullDate(name string) Column { return Column{Name: name, Type: TypeDate} }
func colTimestamp(name string) Column { return Column{Name: name, Type: TypeTimestamp, NotNull: true} }

func ref(column, table string) ForeignKey {
	return ForeignKey{Column: column, RefTable: table, RefColumn: column}
}

var schemas = []TableDef{
	{
		Name:    VehicleDetails,
		Key:     "vehicle_no",
		Columns: []Column{colText("vehicle_no"), colText("vehicle_capacity")},
	},
	{
		Name:    SupplierDetails,
		Key:     "supplier_id",
		Columns: []Column{colText("supplier_id"), colText("supplier_name"), colText("country")},
	},
	{
		Name:    CustomerDetails,
		Key:     "customer_id",
		Columns: []Column{colText("customer_id"), colText("customer_name")},
	},
	{
		Name: EmployeeDetails,
		Key:  "emp_id",
		Columns: []Column{
			colText("emp_id"), colText("emp_name"), colText("designation"), colNullText("department"),
			colText("email_address"), colDate("date_of_birth"), colDate("joined_date"),
		},
	},
	{
		Name: ProductDetails,
		Key:  "product_id",
		Columns: []Column{
			colText("product_id"), colText("supplier_id"), colText("delivery_note_id"), colText("product_name"),
			colInteger("system_qty"), colNumeric("product_cost"), colNumeric("product_price"),
			colNumeric("product_carton_volume_cbm"),
		},
		References: []ForeignKey{ref("supplier_id", SupplierDetails)},
	},
	{
		Name: InboundLog,
		Key:  "inbound_id",
		Columns: []Column{
			colText("inbound_id"), colDate("inbound_date"), colText("supplier_id"), colText("delivery_note_id"),
			colText("product_id"), colInteger("received_qty"), colInteger("rejected_qty"), colText("inbound_status"),
			colNullText("rejected_reason"), colTimestamp("unloading_started_time"),
			colTimestamp("unloading_completed_time"), colTimestamp("inbound_putaway_completed_time"),
		},
		References: []ForeignKey{ref("supplier_id", SupplierDetails), ref("product_id", ProductDetails)},
	},
	{
		Name: OutboundLog,
		Key:  "order_id",
		Columns: []Column{
			colText("order_id"), colDate("outbound_date"), colText("customer_id"), colText("product_id"),
			colInteger("ordered_qty"), colInteger("picked_qty"), colTimestamp("pick_sheet_issued_time"),
			colTimestamp("pick_completed_time"), colText("vehicle_no"), colTimestamp("loading_completed_time"),
		},
		References: []ForeignKey{
			ref("customer_id", CustomerDetails),
			ref("product_id", ProductDetails),
			ref("vehicle_no", VehicleDetails),
		},
	},
	{
		Name: ReturnHandlingLog,
		Key:  "return_id",
		Columns: []Column{
			colText("return_id"), colDate("return_date"), colText("customer_id"), colText("order_id"),
			colText("product_id"), colInteger("returned_qty"), colText("return_reason"),
			colTimestamp("return_unloading_started_time"), colTimestamp("return_putaway_completed_time"),
		},
		References: []ForeignKey{
			ref("customer_id", CustomerDetails),
			ref("order_id", OutboundLog),
			ref("product_id", ProductDetails),
		},
	},
	{
		Name: VehicleNCRLog,
		Key:  "ncr_id",
		Columns: []Column{
			colText("ncr_id"), colDate("ncr_raised_date"), colText("vehicle_no"), colText("ncr_reason"),
			colText("ncr_status"), colNullDate("ca_completed_date"),
		},
		References: []ForeignKey{ref("vehicle_no", VehicleDetails)},
	},
	{
		Name: VehicleHygieneLog,
		Key:  "hygiene_id",
		Columns: []Column{
			colText("hygiene_id"), colText("order_id"), colDate("inspection_date"), colText("vehicle_no"),
			colText("good_truckbox"), colText("good_truckfloor"), colText("good_truckdoor"), colText("good_curtain"),
			colText("good_cooling_unit"), colText("pest_check"), colText("odor_check"),
		},
		References: []ForeignKey{ref("order_id", OutboundLog), ref("vehicle_no", VehicleDetails)},
	},
	{
		Name: InboundInspection,
		Key:  "inspection_id",
		Columns: []Column{
			colText("inspection_id"), colText("inbound_id"), colDate("inbound_date"), colText("delivery_note_id"),
			colText("product_id"), colInteger("received_qty"), colInteger("rejected_qty"), colNullText("rejected_reason"),
		},
		References: []ForeignKey{ref("inbound_id", InboundLog), ref("product_id", ProductDetails)},
	},
	{
		Name: ComplaintLog,
		Key:  "complaint_id",
		Columns: []Column{
			colText("complaint_id"), colDate("complaint_date"), colText("customer_id"), colText("product_id"),
			colInteger("complaint_qty"), colText("complaint_category"), colText("complaint_status"),
			colNullDate("resolution_completed_date"),
		},
		References: []ForeignKey{ref("customer_id", CustomerDetails), ref("product_id", ProductDetails)},
	},
	{
		Name: CycleCountLog,
		Key:  "cycle_id",
		Columns: []Column{
			colText("cycle_id"), colDate("count_date"), colText("product_id"), colInteger("system_qty"), colInteger("counted_qty"),
		},
		References: []ForeignKey{ref("product_id", ProductDetails)},
	},
	{
		Name: ProductDisposalLog,
		Key:  "disposal_id",
		Columns: []Column{
			colText("disposal_id"), colDate("disposal_date"), colText("product_id"), colText("disposal_reason"),
			colInteger("disposal_qty"), colText("qcm_approval"),
		},
		References: []ForeignKey{ref("product_id", ProductDetails)},
	},
	{
		Name: IncidentLog,
		Key:  "reporting_id",
		Columns: []Column{
			colText("reporting_id"), colDate("reporting_date"), colText("operation_shift"), colInteger("no_of_incidents"),
		},
	},
}

// Schemas returns every table definition, base tables first.
func Schemas() []TableDef {
	out := make([]TableDef, len(schemas))
	copy(out, schemas)
	return out
}

// Schema returns the definition of the named table.
func Schema(name string) (TableDef, bool) {
	for _, t := range schemas {
		if t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}

// TableNames returns all table names, base tables first.
func TableNames() []string {
	names := make([]string, len(schemas))
	for i, t := range schemas {
		names[i] = t.Name
	}
	return names
}
