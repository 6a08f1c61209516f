package warehouse

import (
	"errors"
	"testing"
)

func TestTopoSort(t *testing.T) {
	deps := map[string][]string{
		"c": {"a", "b"},
		"b": {"a"},
		"a": nil,
		"d": nil,
	}

	order, err := TopoSort(deps)
	if err != nil {
		t.Fatalf("TopoSort failed: %v", err)
	}
	want := []string{"a", "b", "c", "d"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

func TestTopoSortErrors(t *testing.T) {
	tests := []struct {
		name      string
		deps      map[string][]string
		wantTable string
		wantCycle bool
	}{
		{
			name:      "missing prerequisite",
			deps:      map[string][]string{"orders": {"customers"}},
			wantTable: "orders",
		},
		{
			name:      "cycle",
			deps:      map[string][]string{"a": {"b"}, "b": {"a"}, "c": nil},
			wantCycle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TopoSort(tt.deps)
			var de *DependencyError
			if !errors.As(err, &de) {
				t.Fatalf("Expected DependencyError, got %v", err)
			}
			if tt.wantCycle && len(de.Cycle) != 2 {
				t.Errorf("Expected a two-table cycle, got %v", de.Cycle)
			}
			if de.Table != tt.wantTable {
				t.Errorf("Expected table %q, got %q", tt.wantTable, de.Table)
			}
		})
	}
}

func TestGenerationOrder(t *testing.T) {
	order, err := GenerationOrder()
	if err != nil {
		t.Fatalf("GenerationOrder failed: %v", err)
	}
	if len(order) != len(TableNames()) {
		t.Fatalf("Expected %d tables, got %d", len(TableNames()), len(order))
	}
	if err := CheckOrder(order, Dependencies()); err != nil {
		t.Errorf("Generation order violates dependencies: %v", err)
	}

	pos := map[string]int{}
	for i, name := range order {
		pos[name] = i
	}
	if pos[OutboundLog] > pos[ReturnHandlingLog] || pos[OutboundLog] > pos[VehicleHygieneLog] {
		t.Error("outbound_log must come before return_handling_log and vehicle_hygiene_log")
	}
	if pos[InboundLog] > pos[InboundInspection] {
		t.Error("inbound_log must come before inbound_inspection_log")
	}
}

func TestCheckOrder(t *testing.T) {
	deps := Dependencies()

	err := CheckOrder([]string{VehicleDetails, VehicleNCRLog}, deps)
	if err != nil {
		t.Errorf("Expected valid order, got %v", err)
	}

	err = CheckOrder([]string{VehicleNCRLog, VehicleDetails}, deps)
	var de *DependencyError
	if !errors.As(err, &de) || de.Table != VehicleNCRLog {
		t.Errorf("Expected DependencyError for vehicle_ncr_log, got %v", err)
	}

	err = CheckOrder([]string{ProductDetails}, deps)
	if !errors.As(err, &de) || de.Missing[0] != SupplierDetails {
		t.Errorf("Expected missing supplier_details, got %v", err)
	}
}

func TestSchemasReferenceKeys(t *testing.T) {
	for _, def := range Schemas() {
		cols := map[string]bool{}
		for _, c := range def.Columns {
			cols[c.Name] = true
		}
		if !cols[def.Key] {
			t.Errorf("%s: key %s is not a column", def.Name, def.Key)
		}
		for _, fk := range def.References {
			if !cols[fk.Column] {
				t.Errorf("%s: foreign key column %s is not a column", def.Name, fk.Column)
			}
			ref, ok := Schema(fk.RefTable)
			if !ok {
				t.Errorf("%s: unknown referenced table %s", def.Name, fk.RefTable)
				continue
			}
			if ref.Key != fk.RefColumn {
				t.Errorf("%s: %s must reference the key of %s", def.Name, fk.Column, fk.RefTable)
			}
		}
	}
}
