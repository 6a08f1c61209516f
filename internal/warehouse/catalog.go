package warehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
)

// Prompts sent to the name service.
const (
	SupplierPrompt = "Realistic FMCG supplier names"
	CustomerPrompt = "Mixed names for supermarkets, hotels, etc."
	EmployeePrompt = "Realistic male/female names"
)

// CountryPrompt asks for a pool of n supplier countries.
func CountryPrompt(n int) string {
	return fmt.Sprintf("%d different supplier countries", n)
}

// Designations with their own birth and joining year ranges.
const (
	DesignationManager = "Manager"
	emailDomain        = "logisticsone.com"
)

var priceMarkup = decimal.NewFromFloat(1.3)

func buildVehicles(_ context.Context, g *generator) error {
	cfg := g.tables.Vehicles
	numbers, err := datagen.SampleWithoutReplacement(g.faker, 100000, 999999, cfg.Rows)
	if err != nil {
		return err
	}
	capacities, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}

	g.ds.Vehicles = make([]Vehicle, cfg.Rows)
	for i := range g.ds.Vehicles {
		g.ds.Vehicles[i] = Vehicle{No: strconv.Itoa(numbers[i]), Capacity: capacities[i]}
		g.progress.Update(1)
	}
	return nil
}

func buildSuppliers(ctx context.Context, g *generator) error {
	cfg := g.tables.Suppliers
	if cfg.Rows == 0 {
		return nil
	}
	if cfg.PoolSize < 1 {
		return &datagen.ConfigurationError{Reason: "country pool_size must be at least 1"}
	}

	names := g.names.GenerateNames(ctx, SupplierPrompt, cfg.Rows)
	countries := g.names.GenerateNames(ctx, CountryPrompt(cfg.PoolSize), cfg.PoolSize)

	g.ds.Suppliers = make([]Supplier, cfg.Rows)
	for i := range g.ds.Suppliers {
		g.ds.Suppliers[i] = Supplier{
			ID:      fmt.Sprintf("SUP%03d", i),
			Name:    names[i],
			Country: datagen.Choose(g.faker, countries),
		}
		g.progress.Update(1)
	}
	return nil
}

func buildCustomers(ctx context.Context, g *generator) error {
	cfg := g.tables.Customers
	if cfg.Rows == 0 {
		return nil
	}

	names := g.names.GenerateNames(ctx, CustomerPrompt, cfg.Rows)
	g.ds.Customers = make([]Customer, cfg.Rows)
	for i := range g.ds.Customers {
		g.ds.Customers[i] = Customer{ID: fmt.Sprintf("CUST%03d", i), Name: names[i]}
		g.progress.Update(1)
	}
	return nil
}

func buildEmployees(ctx context.Context, g *generator) error {
	cfg := g.tables.Employees
	if cfg.Rows == 0 {
		return nil
	}

	designations, err := datagen.BuildExactDistribution(g.faker, cfg.Rows, cfg.Distribution)
	if err != nil {
		return err
	}
	ids, err := datagen.SampleWithoutReplacement(g.faker, 100, 4000, cfg.Rows)
	if err != nil {
		return err
	}
	names := g.names.GenerateNames(ctx, EmployeePrompt, cfg.Rows)

	g.ds.Employees = make([]Employee, cfg.Rows)
	for i := range g.ds.Employees {
		dob, joined := employeeDates(g.faker, designations[i])
		g.ds.Employees[i] = Employee{
			ID:          fmt.Sprintf("emp%d", ids[i]),
			Name:        names[i],
			Designation: designations[i],
			Department:  department(designations[i]),
			Email:       email(names[i]),
			DateOfBirth: dob,
			JoinedDate:  joined,
		}
		g.progress.Update(1)
	}
	return nil
}

// employeeDates draws a birth and joining date, both on the first of a
// month. Nobody joins before turning 18.
func employeeDates(f *datagen.Faker, designation string) (time.Time, time.Time) {
	birthFrom, birthTo, joinFrom, joinTo := 1985, 2000, 1990, 2015
	if designation == DesignationManager {
		birthFrom, birthTo, joinFrom, joinTo = 1970, 1979, 2000, 2010
	}

	dob := firstOfMonth(f.Int(birthFrom, birthTo), f.Int(1, 12))
	adult := dob.AddDate(18, 0, 0)
	joinFrom = max(joinFrom, adult.Year())
	joinTo = max(joinTo, joinFrom)

	joined := firstOfMonth(f.Int(joinFrom, joinTo), f.Int(1, 12))
	if joined.Before(adult) {
		joined = adult
	}
	return dob, joined
}

func firstOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func department(designation string) string {
	switch {
	case designation == DesignationManager:
		return "Management"
	case strings.HasSuffix(designation, "inbound"):
		return "Inbound"
	case strings.HasSuffix(designation, "outbound"):
		return "Outbound"
	}
	return ""
}

func email(name string) string {
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))
	return local + "@" + emailDomain
}

func buildProducts(_ context.Context, g *generator) error {
	cfg := g.tables.Products
	if cfg.Rows == 0 {
		return nil
	}
	if err := requirePool(ProductDetails, map[string]int{SupplierDetails: len(g.ds.Suppliers)}); err != nil {
		return err
	}

	ids, err := datagen.SampleWithoutReplacement(g.faker, 100000, 999999, cfg.Rows)
	if err != nil {
		return err
	}

	g.ds.Products = make([]Product, cfg.Rows)
	for i := range g.ds.Products {
		cost := decimal.NewFromFloat(g.faker.Float64(5.0, 500.0)).Round(2)
		g.ds.Products[i] = Product{
			ID:             strconv.Itoa(ids[i]),
			SupplierID:     datagen.Choose(g.faker, g.ds.Suppliers).ID,
			DeliveryNoteID: strconv.Itoa(g.faker.Int(100000, 999999)),
			Name:           g.faker.ProductName(),
			SystemQty:      g.faker.Int(20, 1000),
			Cost:           cost,
			Price:          cost.Mul(priceMarkup).Round(2),
			CartonVolume:   decimal.NewFromFloat(g.faker.Float64(0.05, 1.50)).Round(2),
		}
		g.progress.Update(1)
	}
	return nil
}
