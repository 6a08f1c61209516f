//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"errors"
	"fmt"
	"sort"
)

// CategoryCount is one entry of an exact categorical distribution.
type CategoryCount struct {
	Category string `mapstructure:"category"`
	Count    int    `mapstructure:"count"`
}

// ConfigurationError reports a distribution or anomaly setting that cannot
// be satisfied for a table. It aborts generation of that table.
type ConfigurationError struct {
	Table  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Table == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Table, e.Reason)
}

// Total returns the sum of all counts.
func Total(counts []CategoryCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

// BuildExactDistribution expands each category into Count copies and
// shuffles the result, so the realized frequencies equal the declared
// counts exactly. The counts must sum to totalRows.
func BuildExactDistribution(f *Faker, totalRows int, counts []CategoryCount) ([]string, error) {
	if totalRows < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("row count %d is negative", totalRows)}
	}
	for _, c := range counts {
		if c.Count < 0 {
			return nil, &ConfigurationError{
				Reason: fmt.Sprintf("category %q has negative count %d", c.Category, c.Count),
			}
		}
	}
	if sum := Total(counts); sum != totalRows {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("category counts sum to %d, expected %d", sum, totalRows),
		}
	}

	out := make([]string, 0, totalRows)
	for _, c := range counts {
		for i := 0; i < c.Count; i++ {
			out = append(out, c.Category)
		}
	}
	Shuffle(f, out)
	return out, nil
}

// IndexSet is a set of row positions selected for anomaly injection.
type IndexSet map[int]struct{}

// Has reports whether row i is in the set.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SampleAnomalyIndices picks anomalyCount distinct positions from
// [0, totalRows) without replacement.
func SampleAnomalyIndices(f *Faker, totalRows, anomalyCount int) (IndexSet, error) {
	if anomalyCount < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("anomaly count %d is negative", anomalyCount)}
	}
	if anomalyCount > totalRows {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("anomaly count %d exceeds row count %d", anomalyCount, totalRows),
		}
	}

	picked, err := SampleWithoutReplacement(f, 0, totalRows-1, anomalyCount)
	if err != nil {
		return nil, err
	}
	set := make(IndexSet, anomalyCount)
	for _, i := range picked {
		set[i] = struct{}{}
	}
	return set, nil
}

// SampleWithoutReplacement draws n distinct integers from [lo, hi] in random
// order. Used for unique keys (vehicle numbers, product ids) as well as
// anomaly indices.
func SampleWithoutReplacement(f *Faker, lo, hi, n int) ([]int, error) {
	size := hi - lo + 1
	if n < 0 || n > size {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("cannot draw %d distinct values from a pool of %d", n, max(size, 0)),
		}
	}

	// Sparse partial Fisher-Yates: only displaced slots are stored, so a
	// draw of 40 from a 900000-wide range stays small.
	swapped := make(map[int]int, n)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	out := make([]int, n)
	for i := 0; i < n; i++ {
		j := f.Int(i, size-1)
		vi, vj := at(i), at(j)
		swapped[i], swapped[j] = vj, vi
		out[i] = lo + vj
	}
	return out, nil
}

// ForTable stamps table onto err if it is a ConfigurationError without one.
func ForTable(err error, table string) error {
	var ce *ConfigurationError
	if errors.As(err, &ce) && ce.Table == "" {
		ce.Table = table
	}
	return err
}
