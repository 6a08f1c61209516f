//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides the random source and distribution controls used
// by the dataset generators.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
// All randomness in a dataset build flows through a single Faker so a
// fixed seed reproduces the dataset.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Name generates a random full name.
func (f *Faker) Name() string {
	return f.faker.Name()
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// Country generates a random country name.
func (f *Faker) Country() string {
	return f.faker.Country()
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Day returns a uniformly chosen calendar day in [start, end], both
// inclusive, at midnight UTC.
func (f *Faker) Day(start, end time.Time) time.Time {
	start = TruncateDay(start)
	days := DaysBetween(start, end)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, f.Int(0, days))
}

// ClockTime returns day at a random hour in [fromHour, toHour] and a random
// minute.
func (f *Faker) ClockTime(day time.Time, fromHour, toHour int) time.Time {
	return TruncateDay(day).Add(
		time.Duration(f.Int(fromHour, toHour))*time.Hour +
			time.Duration(f.Int(0, 59))*time.Minute,
	)
}

// Minutes returns a random duration of min..max whole minutes.
func (f *Faker) Minutes(min, max int) time.Duration {
	return time.Duration(f.Int(min, max)) * time.Minute
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// Shuffle applies a uniform random permutation to items in place
// (Fisher-Yates).
func Shuffle[T any](f *Faker, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := f.Int(0, i)
		items[i], items[j] = items[j], items[i]
	}
}

// TruncateDay drops the clock part of t and normalizes it to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(TruncateDay(end).Sub(TruncateDay(start)).Hours() / 24)
}
