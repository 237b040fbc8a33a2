//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates sample order history files.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// compactDate is the OrderDate layout of the source file.
const compactDate = "20060102"

// Faker draws the random parts of a sample record from gofakeit.
type Faker struct {
	gf *gofakeit.Faker
}

// NewFaker returns a Faker seeded from the clock, or from seed when it is
// not zero.
func NewFaker(seed uint64) *Faker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Faker{gf: gofakeit.New(seed)}
}

// CustomerName returns "First Last".
func (f *Faker) CustomerName() string {
	return f.gf.FirstName() + " " + f.gf.LastName()
}

// Address returns a street address and its city.
func (f *Faker) Address() (street, city string) {
	return f.gf.Street(), f.gf.City()
}

// OrderDate returns a date in [start, end] in the compact YYYYMMDD form.
func (f *Faker) OrderDate(start, end time.Time) string {
	return f.gf.DateRange(start, end).Format(compactDate)
}

// Between returns an integer in [lo, hi].
func (f *Faker) Between(lo, hi int) int {
	return f.gf.IntRange(lo, hi)
}

// Pick returns a random element of items, or the zero value when empty.
func Pick[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Between(0, len(items)-1)]
}

// PickWeighted returns a random element of items, each drawn with the
// probability of its weight.
func PickWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	total := 0
	for _, w := range weights {
		total += w
	}

	r := f.Between(1, total)
	for i, w := range weights {
		if r -= w; r <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}
