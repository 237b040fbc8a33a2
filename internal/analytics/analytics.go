//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analytics implements the fixed reporting queries over the order
// history star schema. All queries are read-only.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
)

// TopCustomersLimit is the number of ranks kept per quarter by
// TopCustomersPerQuarter.
const TopCustomersLimit = 5

// OrderLine is one order line of a customer.
type OrderLine struct {
	Name        string
	ProductName string
	OrderDate   time.Time
	UnitPrice   decimal.Decimal
	Quantity    int32
	Total       decimal.Decimal
}

// NameTotal is a customer's order total.
type NameTotal struct {
	Name  string
	Total decimal.Decimal
}

// RegionTotal is the order total of a region.
type RegionTotal struct {
	Region string
	Total  decimal.Decimal
}

// CountryTotal is the order total of a country.
type CountryTotal struct {
	Country string
	Total   decimal.Decimal
}

// CountryRank is a country's total and its dense rank within its region.
type CountryRank struct {
	Region  string
	Country string
	Total   decimal.Decimal
	Rank    int64
}

// QuarterTotal is a customer's order total in one quarter.
type QuarterTotal struct {
	Quarter    string
	Year       int32
	CustomerID int32
	Total      decimal.Decimal
}

// QuarterRank is a QuarterTotal with its dense rank within the quarter.
type QuarterRank struct {
	QuarterTotal
	Rank int64
}

// MonthTotal is the order total of a calendar month across all years.
type MonthTotal struct {
	Month string
	Total float64
	Rank  int64
}

// OrderGap is the longest gap between consecutive orders of a customer.
type OrderGap struct {
	CustomerID        int32
	FirstName         string
	LastName          string
	Country           string
	OrderDate         time.Time
	PreviousOrderDate time.Time
	Days              int32
}

// CustomerOrderDetails returns every order line of the named customer.
func CustomerOrderDetails(ctx context.Context, q db.Querier, name string) ([]OrderLine, error) {
	return collect(ctx, q, "customer order details", customerOrderDetailsSQL, []any{name},
		func(row pgx.CollectableRow) (OrderLine, error) {
			var l OrderLine
			var price, total pgtype.Numeric
			var date pgtype.Date
			err := row.Scan(&l.Name, &l.ProductName, &date, &price, &l.Quantity, &total)
			l.OrderDate = date.Time
			l.UnitPrice = toDecimal(price)
			l.Total = toDecimal(total)
			return l, err
		})
}

// CustomerTotal returns the order total of the named customer. ok is false
// when the customer has no orders.
func CustomerTotal(ctx context.Context, q db.Querier, name string) (total NameTotal, ok bool, err error) {
	rows, err := collect(ctx, q, "customer total", customerTotalSQL, []any{name}, scanNameTotal)
	if err != nil || len(rows) == 0 {
		return NameTotal{}, false, err
	}
	return rows[0], true, nil
}

// CustomerTotals returns every customer's order total, largest first.
func CustomerTotals(ctx context.Context, q db.Querier) ([]NameTotal, error) {
	return collect(ctx, q, "customer totals", customerTotalsSQL, nil, scanNameTotal)
}

// RegionTotals returns the order total of every region, largest first.
func RegionTotals(ctx context.Context, q db.Querier) ([]RegionTotal, error) {
	return collect(ctx, q, "region totals", regionTotalsSQL, nil,
		func(row pgx.CollectableRow) (RegionTotal, error) {
			var r RegionTotal
			var total pgtype.Numeric
			err := row.Scan(&r.Region, &total)
			r.Total = toDecimal(total)
			return r, err
		})
}

// CountryTotals returns the order total of every country rounded to whole
// units, largest first.
func CountryTotals(ctx context.Context, q db.Querier) ([]CountryTotal, error) {
	return collect(ctx, q, "country totals", countryTotalsSQL, nil,
		func(row pgx.CollectableRow) (CountryTotal, error) {
			var c CountryTotal
			var total pgtype.Numeric
			err := row.Scan(&c.Country, &total)
			c.Total = toDecimal(total)
			return c, err
		})
}

// CountryRankWithinRegion ranks the countries of each region by total.
func CountryRankWithinRegion(ctx context.Context, q db.Querier) ([]CountryRank, error) {
	return collect(ctx, q, "country rank", countryRankWithinRegionSQL, nil, scanCountryRank)
}

// TopCountryPerRegion returns the top ranked countries of each region.
// Ties all rank first.
func TopCountryPerRegion(ctx context.Context, q db.Querier) ([]CountryRank, error) {
	return collect(ctx, q, "top country per region", topCountryPerRegionSQL, nil, scanCountryRank)
}

// QuarterlyCustomerTotals returns each customer's total per quarter.
func QuarterlyCustomerTotals(ctx context.Context, q db.Querier) ([]QuarterTotal, error) {
	return collect(ctx, q, "quarterly totals", quarterlyCustomerTotalsSQL, nil,
		func(row pgx.CollectableRow) (QuarterTotal, error) {
			var t QuarterTotal
			var total pgtype.Numeric
			err := row.Scan(&t.Quarter, &t.Year, &t.CustomerID, &total)
			t.Total = toDecimal(total)
			return t, err
		})
}

// TopCustomersPerQuarter returns the customers ranked within the top
// TopCustomersLimit of each quarter.
func TopCustomersPerQuarter(ctx context.Context, q db.Querier) ([]QuarterRank, error) {
	return collect(ctx, q, "top customers per quarter", topCustomersPerQuarterSQL, []any{TopCustomersLimit},
		func(row pgx.CollectableRow) (QuarterRank, error) {
			var r QuarterRank
			var total pgtype.Numeric
			err := row.Scan(&r.Quarter, &r.Year, &r.CustomerID, &total, &r.Rank)
			r.Total = toDecimal(total)
			return r, err
		})
}

// MonthlyTotals ranks calendar months by total.
func MonthlyTotals(ctx context.Context, q db.Querier) ([]MonthTotal, error) {
	return collect(ctx, q, "monthly totals", monthlyTotalsSQL, nil,
		func(row pgx.CollectableRow) (MonthTotal, error) {
			var m MonthTotal
			err := row.Scan(&m.Month, &m.Total, &m.Rank)
			return m, err
		})
}

// MaxOrderGaps returns the longest gap between orders of every customer
// with at least two orders, longest first.
func MaxOrderGaps(ctx context.Context, q db.Querier) ([]OrderGap, error) {
	return collect(ctx, q, "order gaps", maxOrderGapsSQL, nil,
		func(row pgx.CollectableRow) (OrderGap, error) {
			var g OrderGap
			var date, prev pgtype.Date
			err := row.Scan(&g.CustomerID, &g.FirstName, &g.LastName, &g.Country, &date, &prev, &g.Days)
			g.OrderDate = date.Time
			g.PreviousOrderDate = prev.Time
			return g, err
		})
}

func scanNameTotal(row pgx.CollectableRow) (NameTotal, error) {
	var n NameTotal
	var total pgtype.Numeric
	err := row.Scan(&n.Name, &total)
	n.Total = toDecimal(total)
	return n, err
}

func scanCountryRank(row pgx.CollectableRow) (CountryRank, error) {
	var c CountryRank
	var total pgtype.Numeric
	err := row.Scan(&c.Region, &c.Country, &total, &c.Rank)
	c.Total = toDecimal(total)
	return c, err
}

func collect[T any](ctx context.Context, q db.Querier, name, sql string, args []any, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s query: %w", name, err)
	}
	result, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return result, nil
}

// toDecimal converts a scanned NUMERIC. NULL and NaN become zero.
func toDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
