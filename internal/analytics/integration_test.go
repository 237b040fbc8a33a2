//go:build integration

// Integration tests for the reporting queries.
// Run with: go test -tags=integration ./internal/analytics/...
// Requires PostgreSQL. Set ORDERBI_TEST_CONN to override the server.

package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-orderbi/internal/analytics"
	"github.com/pgEdge/pgedge-orderbi/internal/etl"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
	"github.com/pgEdge/pgedge-orderbi/internal/testutil"
)

// Big Spender: 5 x 100.00 = 500.00 over two orders 73 days apart.
// Small Spender: 3 x 100.00 = 300.00.
// Cher has no last name: 1 x 100.00 = 100.00.
const ordersTSV = "Name\tAddress\tCity\tCountry\tRegion\tProductName\tProductCategory\tProductUnitPrice\tQuantityOrdered\tOrderDate\n" +
	"Big Spender\t1 High St\tLeeds\tUnited Kingdom\tEurope\tLamp;Lamp\tHome;Home\t100.00;100.00\t2;3\t20230101;20230315\n" +
	"Small Spender\t2 Low St\tLyon\tFrance\tEurope\tLamp\tHome\t100.00\t3\t20230601\n" +
	"Cher\t3 Rue Haute\tLyon\tFrance\tEurope\tLamp\tHome\t100.00\t1\t20230704\n"

func TestQueriesIntegration(t *testing.T) {
	connStr, pool := testutil.NewTestDB(t, "analytics")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	src := source.FromBytes("orders.tsv", []byte(ordersTSV))
	if _, err := etl.NewPipeline(connStr, src, etl.Options{}).Run(ctx); err != nil {
		t.Fatalf("pipeline Run() error = %v", err)
	}

	t.Run("customer totals descending", func(t *testing.T) {
		totals, err := analytics.CustomerTotals(ctx, pool)
		if err != nil {
			t.Fatal(err)
		}
		if len(totals) != 3 {
			t.Fatalf("got %d totals, want 3", len(totals))
		}
		if totals[0].Name != "Big Spender" || totals[0].Total.StringFixed(2) != "500.00" {
			t.Errorf("first = %+v, want Big Spender 500.00", totals[0])
		}
		if totals[1].Total.StringFixed(2) != "300.00" {
			t.Errorf("second total = %s, want 300.00", totals[1].Total)
		}
		if totals[2].Name != "Cher" {
			t.Errorf("third name = %q, want Cher", totals[2].Name)
		}
	})

	t.Run("max order gap", func(t *testing.T) {
		gaps, err := analytics.MaxOrderGaps(ctx, pool)
		if err != nil {
			t.Fatal(err)
		}
		if len(gaps) != 1 {
			t.Fatalf("got %d gaps, want 1", len(gaps))
		}
		g := gaps[0]
		if g.Days != 73 {
			t.Errorf("gap = %d days, want 73", g.Days)
		}
		if g.PreviousOrderDate.Format("2006-01-02") != "2023-01-01" || g.OrderDate.Format("2006-01-02") != "2023-03-15" {
			t.Errorf("gap dates = %s..%s", g.PreviousOrderDate, g.OrderDate)
		}
	})

	t.Run("customer detail and total", func(t *testing.T) {
		lines, err := analytics.CustomerOrderDetails(ctx, pool, "Big Spender")
		if err != nil {
			t.Fatal(err)
		}
		if len(lines) != 2 || lines[0].Total.StringFixed(2) != "200.00" {
			t.Errorf("lines = %+v", lines)
		}

		total, ok, err := analytics.CustomerTotal(ctx, pool, "Big Spender")
		if err != nil || !ok || total.Total.StringFixed(2) != "500.00" {
			t.Errorf("CustomerTotal() = %+v, %v, %v", total, ok, err)
		}

		_, ok, err = analytics.CustomerTotal(ctx, pool, "Nobody")
		if err != nil || ok {
			t.Errorf("CustomerTotal(Nobody) ok = %v, err = %v", ok, err)
		}
	})

	t.Run("customer without last name", func(t *testing.T) {
		lines, err := analytics.CustomerOrderDetails(ctx, pool, "Cher")
		if err != nil {
			t.Fatal(err)
		}
		if len(lines) != 1 || lines[0].Name != "Cher" || lines[0].Total.StringFixed(2) != "100.00" {
			t.Errorf("lines = %+v", lines)
		}

		total, ok, err := analytics.CustomerTotal(ctx, pool, "Cher")
		if err != nil || !ok || total.Name != "Cher" || total.Total.StringFixed(2) != "100.00" {
			t.Errorf("CustomerTotal(Cher) = %+v, %v, %v", total, ok, err)
		}

		_, ok, err = analytics.CustomerTotal(ctx, pool, "Cher ")
		if err != nil || ok {
			t.Errorf(`CustomerTotal("Cher ") ok = %v, err = %v`, ok, err)
		}
	})

	t.Run("region and country ranking", func(t *testing.T) {
		ranks, err := analytics.CountryRankWithinRegion(ctx, pool)
		if err != nil {
			t.Fatal(err)
		}
		if len(ranks) != 2 || ranks[0].Country != "United Kingdom" || ranks[0].Rank != 1 || ranks[1].Rank != 2 {
			t.Errorf("ranks = %+v", ranks)
		}

		top, err := analytics.TopCountryPerRegion(ctx, pool)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) != 1 || top[0].Country != "United Kingdom" {
			t.Errorf("top = %+v", top)
		}

		regions, err := analytics.RegionTotals(ctx, pool)
		if err != nil {
			t.Fatal(err)
		}
		if len(regions) != 1 || regions[0].Total.StringFixed(2) != "900.00" {
			t.Errorf("regions = %+v", regions)
		}
	})

	t.Run("catalog runs", func(t *testing.T) {
		for _, q := range analytics.Catalog() {
			table, err := q.Run(ctx, pool, "Big Spender")
			if err != nil {
				t.Errorf("%s: %v", q.Name, err)
				continue
			}
			for _, row := range table.Rows {
				if len(row) != len(table.Columns) {
					t.Errorf("%s: row has %d cells, want %d", q.Name, len(row), len(table.Columns))
				}
			}
		}
	})
}
