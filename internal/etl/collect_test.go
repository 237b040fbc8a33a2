package etl

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

const header = "Name\tAddress\tCity\tCountry\tRegion\tProductName\tProductCategory\tProductUnitPrice\tQuantityOrdered\tOrderDate"

// tsv builds an in-memory source; each row is given as its ten cells.
func tsv(rows ...[]string) *source.Reader {
	lines := []string{header}
	for _, r := range rows {
		lines = append(lines, strings.Join(r, "\t"))
	}
	return source.FromBytes("test.tsv", []byte(strings.Join(lines, "\n")+"\n"))
}

func row(name, country, region, products, categories, prices, quantities, dates string) []string {
	return []string{name, "1 Main St", "Springfield", country, region, products, categories, prices, quantities, dates}
}

func TestCollectDimensions(t *testing.T) {
	src := tsv(
		row("Ada Lovelace", "United Kingdom", "Europe", "Widget;Gadget", "Tools; Toys", "1;2", "1;1", "20230101;20230102"),
		row("Alan Turing", "United Kingdom", "Europe", "Widget", "Tools", "1", "1", "20230103"),
		row("Grace Hopper", "United States", "North America", "Gizmo", "Electronics;", "5", "1", "20230104"),
		row("No Region", "Atlantis", "", "", "", "", "", ""),
		row("No Country", "", "Oceania", "", "", "", "", ""),
	)

	dims, counters, err := CollectDimensions(src)
	if err != nil {
		t.Fatalf("CollectDimensions() error = %v", err)
	}
	if counters.Records != 5 {
		t.Errorf("Records = %d, want 5", counters.Records)
	}

	wantRegions := []string{"Europe", "North America", "Oceania"}
	if !reflect.DeepEqual(dims.Regions, wantRegions) {
		t.Errorf("Regions = %v, want %v", dims.Regions, wantRegions)
	}

	wantCountries := []CountryRegion{
		{Country: "United Kingdom", Region: "Europe"},
		{Country: "United States", Region: "North America"},
	}
	if !reflect.DeepEqual(dims.Countries, wantCountries) {
		t.Errorf("Countries = %v, want %v", dims.Countries, wantCountries)
	}

	wantCategories := []Category{
		{Name: "Electronics", Description: "Electronics"},
		{Name: "Tools", Description: "Tools"},
		{Name: "Toys", Description: "Toys"},
	}
	if !reflect.DeepEqual(dims.Categories, wantCategories) {
		t.Errorf("Categories = %v, want %v", dims.Categories, wantCategories)
	}
}

func TestCollectCustomers(t *testing.T) {
	src := tsv(
		[]string{"Mary Ann Evans", "Nuneaton", "Warwickshire", "United Kingdom", "Europe", "", "", "", "", ""},
		[]string{"Ada Lovelace", "First Address", "London", "United Kingdom", "Europe", "", "", "", "", ""},
		[]string{"Ada Lovelace", "Second Address", "Paris", "France", "Europe", "", "", "", "", ""},
		[]string{"Cher", "", "", "", "", "", "", "", "", ""},
		[]string{"", "Nowhere", "", "", "", "", "", "", "", ""},
	)

	customers, counters, err := CollectCustomers(src)
	if err != nil {
		t.Fatalf("CollectCustomers() error = %v", err)
	}

	want := []Customer{
		{FirstName: "Ada", LastName: "Lovelace", Address: "First Address", City: "London", Country: "United Kingdom"},
		{FirstName: "Cher"},
		{FirstName: "Mary", LastName: "Ann Evans", Address: "Nuneaton", City: "Warwickshire", Country: "United Kingdom"},
	}
	if !reflect.DeepEqual(customers, want) {
		t.Errorf("customers = %+v, want %+v", customers, want)
	}
	if counters.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", counters.SkippedRecords)
	}
}

func TestCollectProductsExpandsLineItems(t *testing.T) {
	src := tsv(row("Ada Lovelace", "UK", "Europe", "Widget;Gadget", "Tools;Tools", "9.99;19.99", "1;1", "20230101;20230101"))

	products, _, err := CollectProducts(src, map[string]int32{"Tools": 7}, Options{})
	if err != nil {
		t.Fatalf("CollectProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	got := map[string]string{}
	for _, p := range products {
		if p.CategoryID != 7 {
			t.Errorf("%s CategoryID = %d, want 7", p.Name, p.CategoryID)
		}
		got[p.Name] = p.Price.String()
	}
	want := map[string]string{"Widget": "9.99", "Gadget": "19.99"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("products = %v, want %v", got, want)
	}
}

func TestCollectProductsSkips(t *testing.T) {
	src := tsv(
		row("A", "", "", "Widget;Bad;Ghost", "Tools;Tools;Unknown", "1.00;abc;3", "", ""),
		row("B", "", "", "Widget", "Tools", "1.0", "", ""),
		row("C", "", "", "Widget", "Tools", "2.50", "", ""),
		row("D", "", "", "Gizmo", "", "4", "", ""),
	)

	products, counters, err := CollectProducts(src, map[string]int32{"Tools": 1}, Options{})
	if err != nil {
		t.Fatalf("CollectProducts() error = %v", err)
	}

	// 1.00 and 1.0 are the same price; 2.50 is a second variant of the
	// same name which the store will reject.
	if len(products) != 2 {
		t.Fatalf("products = %+v, want two Widget variants", products)
	}
	if products[0].Price.String() != "1" || products[1].Price.String() != "2.5" {
		t.Errorf("prices = %s, %s; want sorted 1, 2.5", products[0].Price, products[1].Price)
	}
	if counters.SkippedItems != 2 {
		t.Errorf("SkippedItems = %d, want 2", counters.SkippedItems)
	}
	if counters.SkippedRecords != 1 {
		t.Errorf("SkippedRecords = %d, want 1", counters.SkippedRecords)
	}
}

func TestCollectOrders(t *testing.T) {
	customers := map[string]int32{"Ada Lovelace": 1, "Cher": 2}
	products := map[string]int32{"Widget": 10, "Gadget": 11}

	src := tsv(
		row("Ada Lovelace", "", "", "Widget;Gadget;Widget", "", "", "2;x;3", "20230115;20230116;2023-02-01"),
		row("Cher", "", "", "Ghost;Gadget", "", "", "1;4", "20230301;20230302"),
		row("Unknown Person", "", "", "Widget", "", "", "1", "20230101"),
		row("Cher", "", "", "Widget", "", "", "", "20230101"),
	)

	orders, counters, err := CollectOrders(src, customers, products, Options{})
	if err != nil {
		t.Fatalf("CollectOrders() error = %v", err)
	}

	want := []Order{
		{CustomerID: 1, ProductID: 10, OrderDate: "2023-01-15", Quantity: 2},
		{CustomerID: 1, ProductID: 10, OrderDate: "2023-02-01", Quantity: 3},
		{CustomerID: 2, ProductID: 11, OrderDate: "2023-03-02", Quantity: 4},
	}
	if !reflect.DeepEqual(orders, want) {
		t.Errorf("orders = %+v, want %+v", orders, want)
	}
	if counters.SkippedItems != 2 {
		t.Errorf("SkippedItems = %d, want 2", counters.SkippedItems)
	}
	if counters.SkippedRecords != 2 {
		t.Errorf("SkippedRecords = %d, want 2", counters.SkippedRecords)
	}
}

func TestCollectOrdersLengthMismatch(t *testing.T) {
	customers := map[string]int32{"Ada Lovelace": 1}
	products := map[string]int32{"Widget": 10, "Gadget": 11}
	src := func() *source.Reader {
		return tsv(row("Ada Lovelace", "", "", "Widget;Gadget", "", "", "1;2", "20230101"))
	}

	tests := []struct {
		name          string
		strict        bool
		wantOrders    int
		wantTruncated int
		wantSkipped   int
	}{
		{"truncate", false, 1, 1, 0},
		{"strict", true, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, counters, err := CollectOrders(src(), customers, products, Options{StrictLineItems: tt.strict})
			if err != nil {
				t.Fatalf("CollectOrders() error = %v", err)
			}
			if len(orders) != tt.wantOrders {
				t.Errorf("got %d orders, want %d", len(orders), tt.wantOrders)
			}
			if counters.Truncated != tt.wantTruncated {
				t.Errorf("Truncated = %d, want %d", counters.Truncated, tt.wantTruncated)
			}
			if counters.SkippedRecords != tt.wantSkipped {
				t.Errorf("SkippedRecords = %d, want %d", counters.SkippedRecords, tt.wantSkipped)
			}
		})
	}
}
