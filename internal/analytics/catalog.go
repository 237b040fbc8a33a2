package analytics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
)

const dateLayout = "2006-01-02"

// Table is a query result rendered as text.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Query describes one catalog query.
type Query struct {
	// Name is the short name used on the command line.
	Name string

	// Description says what the query reports.
	Description string

	// NeedsCustomer is set when the query takes a customer name.
	NeedsCustomer bool

	run func(ctx context.Context, q db.Querier, customer string) (*Table, error)
}

// Run executes the query and renders the result.
func (qd Query) Run(ctx context.Context, q db.Querier, customer string) (*Table, error) {
	if qd.NeedsCustomer && customer == "" {
		return nil, fmt.Errorf("query %s needs a customer name", qd.Name)
	}
	return qd.run(ctx, q, customer)
}

// Catalog returns the reporting queries in presentation order.
func Catalog() []Query {
	return []Query{
		{
			Name:          "customer-orders",
			Description:   "Order lines of one customer",
			NeedsCustomer: true,
			run: func(ctx context.Context, q db.Querier, customer string) (*Table, error) {
				rows, err := CustomerOrderDetails(ctx, q, customer)
				return render(rows, err, []string{"Name", "ProductName", "OrderDate", "ProductUnitPrice", "QuantityOrdered", "Total"},
					func(r OrderLine) []string {
						return []string{r.Name, r.ProductName, r.OrderDate.Format(dateLayout),
							r.UnitPrice.String(), itoa(r.Quantity), r.Total.StringFixed(2)}
					})
			},
		},
		{
			Name:          "customer-total",
			Description:   "Order total of one customer",
			NeedsCustomer: true,
			run: func(ctx context.Context, q db.Querier, customer string) (*Table, error) {
				total, ok, err := CustomerTotal(ctx, q, customer)
				var rows []NameTotal
				if ok {
					rows = append(rows, total)
				}
				return render(rows, err, []string{"Name", "Total"}, nameTotalRow)
			},
		},
		{
			Name:        "customer-totals",
			Description: "Order total of every customer, largest first",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := CustomerTotals(ctx, q)
				return render(rows, err, []string{"Name", "Total"}, nameTotalRow)
			},
		},
		{
			Name:        "region-totals",
			Description: "Order total of every region, largest first",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := RegionTotals(ctx, q)
				return render(rows, err, []string{"Region", "Total"},
					func(r RegionTotal) []string { return []string{r.Region, r.Total.StringFixed(2)} })
			},
		},
		{
			Name:        "country-totals",
			Description: "Order total of every country, largest first",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := CountryTotals(ctx, q)
				return render(rows, err, []string{"Country", "Total"},
					func(r CountryTotal) []string { return []string{r.Country, r.Total.StringFixed(0)} })
			},
		},
		{
			Name:        "country-rank",
			Description: "Countries ranked by total within each region",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := CountryRankWithinRegion(ctx, q)
				return render(rows, err, []string{"Region", "Country", "CountryTotal", "TotalRank"}, countryRankRow)
			},
		},
		{
			Name:        "top-country",
			Description: "Top country of each region",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := TopCountryPerRegion(ctx, q)
				return render(rows, err, []string{"Region", "Country", "CountryTotal", "CountryRegionalRank"}, countryRankRow)
			},
		},
		{
			Name:        "quarterly-totals",
			Description: "Customer totals per quarter",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := QuarterlyCustomerTotals(ctx, q)
				return render(rows, err, []string{"Quarter", "Year", "CustomerID", "Total"},
					func(r QuarterTotal) []string {
						return []string{r.Quarter, itoa(r.Year), itoa(r.CustomerID), r.Total.StringFixed(0)}
					})
			},
		},
		{
			Name:        "top-customers",
			Description: fmt.Sprintf("Top %d customers of each quarter", TopCustomersLimit),
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := TopCustomersPerQuarter(ctx, q)
				return render(rows, err, []string{"Quarter", "Year", "CustomerID", "Total", "CustomerRank"},
					func(r QuarterRank) []string {
						return []string{r.Quarter, itoa(r.Year), itoa(r.CustomerID), r.Total.StringFixed(0),
							strconv.FormatInt(r.Rank, 10)}
					})
			},
		},
		{
			Name:        "monthly-totals",
			Description: "Calendar months ranked by total",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := MonthlyTotals(ctx, q)
				return render(rows, err, []string{"Month", "Total", "TotalRank"},
					func(r MonthTotal) []string {
						return []string{r.Month, strconv.FormatFloat(r.Total, 'f', -1, 64), strconv.FormatInt(r.Rank, 10)}
					})
			},
		},
		{
			Name:        "order-gaps",
			Description: "Longest gap between consecutive orders of each customer",
			run: func(ctx context.Context, q db.Querier, _ string) (*Table, error) {
				rows, err := MaxOrderGaps(ctx, q)
				return render(rows, err,
					[]string{"CustomerID", "FirstName", "LastName", "Country", "OrderDate", "PreviousOrderDate", "MaxDaysWithoutOrder"},
					func(r OrderGap) []string {
						return []string{itoa(r.CustomerID), r.FirstName, r.LastName, r.Country,
							r.OrderDate.Format(dateLayout), r.PreviousOrderDate.Format(dateLayout), itoa(r.Days)}
					})
			},
		},
	}
}

// Lookup finds a catalog query by name.
func Lookup(name string) (Query, bool) {
	for _, q := range Catalog() {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}

func render[T any](rows []T, err error, columns []string, format func(T) []string) (*Table, error) {
	if err != nil {
		return nil, err
	}
	t := &Table{Columns: columns, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		t.Rows[i] = format(r)
	}
	return t, nil
}

func nameTotalRow(r NameTotal) []string {
	return []string{r.Name, r.Total.StringFixed(2)}
}

func countryRankRow(r CountryRank) []string {
	return []string{r.Region, r.Country, r.Total.StringFixed(0), strconv.FormatInt(r.Rank, 10)}
}

func itoa(n int32) string {
	return strconv.FormatInt(int64(n), 10)
}
