package etl

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/schema"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
	"github.com/pgEdge/pgedge-orderbi/internal/store"
)

// Stage names, in run order.
const (
	StageDimensions = "dimensions"
	StageCustomers  = "customers"
	StageProducts   = "products"
	StageOrders     = "orders"
)

// Stages lists the load stages in run order.
var Stages = []string{StageDimensions, StageCustomers, StageProducts, StageOrders}

var (
	regionInsert = store.Insert{
		Table:     schema.TableRegion,
		Columns:   []string{"Region"},
		UniqueKey: "Region",
	}
	countryInsert = store.Insert{
		Table:     schema.TableCountry,
		Columns:   []string{"Country", "RegionID"},
		UniqueKey: "Country",
	}
	categoryInsert = store.Insert{
		Table:     schema.TableProductCategory,
		Columns:   []string{"ProductCategory", "ProductCategoryDescription"},
		UniqueKey: "ProductCategory",
	}
	customerInsert = store.Insert{
		Table:   schema.TableCustomer,
		Columns: []string{"FirstName", "LastName", "Address", "City", "CountryID"},
	}
	productInsert = store.Insert{
		Table:     schema.TableProduct,
		Columns:   []string{"ProductName", "ProductUnitPrice", "ProductCategoryID"},
		UniqueKey: "ProductName",
	}
	orderInsert = store.Insert{
		Table:   schema.TableOrderDetail,
		Columns: []string{"CustomerID", "ProductID", "OrderDate", "QuantityOrdered"},
	}
)

// TableResult counts the rows written to one table.
type TableResult struct {
	Table          string
	Inserted       int
	AlreadyPresent int
}

// StageResult describes one stage run.
type StageResult struct {
	Stage string

	// SourceMissing is set when the source file did not exist and the
	// stage wrote nothing.
	SourceMissing bool

	Counters
	Tables []TableResult
}

func (r *StageResult) addTable(table string, res store.Result) {
	r.Tables = append(r.Tables, TableResult{
		Table:          table,
		Inserted:       res.Inserted,
		AlreadyPresent: res.AlreadyPresent,
	})
}

// Inserted returns the rows written by the stage across its tables.
func (r StageResult) Inserted() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Inserted
	}
	return n
}

// AlreadyPresent returns the rows the stage found already stored.
func (r StageResult) AlreadyPresent() int {
	n := 0
	for _, t := range r.Tables {
		n += t.AlreadyPresent
	}
	return n
}

type stageFunc func(ctx context.Context, q db.Querier, src *source.Reader, opts Options) (StageResult, error)

var stageFuncs = map[string]stageFunc{
	StageDimensions: buildDimensions,
	StageCustomers:  loadCustomers,
	StageProducts:   loadProducts,
	StageOrders:     loadOrders,
}

// buildDimensions writes regions, then countries whose region resolved,
// then product categories.
func buildDimensions(ctx context.Context, q db.Querier, src *source.Reader, opts Options) (StageResult, error) {
	result := StageResult{Stage: StageDimensions}

	dims, counters, err := CollectDimensions(src)
	result.Counters = counters
	if err != nil {
		return result, err
	}

	w := store.NewWriter(q, opts.BatchSize)

	rows := make([][]any, len(dims.Regions))
	for i, r := range dims.Regions {
		rows[i] = []any{r}
	}
	res, err := w.InsertIfAbsent(ctx, regionInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableRegion, res)

	regionIDs, err := store.RegionIDs(ctx, q)
	if err != nil {
		return result, err
	}

	rows = make([][]any, 0, len(dims.Countries))
	for _, cr := range dims.Countries {
		id, ok := regionIDs[cr.Region]
		if !ok {
			result.SkippedItems++
			continue
		}
		rows = append(rows, []any{cr.Country, id})
	}
	res, err = w.InsertIfAbsent(ctx, countryInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableCountry, res)

	rows = make([][]any, len(dims.Categories))
	for i, c := range dims.Categories {
		rows[i] = []any{c.Name, c.Description}
	}
	res, err = w.InsertIfAbsent(ctx, categoryInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableProductCategory, res)

	return result, nil
}

// loadCustomers inserts one row per distinct customer. Customers whose
// country is unknown are stored without one.
func loadCustomers(ctx context.Context, q db.Querier, src *source.Reader, opts Options) (StageResult, error) {
	result := StageResult{Stage: StageCustomers}

	countryIDs, err := store.CountryIDs(ctx, q)
	if err != nil {
		return result, err
	}

	customers, counters, err := CollectCustomers(src)
	result.Counters = counters
	if err != nil {
		return result, err
	}

	rows := make([][]any, len(customers))
	for i, c := range customers {
		var countryID *int32
		if id, ok := countryIDs[c.Country]; ok {
			countryID = &id
		}
		rows[i] = []any{c.FirstName, c.LastName, c.Address, c.City, countryID}
	}

	res, err := store.NewWriter(q, opts.BatchSize).InsertAll(ctx, customerInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableCustomer, res)
	return result, nil
}

// loadProducts inserts distinct products. A name already stored, with any
// price or category, is left alone.
func loadProducts(ctx context.Context, q db.Querier, src *source.Reader, opts Options) (StageResult, error) {
	result := StageResult{Stage: StageProducts}

	categoryIDs, err := store.CategoryIDs(ctx, q)
	if err != nil {
		return result, err
	}

	products, counters, err := CollectProducts(src, categoryIDs, opts)
	result.Counters = counters
	if err != nil {
		return result, err
	}

	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{p.Name, p.Price.String(), p.CategoryID}
	}

	res, err := store.NewWriter(q, opts.BatchSize).InsertIfAbsent(ctx, productInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableProduct, res)
	return result, nil
}

// loadOrders inserts every resolvable order line item.
func loadOrders(ctx context.Context, q db.Querier, src *source.Reader, opts Options) (StageResult, error) {
	result := StageResult{Stage: StageOrders}

	customerIDs, err := store.CustomerIDs(ctx, q)
	if err != nil {
		return result, err
	}
	productIDs, err := store.ProductIDs(ctx, q)
	if err != nil {
		return result, err
	}

	orders, counters, err := CollectOrders(src, customerIDs, productIDs, opts)
	result.Counters = counters
	if err != nil {
		return result, err
	}

	rows := make([][]any, len(orders))
	for i, o := range orders {
		rows[i] = []any{o.CustomerID, o.ProductID, o.OrderDate, o.Quantity}
	}

	res, err := store.NewWriter(q, opts.BatchSize).InsertAll(ctx, orderInsert, rows)
	if err != nil {
		return result, err
	}
	result.addTable(schema.TableOrderDetail, res)
	return result, nil
}

func stageFor(name string) (stageFunc, error) {
	fn, ok := stageFuncs[name]
	if !ok {
		return nil, fmt.Errorf("unknown stage: %s", name)
	}
	return fn, nil
}
