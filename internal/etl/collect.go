package etl

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

// Options controls how records are turned into rows.
type Options struct {
	// BatchSize is the number of statements per round trip.
	BatchSize int

	// StrictLineItems skips records whose multi-value cells differ in
	// length. Otherwise the extra values are dropped.
	StrictLineItems bool
}

// Counters tracks what happened to the records of one scan.
type Counters struct {
	Records        int
	Malformed      int
	SkippedRecords int
	SkippedItems   int
	Truncated      int
}

// lineItems applies the length mismatch policy. It returns false when the
// record must be skipped.
func (c *Counters) lineItems(report source.ZipReport, strict bool, rec source.Record) bool {
	if !report.Truncated {
		return true
	}
	if strict {
		c.SkippedRecords++
		logging.Debug().
			Str("name", rec.Name).
			Ints("lengths", report.Lengths).
			Msg("Skipping record with mismatched line items")
		return false
	}
	c.Truncated++
	c.SkippedItems += report.Dropped()
	logging.Debug().
		Str("name", rec.Name).
		Ints("lengths", report.Lengths).
		Msg("Truncating mismatched line items")
	return true
}

// CountryRegion associates a country with the region named next to it.
type CountryRegion struct {
	Country string
	Region  string
}

// Category is a product category and its description.
type Category struct {
	Name        string
	Description string
}

// Dimensions holds the distinct dimension values of a source, sorted.
type Dimensions struct {
	Regions    []string
	Countries  []CountryRegion
	Categories []Category
}

// CollectDimensions scans the source for regions, country/region pairs
// and product categories.
func CollectDimensions(src *source.Reader) (Dimensions, Counters, error) {
	var c Counters
	regions := make(map[string]struct{})
	countries := make(map[CountryRegion]struct{})
	categories := make(map[string]string)

	stats, err := src.Scan(func(rec source.Record) error {
		if rec.Region != "" {
			regions[rec.Region] = struct{}{}
		}
		if rec.Country != "" && rec.Region != "" {
			countries[CountryRegion{Country: rec.Country, Region: rec.Region}] = struct{}{}
		}
		for _, cat := range source.SplitList(rec.ProductCategory) {
			if _, ok := categories[cat]; cat != "" && !ok {
				categories[cat] = cat
			}
		}
		return nil
	})
	c.Records, c.Malformed = stats.Records, stats.Malformed
	if err != nil {
		return Dimensions{}, c, err
	}

	var d Dimensions
	for r := range regions {
		d.Regions = append(d.Regions, r)
	}
	slices.Sort(d.Regions)

	for cr := range countries {
		d.Countries = append(d.Countries, cr)
	}
	slices.SortFunc(d.Countries, func(a, b CountryRegion) int {
		return cmp.Or(cmp.Compare(a.Country, b.Country), cmp.Compare(a.Region, b.Region))
	})

	for name, desc := range categories {
		d.Categories = append(d.Categories, Category{Name: name, Description: desc})
	}
	slices.SortFunc(d.Categories, func(a, b Category) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return d, c, nil
}

// Customer is a distinct customer of the source.
type Customer struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	Country   string
}

// CollectCustomers scans the source for distinct customers keyed by first
// and last name. The first record of a name supplies address, city and
// country. The result is sorted by name.
func CollectCustomers(src *source.Reader) ([]Customer, Counters, error) {
	var c Counters
	type key struct{ first, last string }
	seen := make(map[key]Customer)

	stats, err := src.Scan(func(rec source.Record) error {
		if rec.Name == "" {
			c.SkippedRecords++
			return nil
		}
		first, last := rec.CustomerName()
		k := key{first, last}
		if _, ok := seen[k]; !ok {
			seen[k] = Customer{
				FirstName: first,
				LastName:  last,
				Address:   rec.Address,
				City:      rec.City,
				Country:   rec.Country,
			}
		}
		return nil
	})
	c.Records, c.Malformed = stats.Records, stats.Malformed
	if err != nil {
		return nil, c, err
	}

	customers := make([]Customer, 0, len(seen))
	for _, cust := range seen {
		customers = append(customers, cust)
	}
	slices.SortFunc(customers, func(a, b Customer) int {
		return cmp.Or(cmp.Compare(a.FirstName, b.FirstName), cmp.Compare(a.LastName, b.LastName))
	})
	return customers, c, nil
}

// Product is a distinct product line item with its category resolved.
type Product struct {
	Name       string
	Price      decimal.Decimal
	CategoryID int32
}

// CollectProducts scans the source for distinct (name, price, category)
// product line items. Line items with an unparsable price or unknown
// category are skipped. The result is sorted by name, price and category.
func CollectProducts(src *source.Reader, categoryIDs map[string]int32, opts Options) ([]Product, Counters, error) {
	var c Counters
	type key struct {
		name  string
		price string
		catID int32
	}
	seen := make(map[key]Product)

	stats, err := src.Scan(func(rec source.Record) error {
		lines, report := rec.ProductLines()
		if lines == nil && report.Lengths == nil {
			c.SkippedRecords++
			return nil
		}
		if !c.lineItems(report, opts.StrictLineItems, rec) {
			return nil
		}

		for _, line := range lines {
			if !line.Complete() {
				c.SkippedItems++
				continue
			}
			price, err := line.ParsePrice()
			if err != nil {
				c.SkippedItems++
				logging.Debug().Err(err).Str("product", line.Name).Msg("Skipping product line item")
				continue
			}
			catID, ok := categoryIDs[line.Category]
			if !ok {
				c.SkippedItems++
				logging.Debug().
					Str("product", line.Name).
					Str("category", line.Category).
					Msg("Skipping product with unknown category")
				continue
			}

			k := key{name: line.Name, price: price.String(), catID: catID}
			if _, ok := seen[k]; !ok {
				seen[k] = Product{Name: line.Name, Price: price, CategoryID: catID}
			}
		}
		return nil
	})
	c.Records, c.Malformed = stats.Records, stats.Malformed
	if err != nil {
		return nil, c, err
	}

	products := make([]Product, 0, len(seen))
	for _, p := range seen {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b Product) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			a.Price.Cmp(b.Price),
			cmp.Compare(a.CategoryID, b.CategoryID),
		)
	})
	return products, c, nil
}

// Order is one fact row.
type Order struct {
	CustomerID int32
	ProductID  int32
	OrderDate  string
	Quantity   int32
}

// CollectOrders scans the source for order line items in file order.
// Records of unknown customers are skipped, as are line items with an
// unknown product or an unparsable quantity; the rest of such a record is
// still used.
func CollectOrders(src *source.Reader, customerIDs, productIDs map[string]int32, opts Options) ([]Order, Counters, error) {
	var c Counters
	var orders []Order

	stats, err := src.Scan(func(rec source.Record) error {
		customerID, ok := customerIDs[rec.Name]
		if !ok {
			c.SkippedRecords++
			return nil
		}

		lines, report := rec.OrderLines()
		if lines == nil && report.Lengths == nil {
			c.SkippedRecords++
			return nil
		}
		if !c.lineItems(report, opts.StrictLineItems, rec) {
			return nil
		}

		for _, line := range lines {
			if !line.Complete() {
				c.SkippedItems++
				continue
			}
			productID, ok := productIDs[line.ProductName]
			if !ok {
				c.SkippedItems++
				continue
			}
			qty, err := line.ParseQuantity()
			if err != nil {
				c.SkippedItems++
				logging.Debug().Err(err).Str("name", rec.Name).Msg("Skipping order line item")
				continue
			}

			orders = append(orders, Order{
				CustomerID: customerID,
				ProductID:  productID,
				OrderDate:  line.OrderDate(),
				Quantity:   qty,
			})
		}
		return nil
	})
	c.Records, c.Malformed = stats.Records, stats.Malformed
	if err != nil {
		return nil, c, err
	}
	return orders, c, nil
}
