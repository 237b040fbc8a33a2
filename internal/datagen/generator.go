package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

// Options configures sample file generation.
type Options struct {
	// Rows is the number of records to write.
	Rows int

	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64

	// Customers is the number of distinct customers. Zero derives it from
	// Rows so that most customers appear on several records.
	Customers int

	// MaxLineItems bounds the number of line items per record.
	MaxLineItems int

	// Start and End bound the order dates.
	Start time.Time
	End   time.Time
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Rows:         1000,
		MaxLineItems: 4,
		Start:        time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

const (
	maxQuantity = 10

	// maxNameDraws bounds the attempts at a fresh customer name.
	maxNameDraws = 20
)

type customer struct {
	name    string
	address string
	city    string
	country Country
}

// Generator produces order history records.
type Generator struct {
	opts      Options
	faker     *Faker
	customers []customer
}

// NewGenerator creates a generator and its customer pool.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if opts.MaxLineItems < 1 {
		opts.MaxLineItems = def.MaxLineItems
	}
	if opts.Start.IsZero() {
		opts.Start = def.Start
	}
	if opts.End.IsZero() || opts.End.Before(opts.Start) {
		opts.End = def.End
	}
	if opts.Customers < 1 {
		opts.Customers = opts.Rows/3 + 1
	}

	f := NewFaker(opts.Seed)
	g := &Generator{opts: opts, faker: f}
	seen := make(map[string]bool)
	for len(g.customers) < opts.Customers {
		name := uniqueName(seen, f.CustomerName)
		street, city := f.Address()
		g.customers = append(g.customers, customer{
			name:    name,
			address: street,
			city:    city,
			country: PickWeighted(f, Countries, countryWeights),
		})
	}
	return g
}

// uniqueName draws a name not in seen and adds it. When fresh draws keep
// colliding, a number is appended to the last draw.
func uniqueName(seen map[string]bool, draw func() string) string {
	name := draw()
	for i := 1; seen[name] && i < maxNameDraws; i++ {
		name = draw()
	}
	for n := 2; seen[name]; n++ {
		if candidate := fmt.Sprintf("%s %d", name, n); !seen[candidate] {
			name = candidate
		}
	}
	seen[name] = true
	return name
}

// Record returns the next random record.
func (g *Generator) Record() source.Record {
	c := Pick(g.faker, g.customers)
	n := g.faker.Between(1, g.opts.MaxLineItems)

	names := make([]string, n)
	categories := make([]string, n)
	prices := make([]string, n)
	quantities := make([]string, n)
	dates := make([]string, n)
	for i := 0; i < n; i++ {
		p := Pick(g.faker, Products)
		names[i] = p.Name
		categories[i] = p.Category
		prices[i] = p.Price
		quantities[i] = strconv.Itoa(g.faker.Between(1, maxQuantity))
		dates[i] = g.faker.OrderDate(g.opts.Start, g.opts.End)
	}

	join := func(s []string) string { return strings.Join(s, source.ListSeparator) }
	return source.Record{
		Name:             c.name,
		Address:          c.address,
		City:             c.city,
		Country:          c.country.Name,
		Region:           c.country.Region,
		ProductName:      join(names),
		ProductCategory:  join(categories),
		ProductUnitPrice: join(prices),
		QuantityOrdered:  join(quantities),
		OrderDate:        join(dates),
	}
}

// Write writes the header and opts.Rows records to w as tab-separated
// values.
func (g *Generator) Write(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(source.Record{}); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	written := 0
	for written < g.opts.Rows {
		if written%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		if err := enc.Encode(g.Record()); err != nil {
			return written, fmt.Errorf("failed to write record %d: %w", written+1, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("failed to flush output: %w", err)
	}
	return written, nil
}

// WriteFile writes a sample file to path.
func WriteFile(ctx context.Context, path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	start := time.Now()
	n, err := NewGenerator(opts).Write(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	if err != nil {
		return err
	}

	logging.Info().
		Str("file", path).
		Int("records", n).
		Dur("elapsed", time.Since(start)).
		Msg("Sample data written")
	return nil
}
