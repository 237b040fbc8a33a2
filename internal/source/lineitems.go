package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ListSeparator separates the values of a multi-value cell.
const ListSeparator = ";"

// SplitList splits a multi-value cell and cleans each element. An empty
// cell yields no elements; empty elements between separators are kept so
// that positions line up across columns.
func SplitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ListSeparator)
	for i, p := range parts {
		parts[i] = Clean(p)
	}
	return parts
}

// ZipReport describes how multi-value cells were combined.
type ZipReport struct {
	// Lengths holds the element count of each input cell.
	Lengths []int

	// Truncated is set when the lengths differ and trailing elements of
	// the longer lists were dropped.
	Truncated bool
}

// Dropped returns the number of elements discarded across all lists.
func (z ZipReport) Dropped() int {
	n := z.pairs()
	dropped := 0
	for _, l := range z.Lengths {
		dropped += l - n
	}
	return dropped
}

func (z ZipReport) pairs() int {
	if len(z.Lengths) == 0 {
		return 0
	}
	n := z.Lengths[0]
	for _, l := range z.Lengths[1:] {
		n = min(n, l)
	}
	return n
}

// ZipLists splits each cell with SplitList and combines the elements
// positionally: tuple i holds element i of every cell. Only as many tuples
// as the shortest list are produced; the report says whether anything was
// cut off.
func ZipLists(cells ...string) ([][]string, ZipReport) {
	lists := make([][]string, len(cells))
	report := ZipReport{Lengths: make([]int, len(cells))}
	for i, c := range cells {
		lists[i] = SplitList(c)
		report.Lengths[i] = len(lists[i])
	}

	n := report.pairs()
	for _, l := range report.Lengths {
		if l != n {
			report.Truncated = true
			break
		}
	}

	tuples := make([][]string, n)
	for i := range n {
		tuple := make([]string, len(lists))
		for j, list := range lists {
			tuple[j] = list[i]
		}
		tuples[i] = tuple
	}
	return tuples, report
}

// ProductLine is one product line item of a record.
type ProductLine struct {
	Name     string
	Category string
	Price    string
}

// Complete reports whether every field of the line item is set.
func (l ProductLine) Complete() bool {
	return l.Name != "" && l.Category != "" && l.Price != ""
}

// ParsePrice parses the unit price as an exact decimal.
func (l ProductLine) ParsePrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(l.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid unit price %q: %w", l.Price, err)
	}
	return price, nil
}

// ProductLines returns the product line items of the record. Records
// missing any of the product columns have none.
func (r Record) ProductLines() ([]ProductLine, ZipReport) {
	if r.ProductName == "" || r.ProductCategory == "" || r.ProductUnitPrice == "" {
		return nil, ZipReport{}
	}

	tuples, report := ZipLists(r.ProductName, r.ProductCategory, r.ProductUnitPrice)
	lines := make([]ProductLine, len(tuples))
	for i, t := range tuples {
		lines[i] = ProductLine{Name: t[0], Category: t[1], Price: t[2]}
	}
	return lines, report
}

// OrderLine is one order line item of a record.
type OrderLine struct {
	ProductName string
	Quantity    string
	Date        string
}

// Complete reports whether every field of the line item is set.
func (l OrderLine) Complete() bool {
	return l.ProductName != "" && l.Quantity != "" && l.Date != ""
}

// ParseQuantity parses the quantity as a whole number.
func (l OrderLine) ParseQuantity() (int32, error) {
	n, err := strconv.ParseInt(l.Quantity, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", l.Quantity, err)
	}
	return int32(n), nil
}

// OrderDate returns the date in a form the store accepts. See FormatDate.
func (l OrderLine) OrderDate() string {
	return FormatDate(l.Date)
}

// OrderLines returns the order line items of the record. Records missing
// any of the order columns have none.
func (r Record) OrderLines() ([]OrderLine, ZipReport) {
	if r.ProductName == "" || r.QuantityOrdered == "" || r.OrderDate == "" {
		return nil, ZipReport{}
	}

	tuples, report := ZipLists(r.ProductName, r.QuantityOrdered, r.OrderDate)
	lines := make([]OrderLine, len(tuples))
	for i, t := range tuples {
		lines[i] = OrderLine{ProductName: t[0], Quantity: t[1], Date: t[2]}
	}
	return lines, report
}

// FormatDate rewrites a compact YYYYMMDD date as YYYY-MM-DD. Anything else
// is returned unchanged.
func FormatDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for i := 0; i < len(date); i++ {
		if date[i] < '0' || date[i] > '9' {
			return date
		}
	}
	return date[0:4] + "-" + date[4:6] + "-" + date[6:8]
}
