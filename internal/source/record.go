// Package source reads the tab-separated order history file.
//
// Each line of the file is one customer record. The product, category,
// price, quantity and date columns may hold several values separated by
// semicolons, one per line item; see ZipLists.
package source

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column names required in the header row.
const (
	ColName             = "Name"
	ColAddress          = "Address"
	ColCity             = "City"
	ColCountry          = "Country"
	ColRegion           = "Region"
	ColProductName      = "ProductName"
	ColProductCategory  = "ProductCategory"
	ColProductUnitPrice = "ProductUnitPrice"
	ColQuantityOrdered  = "QuantityOrdered"
	ColOrderDate        = "OrderDate"
)

// Columns lists the required columns in file order.
var Columns = []string{
	ColName,
	ColAddress,
	ColCity,
	ColCountry,
	ColRegion,
	ColProductName,
	ColProductCategory,
	ColProductUnitPrice,
	ColQuantityOrdered,
	ColOrderDate,
}

// headerAliases maps header spellings found in existing exports to the
// canonical column name.
var headerAliases = map[string]string{
	"QuantityOrderded": ColQuantityOrdered,
}

// Record is one row of the source file. All values are cleaned with Clean.
type Record struct {
	Name             string `csv:"Name"`
	Address          string `csv:"Address"`
	City             string `csv:"City"`
	Country          string `csv:"Country"`
	Region           string `csv:"Region"`
	ProductName      string `csv:"ProductName"`
	ProductCategory  string `csv:"ProductCategory"`
	ProductUnitPrice string `csv:"ProductUnitPrice"`
	QuantityOrdered  string `csv:"QuantityOrdered"`
	OrderDate        string `csv:"OrderDate"`
}

func (r *Record) clean() {
	for _, f := range []*string{
		&r.Name, &r.Address, &r.City, &r.Country, &r.Region,
		&r.ProductName, &r.ProductCategory, &r.ProductUnitPrice,
		&r.QuantityOrdered, &r.OrderDate,
	} {
		*f = Clean(*f)
	}
}

// CustomerName splits the full name on its first space.
func (r Record) CustomerName() (first, last string) {
	return SplitName(r.Name)
}

// Clean trims surrounding whitespace and normalizes the text to NFC so
// that equal names compare equal regardless of how they were composed.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SplitName splits a full name on the first space. A name without a space
// is all first name.
func SplitName(name string) (first, last string) {
	first, last, _ = strings.Cut(name, " ")
	return first, last
}

// JoinName is the inverse of SplitName and is the key used to match source
// names against stored customers.
func JoinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
