//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema owns the five-table order history star schema.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

// Table names in dependency order. Every table only references tables
// listed before it.
const (
	TableRegion          = "Region"
	TableCountry         = "Country"
	TableProductCategory = "ProductCategory"
	TableCustomer        = "Customer"
	TableProduct         = "Product"
	TableOrderDetail     = "OrderDetail"
)

// Tables lists the schema tables in creation order.
var Tables = []string{
	TableRegion,
	TableCountry,
	TableProductCategory,
	TableCustomer,
	TableProduct,
	TableOrderDetail,
}

var createStatements = map[string]string{
	TableRegion: `
CREATE TABLE Region (
    RegionID SERIAL PRIMARY KEY,
    Region   TEXT NOT NULL UNIQUE
)`,
	TableCountry: `
CREATE TABLE Country (
    CountryID SERIAL PRIMARY KEY,
    Country   TEXT NOT NULL UNIQUE,
    RegionID  INTEGER NOT NULL,
    FOREIGN KEY (RegionID) REFERENCES Region(RegionID)
)`,
	TableProductCategory: `
CREATE TABLE ProductCategory (
    ProductCategoryID          SERIAL PRIMARY KEY,
    ProductCategory            TEXT NOT NULL UNIQUE,
    ProductCategoryDescription TEXT
)`,
	TableCustomer: `
CREATE TABLE Customer (
    CustomerID SERIAL PRIMARY KEY,
    FirstName  TEXT NOT NULL,
    LastName   TEXT NOT NULL,
    Address    TEXT,
    City       TEXT,
    CountryID  INTEGER,
    FOREIGN KEY (CountryID) REFERENCES Country(CountryID)
)`,
	TableProduct: `
CREATE TABLE Product (
    ProductID         SERIAL PRIMARY KEY,
    ProductName       TEXT NOT NULL UNIQUE,
    ProductUnitPrice  NUMERIC NOT NULL,
    ProductCategoryID INTEGER NOT NULL,
    FOREIGN KEY (ProductCategoryID) REFERENCES ProductCategory(ProductCategoryID)
)`,
	TableOrderDetail: `
CREATE TABLE OrderDetail (
    OrderID         SERIAL PRIMARY KEY,
    CustomerID      INTEGER NOT NULL,
    ProductID       INTEGER NOT NULL,
    OrderDate       DATE NOT NULL,
    QuantityOrdered INTEGER NOT NULL,
    FOREIGN KEY (CustomerID) REFERENCES Customer(CustomerID),
    FOREIGN KEY (ProductID) REFERENCES Product(ProductID)
)`,
}

// CreateSQL returns the DDL creating every table in forward order.
func CreateSQL() string {
	stmts := make([]string, 0, len(Tables))
	for _, t := range Tables {
		stmts = append(stmts, strings.TrimSpace(createStatements[t])+";")
	}
	return strings.Join(stmts, "\n\n")
}

// DropSQL returns the DDL dropping every table in reverse order.
func DropSQL() string {
	var b strings.Builder
	for i := len(Tables) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "DROP TABLE IF EXISTS %s CASCADE;\n", Tables[i])
	}
	return b.String()
}

// Create creates the schema. It fails if any table already exists.
func Create(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, CreateSQL()); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Drop drops the schema and everything in it.
func Drop(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, DropSQL()); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// Reset drops and recreates the schema, destroying any existing data.
// Run it inside a transaction so a DDL failure leaves the old tables alone.
func Reset(ctx context.Context, q db.Querier) error {
	if err := Drop(ctx, q); err != nil {
		return err
	}
	if err := Create(ctx, q); err != nil {
		return err
	}

	logging.Info().
		Strs("tables", Tables).
		Msg("Schema reset")
	return nil
}

// Exists reports whether every schema table is present.
func Exists(ctx context.Context, q db.Querier) (bool, error) {
	lower := make([]string, len(Tables))
	for i, t := range Tables {
		lower[i] = strings.ToLower(t)
	}

	var n int
	err := q.QueryRow(ctx, `
        SELECT count(*) FROM information_schema.tables
        WHERE table_schema = current_schema() AND table_name = ANY($1)
    `, lower).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check schema: %w", err)
	}
	return n == len(Tables), nil
}

// RowCounts returns the number of rows in each schema table.
func RowCounts(ctx context.Context, q db.Querier) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, t := range Tables {
		var n int64
		if err := q.QueryRow(ctx, "SELECT count(*) FROM "+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t, err)
		}
		counts[t] = n
	}
	return counts, nil
}
