package store

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

// RegionIDs maps region name to RegionID.
func RegionIDs(ctx context.Context, q db.Querier) (map[string]int32, error) {
	return lookup(ctx, q, "Region", `SELECT Region, RegionID FROM Region`)
}

// CountryIDs maps country name to CountryID.
func CountryIDs(ctx context.Context, q db.Querier) (map[string]int32, error) {
	return lookup(ctx, q, "Country", `SELECT Country, CountryID FROM Country`)
}

// CategoryIDs maps product category name to ProductCategoryID.
func CategoryIDs(ctx context.Context, q db.Querier) (map[string]int32, error) {
	return lookup(ctx, q, "ProductCategory",
		`SELECT ProductCategory, ProductCategoryID FROM ProductCategory`)
}

// ProductIDs maps product name to ProductID.
func ProductIDs(ctx context.Context, q db.Querier) (map[string]int32, error) {
	return lookup(ctx, q, "Product", `SELECT ProductName, ProductID FROM Product`)
}

// CustomerIDs maps the full customer name, as built by source.JoinName, to
// CustomerID. When names repeat the highest ID wins.
func CustomerIDs(ctx context.Context, q db.Querier) (map[string]int32, error) {
	rows, err := q.Query(ctx, `
        SELECT FirstName, LastName, CustomerID FROM Customer ORDER BY CustomerID
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to read Customer ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int32)
	for rows.Next() {
		var first, last string
		var id int32
		if err := rows.Scan(&first, &last, &id); err != nil {
			return nil, fmt.Errorf("failed to scan Customer id: %w", err)
		}
		ids[source.JoinName(first, last)] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read Customer ids: %w", err)
	}
	return ids, nil
}

func lookup(ctx context.Context, q db.Querier, table, sql string) (map[string]int32, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s ids: %w", table, err)
	}
	defer rows.Close()

	ids := make(map[string]int32)
	for rows.Next() {
		var name string
		var id int32
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s ids: %w", table, err)
	}
	return ids, nil
}
