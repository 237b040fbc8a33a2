package assistant

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
)

// ErrEmptyQuery is returned for a blank question or SQL text.
var ErrEmptyQuery = errors.New("query is empty")

// DefaultMaxRows bounds the rows returned by Runner.Run.
const DefaultMaxRows = 10000

// Result is a query result rendered as text.
type Result struct {
	Columns []string
	Rows    [][]string

	// Truncated is set when more than the maximum number of rows matched.
	Truncated bool
}

// Runner executes operator reviewed SQL in read-only transactions.
type Runner struct {
	db      db.TxBeginner
	maxRows int
}

// NewRunner creates a Runner. A maxRows below 1 uses DefaultMaxRows.
func NewRunner(conn db.TxBeginner, maxRows int) *Runner {
	if maxRows < 1 {
		maxRows = DefaultMaxRows
	}
	return &Runner{db: conn, maxRows: maxRows}
}

// Run executes sql and returns its result. The transaction is read-only
// and always rolled back, so statements that write fail.
func (r *Runner) Run(ctx context.Context, sql string) (*Result, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, ErrEmptyQuery
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	result := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		if len(result.Rows) == r.maxRows {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("error reading row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return result, nil
}

// FormatValue renders a value decoded by pgx for display.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case pgtype.Numeric:
		switch {
		case !v.Valid:
			return ""
		case v.NaN:
			return "NaN"
		case v.InfinityModifier == pgtype.Infinity:
			return "Infinity"
		case v.InfinityModifier == pgtype.NegativeInfinity:
			return "-Infinity"
		}
		i := v.Int
		if i == nil {
			i = new(big.Int)
		}
		d := decimal.NewFromBigInt(i, v.Exp)
		if v.Exp < 0 {
			return d.StringFixed(-v.Exp)
		}
		return d.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
