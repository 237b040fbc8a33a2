//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store writes loader output to PostgreSQL in batches and reads
// back the name to ID mappings later stages resolve against.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
)

// DefaultBatchSize is the number of statements sent per round trip.
const DefaultBatchSize = 5000

// Outcome is the result of inserting one row.
type Outcome int

const (
	// Inserted means the row was written.
	Inserted Outcome = iota

	// AlreadyPresent means a row with the same unique key already existed
	// and nothing was written.
	AlreadyPresent
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already-present"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Insert describes an insert into one table.
type Insert struct {
	// Table is the target table.
	Table string

	// Columns are the columns set by each row, in argument order.
	Columns []string

	// UniqueKey is the unique column used by InsertIfAbsent.
	UniqueKey string
}

// SQL returns the plain INSERT statement.
func (i Insert) SQL() string {
	params := make([]string, len(i.Columns))
	for n := range i.Columns {
		params[n] = fmt.Sprintf("$%d", n+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		i.Table, strings.Join(i.Columns, ", "), strings.Join(params, ", "))
}

// IfAbsentSQL returns the INSERT statement that leaves existing rows alone.
func (i Insert) IfAbsentSQL() string {
	return fmt.Sprintf("%s ON CONFLICT (%s) DO NOTHING", i.SQL(), i.UniqueKey)
}

// Result summarizes a batched insert.
type Result struct {
	// Outcomes holds one entry per row, in input order.
	Outcomes []Outcome

	// Inserted is the number of rows written.
	Inserted int

	// AlreadyPresent is the number of rows skipped because they existed.
	AlreadyPresent int
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o {
	case Inserted:
		r.Inserted++
	case AlreadyPresent:
		r.AlreadyPresent++
	}
}

// Writer sends inserts in batches over one connection or transaction.
type Writer struct {
	q         db.Querier
	batchSize int
}

// NewWriter creates a Writer. A batchSize below 1 uses DefaultBatchSize.
func NewWriter(q db.Querier, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Writer{q: q, batchSize: batchSize}
}

// InsertIfAbsent inserts each row unless a row with the same unique key
// exists, and reports per row which of the two happened.
func (w *Writer) InsertIfAbsent(ctx context.Context, ins Insert, rows [][]any) (Result, error) {
	if ins.UniqueKey == "" {
		return Result{}, fmt.Errorf("insert into %s: no unique key", ins.Table)
	}
	return w.send(ctx, ins.Table, ins.IfAbsentSQL(), rows)
}

// InsertAll inserts every row. A unique violation fails the batch.
func (w *Writer) InsertAll(ctx context.Context, ins Insert, rows [][]any) (Result, error) {
	return w.send(ctx, ins.Table, ins.SQL(), rows)
}

func (w *Writer) send(ctx context.Context, table, sql string, rows [][]any) (Result, error) {
	result := Result{Outcomes: make([]Outcome, 0, len(rows))}
	progress := NewProgressReporter(table, int64(len(rows)), int64(w.batchSize)*10)

	for start := 0; start < len(rows); start += w.batchSize {
		end := min(start+w.batchSize, len(rows))

		batch := &pgx.Batch{}
		for _, args := range rows[start:end] {
			batch.Queue(sql, args...)
		}

		if err := w.sendBatch(ctx, batch, &result); err != nil {
			return result, fmt.Errorf("failed to insert into %s (rows %d-%d): %w", table, start+1, end, err)
		}
		progress.Update(int64(end - start))
	}

	if len(rows) > 0 {
		progress.Done()
	}
	return result, nil
}

func (w *Writer) sendBatch(ctx context.Context, batch *pgx.Batch, result *Result) error {
	br := w.q.SendBatch(ctx, batch)

	for range batch.Len() {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return err
		}
		if tag.RowsAffected() > 0 {
			result.add(Inserted)
		} else {
			result.add(AlreadyPresent)
		}
	}

	return br.Close()
}
