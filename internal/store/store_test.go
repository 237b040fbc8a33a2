package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier records batches and treats the first argument of every
// queued statement as the unique key.
type fakeQuerier struct {
	seen    map[any]bool
	batches []int
	failOn  any
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{seen: make(map[any]bool)}
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b.Len())
	return &fakeResults{f: f, queries: b.QueuedQueries}
}

type fakeResults struct {
	f       *fakeQuerier
	queries []*pgx.QueuedQuery
	pos     int
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	q := r.queries[r.pos]
	r.pos++

	key := q.Arguments[0]
	if r.f.failOn != nil && key == r.f.failOn {
		return pgconn.CommandTag{}, errors.New("connection lost")
	}
	if r.f.seen[key] && strings.Contains(q.SQL, "ON CONFLICT") {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	r.f.seen[key] = true
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error             { return nil }

var regionInsert = Insert{Table: "Region", Columns: []string{"Region"}, UniqueKey: "Region"}

func TestInsertSQL(t *testing.T) {
	ins := Insert{
		Table:     "Country",
		Columns:   []string{"Country", "RegionID"},
		UniqueKey: "Country",
	}

	if got, want := ins.SQL(), "INSERT INTO Country (Country, RegionID) VALUES ($1, $2)"; got != want {
		t.Errorf("SQL() = %q, want %q", got, want)
	}
	want := "INSERT INTO Country (Country, RegionID) VALUES ($1, $2) ON CONFLICT (Country) DO NOTHING"
	if got := ins.IfAbsentSQL(); got != want {
		t.Errorf("IfAbsentSQL() = %q, want %q", got, want)
	}
}

func TestInsertIfAbsentOutcomes(t *testing.T) {
	q := newFakeQuerier()
	q.seen["Asia"] = true
	w := NewWriter(q, 10)

	rows := [][]any{{"Asia"}, {"Europe"}, {"Europe"}}
	result, err := w.InsertIfAbsent(context.Background(), regionInsert, rows)
	if err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}

	want := []Outcome{AlreadyPresent, Inserted, AlreadyPresent}
	if len(result.Outcomes) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(result.Outcomes), len(want))
	}
	for i := range want {
		if result.Outcomes[i] != want[i] {
			t.Errorf("outcome %d = %s, want %s", i, result.Outcomes[i], want[i])
		}
	}
	if result.Inserted != 1 || result.AlreadyPresent != 2 {
		t.Errorf("Inserted = %d, AlreadyPresent = %d, want 1 and 2", result.Inserted, result.AlreadyPresent)
	}
}

func TestInsertIfAbsentRequiresKey(t *testing.T) {
	w := NewWriter(newFakeQuerier(), 10)
	ins := Insert{Table: "OrderDetail", Columns: []string{"CustomerID"}}

	if _, err := w.InsertIfAbsent(context.Background(), ins, [][]any{{1}}); err == nil {
		t.Error("InsertIfAbsent() without a unique key should fail")
	}
}

func TestInsertAllKeepsDuplicates(t *testing.T) {
	q := newFakeQuerier()
	w := NewWriter(q, 10)

	result, err := w.InsertAll(context.Background(), regionInsert, [][]any{{"a"}, {"a"}})
	if err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}
	if result.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", result.Inserted)
	}
}

func TestBatchChunking(t *testing.T) {
	tests := []struct {
		rows, batchSize int
		want            []int
	}{
		{0, 3, nil},
		{3, 3, []int{3}},
		{7, 3, []int{3, 3, 1}},
		{2, 0, []int{2}},
	}

	for _, tt := range tests {
		q := newFakeQuerier()
		rows := make([][]any, tt.rows)
		for i := range rows {
			rows[i] = []any{i}
		}

		if _, err := NewWriter(q, tt.batchSize).InsertAll(context.Background(), regionInsert, rows); err != nil {
			t.Fatalf("InsertAll() error = %v", err)
		}
		if len(q.batches) != len(tt.want) {
			t.Errorf("rows=%d size=%d: batches = %v, want %v", tt.rows, tt.batchSize, q.batches, tt.want)
			continue
		}
		for i := range tt.want {
			if q.batches[i] != tt.want[i] {
				t.Errorf("rows=%d size=%d: batches = %v, want %v", tt.rows, tt.batchSize, q.batches, tt.want)
				break
			}
		}
	}
}

func TestBatchFailureIsReported(t *testing.T) {
	q := newFakeQuerier()
	q.failOn = 4
	rows := make([][]any, 6)
	for i := range rows {
		rows[i] = []any{i}
	}

	result, err := NewWriter(q, 3).InsertAll(context.Background(), regionInsert, rows)
	if err == nil {
		t.Fatal("InsertAll() error = nil, want batch failure")
	}
	if !strings.Contains(err.Error(), "rows 4-6") {
		t.Errorf("error %q does not name the failing batch", err)
	}
	if result.Inserted != 4 {
		t.Errorf("Inserted = %d, want 4 before the failure", result.Inserted)
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("Region", 10, 0)
	p.Update(4)
	p.Update(6)
	p.Done()
	if p.Rows() != 10 {
		t.Errorf("Rows() = %d, want 10", p.Rows())
	}
}
