package etl

import (
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/schema"
	"github.com/pgEdge/pgedge-orderbi/pkg/version"
)

// Metadata keys written after a successful load.
const (
	MetaSourceFile = "source_file"
	MetaVersion    = "version"
	MetaLoadedAt   = "loaded_at"
	MetaDuration   = "duration"
	MetaRowsPrefix = "rows."
	MetaSkipped    = "skipped_records"
	MetaSkippedItm = "skipped_items"
	MetaTruncated  = "truncated_records"
)

// Summary reports the outcome of a pipeline run.
type Summary struct {
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageResult
}

// Complete reports whether every stage ran against an existing source.
func (s *Summary) Complete() bool {
	if len(s.Stages) != len(Stages) {
		return false
	}
	for _, st := range s.Stages {
		if st.SourceMissing {
			return false
		}
	}
	return true
}

// Inserted returns the rows written to each table.
func (s *Summary) Inserted() map[string]int {
	rows := make(map[string]int)
	for _, st := range s.Stages {
		for _, t := range st.Tables {
			rows[t.Table] += t.Inserted
		}
	}
	return rows
}

// Metadata flattens the summary into key/value pairs for the metadata
// table. Every schema table gets a row count, zero when nothing was
// written to it.
func (s *Summary) Metadata() map[string]string {
	var skipped, skippedItems, truncated int
	for _, st := range s.Stages {
		skipped += st.SkippedRecords
		skippedItems += st.SkippedItems
		truncated += st.Truncated
	}

	m := map[string]string{
		MetaSourceFile: s.Source,
		MetaVersion:    version.Short(),
		MetaLoadedAt:   s.FinishedAt.UTC().Format(time.RFC3339),
		MetaDuration:   s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String(),
		MetaSkipped:    strconv.Itoa(skipped),
		MetaSkippedItm: strconv.Itoa(skippedItems),
		MetaTruncated:  strconv.Itoa(truncated),
	}
	inserted := s.Inserted()
	for _, table := range schema.Tables {
		m[MetaRowsPrefix+table] = strconv.Itoa(inserted[table])
	}
	return m
}

// Log writes the summary at info level, or warn when the run was partial.
func (s *Summary) Log() {
	ev := logging.Info()
	msg := "Load complete"
	if !s.Complete() {
		ev = logging.Warn()
		msg = "Load partially complete"
	}

	for table, n := range s.Inserted() {
		ev = ev.Int(table, n)
	}
	ev.Str("source", s.Source).
		Int("stages", len(s.Stages)).
		Dur("duration", s.FinishedAt.Sub(s.StartedAt)).
		Msg(msg)
}
