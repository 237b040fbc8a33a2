package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

var (
	// ErrSourceNotFound is returned by Scan when the file does not exist.
	ErrSourceNotFound = fmt.Errorf("source not found: %w", fs.ErrNotExist)

	// ErrMissingColumn is returned by Scan when the header lacks a
	// required column.
	ErrMissingColumn = errors.New("missing required column")
)

// Reader reads records from a source. Every Scan starts again from the
// beginning, so one Reader can be shared by all pipeline stages.
type Reader struct {
	name string
	open func() (io.ReadCloser, error)
}

// ScanStats describes one pass over a source.
type ScanStats struct {
	// Records is the number of records passed to the callback.
	Records int

	// Malformed is the number of lines skipped because they could not
	// be parsed.
	Malformed int
}

// FromFile returns a Reader over the file at path.
func FromFile(path string) *Reader {
	return &Reader{
		name: path,
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
			}
			return f, err
		},
	}
}

// FromBytes returns a Reader over in-memory data.
func FromBytes(name string, data []byte) *Reader {
	return &Reader{
		name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Name returns the path or name of the source.
func (r *Reader) Name() string {
	return r.name
}

// Scan reads the source from the start and calls fn for every record in
// file order. It stops at the first error returned by fn.
func (r *Reader) Scan(fn func(Record) error) (ScanStats, error) {
	var stats ScanStats

	rc, err := r.open()
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			return stats, err
		}
		return stats, fmt.Errorf("failed to open %s: %w", r.name, err)
	}
	defer rc.Close()

	lr := newLineReader(rc, r.name)

	raw, err := lr.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read header of %s: %w", r.name, err)
	}

	header, err := normalizeHeader(raw)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", r.name, err)
	}

	pr := &paddedReader{r: lr, width: len(header), name: r.name}
	dec, err := csvutil.NewDecoder(pr, header...)
	if err != nil {
		return stats, fmt.Errorf("failed to create decoder for %s: %w", r.name, err)
	}

	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to decode %s line %d: %w", r.name, lr.line, err)
		}

		rec.clean()
		stats.Records++
		if err := fn(rec); err != nil {
			stats.Malformed = pr.malformed
			return stats, err
		}
	}

	stats.Malformed = pr.malformed
	return stats, nil
}

// normalizeHeader strips a byte order mark, trims cells, applies aliases
// and checks that every required column is present. The first of repeated
// columns wins.
func normalizeHeader(raw []string) ([]string, error) {
	header := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, cell := range raw {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}
		cell = strings.TrimSpace(cell)
		if alias, ok := headerAliases[cell]; ok && !seen[alias] {
			cell = alias
		}
		if cell == "" || seen[cell] {
			// Unnamed or repeated columns are kept under a placeholder
			// so the decoder ignores them.
			cell = fmt.Sprintf("#%d", i)
		}
		header[i] = cell
		seen[cell] = true
	}

	var missing []string
	for _, col := range Columns {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return header, nil
}

// paddedReader adapts lineReader for csvutil: short lines are padded with
// empty cells, long lines are cut to the header width, and lines that fail
// to read are logged and skipped.
type paddedReader struct {
	r         *lineReader
	width     int
	name      string
	malformed int
	buf       []string
}

func (p *paddedReader) Read() ([]string, error) {
	for {
		rec, err := p.r.Read()
		if err != nil {
			var lerr *lineError
			if errors.As(err, &lerr) {
				p.malformed++
				logging.Warn().
					Str("source", p.name).
					Int("line", lerr.Line).
					Err(lerr.Err).
					Msg("Skipping malformed line")
				continue
			}
			return nil, err
		}

		p.buf = append(p.buf[:0], rec...)
		for len(p.buf) < p.width {
			p.buf = append(p.buf, "")
		}
		return p.buf[:p.width], nil
	}
}
