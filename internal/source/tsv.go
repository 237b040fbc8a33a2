package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

// maxLineSize bounds the length of one line of the source file.
const maxLineSize = 16 << 20

var errInvalidUTF8 = errors.New("line is not valid UTF-8")

// lineError reports a line that was skipped.
type lineError struct {
	Line int
	Err  error
}

func (e *lineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *lineError) Unwrap() error {
	return e.Err
}

// lineReader splits a tab-separated source into cells, one record per
// line. Blank lines are skipped.
//
// A cell that starts with a double quote is read up to the closing quote,
// with "" standing for one quote, and any text between the closing quote
// and the next tab is appended as is. Quotes anywhere else are ordinary
// characters. Quoted cells never span lines: when a line ends inside a
// quoted cell the whole line is read with its quotes as literal text.
type lineReader struct {
	sc    *bufio.Scanner
	name  string
	line  int
	cells []string
}

func newLineReader(r io.Reader, name string) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc, name: name}
}

// Read returns the cells of the next non-blank line. The slice is reused
// by the following call. Lines that are not valid UTF-8 are returned as a
// *lineError and may be skipped by the caller.
func (l *lineReader) Read() ([]string, error) {
	for l.sc.Scan() {
		l.line++
		text := strings.TrimSuffix(l.sc.Text(), "\r")
		if text == "" {
			continue
		}
		if !utf8.ValidString(text) {
			return nil, &lineError{Line: l.line, Err: errInvalidUTF8}
		}

		var ok bool
		l.cells, ok = splitCells(text, l.cells)
		if !ok {
			logging.Debug().
				Str("source", l.name).
				Int("line", l.line).
				Msg("Unterminated quote, reading line literally")
			l.cells = append(l.cells[:0], strings.Split(text, "\t")...)
		}
		return l.cells, nil
	}
	if err := l.sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", l.line+1, err)
	}
	return nil, io.EOF
}

// splitCells splits one line into dst. It returns false if a quoted cell
// is not closed before the end of the line.
func splitCells(line string, dst []string) ([]string, bool) {
	dst = dst[:0]
	for {
		if !strings.HasPrefix(line, `"`) {
			cell, rest, more := strings.Cut(line, "\t")
			dst = append(dst, cell)
			if !more {
				return dst, true
			}
			line = rest
			continue
		}

		cell, rest, ok := quotedCell(line[1:])
		if !ok {
			return dst, false
		}
		tail, rest, more := strings.Cut(rest, "\t")
		dst = append(dst, cell+tail)
		if !more {
			return dst, true
		}
		line = rest
	}
}

// quotedCell reads the body of a quoted cell, s starting just after the
// opening quote, and returns the text after the closing quote.
func quotedCell(s string) (cell, rest string, ok bool) {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '"')
		if i < 0 {
			return "", "", false
		}
		b.WriteString(s[:i])
		s = s[i+1:]
		if !strings.HasPrefix(s, `"`) {
			return b.String(), s, true
		}
		b.WriteByte('"')
		s = s[1:]
	}
}
