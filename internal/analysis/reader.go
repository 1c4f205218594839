package analysis

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RecordScanner yields logical records from tabular text. A logical record is
// one or more physical lines joined by "\n" whose double-quote count is even.
// It is pull-based and cannot be restarted.
type RecordScanner struct {
	lines  *lineReader
	closer io.Closer

	buf     strings.Builder
	quotes  int
	record  string
	partial bool
	done    bool
	err     error
}

// OpenRecords opens path for reading. The caller must Close the scanner.
func OpenRecords(path string) (*RecordScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewRecordScanner(f)
	s.closer = f
	return s, nil
}

// NewRecordScanner reads records from r. Invalid UTF-8 is replaced with U+FFFD.
func NewRecordScanner(r io.Reader) *RecordScanner {
	return &RecordScanner{
		lines: newLineReader(transform.NewReader(r, unicode.UTF8.NewDecoder())),
	}
}

// Scan advances to the next complete logical record.
func (s *RecordScanner) Scan() bool {
	if s.done {
		return false
	}
	for {
		line, err := s.lines.next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			break
		}
		if s.buf.Len() > 0 {
			s.buf.WriteByte('\n')
		}
		s.buf.WriteString(line)
		s.quotes += strings.Count(line, `"`)

		if s.quotes%2 == 0 {
			s.record = s.buf.String()
			s.buf.Reset()
			s.quotes = 0
			return true
		}
	}
	s.done = true
	// An unterminated quoted field at end of input is dropped.
	s.partial = s.buf.Len() > 0
	s.buf.Reset()
	s.record = ""
	return false
}

// Record returns the record produced by the last successful Scan.
func (s *RecordScanner) Record() string {
	return s.record
}

// Err returns the first read error, if any.
func (s *RecordScanner) Err() error {
	return s.err
}

// Truncated reports whether input ended inside an open quoted field.
func (s *RecordScanner) Truncated() bool {
	return s.partial
}

// Close releases the underlying file, if the scanner owns one.
func (s *RecordScanner) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// lineReader splits input on "\n", "\r\n" or a lone "\r". Lines have no
// length limit.
type lineReader struct {
	r       *bufio.Reader
	pending []string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the next physical line without its terminator, or io.EOF.
func (l *lineReader) next() (string, error) {
	for len(l.pending) == 0 {
		chunk, err := l.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if chunk == "" {
			return "", io.EOF
		}

		chunk = strings.TrimSuffix(chunk, "\n")
		// Either the "\r" of "\r\n" or a lone "\r" ending the input.
		chunk = strings.TrimSuffix(chunk, "\r")
		l.pending = strings.Split(chunk, "\r")
	}

	line := l.pending[0]
	l.pending = l.pending[1:]
	return line, nil
}
