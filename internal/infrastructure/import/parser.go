// Package csvimport reads spreadsheet exports for bulk record imports.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Parser reads a header row followed by data rows. Header names are
// matched case-insensitively.
type Parser struct {
	delimiter rune
	headers   []string
	headerMap map[string]int
	line      int
	reader    *csv.Reader
}

// ParserOption is a functional option for Parser configuration
type ParserOption func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// NewParser wraps r, dropping a UTF-8 byte order mark and rejecting
// content that is not UTF-8.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)
	if bom, err := buf.Peek(3); err == nil && string(bom) == "\xEF\xBB\xBF" {
		_, _ = buf.Discard(3)
	}

	head, err := buf.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	if !validPrefix(head) {
		return nil, ErrInvalidEncoding
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// validPrefix reports whether b is UTF-8, allowing for a rune cut off at
// the end of the peeked window
func validPrefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// ParseHeader reads the header row
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = name
		if name != "" {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// Headers returns the normalized header names
func (p *Parser) Headers() []string {
	return p.headers
}

// MissingHeaders returns the required columns absent from the header row
func (p *Parser) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[strings.ToLower(h)]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data line keyed by header name
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the trimmed value of column, or "" when absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Decimal parses column as a decimal. Blank cells read as zero; malformed
// cells are recorded in errs and read as zero.
func (r *Row) Decimal(column string, errs *ErrorCollection) decimal.Decimal {
	raw := r.Get(column)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add(RowError{Row: r.Line, Column: column, Message: "must be a number", Value: raw})
		return decimal.Zero
	}
	return d
}

// Int parses column as a whole number with the same rules as Decimal
func (r *Row) Int(column string, errs *ErrorCollection) int {
	raw := r.Get(column)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(RowError{Row: r.Line, Column: column, Message: "must be a whole number", Value: raw})
		return 0
	}
	return n
}

// ReadRow returns the next row, or io.EOF
func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, RowError{Row: p.line, Message: err.Error()}
	}

	row := &Row{Line: p.line, Data: make(map[string]string, len(p.headers))}
	for i, header := range p.headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping blank lines
func (p *Parser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
