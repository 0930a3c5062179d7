package tableimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Parser reads a CSV table with a header row. A UTF-8 byte order mark is
// dropped and input that is not UTF-8 is decoded as ISO-8859-1, the
// encoding of older spreadsheet exports.
type Parser struct {
	delimiter rune
	headers   []string
	headerMap map[string]int
	line      int
	rows      int
	reader    *csv.Reader
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// NewParser wraps r and reads its header row
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	const sniff = 4096
	head, err := br.Peek(sniff)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	var src io.Reader = br
	if !utf8.Valid(head) && !(len(head) == sniff && validTruncated(head)) {
		src = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	}

	p.reader = csv.NewReader(src)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// validTruncated reports whether b is valid UTF-8 apart from a rune cut
// off at its end
func validTruncated(b []byte) bool {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			return !utf8.FullRune(b[i:]) && utf8.Valid(b[:i])
		}
	}
	return false
}

func (p *Parser) readHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		p.headers[i] = h
		p.headerMap[h] = i
	}
	p.line = 1
	return nil
}

// Headers returns the header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing returns the required columns the header lacks
func (p *Parser) Missing(required []string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by header name
type Row struct {
	Line int
	data map[string]string
}

// Get returns the trimmed value of column, empty when absent
func (r *Row) Get(column string) string {
	return r.data[column]
}

func (r *Row) isEmpty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next non-blank row, or io.EOF
func (p *Parser) Next() (*Row, error) {
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		p.line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}

		row := &Row{Line: p.line, data: make(map[string]string, len(p.headers))}
		for i, h := range p.headers {
			if i < len(record) {
				row.data[h] = strings.TrimSpace(record[i])
			}
		}
		if row.isEmpty() {
			continue
		}
		p.rows++
		return row, nil
	}
}

// Rows returns the number of data rows read so far
func (p *Parser) Rows() int {
	return p.rows
}
