package genotype

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/ancient-ibd/gtnorm/internal/input"
)

// Parser reads genotype records from a tab- or comma-delimited file.
type Parser struct {
	reader     *bufio.Reader
	records    *csv.Reader
	closer     io.Closer
	format     input.Format
	delimiter  Delimiter
	header     string
	hasHeader  bool
	preamble   []string
	lineOffset int // physical lines consumed before the csv reader saw its first byte
	lineNumber int

	skipPreamble bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithSkipPreamble drops leading '#' comment lines that do not name the
// chromosome or position column, as found at the top of raw 23andMe
// downloads, before the first line is inspected.
func WithSkipPreamble(skip bool) Option {
	return func(p *Parser) {
		p.skipPreamble = skip
	}
}

// NewParser opens path and detects its delimiter and header.
// Compressed input (gzip, bzip2, xz, zip) is decompressed transparently.
func NewParser(path string, opts ...Option) (*Parser, error) {
	rc, format, err := input.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, input.ErrNotRegular) {
			return nil, &Error{Kind: InputNotFound, Value: path}
		}
		return nil, fmt.Errorf("open genotype file: %w", err)
	}

	p, err := newParser(rc, opts)
	if err != nil {
		rc.Close()
		return nil, err
	}
	p.closer = rc
	p.format = format
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Compressed streams are detected as in NewParser. Closing the parser does
// not close r.
func NewParserFromReader(r io.Reader, opts ...Option) (*Parser, error) {
	rc, format, err := input.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open genotype stream: %w", err)
	}

	p, err := newParser(rc, opts)
	if err != nil {
		rc.Close()
		return nil, err
	}
	p.closer = rc
	p.format = format
	return p, nil
}

func newParser(r io.Reader, opts []Option) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r), format: input.Plain}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.detectFormat(); err != nil {
		return nil, err
	}
	return p, nil
}

// detectFormat peeks the first line, picks the delimiter and decides
// whether that line is a header to skip or a record to parse. In the
// record case the line's bytes are fed back ahead of the rest of the
// stream, so it is parsed exactly once.
func (p *Parser) detectFormat() error {
	var (
		raw      string
		consumed int
	)
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read first line: %w", err)
		}
		consumed++
		raw = line
		trimmed := strings.TrimSpace(line)
		if p.skipPreamble && err == nil && strings.HasPrefix(trimmed, "#") && !IsHeader(trimmed) {
			p.preamble = append(p.preamble, trimmed)
			continue
		}
		break
	}

	first := strings.TrimSpace(raw)

	delim, err := DetectDelimiter(first)
	if err != nil {
		return atLine(err, consumed)
	}
	p.delimiter = delim

	header, err := ClassifyFirstLine(first)
	if err != nil {
		return atLine(err, consumed)
	}

	var src io.Reader = p.reader
	if header {
		p.hasHeader = true
		p.header = first
		p.lineOffset = consumed
	} else {
		src = io.MultiReader(strings.NewReader(raw), p.reader)
		p.lineOffset = consumed - 1
	}

	p.records = csv.NewReader(src)
	p.records.Comma = rune(delim)
	p.records.FieldsPerRecord = -1
	p.records.LazyQuotes = true
	return nil
}

func atLine(err error, line int) error {
	var ge *Error
	if errors.As(err, &ge) {
		ge.Line = line
	}
	return err
}

// Next reads and validates the next record.
// Returns nil, nil when there are no more records.
// Blank lines are skipped.
func (p *Parser) Next() (*Record, error) {
	fields, err := p.records.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			p.lineNumber = pe.StartLine + p.lineOffset
			return nil, &Error{Kind: MalformedRecord, Line: p.lineNumber, Value: pe.Err.Error()}
		}
		return nil, fmt.Errorf("read genotype line: %w", err)
	}

	line, _ := p.records.FieldPos(0)
	p.lineNumber = line + p.lineOffset

	rec, err := FromFields(fields, p.lineNumber)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delimiter returns the detected field delimiter.
func (p *Parser) Delimiter() Delimiter {
	return p.delimiter
}

// Format returns the compression the input was stored with.
func (p *Parser) Format() input.Format {
	return p.format
}

// HasHeader reports whether the first line was a column header.
func (p *Parser) HasHeader() bool {
	return p.hasHeader
}

// Header returns the skipped header line, if any.
func (p *Parser) Header() string {
	return p.header
}

// Preamble returns the comment lines dropped by WithSkipPreamble.
func (p *Parser) Preamble() []string {
	return p.preamble
}

// LineNumber returns the line of the most recently read record.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the underlying file.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
