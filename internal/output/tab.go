// Package output provides genotype output formatters.
package output

import (
	"encoding/csv"
	"io"

	"github.com/ancient-ibd/gtnorm/internal/genotype"
)

// Columns is the canonical header row.
var Columns = []string{"# rsid", "chromosome", "position", "genotype"}

// TabWriter writes canonical genotype records in tab-delimited format.
// Fields holding a tab, quote or line break are quoted. Lines end in "\n",
// also for CRLF input.
type TabWriter struct {
	w    *csv.Writer
	rows int
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &TabWriter{w: cw}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	return tw.w.Write(Columns)
}

// Write writes a single record.
func (tw *TabWriter) Write(rec *genotype.Record) error {
	if err := tw.w.Write(rec.Fields()); err != nil {
		return err
	}
	tw.rows++
	return nil
}

// Rows returns the number of records written so far.
func (tw *TabWriter) Rows() int {
	return tw.rows
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	tw.w.Flush()
	return tw.w.Error()
}
