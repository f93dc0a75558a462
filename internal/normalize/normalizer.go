// Package normalize validates a genotype file and rewrites it into the
// canonical tab-delimited layout.
package normalize

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ancient-ibd/gtnorm/internal/genotype"
	"github.com/ancient-ibd/gtnorm/internal/output"
)

// RecordSource yields validated records in input order.
// Both *genotype.Parser and test fakes implement it.
type RecordSource interface {
	// Next returns nil, nil when there are no more records.
	Next() (*genotype.Record, error)
	LineNumber() int
}

// Options controls a normalization run.
type Options struct {
	// MaxErrors is how many record errors are collected before the run
	// stops. Values below 2 stop at the first bad record.
	MaxErrors int

	// SkipPreamble drops leading comment lines ahead of the header.
	SkipPreamble bool
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	InputPath  string
	OutputPath string
	Format     string
	Delimiter  string
	HasHeader  bool
	Records    int // rows written, header excluded
	NoCalls    int // rows whose genotype is the no-call marker
	LastLine   int

	// OutputCreated is set once the output file has been created.
	OutputCreated bool
}

// ErrOutputIsInput is returned when the output path names the input file,
// directly or through a link.
var ErrOutputIsInput = errors.New("output file is the input file")

// Normalizer streams records from a source to a TabWriter.
type Normalizer struct {
	opts   Options
	logger *zap.Logger
	hook   func(genotype.Record) error
}

// New creates a normalizer with the given options.
func New(opts Options) *Normalizer {
	return &Normalizer{
		opts:   opts,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and failure messages.
func (n *Normalizer) SetLogger(l *zap.Logger) {
	n.logger = l
}

// SetRecordHook registers fn to receive every record after it is written.
// An error from fn aborts the run.
func (n *Normalizer) SetRecordHook(fn func(genotype.Record) error) {
	n.hook = fn
}

// Normalize writes the canonical header followed by every record from src.
// It stops at the first invalid record unless Options.MaxErrors allows
// more; once a record has failed, later valid records are checked but no
// longer written. The writer is flushed on every return path.
func (n *Normalizer) Normalize(src RecordSource, w *output.TabWriter) (sum Summary, err error) {
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
	}()

	if err := w.WriteHeader(); err != nil {
		return sum, fmt.Errorf("write header: %w", err)
	}

	limit := n.opts.MaxErrors
	if limit < 1 {
		limit = 1
	}

	var (
		errs   error
		failed int
	)
	for {
		rec, rerr := src.Next()
		sum.LastLine = src.LineNumber()
		if rerr != nil {
			if genotype.KindOf(rerr) == genotype.KindUnknown {
				return sum, multierr.Append(errs, rerr)
			}
			n.logger.Debug("invalid record",
				zap.Int("line", genotype.LineOf(rerr)),
				zap.Stringer("kind", genotype.KindOf(rerr)),
				zap.Error(rerr))
			errs = multierr.Append(errs, rerr)
			failed++
			if failed >= limit {
				break
			}
			continue
		}
		if rec == nil {
			break
		}
		if failed > 0 {
			continue
		}

		if err := w.Write(rec); err != nil {
			return sum, fmt.Errorf("write record: %w", err)
		}
		sum.Records++
		if rec.IsNoCall() {
			sum.NoCalls++
		}
		if n.hook != nil {
			if err := n.hook(*rec); err != nil {
				return sum, fmt.Errorf("record hook: %w", err)
			}
		}
	}

	return sum, errs
}

// NormalizeFile validates inputPath and writes the canonical file to
// outputPath. The output file is created only after the input's format has
// been recognised, and is always closed before returning. On failure its
// contents must not be trusted. An output path that resolves to the input
// file is rejected with ErrOutputIsInput before either file is touched.
func (n *Normalizer) NormalizeFile(inputPath, outputPath string) (Summary, error) {
	sum := Summary{InputPath: inputPath, OutputPath: outputPath}

	if sameFile(inputPath, outputPath) {
		err := fmt.Errorf("%w: %s", ErrOutputIsInput, outputPath)
		n.logFailure(sum, err)
		return sum, err
	}

	parser, err := genotype.NewParser(inputPath, genotype.WithSkipPreamble(n.opts.SkipPreamble))
	if err != nil {
		n.logFailure(sum, err)
		return sum, err
	}
	defer parser.Close()

	sum.Format = parser.Format().String()
	sum.Delimiter = parser.Delimiter().String()
	sum.HasHeader = parser.HasHeader()
	n.logger.Info("detected input format",
		zap.String("input", inputPath),
		zap.String("compression", sum.Format),
		zap.String("delimiter", sum.Delimiter),
		zap.Bool("header", sum.HasHeader),
		zap.Int("preamble_lines", len(parser.Preamble())))

	out, err := os.Create(outputPath)
	if err != nil {
		err = fmt.Errorf("create output file: %w", err)
		n.logFailure(sum, err)
		return sum, err
	}
	sum.OutputCreated = true

	streamed, err := n.Normalize(parser, output.NewTabWriter(out))
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close output file: %w", cerr)
	}

	streamed.InputPath = sum.InputPath
	streamed.OutputPath = sum.OutputPath
	streamed.Format = sum.Format
	streamed.Delimiter = sum.Delimiter
	streamed.HasHeader = sum.HasHeader
	streamed.OutputCreated = true
	if err != nil {
		n.logFailure(streamed, err)
		return streamed, err
	}

	n.logger.Info("normalized genotype file",
		zap.String("output", outputPath),
		zap.Int("records", streamed.Records),
		zap.Int("no_calls", streamed.NoCalls))
	return streamed, nil
}

func (n *Normalizer) logFailure(sum Summary, err error) {
	fields := []zap.Field{
		zap.String("input", sum.InputPath),
		zap.Stringer("kind", genotype.KindOf(err)),
		zap.Int("errors", len(multierr.Errors(err))),
		zap.Error(err),
	}
	var ge *genotype.Error
	if errors.As(err, &ge) && ge.Line > 0 {
		fields = append(fields, zap.Int("line", ge.Line))
	}
	n.logger.Warn("genotype file rejected", fields...)
}

// sameFile reports whether both paths exist and name the same file.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
