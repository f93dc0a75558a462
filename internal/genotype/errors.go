package genotype

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a genotype file was rejected.
type Kind int

const (
	KindUnknown Kind = iota
	ArgumentError
	InputNotFound
	UnrecognizedDelimiter
	InvalidFirstLine
	MalformedRecord
	InvalidChromosome
	InvalidPosition
	InvalidGenotype
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	ArgumentError:         "ArgumentError",
	InputNotFound:         "InputNotFound",
	UnrecognizedDelimiter: "UnrecognizedDelimiter",
	InvalidFirstLine:      "InvalidFirstLine",
	MalformedRecord:       "MalformedRecord",
	InvalidChromosome:     "InvalidChromosome",
	InvalidPosition:       "InvalidPosition",
	InvalidGenotype:       "InvalidGenotype",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reason returns the fixed human-readable explanation for a kind.
func (k Kind) Reason() string {
	switch k {
	case ArgumentError:
		return "wrong parameter number"
	case InputNotFound:
		return "check INPUT FILE exists and it's a file"
	case UnrecognizedDelimiter:
		return "file requires tab or comma delimiter"
	case InvalidFirstLine:
		return "file first line should be either valid header or valid information line"
	case MalformedRecord:
		return "expect 4 or 5 columns"
	case InvalidChromosome:
		return "chromosome should be either X, Y, XY, MT or 0-26"
	case InvalidPosition:
		return "position should be an integer"
	case InvalidGenotype:
		return "genotype should be one of A, C, T, G, D, I, -, 0"
	}
	return "unknown error"
}

// Error describes a rejected input with line context.
// Line is 1-based and counts physical lines of the (decompressed) input;
// it is 0 when the failure is not tied to a line.
type Error struct {
	Kind   Kind
	Line   int
	Value  string   // offending field or line, if any
	Fields []string // raw record fields, for record-level failures
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Kind.Reason())
	switch {
	case e.Kind == MalformedRecord && e.Fields != nil:
		fmt.Fprintf(&b, " (found %d)", len(e.Fields))
	case e.Value != "":
		fmt.Fprintf(&b, " (got %q)", e.Value)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": line %q is invalid", e.Fields)
	}
	return b.String()
}

// KindOf reports the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// LineOf reports the input line carried by err, or 0.
func LineOf(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Line
	}
	return 0
}
