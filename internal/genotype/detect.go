package genotype

import (
	"strings"
	"unicode"
)

// Delimiter separates fields within a line.
type Delimiter rune

const (
	Tab   Delimiter = '\t'
	Comma Delimiter = ','
)

func (d Delimiter) String() string {
	switch d {
	case Tab:
		return "tab"
	case Comma:
		return "comma"
	}
	return string(rune(d))
}

// headerKeywords mark a first line as a column header.
var headerKeywords = []string{"chromosome", "position"}

// DetectDelimiter picks the field delimiter from the first line of a file.
// Tab wins over comma when both are present.
func DetectDelimiter(line string) (Delimiter, error) {
	line = strings.TrimSpace(line)
	switch {
	case strings.Contains(line, "\t"):
		return Tab, nil
	case strings.Contains(line, ","):
		return Comma, nil
	}
	return 0, &Error{Kind: UnrecognizedDelimiter, Line: 1, Value: line}
}

// IsHeader reports whether line names the chromosome or position column.
func IsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// LooksLikeData reports whether line holds only letters, digits,
// whitespace, commas, hyphens and '#'.
func LooksLikeData(line string) bool {
	for _, r := range line {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case unicode.IsSpace(r):
		case r == ',', r == '-', r == '#':
		default:
			return false
		}
	}
	return true
}

// ClassifyFirstLine decides whether the first line of a file is a header
// (skip it) or the first data record (parse it).
// The keyword check runs first so a purely alphanumeric header is never
// mistaken for data.
func ClassifyFirstLine(line string) (header bool, err error) {
	line = strings.TrimSpace(line)
	if IsHeader(line) {
		return true, nil
	}
	if LooksLikeData(line) {
		return false, nil
	}
	return false, &Error{Kind: InvalidFirstLine, Line: 1, Value: line}
}
