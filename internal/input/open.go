// Package input opens genotype files, transparently decompressing the
// archive formats raw data downloads are commonly delivered in.
package input

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// Format identifies how an input file is stored.
type Format byte

const (
	Plain Format = iota
	Gzip
	Zip
	XZ
	BZip2
)

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Zip:
		return "zip"
	case XZ:
		return "xz"
	case BZip2:
		return "bzip2"
	}
	return "plain"
}

// ErrNotRegular is returned when the input path is not a regular file.
var ErrNotRegular = errors.New("not a regular file")

// magicLen is the longest signature in signatures.
const magicLen = 6

var signatures = []struct {
	format Format
	magic  []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{XZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{BZip2, []byte{0x42, 0x5a, 0x68}},
}

// Detect returns the storage format of a stream from its leading bytes.
func Detect(head []byte) Format {
	for _, sig := range signatures {
		if bytes.HasPrefix(head, sig.magic) {
			return sig.format
		}
	}
	return Plain
}

// Open opens path and returns a reader over its decompressed contents.
// A zip archive yields its first entry.
// Missing paths return an error wrapping fs.ErrNotExist; directories and
// other non-regular files return ErrNotRegular.
func Open(path string) (io.ReadCloser, Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, Plain, err
	}
	if !info.Mode().IsRegular() {
		return nil, Plain, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, Plain, fmt.Errorf("open input: %w", err)
	}

	rc, format, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, format, err
	}
	return &stackedCloser{Reader: rc, closers: []io.Closer{rc, file}}, format, nil
}

// NewReader sniffs the storage format from the leading bytes of r and
// returns a reader over the decompressed contents.
// Closing the result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, Format, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(magicLen)
	if err != nil && err != io.EOF {
		return nil, Plain, fmt.Errorf("read input header: %w", err)
	}

	format := Detect(head)
	rc, err := decompress(br, format)
	if err != nil {
		return nil, format, err
	}
	return rc, format, nil
}

func decompress(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return zr, nil
	case Zip:
		zr := zipstream.NewReader(r)
		if _, err := zr.Next(); err != nil {
			return nil, fmt.Errorf("read zip entry: %w", err)
		}
		return io.NopCloser(zr), nil
	case XZ:
		xr, err := xz.NewReader(r, 0)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	case BZip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	}
	return io.NopCloser(r), nil
}

// stackedCloser closes a decompressor and the file beneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
