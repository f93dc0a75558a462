package input

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "rsid\tchromosome\tposition\tgenotype\nrs1\t1\t100\tAG\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func readOpened(t *testing.T, path string) (string, Format) {
	t.Helper()
	rc, format, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data), format
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, Gzip},
		{"zip", []byte("PK\x03\x04rest"), Zip},
		{"xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, XZ},
		{"bzip2", []byte("BZh91AY"), BZip2},
		{"plain text", []byte("rsid\tch"), Plain},
		{"short", []byte{0x1f}, Plain},
		{"empty", nil, Plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.head))
		})
	}
}

func TestOpen_Plain(t *testing.T) {
	path := writeFile(t, "genome.txt", []byte(sample))
	got, format := readOpened(t, path)
	assert.Equal(t, Plain, format)
	assert.Equal(t, sample, got)
}

func TestOpen_TinyFile(t *testing.T) {
	path := writeFile(t, "tiny.txt", []byte("a,b"))
	got, format := readOpened(t, path)
	assert.Equal(t, Plain, format)
	assert.Equal(t, "a,b", got)
}

func TestOpen_Empty(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)
	got, format := readOpened(t, path)
	assert.Equal(t, Plain, format)
	assert.Empty(t, got)
}

func TestOpen_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeFile(t, "genome.txt.gz", buf.Bytes())
	got, format := readOpened(t, path)
	assert.Equal(t, Gzip, format)
	assert.Equal(t, sample, got)
}

func TestOpen_Zip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Stored entry with sizes in the local header, as a streaming reader needs.
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "genome_Full_20250410.txt",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte(sample)),
		CompressedSize64:   uint64(len(sample)),
		UncompressedSize64: uint64(len(sample)),
	})
	require.NoError(t, err)
	_, err = w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeFile(t, "genome.zip", buf.Bytes())
	got, format := readOpened(t, path)
	assert.Equal(t, Zip, format)
	assert.Equal(t, sample, got)
}

func TestOpen_NotFound(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpen_Directory(t *testing.T) {
	_, _, err := Open(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegular)
}

func TestNewReader(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"gzip", gz.Bytes(), Gzip},
		{"plain", []byte(sample), Plain},
		{"shorter than any signature", []byte("rs"), Plain},
		{"empty", nil, Plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, format, err := NewReader(bytes.NewReader(tt.data))
			require.NoError(t, err)
			defer rc.Close()
			assert.Equal(t, tt.format, format)

			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			if tt.format == Gzip {
				assert.Equal(t, sample, string(data))
			} else {
				assert.Equal(t, string(tt.data), string(data))
			}
		})
	}
}

func TestNewReader_CorruptGzip(t *testing.T) {
	_, format, err := NewReader(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	require.Error(t, err)
	assert.Equal(t, Gzip, format)
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "gzip", Gzip.String())
	assert.Equal(t, "zip", Zip.String())
	assert.Equal(t, "xz", XZ.String())
	assert.Equal(t, "bzip2", BZip2.String())
}
