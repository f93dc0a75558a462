package duckdb

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	blake2b "github.com/minio/blake2b-simd"
)

// InputFingerprint identifies the bytes of a genotype file as they were
// when a run read them. Digest covers the raw (still compressed) file, so
// touching a file or copying it elsewhere does not change it.
type InputFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
	Digest  string // hex BLAKE2b-256
}

// FingerprintFile hashes the file at path.
func FingerprintFile(path string) (InputFingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return InputFingerprint{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return InputFingerprint{}, err
	}
	if !info.Mode().IsRegular() {
		return InputFingerprint{}, fmt.Errorf("fingerprint %s: not a regular file", path)
	}

	h := blake2b.New256()
	n, err := io.Copy(h, f)
	if err != nil {
		return InputFingerprint{}, fmt.Errorf("hash %s: %w", path, err)
	}

	return InputFingerprint{
		Path:    path,
		Size:    n,
		ModTime: info.ModTime(),
		Digest:  hex.EncodeToString(h.Sum(nil)),
	}, nil
}
