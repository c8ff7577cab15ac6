// SPDX-License-Identifier: MIT

// Package hashx computes hex digests over streams and files with bounded
// memory.
package hashx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// DefaultChunkSize is the read size used when Chunked is given a
// non-positive chunk size.
const DefaultChunkSize = 8192

// Chunked reads r in chunkSize pieces and returns the hex digest produced by
// the hash newHash constructs. The reader is consumed to EOF.
func Chunked(r io.Reader, newHash func() hash.Hash, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h := newHash()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SHA256 returns the hex SHA-256 digest of the stream.
func SHA256(r io.Reader) (string, error) {
	return Chunked(r, sha256.New, DefaultChunkSize)
}

// SHA256File returns the hex SHA-256 digest of the file at path.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	defer f.Close()
	return SHA256(f)
}
