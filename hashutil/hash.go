// Package hashutil computes the content-addressed SHA-256 hashes used to
// identify chunks and files throughout the installer.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// ZeroHash is the hex encoding of the SHA-256 of the empty string.
const ZeroHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Writer accumulates bytes and produces their lowercase hex SHA-256 digest.
// Use New to create one, Write to feed data, and Sum to read the result.
type Writer struct {
	h hash.Hash
}

// New creates a Writer ready to accept bytes via Write.
func New() *Writer {
	return &Writer{h: sha256.New()}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Sum returns the lowercase hex digest of the bytes written so far.
func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

// Bytes returns the lowercase hex SHA-256 digest of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Reader streams r through SHA-256 and returns the lowercase hex digest.
func Reader(r io.Reader) (string, error) {
	w := New()
	if _, err := io.Copy(w, r); err != nil {
		return "", err
	}
	return w.Sum(), nil
}

// File streams the file at path through SHA-256 and returns the lowercase
// hex digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	return Reader(f)
}

// Equal reports whether digest (lowercase hex) matches the SHA-256 of data.
func Equal(digest string, data []byte) bool {
	return Bytes(data) == digest
}
