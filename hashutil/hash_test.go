package hashutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBytes(t *testing.T) {
	got := Bytes([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Bytes(abc) = %s, want %s", got, want)
	}
}

func TestReaderMatchesBytes(t *testing.T) {
	data := []byte("the quick brown fox")
	got, err := Reader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if got != Bytes(data) {
		t.Errorf("Reader = %s, want %s", got, Bytes(data))
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	data := []byte("carnival")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != Bytes(data) {
		t.Errorf("File = %s, want %s", got, Bytes(data))
	}
}

func TestWriterIncremental(t *testing.T) {
	w := New()
	_, _ = w.Write([]byte("ab"))
	_, _ = w.Write([]byte("c"))
	if w.Sum() != Bytes([]byte("abc")) {
		t.Errorf("incremental sum mismatch")
	}
}

func TestEqual(t *testing.T) {
	data := []byte("xyz")
	if !Equal(Bytes(data), data) {
		t.Error("Equal should be true for matching digest")
	}
	if Equal("deadbeef", data) {
		t.Error("Equal should be false for mismatched digest")
	}
}
