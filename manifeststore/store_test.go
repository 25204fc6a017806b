package manifeststore

import (
	"path/filepath"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	data := []byte("Size in Bytes,Chunks,SHA,Flags,File Name\n")
	if err := s.Write("mygame", "1.0", KindManifest, data); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read("mygame", "1.0", KindManifest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}

	wantPath := filepath.Join(dir, "manifests", "mygame", "1.0_manifest.csv")
	if s.path("mygame", "1.0", KindManifest) != wantPath {
		t.Errorf("path = %s, want %s", s.path("mygame", "1.0", KindManifest), wantPath)
	}
}

func TestReadMissingReturnsErrNotFound(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Read("mygame", "1.0", KindManifest)
	if err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeltaVersionKey(t *testing.T) {
	s := New(t.TempDir())
	data := []byte("x")
	dv := DeltaVersion("1.0", "2.0")
	if dv != "1.0_2.0" {
		t.Fatalf("DeltaVersion = %s", dv)
	}
	if err := s.Write("mygame", dv, KindManifestDelta, data); err != nil {
		t.Fatal(err)
	}
	if !s.Has("mygame", dv, KindManifestDelta) {
		t.Error("expected Has to be true after Write")
	}
}
