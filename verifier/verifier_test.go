package verifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carnivalhq/carnival/hashutil"
	"github.com/carnivalhq/carnival/manifest"
)

func TestVerifyPassesForMatchingTree(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	sha := hashutil.Bytes([]byte("abc"))
	fm := &manifest.FileManifest{Entries: []manifest.FileEntry{
		{FileName: "a.txt", SizeInBytes: 3, ChunkCount: 1, SHA: sha},
	}}

	report, err := New(root, 2).Verify(fm)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Pass() {
		t.Errorf("expected pass, got failures: %v", report.Failures)
	}
}

func TestVerifyReportsMissingFile(t *testing.T) {
	root := t.TempDir()
	fm := &manifest.FileManifest{Entries: []manifest.FileEntry{
		{FileName: "missing.txt", SizeInBytes: 3, ChunkCount: 1, SHA: "deadbeef"},
	}}
	report, err := New(root, 1).Verify(fm)
	if err != nil {
		t.Fatal(err)
	}
	if report.Pass() {
		t.Fatal("expected failure")
	}
	if report.Failures[0].Reason != "missing" {
		t.Errorf("got reason %q, want missing", report.Failures[0].Reason)
	}
}

func TestVerifyReportsHashMismatch(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	fm := &manifest.FileManifest{Entries: []manifest.FileEntry{
		{FileName: "a.txt", SizeInBytes: 3, ChunkCount: 1, SHA: "wronghash"},
	}}
	report, err := New(root, 1).Verify(fm)
	if err != nil {
		t.Fatal(err)
	}
	if report.Pass() {
		t.Fatal("expected failure")
	}
}

func TestVerifySkipsDirectories(t *testing.T) {
	root := t.TempDir()
	fm := &manifest.FileManifest{Entries: []manifest.FileEntry{
		{FileName: "sub", Flags: manifest.DirectoryFlag},
	}}
	report, err := New(root, 1).Verify(fm)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Pass() {
		t.Errorf("expected pass, got %v", report.Failures)
	}
}
