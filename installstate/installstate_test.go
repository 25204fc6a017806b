package installstate

import (
	"testing"

	"github.com/carnivalhq/carnival/product"
)

func TestPutThenGet(t *testing.T) {
	s := New(t.TempDir())
	rec := Record{InstallPath: "/games/mygame", Version: "1.1", OS: product.Windows}

	if err := s.Put("mygame", rec); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Get("mygame")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	s := New(t.TempDir())
	_, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected ok=false")
	}
}

func TestRemove(t *testing.T) {
	s := New(t.TempDir())
	rec := Record{InstallPath: "/games/mygame", Version: "1.0", OS: product.Mac}
	if err := s.Put("mygame", rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("mygame"); err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Get("mygame")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected record removed")
	}
}

func TestAllReturnsEverything(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Put("a", Record{InstallPath: "/a", Version: "1", OS: product.Linux}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("b", Record{InstallPath: "/b", Version: "2", OS: product.Linux}); err != nil {
		t.Fatal(err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("got %d records, want 2", len(all))
	}
}
