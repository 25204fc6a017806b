package product

import (
	"testing"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

func sampleProduct() *Product {
	return &Product{
		Slug:       "mygame",
		Namespace:  "acme",
		ContentKey: "42",
		Name:       "My Game",
		ID:         7,
		Versions: []ProductVersion{
			{Version: "1.0", OS: Windows, BuildDate: 100, ReleaseNotes: "initial", Enabled: true, Status: 0},
			{Version: "1.1", OS: Windows, BuildDate: 200, ReleaseNotes: "patch", Enabled: true, Status: 0},
			{Version: "1.0", OS: Mac, BuildDate: 150, ReleaseNotes: "initial mac", Enabled: true, Status: 0},
		},
	}
}

func TestPutThenGetRoundTrip(t *testing.T) {
	s := NewLibraryStore(t.TempDir())
	want := sampleProduct()
	if err := s.Put(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("mygame")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != want.Name || got.Namespace != want.Namespace || got.ID != want.ID {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Versions) != 3 {
		t.Fatalf("got %d versions, want 3", len(got.Versions))
	}
}

func TestGetMissingReturnsNotInLibrary(t *testing.T) {
	s := NewLibraryStore(t.TempDir())
	_, err := s.Get("nope")
	if !carnivalerrors.Is(err, carnivalerrors.NotInLibrary) {
		t.Errorf("expected NotInLibrary, got %v", err)
	}
}

func TestLatestVersionPicksMaxBuildDateForOS(t *testing.T) {
	p := sampleProduct()
	latest, ok := p.LatestVersion(Windows)
	if !ok {
		t.Fatal("expected a match")
	}
	if latest.Version != "1.1" {
		t.Errorf("got %s, want 1.1", latest.Version)
	}
}

func TestLatestVersionNoMatch(t *testing.T) {
	p := sampleProduct()
	_, ok := p.LatestVersion(Linux)
	if ok {
		t.Error("expected no match for lin")
	}
}

func TestPutOverwritesExistingSlug(t *testing.T) {
	dir := t.TempDir()
	s := NewLibraryStore(dir)
	p := sampleProduct()
	if err := s.Put(p); err != nil {
		t.Fatal(err)
	}
	p.Name = "Renamed"
	if err := s.Put(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("mygame")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Renamed" {
		t.Errorf("got %s, want Renamed", got.Name)
	}
	if len(got.Versions) != 3 {
		t.Errorf("got %d versions, want 3 (no duplication across overwrite)", len(got.Versions))
	}
}
