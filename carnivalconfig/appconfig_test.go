package carnivalconfig

import "testing"

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Network.ContentBase == "" {
		t.Error("expected a default ContentBase")
	}

	c2, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c2.Network.ContentBase != c.Network.ContentBase {
		t.Errorf("got %s, want %s", c2.Network.ContentBase, c.Network.ContentBase)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	c.Network.MaxDownloadWorkers = 8
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Network.MaxDownloadWorkers != 8 {
		t.Errorf("got %d, want 8", got.Network.MaxDownloadWorkers)
	}
}
