package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

func touch(t *testing.T, root, name string) {
	t.Helper()
	full := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOutOfOrderArrivalStillWritesInOrder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.txt")

	plan := []PlanEntry{
		{FilePath: "a.txt", ChunkIndex: 0, ChunkSHA: "s0", IsLastForFile: false},
		{FilePath: "a.txt", ChunkIndex: 1, ChunkSHA: "s1", IsLastForFile: true},
	}
	w := New(root, plan)

	ch := make(chan Message, 2)
	var released []uint32
	// Send chunk 1 before chunk 0 — buffer must hold it until chunk 0 lands.
	ch <- Message{FilePath: "a.txt", ChunkIndex: 1, ChunkSHA: "s1", Bytes: []byte("WORLD"), Release: func() { released = append(released, 1) }}
	ch <- Message{FilePath: "a.txt", ChunkIndex: 0, ChunkSHA: "s0", Bytes: []byte("HELLO"), Release: func() { released = append(released, 0) }}
	close(ch)

	if err := w.Run(context.Background(), ch); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "HELLOWORLD" {
		t.Errorf("got %q, want %q", got, "HELLOWORLD")
	}
	if len(released) != 2 || released[0] != 0 || released[1] != 1 {
		t.Errorf("expected release order [0 1], got %v", released)
	}
}

func TestMultiFileInterleaving(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.txt")
	touch(t, root, "b.txt")

	plan := []PlanEntry{
		{FilePath: "a.txt", ChunkIndex: 0, ChunkSHA: "a0", IsLastForFile: true},
		{FilePath: "b.txt", ChunkIndex: 0, ChunkSHA: "b0", IsLastForFile: true},
	}
	w := New(root, plan)
	ch := make(chan Message, 2)
	ch <- Message{FilePath: "a.txt", ChunkIndex: 0, ChunkSHA: "a0", Bytes: []byte("A")}
	ch <- Message{FilePath: "b.txt", ChunkIndex: 0, ChunkSHA: "b0", Bytes: []byte("B")}
	close(ch)

	if err := w.Run(context.Background(), ch); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]string{"a.txt": "A", "b.txt": "B"} {
		got, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}
}

func TestTruncatedWhenChannelClosesEarly(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.txt")

	plan := []PlanEntry{
		{FilePath: "a.txt", ChunkIndex: 0, ChunkSHA: "s0", IsLastForFile: true},
	}
	w := New(root, plan)
	ch := make(chan Message)
	close(ch)

	err := w.Run(context.Background(), ch)
	if !carnivalerrors.Is(err, carnivalerrors.Truncated) {
		t.Errorf("expected Truncated, got %v", err)
	}
}
