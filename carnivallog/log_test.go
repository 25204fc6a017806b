package carnivallog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetOutputFileWritesLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carnival.log")

	f, err := SetOutputFile(path)
	if err != nil {
		t.Fatal(err)
	}
	SetLevel(LevelDebug)
	Debug(Pipeline, "starting with %d workers", 4)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected log file to contain output")
	}
	_ = f
}

func TestNormalizeUnknownTagFallsBackToOrchestrator(t *testing.T) {
	if got := normalize("bogus"); got != Orchestrator {
		t.Errorf("got %s, want %s", got, Orchestrator)
	}
	if got := normalize(Fetch); got != Fetch {
		t.Errorf("got %s, want %s", got, Fetch)
	}
}
