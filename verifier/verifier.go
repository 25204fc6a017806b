// Package verifier checks an installed tree against its file manifest.
package verifier

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/carnivalhq/carnival/carnivalerrors"
	"github.com/carnivalhq/carnival/hashutil"
	"github.com/carnivalhq/carnival/manifest"
)

// Failure describes a single mismatched or missing file.
type Failure struct {
	FileName string
	Reason   string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.FileName, f.Reason)
}

// Report is the overall verification outcome.
type Report struct {
	Failures []Failure
}

// Pass reports whether every file matched.
func (r *Report) Pass() bool {
	return len(r.Failures) == 0
}

// Verifier hashes files under root and compares them to a FileManifest.
type Verifier struct {
	Root    string
	Workers int
}

// New returns a Verifier with the given worker concurrency (at least 1).
func New(root string, workers int) *Verifier {
	if workers < 1 {
		workers = 1
	}
	return &Verifier{Root: root, Workers: workers}
}

// Verify streams every non-directory FileEntry through SHA-256 and
// compares against its recorded sha, using up to v.Workers goroutines.
func (v *Verifier) Verify(fm *manifest.FileManifest) (*Report, error) {
	type job struct {
		entry manifest.FileEntry
	}
	type outcome struct {
		failure *Failure
	}

	jobs := make(chan job)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < v.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- outcome{failure: v.checkOne(j.entry)}
			}
		}()
	}

	go func() {
		for _, e := range fm.Entries {
			if e.IsDirectory() {
				continue
			}
			jobs <- job{entry: e}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	report := &Report{}
	for o := range outcomes {
		if o.failure != nil {
			report.Failures = append(report.Failures, *o.failure)
		}
	}
	return report, nil
}

func (v *Verifier) checkOne(e manifest.FileEntry) *Failure {
	full := filepath.Join(v.Root, e.FileName)

	if _, err := os.Stat(full); os.IsNotExist(err) {
		return &Failure{FileName: e.FileName, Reason: "missing"}
	}

	sum, err := hashutil.File(full)
	if err != nil {
		_ = carnivalerrors.Wrap(err, carnivalerrors.FsRead, "verifier.checkOne")
		return &Failure{FileName: e.FileName, Reason: err.Error()}
	}
	if sum != e.SHA {
		return &Failure{FileName: e.FileName, Reason: fmt.Sprintf("hash mismatch: got %s want %s", sum, e.SHA)}
	}
	return nil
}
