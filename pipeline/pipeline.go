// Package pipeline drives one install or update operation: it plans
// the target tree, enqueues chunk work, fans out bounded concurrent
// fetchers behind a dual semaphore, verifies each chunk, and feeds the
// OrderedWriter.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/carnivalhq/carnival/carnivalerrors"
	"github.com/carnivalhq/carnival/carnivallog"
	"github.com/carnivalhq/carnival/chunkfetch"
	"github.com/carnivalhq/carnival/internal/stringset"
	"github.com/carnivalhq/carnival/manifest"
	"github.com/carnivalhq/carnival/writer"
)

// MaxChunkSize mirrors manifest.MaxChunkSize; duplicated as a pipeline
// constant so memory-permit math reads standalone.
const MaxChunkSize = manifest.MaxChunkSize

const defaultMaxMemoryUsage = 1 << 30 // 1 GiB

// Options parameterizes one pipeline run.
type Options struct {
	MaxDownloadWorkers int
	MaxMemoryUsage     int64
	SkipVerify         bool
}

// WithDefaults fills unset fields with spec.md §4.6 defaults:
// min(2*CPU_COUNT, 16) download workers and 1 GiB of memory budget.
func (o Options) WithDefaults() Options {
	if o.MaxDownloadWorkers <= 0 {
		workers := 2 * runtime.NumCPU()
		if workers > 16 {
			workers = 16
		}
		o.MaxDownloadWorkers = workers
	}
	if o.MaxMemoryUsage <= 0 {
		o.MaxMemoryUsage = defaultMaxMemoryUsage
	}
	return o
}

// Fetcher is the subset of chunkfetch.Fetcher the pipeline depends on.
type Fetcher interface {
	Fetch(ctx context.Context, namespace, idKey, osName, chunkSHA string) ([]byte, error)
}

// Result summarizes the outcome of a Run.
type Result struct {
	ChunksWritten   int
	ChunksCorrupted []string
}

// Pipeline drives one install/update operation against an install root.
type Pipeline struct {
	Root      string
	Fetcher   Fetcher
	Namespace string
	IDKey     string
	OS        string
	Opts      Options
}

// New returns a Pipeline rooted at root.
func New(root string, fetcher Fetcher, namespace, idKey, osName string, opts Options) *Pipeline {
	return &Pipeline{
		Root:      root,
		Fetcher:   fetcher,
		Namespace: namespace,
		IDKey:     idKey,
		OS:        osName,
		Opts:      opts.WithDefaults(),
	}
}

// Run executes Phases A through D against fm/cm, which may be either
// the full manifests (install) or a delta pair (update).
func (p *Pipeline) Run(ctx context.Context, fm *manifest.FileManifest, cm *manifest.ChunkManifest) (*Result, error) {
	chunkCounts, err := p.planTree(fm)
	if err != nil {
		return nil, err
	}

	plan, queue := p.buildPlanAndQueue(cm, chunkCounts)

	memPermits := int(p.Opts.MaxMemoryUsage / MaxChunkSize)
	if memPermits < 1 {
		memPermits = 1
	}
	memSem := make(chan struct{}, memPermits)
	dlSem := make(chan struct{}, p.Opts.MaxDownloadWorkers)

	messages := make(chan writer.Message)
	w := writer.New(p.Root, plan)

	var writerErr error
	var wwg sync.WaitGroup
	wwg.Add(1)
	go func() {
		defer wwg.Done()
		writerErr = w.Run(ctx, messages)
	}()

	var mu sync.Mutex
	result := &Result{}
	var firstFetchErr error
	var fetchWG sync.WaitGroup

	for _, c := range queue {
		select {
		case memSem <- struct{}{}:
		case <-ctx.Done():
			carnivallog.Warning(carnivallog.Pipeline, "cancelled while queueing %s chunk %d", c.FilePath, c.ID)
			close(messages)
			wwg.Wait()
			return result, carnivalerrors.Wrap(ctx.Err(), carnivalerrors.Cancelled, "pipeline.Run")
		}

		c := c
		fetchWG.Add(1)
		go func() {
			defer fetchWG.Done()
			released := false
			release := func() {
				if !released {
					released = true
					<-memSem
				}
			}

			dlSem <- struct{}{}
			data, err := p.Fetcher.Fetch(ctx, p.Namespace, p.IDKey, p.OS, c.SHA)
			<-dlSem
			if err != nil {
				carnivallog.Warning(carnivallog.Fetch, "fetch failed for %s: %s", c.SHA, err)
				mu.Lock()
				if firstFetchErr == nil {
					firstFetchErr = err
				}
				mu.Unlock()
				release()
				return
			}

			if !p.Opts.SkipVerify {
				if !verifyChunk(c.SHA, data) {
					mu.Lock()
					result.ChunksCorrupted = append(result.ChunksCorrupted, c.SHA)
					mu.Unlock()
					carnivallog.Warning(carnivallog.Verify, "chunk corrupted: %s", c.SHA)
					release()
					return
				}
			}

			select {
			case messages <- writer.Message{
				FilePath:   c.FilePath,
				ChunkIndex: uint32(c.ID),
				ChunkSHA:   c.SHA,
				Bytes:      data,
				Release:    release,
			}:
			case <-ctx.Done():
				release()
			}
		}()
	}

	fetchWG.Wait()
	close(messages)
	wwg.Wait()

	// A corrupted or unfetchable chunk necessarily leaves a gap in the
	// writer's plan, which makes w.Run return Truncated; report the
	// root cause instead of letting it degrade to that symptom.
	if len(result.ChunksCorrupted) > 0 {
		return result, carnivalerrors.New(carnivalerrors.ChunkCorrupted, "pipeline.Run")
	}
	if firstFetchErr != nil {
		return result, carnivalerrors.Wrap(firstFetchErr, carnivalerrors.ChunkFetch, "pipeline.Run")
	}
	if writerErr != nil {
		return result, writerErr
	}
	result.ChunksWritten = len(queue) - len(result.ChunksCorrupted)
	return result, nil
}

// planTree implements Phase A: delete Modified/Removed paths, create
// directories, truncate-create non-directory files, and record each
// file's expected chunk count for last-chunk detection.
func (p *Pipeline) planTree(fm *manifest.FileManifest) (map[string]uint32, error) {
	chunkCounts := make(map[string]uint32)
	madeDirs := stringset.New()

	for _, e := range fm.Entries {
		full := filepath.Join(p.Root, e.FileName)

		if e.ChangeTag != nil && (*e.ChangeTag == manifest.Modified || *e.ChangeTag == manifest.Removed) {
			if _, err := os.Stat(full); err == nil {
				if err := os.RemoveAll(full); err != nil {
					return nil, carnivalerrors.Wrap(err, carnivalerrors.FsPrepare, "pipeline.planTree")
				}
			}
			if *e.ChangeTag == manifest.Removed {
				continue
			}
		}

		if e.IsDirectory() {
			if err := os.MkdirAll(full, 0755); err != nil {
				return nil, carnivalerrors.Wrap(err, carnivalerrors.FsPrepare, "pipeline.planTree")
			}
			madeDirs.Add(full)
			continue
		}

		dir := filepath.Dir(full)
		if !madeDirs.Contains(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, carnivalerrors.Wrap(err, carnivalerrors.FsPrepare, "pipeline.planTree")
			}
			madeDirs.Add(dir)
		}
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, carnivalerrors.Wrap(err, carnivalerrors.FsPrepare, "pipeline.planTree")
		}
		_ = f.Close()

		if e.SizeInBytes > 0 {
			chunkCounts[e.FileName] = e.ChunkCount
		}
	}

	return chunkCounts, nil
}

// buildPlanAndQueue implements Phase B: scan the chunk manifest once,
// producing the writer's FIFO plan and the fetch work queue in lockstep.
func (p *Pipeline) buildPlanAndQueue(cm *manifest.ChunkManifest, chunkCounts map[string]uint32) ([]writer.PlanEntry, []manifest.ChunkEntry) {
	plan := make([]writer.PlanEntry, 0, len(cm.Entries))
	queue := make([]manifest.ChunkEntry, 0, len(cm.Entries))

	for _, c := range cm.Entries {
		count, ok := chunkCounts[c.FilePath]
		if !ok {
			continue
		}
		isLast := uint32(c.ID)+1 == count
		plan = append(plan, writer.PlanEntry{
			FilePath:      c.FilePath,
			ChunkIndex:    uint32(c.ID),
			ChunkSHA:      c.SHA,
			IsLastForFile: isLast,
		})
		queue = append(queue, c)
	}

	return plan, queue
}

func verifyChunk(chunkSHA string, data []byte) bool {
	want, ok := manifest.ChunkContentHash(chunkSHA)
	if !ok {
		carnivallog.Warning(carnivallog.Verify, "chunk sha %q has no content-hash segment, skipping verification", chunkSHA)
		return true
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) == want
}
