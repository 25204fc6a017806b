// Package writer consumes arriving chunk bytes and appends them to
// their target files in strict, manifest-determined order regardless
// of the order fetches complete in.
package writer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

// PlanEntry is one step of the write plan: the chunk expected next,
// and whether appending it closes the file.
type PlanEntry struct {
	FilePath      string
	ChunkIndex    uint32
	ChunkSHA      string
	IsLastForFile bool
}

// Message is one arrived, verified chunk awaiting its turn to be
// appended. Release must release the memory permit backing Bytes; it
// is called exactly once, when the writer consumes the message.
type Message struct {
	FilePath   string
	ChunkIndex uint32
	ChunkSHA   string
	Bytes      []byte
	Release    func()
}

type bufferKey struct {
	index uint32
	sha   string
}

// Writer drains a channel of Messages against a pre-built write plan,
// holding out-of-order arrivals in an in-memory buffer until the plan
// reaches their key. It owns the plan and the per-file handle map
// exclusively — no other goroutine may touch them.
type Writer struct {
	root    string
	plan    []PlanEntry
	pos     int
	buffer  map[bufferKey]Message
	handles map[string]*os.File
}

// New returns a Writer rooted at root, draining plan in order.
func New(root string, plan []PlanEntry) *Writer {
	return &Writer{
		root:    root,
		plan:    plan,
		buffer:  make(map[bufferKey]Message),
		handles: make(map[string]*os.File),
	}
}

// Run drains messages until the write plan is exhausted. If messages
// closes while the plan still has entries, Run fails with kind
// Truncated. Files targeted by the plan must already exist (Phase A);
// Run only appends.
func (w *Writer) Run(ctx context.Context, messages <-chan Message) error {
	defer w.closeAll()

	for w.pos < len(w.plan) {
		head := w.plan[w.pos]
		key := bufferKey{head.ChunkIndex, head.ChunkSHA}

		if msg, ok := w.buffer[key]; ok {
			delete(w.buffer, key)
			if err := w.append(head.FilePath, msg.Bytes); err != nil {
				return carnivalerrors.Wrap(err, carnivalerrors.FsWrite, "writer.Run")
			}
			if msg.Release != nil {
				msg.Release()
			}
			if head.IsLastForFile {
				w.closeHandle(head.FilePath)
			}
			w.pos++
			continue
		}

		select {
		case msg, ok := <-messages:
			if !ok {
				return carnivalerrors.New(carnivalerrors.Truncated, "writer.Run")
			}
			w.buffer[bufferKey{msg.ChunkIndex, msg.ChunkSHA}] = msg
		case <-ctx.Done():
			return carnivalerrors.Wrap(ctx.Err(), carnivalerrors.Cancelled, "writer.Run")
		}
	}

	return nil
}

func (w *Writer) append(filePath string, data []byte) error {
	f, ok := w.handles[filePath]
	if !ok {
		full := filepath.Join(w.root, filePath)
		var err error
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		w.handles[filePath] = f
	}
	_, err := f.Write(data)
	return err
}

func (w *Writer) closeHandle(filePath string) {
	if f, ok := w.handles[filePath]; ok {
		_ = f.Close()
		delete(w.handles, filePath)
	}
}

func (w *Writer) closeAll() {
	for path, f := range w.handles {
		_ = f.Close()
		delete(w.handles, path)
	}
}
