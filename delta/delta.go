// Package delta computes the file-level and chunk-level delta manifests
// used to turn a full reinstall into an incremental update.
package delta

import (
	"github.com/carnivalhq/carnival/internal/stringset"
	"github.com/carnivalhq/carnival/manifest"
)

// ComputeFileDelta builds a DeltaFileManifest from an old and a new
// FileManifest. Added/Modified rows (from new, in new's order) are emitted
// first, followed by Removed rows (from old, in old's order), per spec.md
// §4.3 — a deliberate ordering that ComputeChunkDelta relies on to know
// when it has seen the last Added/Modified file.
func ComputeFileDelta(oldFM, newFM *manifest.FileManifest) *manifest.DeltaFileManifest {
	newNames := stringset.New()
	for _, e := range newFM.Entries {
		newNames.Add(e.FileName)
	}

	delta := &manifest.DeltaFileManifest{}

	for _, n := range newFM.Entries {
		old := oldFM.ByName(n.FileName)
		switch {
		case old == nil:
			delta.Entries = append(delta.Entries, taggedCopy(n, manifest.Added))
		case old.SHA != n.SHA:
			delta.Entries = append(delta.Entries, taggedCopy(n, manifest.Modified))
		}
		// else: unchanged, omitted.
	}

	for _, o := range oldFM.Entries {
		if !newNames.Contains(o.FileName) {
			delta.Entries = append(delta.Entries, taggedCopy(o, manifest.Removed))
		}
	}

	return delta
}

func taggedCopy(e manifest.FileEntry, tag manifest.ChangeTag) manifest.FileEntry {
	cp := e
	t := tag
	cp.ChangeTag = &t
	return cp
}

// ComputeChunkDelta restricts newCM to the chunks of files tagged Added or
// Modified in deltaFM, preserving newCM's chunk order, per spec.md §4.3.
func ComputeChunkDelta(deltaFM *manifest.DeltaFileManifest, newCM *manifest.ChunkManifest) *manifest.ChunkManifest {
	result := &manifest.ChunkManifest{}
	cursor := 0

	advancePastSkippable := func() {
		for cursor < len(deltaFM.Entries) {
			e := deltaFM.Entries[cursor]
			if e.IsDirectory() || e.SizeInBytes == 0 {
				cursor++
				continue
			}
			break
		}
	}

	for _, c := range newCM.Entries {
		if cursor >= len(deltaFM.Entries) {
			break
		}
		if tag := deltaFM.Entries[cursor].ChangeTag; tag != nil && *tag == manifest.Removed {
			break
		}

		advancePastSkippable()
		if cursor >= len(deltaFM.Entries) {
			break
		}
		if tag := deltaFM.Entries[cursor].ChangeTag; tag != nil && *tag == manifest.Removed {
			break
		}

		cur := &deltaFM.Entries[cursor]
		if c.FilePath != cur.FileName {
			continue
		}

		result.Entries = append(result.Entries, c)
		if uint32(c.ID)+1 == cur.ChunkCount {
			cursor++
		}
	}

	return result
}
