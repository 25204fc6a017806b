package manifest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var fileManifestHeader = []string{"Size in Bytes", "Chunks", "SHA", "Flags", "File Name", "Change Tag"}
var chunkManifestHeader = []string{"ID", "Filepath", "Chunk SHA"}

// DecodeFileManifest parses a file-manifest CSV. The trailing "Change Tag"
// column is optional; when absent, every entry's ChangeTag is left nil.
func DecodeFileManifest(data []byte) (*FileManifest, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &DecodeError{Row: 0, Reason: "empty file manifest"}
		}
		return nil, &DecodeError{Row: 0, Reason: err.Error()}
	}
	hasChangeTag, err := checkFileHeader(header)
	if err != nil {
		return nil, err
	}

	fm := &FileManifest{}
	row := 1
	for {
		fields, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, &DecodeError{Row: row, Reason: rerr.Error()}
		}

		entry, derr := decodeFileEntryRow(fields, hasChangeTag, row)
		if derr != nil {
			return nil, derr
		}
		fm.Entries = append(fm.Entries, *entry)
		row++
	}
	return fm, nil
}

func checkFileHeader(header []string) (hasChangeTag bool, err error) {
	if len(header) == len(fileManifestHeader)-1 {
		for i, h := range fileManifestHeader[:len(fileManifestHeader)-1] {
			if header[i] != h {
				return false, &DecodeError{Row: 0, Reason: fmt.Sprintf("unexpected header column %d: %q", i, header[i])}
			}
		}
		return false, nil
	}
	if len(header) == len(fileManifestHeader) {
		for i, h := range fileManifestHeader {
			if header[i] != h {
				return false, &DecodeError{Row: 0, Reason: fmt.Sprintf("unexpected header column %d: %q", i, header[i])}
			}
		}
		return true, nil
	}
	return false, &DecodeError{Row: 0, Reason: fmt.Sprintf("unexpected number of header columns: %d", len(header))}
}

func decodeFileEntryRow(fields []string, hasChangeTag bool, row int) (*FileEntry, error) {
	wantCols := len(fileManifestHeader) - 1
	if hasChangeTag {
		wantCols = len(fileManifestHeader)
	}
	if len(fields) != wantCols {
		return nil, &DecodeError{Row: row, Reason: fmt.Sprintf("expected %d columns, got %d", wantCols, len(fields))}
	}

	size, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, &DecodeError{Row: row, Reason: "invalid Size in Bytes: " + err.Error()}
	}
	chunks, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return nil, &DecodeError{Row: row, Reason: "invalid Chunks: " + err.Error()}
	}
	sha := fields[2]
	flags, err := strconv.ParseUint(fields[3], 10, 8)
	if err != nil {
		return nil, &DecodeError{Row: row, Reason: "invalid Flags: " + err.Error()}
	}
	name := encodeLatin1([]byte(fields[4]))

	entry := &FileEntry{
		SizeInBytes: size,
		ChunkCount:  uint32(chunks),
		SHA:         sha,
		Flags:       uint8(flags),
		FileName:    name,
	}

	if hasChangeTag && fields[5] != "" {
		tag := ChangeTag(fields[5])
		switch tag {
		case Added, Modified, Removed:
		default:
			return nil, &DecodeError{Row: row, Reason: "invalid Change Tag: " + fields[5]}
		}
		entry.ChangeTag = &tag
	}

	return entry, nil
}

// EncodeFileManifest emits a file-manifest CSV. The "Change Tag" column is
// included iff at least one entry carries a non-nil tag.
func EncodeFileManifest(fm *FileManifest) ([]byte, error) {
	includeTag := false
	for _, e := range fm.Entries {
		if e.ChangeTag != nil {
			includeTag = true
			break
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := fileManifestHeader
	if !includeTag {
		header = fileManifestHeader[:len(fileManifestHeader)-1]
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range fm.Entries {
		rawName := string(decodeLatin1(e.FileName))
		record := []string{
			strconv.FormatUint(e.SizeInBytes, 10),
			strconv.FormatUint(uint64(e.ChunkCount), 10),
			e.SHA,
			strconv.FormatUint(uint64(e.Flags), 10),
			rawName,
		}
		if includeTag {
			tag := ""
			if e.ChangeTag != nil {
				tag = string(*e.ChangeTag)
			}
			record = append(record, tag)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeChunkManifest parses a chunk-manifest CSV.
func DecodeChunkManifest(data []byte) (*ChunkManifest, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(chunkManifestHeader)

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &DecodeError{Row: 0, Reason: "empty chunk manifest"}
		}
		return nil, &DecodeError{Row: 0, Reason: err.Error()}
	}
	for i, h := range chunkManifestHeader {
		if header[i] != h {
			return nil, &DecodeError{Row: 0, Reason: fmt.Sprintf("unexpected header column %d: %q", i, header[i])}
		}
	}

	cm := &ChunkManifest{}
	row := 1
	for {
		fields, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, &DecodeError{Row: row, Reason: rerr.Error()}
		}

		id, perr := strconv.ParseUint(fields[0], 10, 16)
		if perr != nil {
			return nil, &DecodeError{Row: row, Reason: "invalid ID: " + perr.Error()}
		}
		cm.Entries = append(cm.Entries, ChunkEntry{
			ID:       uint16(id),
			FilePath: encodeLatin1([]byte(fields[1])),
			SHA:      fields[2],
		})
		row++
	}
	return cm, nil
}

// EncodeChunkManifest emits a chunk-manifest CSV.
func EncodeChunkManifest(cm *ChunkManifest) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(chunkManifestHeader); err != nil {
		return nil, err
	}
	for _, e := range cm.Entries {
		rawPath := string(decodeLatin1(e.FilePath))
		record := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			rawPath,
			e.SHA,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
