package manifest

import "strings"

// ChunkContentHash extracts the trailing underscore-delimited SHA-256 hex
// segment from a chunk entry's composite SHA field
// ("<file-digest>_<chunk-index>_<chunk-content-hash>"). It returns ok=false
// when the field has fewer than three underscore-segments, matching the
// upstream quirk noted in spec.md §9 where verification is skipped rather
// than treated as an error.
func ChunkContentHash(chunkSHA string) (hash string, ok bool) {
	idx := strings.LastIndex(chunkSHA, "_")
	if idx < 0 || idx == len(chunkSHA)-1 {
		return "", false
	}
	segment := chunkSHA[idx+1:]
	// Require at least two underscore-segments before the hash to match the
	// documented "<file-digest>_<chunk-index>_<hash>" shape.
	if strings.Count(chunkSHA[:idx], "_") < 1 {
		return "", false
	}
	return segment, true
}
