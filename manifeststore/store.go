// Package manifeststore persists raw manifest CSV bytes to a per-slug cache
// directory, keyed by version and kind.
package manifeststore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Kind identifies which of the four manifest CSVs a cache entry holds.
type Kind string

// The four manifest kinds cached per slug.
const (
	KindManifest            Kind = "manifest"
	KindManifestChunks      Kind = "manifest_chunks"
	KindManifestDelta       Kind = "manifest_delta"
	KindManifestDeltaChunks Kind = "manifest_delta_chunks"
)

// ErrNotFound is returned by Read when no cached bytes exist for the key.
var ErrNotFound = errors.New("manifeststore: not found")

// Store is a filesystem-backed cache rooted at a config directory's
// "manifests" subdirectory, one directory per slug.
type Store struct {
	root string
}

// New creates a Store rooted at configDir/manifests.
func New(configDir string) *Store {
	return &Store{root: filepath.Join(configDir, "manifests")}
}

// path returns the on-disk path for slug/version/kind per the key schema
// "<config>/manifests/<slug>/<version>_<kind>.csv". For delta kinds, version
// must already be formatted as "<old>_<new>" by the caller.
func (s *Store) path(slug, version string, kind Kind) string {
	filename := fmt.Sprintf("%s_%s.csv", version, kind)
	return filepath.Join(s.root, slug, filename)
}

// DeltaVersion formats the composite version key used for delta manifest
// kinds: "<old_version>_<new_version>".
func DeltaVersion(oldVersion, newVersion string) string {
	return oldVersion + "_" + newVersion
}

// Read returns the raw bytes cached for slug/version/kind, or ErrNotFound.
func (s *Store) Read(slug, version string, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(s.path(slug, version, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "manifeststore: read %s/%s/%s", slug, version, kind)
	}
	return data, nil
}

// Write stores the exact bytes produced or received for slug/version/kind,
// creating intermediate directories as needed. The bytes are written to a
// temporary file first and only renamed into place on success, so a reader
// never observes a partially-written cache entry.
func (s *Store) Write(slug, version string, kind Kind, data []byte) (err error) {
	path := s.path(slug, version, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "manifeststore: prepare directory for %s/%s/%s", slug, version, kind)
	}

	tempPath := path + ".tmp"
	defer func() {
		if err != nil {
			_ = os.Remove(tempPath)
		}
	}()
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "manifeststore: write %s/%s/%s", slug, version, kind)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Wrapf(err, "manifeststore: finalize %s/%s/%s", slug, version, kind)
	}
	return nil
}

// Has reports whether bytes are cached for slug/version/kind.
func (s *Store) Has(slug, version string, kind Kind) bool {
	_, err := os.Stat(s.path(slug, version, kind))
	return err == nil
}
