// Package installstate persists the set of installed products — slug
// to {install path, version, os} — as a single TOML file, mirroring
// the teacher's TOML-backed MixState.
package installstate

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/carnivalhq/carnival/product"
)

const stateFileName = "installed.toml"
const stateFormatVersion = "1"

// Record is one installed product.
type Record struct {
	InstallPath string     `toml:"install_path"`
	Version     string     `toml:"version"`
	OS          product.OS `toml:"os"`
}

type fileFormat struct {
	FormatVersion string            `toml:"format_version"`
	Installs      map[string]Record `toml:"installs"`
}

// Store reads and writes installstate.Record entries to disk.
type Store struct {
	path string
}

// New returns a Store rooted at configDir/installed.toml.
func New(configDir string) *Store {
	return &Store{path: filepath.Join(configDir, stateFileName)}
}

func (s *Store) load() (fileFormat, error) {
	ff := fileFormat{FormatVersion: stateFormatVersion, Installs: map[string]Record{}}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ff, nil
	}
	if _, err := toml.DecodeFile(s.path, &ff); err != nil {
		return fileFormat{}, errors.Wrap(err, "installstate.load")
	}
	if ff.Installs == nil {
		ff.Installs = map[string]Record{}
	}
	return ff, nil
}

func (s *Store) save(ff fileFormat) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "installstate.save")
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "installstate.save")
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(ff)
}

// Get returns the Record for slug, if installed.
func (s *Store) Get(slug string) (Record, bool, error) {
	ff, err := s.load()
	if err != nil {
		return Record{}, false, err
	}
	r, ok := ff.Installs[slug]
	return r, ok, nil
}

// All returns every installed slug -> Record.
func (s *Store) All() (map[string]Record, error) {
	ff, err := s.load()
	if err != nil {
		return nil, err
	}
	return ff.Installs, nil
}

// Put records or replaces the install for slug.
func (s *Store) Put(slug string, r Record) error {
	ff, err := s.load()
	if err != nil {
		return err
	}
	ff.Installs[slug] = r
	return s.save(ff)
}

// Remove deletes the record for slug, if present.
func (s *Store) Remove(slug string) error {
	ff, err := s.load()
	if err != nil {
		return err
	}
	delete(ff.Installs, slug)
	return s.save(ff)
}
