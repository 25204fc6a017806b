package product

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

const libraryFileName = "library.ini"

const versionKeyPrefix = "Version."

// LibraryStore is a filesystem-backed, INI-encoded cache of the
// products a user has installed or browsed, so the orchestrator can
// resolve a slug without a network round trip, mirroring the teacher's
// use of go-ini for flat keyed catalog data (groups.ini, server.ini).
type LibraryStore struct {
	path string
}

// NewLibraryStore returns a LibraryStore rooted at configDir/library.ini.
func NewLibraryStore(configDir string) *LibraryStore {
	return &LibraryStore{path: filepath.Join(configDir, libraryFileName)}
}

// Get loads the Product registered under slug.
func (s *LibraryStore) Get(slug string) (*Product, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, carnivalerrors.New(carnivalerrors.NotInLibrary, "product.Get")
	}

	cfg, err := ini.InsensitiveLoad(s.path)
	if err != nil {
		return nil, carnivalerrors.Wrap(err, carnivalerrors.NotInLibrary, "product.Get")
	}

	if !cfg.HasSection(slug) {
		return nil, carnivalerrors.New(carnivalerrors.NotInLibrary, "product.Get")
	}

	return sectionToProduct(slug, cfg.Section(slug))
}

// All returns every Product registered in the library.
func (s *LibraryStore) All() ([]*Product, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	cfg, err := ini.InsensitiveLoad(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "product.All")
	}

	var products []*Product
	for _, name := range cfg.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		p, err := sectionToProduct(name, cfg.Section(name))
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Put persists p, overwriting any existing entry for its slug.
func (s *LibraryStore) Put(p *Product) error {
	cfg := ini.Empty()
	if _, err := os.Stat(s.path); err == nil {
		if cfg, err = ini.InsensitiveLoad(s.path); err != nil {
			return errors.Wrap(err, "product.Put")
		}
		cfg.DeleteSection(p.Slug)
	}

	sec, err := cfg.NewSection(p.Slug)
	if err != nil {
		return errors.Wrap(err, "product.Put")
	}
	sec.NewKey("Developer", p.Namespace)
	sec.NewKey("ContentKey", p.ContentKey)
	sec.NewKey("Name", p.Name)
	sec.NewKey("ID", strconv.Itoa(p.ID))

	for _, v := range p.Versions {
		key := fmt.Sprintf("%s%s.%s", versionKeyPrefix, v.OS, v.Version)
		value := fmt.Sprintf("%d|%s|%t|%d", v.BuildDate, v.ReleaseNotes, v.Enabled, v.Status)
		sec.NewKey(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "product.Put")
	}
	return cfg.SaveTo(s.path)
}

func sectionToProduct(slug string, sec *ini.Section) (*Product, error) {
	id, _ := strconv.Atoi(sec.Key("ID").Value())
	p := &Product{
		Slug:       slug,
		Namespace:  sec.Key("Developer").Value(),
		ContentKey: sec.Key("ContentKey").Value(),
		Name:       sec.Key("Name").Value(),
		ID:         id,
	}

	for _, key := range sec.Keys() {
		// InsensitiveLoad lowercases key names, so match the prefix without regard to case.
		if !strings.HasPrefix(strings.ToLower(key.Name()), strings.ToLower(versionKeyPrefix)) {
			continue
		}
		rest := key.Name()[len(versionKeyPrefix):]
		parts := strings.SplitN(rest, ".", 2)
		if len(parts) != 2 {
			continue
		}
		v, err := parseVersionValue(OS(parts[0]), parts[1], key.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "product: malformed version key %q", key.Name())
		}
		p.Versions = append(p.Versions, v)
	}

	return p, nil
}

func parseVersionValue(osName OS, version, value string) (ProductVersion, error) {
	fields := strings.SplitN(value, "|", 4)
	if len(fields) != 4 {
		return ProductVersion{}, fmt.Errorf("expected 4 pipe-separated fields, got %d", len(fields))
	}
	buildDate, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return ProductVersion{}, err
	}
	enabled, err := strconv.ParseBool(fields[2])
	if err != nil {
		return ProductVersion{}, err
	}
	status, err := strconv.Atoi(fields[3])
	if err != nil {
		return ProductVersion{}, err
	}
	return ProductVersion{
		Version:      version,
		OS:           osName,
		BuildDate:    buildDate,
		ReleaseNotes: fields[1],
		Enabled:      enabled,
		Status:       status,
	}, nil
}
