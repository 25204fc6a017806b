// Package product defines the catalog types (Product, ProductVersion)
// the orchestrator resolves a slug against, and a local on-disk cache
// of that catalog backed by an INI file.
package product

// OS identifies one target platform.
type OS string

// Recognized target platforms, per spec.md §6.
const (
	Windows OS = "win"
	Linux   OS = "lin"
	Mac     OS = "mac"
)

// ProductVersion is one installable build of a Product for one OS.
type ProductVersion struct {
	Version      string
	OS           OS
	BuildDate    int64
	ReleaseNotes string
	Enabled      bool
	Status       int
}

// Product is a catalog entry identified by a stable slug.
type Product struct {
	Slug       string
	Namespace  string
	ContentKey string
	Name       string
	ID         int
	Versions   []ProductVersion
}

// LatestVersion returns the enabled ProductVersion with the maximum
// BuildDate among those matching osName, per spec.md §3. Returns false
// if none match.
func (p *Product) LatestVersion(osName OS) (ProductVersion, bool) {
	var latest ProductVersion
	found := false
	for _, v := range p.Versions {
		if v.OS != osName || !v.Enabled {
			continue
		}
		if !found || v.BuildDate > latest.BuildDate {
			latest = v
			found = true
		}
	}
	return latest, found
}

// Version returns the ProductVersion matching version and osName.
func (p *Product) Version(version string, osName OS) (ProductVersion, bool) {
	for _, v := range p.Versions {
		if v.Version == version && v.OS == osName {
			return v, true
		}
	}
	return ProductVersion{}, false
}
