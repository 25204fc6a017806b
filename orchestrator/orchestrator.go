// Package orchestrator wires the manifest, delta, pipeline, and
// verifier components into the install/update/verify/uninstall entry
// points a CLI calls.
package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/carnivalhq/carnival/carnivalconfig"
	"github.com/carnivalhq/carnival/carnivalerrors"
	"github.com/carnivalhq/carnival/carnivallog"
	"github.com/carnivalhq/carnival/chunkfetch"
	"github.com/carnivalhq/carnival/delta"
	"github.com/carnivalhq/carnival/installstate"
	"github.com/carnivalhq/carnival/manifest"
	"github.com/carnivalhq/carnival/manifeststore"
	"github.com/carnivalhq/carnival/pipeline"
	"github.com/carnivalhq/carnival/product"
	"github.com/carnivalhq/carnival/verifier"
)

// Orchestrator ties together the config/library/state stores with the
// transfer pipeline to implement whole install/update/verify/uninstall
// operations for one slug at a time.
type Orchestrator struct {
	ConfigDir string
	Config    *carnivalconfig.AppConfig
	Library   *product.LibraryStore
	State     *installstate.Store
	Manifests *manifeststore.Store
	Fetcher   *chunkfetch.Fetcher

	Out *os.File
}

// New wires an Orchestrator from the application's config directory.
func New(configDir string) (*Orchestrator, error) {
	cfg, err := carnivalconfig.Load(configDir)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		ConfigDir: configDir,
		Config:    cfg,
		Library:   product.NewLibraryStore(configDir),
		State:     installstate.New(configDir),
		Manifests: manifeststore.New(configDir),
		Fetcher:   chunkfetch.New(cfg.Network.ContentBase, nil),
		Out:       os.Stdout,
	}, nil
}

func (o *Orchestrator) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxDownloadWorkers: o.Config.Network.MaxDownloadWorkers,
		MaxMemoryUsage:     o.Config.Network.MaxMemoryUsage,
	}
}

func (o *Orchestrator) resolveProductVersion(slug string, osName product.OS, version string) (*product.Product, product.ProductVersion, error) {
	p, err := o.Library.Get(slug)
	if err != nil {
		return nil, product.ProductVersion{}, err
	}

	if version == "" {
		pv, ok := p.LatestVersion(osName)
		if !ok {
			return nil, product.ProductVersion{}, carnivalerrors.New(carnivalerrors.VersionNotFound, "orchestrator.resolveProductVersion")
		}
		return p, pv, nil
	}

	pv, ok := p.Version(version, osName)
	if !ok {
		return nil, product.ProductVersion{}, carnivalerrors.New(carnivalerrors.VersionNotFound, "orchestrator.resolveProductVersion")
	}
	return p, pv, nil
}

// fetchManifestPair downloads (or serves from cache) the file and
// chunk manifest CSVs for one product version, decoding both.
func (o *Orchestrator) fetchManifestPair(ctx context.Context, p *product.Product, pv product.ProductVersion) (*manifest.FileManifest, *manifest.ChunkManifest, error) {
	fmBytes, err := o.getOrFetchManifest(ctx, p, pv, manifeststore.KindManifest, pv.Version+"_manifest.csv")
	if err != nil {
		return nil, nil, err
	}
	cmBytes, err := o.getOrFetchManifest(ctx, p, pv, manifeststore.KindManifestChunks, pv.Version+"_manifest_chunks.csv")
	if err != nil {
		return nil, nil, err
	}

	fm, err := manifest.DecodeFileManifest(fmBytes)
	if err != nil {
		return nil, nil, carnivalerrors.Wrap(err, carnivalerrors.ManifestDecode, "orchestrator.fetchManifestPair")
	}
	cm, err := manifest.DecodeChunkManifest(cmBytes)
	if err != nil {
		return nil, nil, carnivalerrors.Wrap(err, carnivalerrors.ManifestDecode, "orchestrator.fetchManifestPair")
	}
	return fm, cm, nil
}

func (o *Orchestrator) getOrFetchManifest(ctx context.Context, p *product.Product, pv product.ProductVersion, kind manifeststore.Kind, suffix string) ([]byte, error) {
	if data, err := o.Manifests.Read(p.Slug, pv.Version, kind); err == nil {
		return data, nil
	}

	data, err := o.Fetcher.FetchManifest(ctx, p.Namespace, p.ContentKey, string(pv.OS), suffix)
	if err != nil {
		return nil, err
	}
	if err := o.Manifests.Write(p.Slug, pv.Version, kind, data); err != nil {
		carnivallog.Warning(carnivallog.Manifest, "failed to cache manifest %s/%s/%s: %s", p.Slug, pv.Version, kind, err)
	}
	return data, nil
}

// Install downloads and assembles slug's latest (or pinned) version
// for osName into path, from scratch.
func (o *Orchestrator) Install(ctx context.Context, slug string, osName product.OS, version, path string, opts *pipeline.Options) (*pipeline.Result, error) {
	sw := &stopWatch{}

	p, pv, err := o.resolveProductVersion(slug, osName, version)
	if err != nil {
		return nil, err
	}

	sw.Start("fetch manifests")
	fm, cm, err := o.fetchManifestPair(ctx, p, pv)
	sw.Stop()
	if err != nil {
		return nil, err
	}

	effective := o.pipelineOptions()
	if opts != nil {
		effective = *opts
	}

	sw.Start("transfer")
	pl := pipeline.New(path, o.Fetcher, p.Namespace, p.ContentKey, string(osName), effective)
	result, err := pl.Run(ctx, fm, cm)
	sw.Stop()
	sw.WriteSummary(o.Out)
	if err != nil {
		return result, err
	}

	if err := o.State.Put(slug, installstate.Record{InstallPath: path, Version: pv.Version, OS: osName}); err != nil {
		return result, carnivalerrors.Wrap(err, carnivalerrors.FsWrite, "orchestrator.Install")
	}
	carnivallog.Info(carnivallog.Orchestrator, "installed %s %s (%s) to %s", slug, pv.Version, osName, path)
	return result, nil
}

// Update brings an already-installed slug up to version (or the
// latest), computing and transferring only the delta.
func (o *Orchestrator) Update(ctx context.Context, slug string, version string, opts *pipeline.Options) (*pipeline.Result, error) {
	rec, ok, err := o.State.Get(slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, carnivalerrors.New(carnivalerrors.NotInLibrary, "orchestrator.Update")
	}

	p, newPV, err := o.resolveProductVersion(slug, rec.OS, version)
	if err != nil {
		return nil, err
	}
	_, oldPV, err := o.resolveProductVersion(slug, rec.OS, rec.Version)
	if err != nil {
		return nil, err
	}

	sw := &stopWatch{}
	sw.Start("fetch manifests")
	oldFM, _, err := o.fetchManifestPair(ctx, p, oldPV)
	if err != nil {
		sw.Stop()
		return nil, err
	}
	newFM, newCM, err := o.fetchManifestPair(ctx, p, newPV)
	sw.Stop()
	if err != nil {
		return nil, err
	}

	deltaVersion := manifeststore.DeltaVersion(oldPV.Version, newPV.Version)
	// Reuse the delta manifests cached by an earlier attempt at this update.
	var deltaFM *manifest.DeltaFileManifest
	var deltaCM *manifest.ChunkManifest
	fmData, fmErr := o.Manifests.Read(p.Slug, deltaVersion, manifeststore.KindManifestDelta)
	cmData, cmErr := o.Manifests.Read(p.Slug, deltaVersion, manifeststore.KindManifestDeltaChunks)
	if fmErr == nil && cmErr == nil {
		deltaFM, fmErr = manifest.DecodeFileManifest(fmData)
		deltaCM, cmErr = manifest.DecodeChunkManifest(cmData)
	}
	if fmErr != nil || cmErr != nil {
		deltaFM = delta.ComputeFileDelta(oldFM, newFM)
		deltaCM = delta.ComputeChunkDelta(deltaFM, newCM)
	}
	if data, err := manifest.EncodeFileManifest(deltaFM); err == nil {
		_ = o.Manifests.Write(p.Slug, deltaVersion, manifeststore.KindManifestDelta, data)
	}
	if data, err := manifest.EncodeChunkManifest(deltaCM); err == nil {
		_ = o.Manifests.Write(p.Slug, deltaVersion, manifeststore.KindManifestDeltaChunks, data)
	}

	effective := o.pipelineOptions()
	if opts != nil {
		effective = *opts
	}

	sw.Start("transfer")
	pl := pipeline.New(rec.InstallPath, o.Fetcher, p.Namespace, p.ContentKey, string(rec.OS), effective)
	result, err := pl.Run(ctx, deltaFM, deltaCM)
	sw.Stop()
	sw.WriteSummary(o.Out)
	if err != nil {
		return result, err
	}

	if err := o.State.Put(slug, installstate.Record{InstallPath: rec.InstallPath, Version: newPV.Version, OS: rec.OS}); err != nil {
		return result, carnivalerrors.Wrap(err, carnivalerrors.FsWrite, "orchestrator.Update")
	}
	carnivallog.Info(carnivallog.Orchestrator, "updated %s %s -> %s", slug, oldPV.Version, newPV.Version)
	return result, nil
}

// Verify checks an installed slug's files against its recorded manifest.
func (o *Orchestrator) Verify(ctx context.Context, slug string, workers int) (*verifier.Report, error) {
	rec, ok, err := o.State.Get(slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, carnivalerrors.New(carnivalerrors.NotInLibrary, "orchestrator.Verify")
	}

	p, pv, err := o.resolveProductVersion(slug, rec.OS, rec.Version)
	if err != nil {
		return nil, err
	}
	fm, _, err := o.fetchManifestPair(ctx, p, pv)
	if err != nil {
		return nil, err
	}

	return verifier.New(rec.InstallPath, workers).Verify(fm)
}

// Uninstall removes slug's install directory and state record.
func (o *Orchestrator) Uninstall(slug string) error {
	rec, ok, err := o.State.Get(slug)
	if err != nil {
		return err
	}
	if !ok {
		return carnivalerrors.New(carnivalerrors.NotInLibrary, "orchestrator.Uninstall")
	}
	if err := os.RemoveAll(rec.InstallPath); err != nil {
		return carnivalerrors.Wrap(err, carnivalerrors.FsWrite, "orchestrator.Uninstall")
	}
	return o.State.Remove(slug)
}

// UpdateCandidate is one installed slug whose latest enabled version
// differs from the installed one.
type UpdateCandidate struct {
	Slug           string
	CurrentVersion string
	LatestVersion  string
}

// ListUpdates reports every installed slug whose latest enabled version
// for its OS differs from the installed version.
func (o *Orchestrator) ListUpdates() ([]UpdateCandidate, error) {
	installs, err := o.State.All()
	if err != nil {
		return nil, err
	}

	var candidates []UpdateCandidate
	for slug, rec := range installs {
		p, err := o.Library.Get(slug)
		if err != nil {
			carnivallog.Warning(carnivallog.Orchestrator, "skipping %s: %s", slug, err)
			continue
		}
		latest, ok := p.LatestVersion(rec.OS)
		if !ok || latest.Version == rec.Version {
			continue
		}
		candidates = append(candidates, UpdateCandidate{
			Slug:           slug,
			CurrentVersion: rec.Version,
			LatestVersion:  latest.Version,
		})
	}
	return candidates, nil
}

// Info returns a dry-run summary of what installing slug would transfer.
func (o *Orchestrator) Info(ctx context.Context, slug string, osName product.OS, version string) (string, error) {
	p, pv, err := o.resolveProductVersion(slug, osName, version)
	if err != nil {
		return "", err
	}
	fm, _, err := o.fetchManifestPair(ctx, p, pv)
	if err != nil {
		return "", err
	}

	var totalBytes uint64
	var fileCount int
	for _, e := range fm.Entries {
		if e.IsDirectory() {
			continue
		}
		fileCount++
		totalBytes += e.SizeInBytes
	}
	return fmt.Sprintf("%s %s (%s): %d files, %d bytes", p.Name, pv.Version, osName, fileCount, totalBytes), nil
}
