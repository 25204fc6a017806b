// Package chunkfetch retrieves individual chunks from the CDN by
// content hash over a pluggable transport.
package chunkfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

// Transport fetches the raw bytes for a chunk URL. Swappable so tests
// can substitute an in-memory fake without a network round trip.
type Transport interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPTransport issues a plain HTTP GET, mirroring the one-shot
// download style of helpers.DownloadFile / client.Download — no
// retries, errors surface to the caller.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns an HTTPTransport using http.DefaultClient
// when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Get performs the GET and returns the response body, leaving the
// caller responsible for closing it.
func (t *HTTPTransport) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("got status %q fetching %s", resp.Status, url)
	}
	return resp.Body, nil
}

// Fetcher builds chunk URLs for a CDN base and retrieves chunk bodies.
type Fetcher struct {
	ContentBase string
	Transport   Transport
}

// New returns a Fetcher rooted at contentBase, using transport (or an
// HTTPTransport over http.DefaultClient if transport is nil).
func New(contentBase string, transport Transport) *Fetcher {
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}
	return &Fetcher{ContentBase: contentBase, Transport: transport}
}

// URL deterministically builds the CDN URL for a chunk, per the wire
// layout: <content-base>/DevShowCaseSourceVolume/dev_fold_<namespace>/<idKey>/<os>/<chunkSHA>.
func (f *Fetcher) URL(namespace, idKey, osName, chunkSHA string) string {
	return fmt.Sprintf("%s/DevShowCaseSourceVolume/dev_fold_%s/%s/%s/%s",
		f.ContentBase, namespace, idKey, osName, chunkSHA)
}

// Fetch retrieves the bytes for chunkSHA. Cancellation of ctx abandons
// the in-flight request; the fetcher itself never retries.
func (f *Fetcher) Fetch(ctx context.Context, namespace, idKey, osName, chunkSHA string) ([]byte, error) {
	url := f.URL(namespace, idKey, osName, chunkSHA)
	body, err := f.Transport.Get(ctx, url)
	if err != nil {
		return nil, carnivalerrors.Wrap(err, carnivalerrors.ChunkFetch, "chunkfetch.Fetch")
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, carnivalerrors.Wrap(err, carnivalerrors.ChunkFetch, "chunkfetch.Fetch")
	}
	return data, nil
}

// FetchManifest retrieves a manifest or manifest_chunks CSV body for a
// given product version, using the same URL scheme with fileSuffix in
// place of a chunk sha (e.g. "<version>_manifest.csv").
func (f *Fetcher) FetchManifest(ctx context.Context, namespace, idKey, osName, fileSuffix string) ([]byte, error) {
	url := f.URL(namespace, idKey, osName, fileSuffix)
	body, err := f.Transport.Get(ctx, url)
	if err != nil {
		return nil, carnivalerrors.Wrap(err, carnivalerrors.ManifestFetch, "chunkfetch.FetchManifest")
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, carnivalerrors.Wrap(err, carnivalerrors.ManifestFetch, "chunkfetch.FetchManifest")
	}
	return data, nil
}
