// Package assets fetches the static images and vector icons a report
// decorates its pages with.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/ir/semantic"
)

var (
	ErrNotFound    = errors.New("assets: not found")
	ErrTooLarge    = errors.New("assets: asset exceeds size limit")
	ErrUnsupported = errors.New("assets: unsupported reference")
	ErrEmptyRef    = errors.New("assets: empty reference")
)

// DefaultMaxBytes caps a single asset.
const DefaultMaxBytes int64 = 10 << 20

// Fetcher resolves an asset reference to its bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ref string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, ref string) ([]byte, error) { return f(ctx, ref) }

// HTTPFetcher GETs http and https references.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	agent    string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithMaxBytes caps the response body size.
func WithMaxBytes(n int64) HTTPOption {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// NewHTTPFetcher returns a fetcher with a 30 second client timeout.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		agent:    "reportkit/1.0",
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.agent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: get %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("assets: get %s: status %d", ref, resp.StatusCode)
	}
	return readLimited(resp.Body, f.maxBytes, ref)
}

// FileFetcher reads references relative to Root. References cannot escape
// Root.
type FileFetcher struct {
	Root     string
	MaxBytes int64
}

func (f FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := strings.TrimPrefix(ref, "file://")
	name := filepath.Join(f.Root, filepath.FromSlash(path.Clean("/"+rel)))
	file, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: open %s: %w", ref, err)
	}
	defer file.Close()
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	return readLimited(file, limit, ref)
}

// MemFetcher serves assets from memory.
type MemFetcher map[string][]byte

func (m MemFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return data, nil
}

// Router dispatches references by URL scheme. References without a scheme
// go to the "" entry.
type Router map[string]Fetcher

// NewRouter serves http(s) references over the network and everything else
// from root.
func NewRouter(root string, opts ...HTTPOption) Router {
	web := NewHTTPFetcher(opts...)
	local := FileFetcher{Root: root}
	return Router{"http": web, "https": web, "file": local, "": local}
}

func (r Router) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyRef
	}
	scheme := ""
	if u, err := url.Parse(ref); err == nil && len(u.Scheme) > 1 {
		scheme = strings.ToLower(u.Scheme)
	}
	f, ok := r[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, scheme)
	}
	return f.Fetch(ctx, ref)
}

// LoadImage fetches and decodes a raster image, scaling it to at most maxDim
// pixels on its longer side.
func LoadImage(ctx context.Context, f Fetcher, ref string, maxDim int) (*semantic.Image, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := builder.DecodeImage(data, maxDim)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", ref, err)
	}
	return img, nil
}

func readLimited(r io.Reader, limit int64, ref string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", ref, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, ref)
	}
	return data, nil
}
