// Package icons rasterises decorative vector icons. Icons are optional:
// every failure is reported, never fatal, and callers lay out the page
// without the icon.
package icons

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/builder"
)

// WorkingSize is the raster resolution of the longer icon side in pixels.
const WorkingSize = 256

var ErrEmptyIcon = errors.New("icons: icon has no drawable area")

// Renderer turns an icon reference into a bitmap.
type Renderer interface {
	Render(ctx context.Context, ref string) (image.Image, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, ref string) (image.Image, error)

func (f RendererFunc) Render(ctx context.Context, ref string) (image.Image, error) { return f(ctx, ref) }

// SVGRenderer fetches SVG documents and rasterises them.
type SVGRenderer struct {
	fetcher assets.Fetcher
	size    int
}

// NewSVGRenderer renders at WorkingSize.
func NewSVGRenderer(f assets.Fetcher) *SVGRenderer {
	return &SVGRenderer{fetcher: f, size: WorkingSize}
}

func (r *SVGRenderer) Render(ctx context.Context, ref string) (image.Image, error) {
	data, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Rasterize(data, r.size)
}

// Rasterize renders an SVG document with its longer side at size pixels.
func Rasterize(data []byte, size int) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("icons: rasterize: %v", p)
		}
	}()
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("icons: parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 || math.IsNaN(vw) || math.IsNaN(vh) {
		return nil, ErrEmptyIcon
	}
	w, h := fitBox(vw, vh, float64(size))
	pw, ph := max(1, int(math.Round(w))), max(1, int(math.Round(h)))

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return rgba, nil
}

// fitBox scales (w, h) so the longer side equals limit.
func fitBox(w, h, limit float64) (float64, float64) {
	if w >= h {
		return limit, limit * h / w
	}
	return limit * w / h, limit
}

// TryDraw renders ref and draws it centred on (cx, cy) with its longer side
// at maxDim points. It reports whether the icon was drawn.
func TryDraw(ctx context.Context, page builder.PageBuilder, r Renderer, ref string, cx, cy, maxDim float64) bool {
	if r == nil || ref == "" || maxDim <= 0 {
		return false
	}
	img, err := r.Render(ctx, ref)
	if err != nil || img == nil {
		return false
	}
	return Draw(page, img, cx, cy, maxDim)
}

// Draw places an already rendered icon like TryDraw.
func Draw(page builder.PageBuilder, img image.Image, cx, cy, maxDim float64) bool {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return false
	}
	w, h := fitBox(float64(b.Dx()), float64(b.Dy()), maxDim)
	return page.DrawImage(builder.FromImage(img), cx-w/2, cy-h/2, w, h) == nil
}

// Result is one prefetched icon.
type Result struct {
	Ref   string
	Image image.Image
	Err   error
}

// Prefetch renders refs concurrently, at most limit at a time, and returns
// results in input order. Individual failures are carried in Result.Err;
// only cancellation of ctx fails the whole call.
func Prefetch(ctx context.Context, r Renderer, refs []string, limit int) ([]Result, error) {
	results := make([]Result, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, ref := range refs {
		i, ref := i, ref
		results[i].Ref = ref
		if ref == "" {
			results[i].Err = assets.ErrEmptyRef
			continue
		}
		g.Go(func() error {
			img, err := r.Render(gctx, ref)
			results[i].Image, results[i].Err = img, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Cache memoises renders per reference, failures included. Concurrent
// requests for one reference share a single render.
type Cache struct {
	next  Renderer
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]Result
}

func NewCache(next Renderer) *Cache {
	return &Cache{next: next, entries: make(map[string]Result)}
}

func (c *Cache) Render(ctx context.Context, ref string) (image.Image, error) {
	c.mu.Lock()
	if e, ok := c.entries[ref]; ok {
		c.mu.Unlock()
		return e.Image, e.Err
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(ref, func() (interface{}, error) {
		img, err := c.next.Render(ctx, ref)
		res := Result{Ref: ref, Image: img, Err: err}
		// Cancelled renders are not cached.
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.mu.Lock()
			c.entries[ref] = res
			c.mu.Unlock()
		}
		return res, nil
	})
	res := v.(Result)
	return res.Image, res.Err
}

// Len reports the number of cached references.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
