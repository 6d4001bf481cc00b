package icons

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/contentstream"
	"github.com/wudi/reportkit/fonts"
	"github.com/wudi/reportkit/ir/semantic"
)

const wideSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><rect x="10" y="10" width="180" height="80" fill="#336699"/></svg>`

func newPage(t *testing.T) builder.PageBuilder {
	t.Helper()
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	return builder.NewBuilder(set).NewPage("icons")
}

func TestRasterizePreservesAspect(t *testing.T) {
	img, err := Rasterize([]byte(wideSVG), WorkingSize)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 128 {
		t.Fatalf("bounds = %v, want 256x128", b)
	}
	_, _, _, a := img.At(128, 64).RGBA()
	if a == 0 {
		t.Fatalf("centre pixel not painted")
	}
}

func TestRasterizeFailures(t *testing.T) {
	for name, data := range map[string]string{
		"garbage":    "definitely not svg",
		"no viewbox": `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Rasterize([]byte(data), WorkingSize); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTryDrawCentresIcon(t *testing.T) {
	r := NewSVGRenderer(assets.MemFetcher{"wide.svg": []byte(wideSVG)})
	page := newPage(t)
	if !TryDraw(context.Background(), page, r, "wide.svg", 100, 100, 40) {
		t.Fatalf("icon not drawn")
	}
	ops := page.Finish().Operations()
	if ops[1].Operator != "cm" {
		t.Fatalf("ops = %v", contentstream.Operators(ops))
	}
	cm := ops[1].Operands
	want := []float64{40, 0, 0, 20, 80, 90}
	for i, w := range want {
		if got := cm[i].(semantic.NumberOperand).Value; got != w {
			t.Fatalf("cm[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestTryDrawFailureLeavesPageUntouched(t *testing.T) {
	failing := RendererFunc(func(context.Context, string) (image.Image, error) {
		return nil, errors.New("fetch failed")
	})
	page := newPage(t)
	if TryDraw(context.Background(), page, failing, "x.svg", 0, 0, 10) {
		t.Fatalf("failing renderer reported success")
	}
	if TryDraw(context.Background(), page, NewSVGRenderer(assets.MemFetcher{}), "missing.svg", 0, 0, 10) {
		t.Fatalf("missing asset reported success")
	}
	if TryDraw(context.Background(), page, nil, "x.svg", 0, 0, 10) {
		t.Fatalf("nil renderer reported success")
	}
	if ops := page.Finish().Operations(); len(ops) != 0 {
		t.Fatalf("page modified: %v", contentstream.Operators(ops))
	}
}

func TestPrefetchKeepsInputOrder(t *testing.T) {
	delays := map[string]time.Duration{"a": 30 * time.Millisecond, "b": 0, "c": 10 * time.Millisecond}
	r := RendererFunc(func(_ context.Context, ref string) (image.Image, error) {
		time.Sleep(delays[ref])
		if ref == "c" {
			return nil, errors.New("broken")
		}
		return image.NewRGBA(image.Rect(0, 0, len(ref), 1)), nil
	})
	results, err := Prefetch(context.Background(), r, []string{"a", "b", "c", ""}, 2)
	if err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	for i, ref := range []string{"a", "b", "c", ""} {
		if results[i].Ref != ref {
			t.Fatalf("result %d ref = %q, want %q", i, results[i].Ref, ref)
		}
	}
	if results[0].Err != nil || results[1].Err != nil || results[2].Err == nil || !errors.Is(results[3].Err, assets.ErrEmptyRef) {
		t.Fatalf("unexpected errors: %+v", results)
	}
}

func TestPrefetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := RendererFunc(func(ctx context.Context, _ string) (image.Image, error) { return nil, ctx.Err() })
	if _, err := Prefetch(ctx, r, []string{"a"}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestCacheMemoisesResults(t *testing.T) {
	var calls atomic.Int32
	r := RendererFunc(func(_ context.Context, ref string) (image.Image, error) {
		calls.Add(1)
		if ref == "bad" {
			return nil, errors.New("bad icon")
		}
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})
	c := NewCache(r)
	for i := 0; i < 3; i++ {
		if _, err := c.Render(context.Background(), "good"); err != nil {
			t.Fatalf("good: %v", err)
		}
		if _, err := c.Render(context.Background(), "bad"); err == nil {
			t.Fatalf("bad: expected error")
		}
	}
	if calls.Load() != 2 || c.Len() != 2 {
		t.Fatalf("calls = %d, cached = %d", calls.Load(), c.Len())
	}
}
