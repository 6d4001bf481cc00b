package builder

import (
	"bytes"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg" // Register decoders
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/wudi/reportkit/ir/semantic"
)

// DecodeImage decodes PNG, JPEG or WebP bytes into an image XObject. Images
// wider or taller than maxDim pixels are scaled down to fit (maxDim <= 0
// keeps the original size).
func DecodeImage(data []byte, maxDim int) (*semantic.Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxDim > 0 {
		src = downscale(src, maxDim)
	}
	img := FromImage(src)
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}

func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}
	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// FromImage converts a Go image to *semantic.Image. Transparency becomes a
// DeviceGray soft mask; fully opaque images carry none.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*w {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		stddraw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, stddraw.Src)
	}

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		px := nrgba.Pix[i*4 : i*4+4]
		pixels = append(pixels, px[0], px[1], px[2])
		alpha = append(alpha, px[3])
		if px[3] < 255 {
			hasAlpha = true
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Data:             alpha,
		}
	}
	return img
}
