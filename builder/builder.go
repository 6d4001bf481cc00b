package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/reportkit/contentstream"
	"github.com/wudi/reportkit/fonts"
	"github.com/wudi/reportkit/ir/semantic"
	"github.com/wudi/reportkit/layout"
)

// Page geometry shared by every page of a report: ISO A4 portrait in points,
// origin at the bottom-left corner.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

// PageBuilder provides a fluent API for page construction.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	// DrawImage places img in the box (x, y, width, height). Unlike the other
	// primitives it reports failures to the caller.
	DrawImage(img *semantic.Image, x, y, width, height float64) error
	MeasureText(text string, size float64, weight Weight) float64
	Width() float64
	Height() float64
	Finish() *semantic.Page
}

// Weight selects one of the report faces.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// TextOptions configures text drawing.
type TextOptions struct {
	Weight   Weight
	FontSize float64
	Color    Color
}

// PathOptions configures path drawing.
type PathOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	Fill        bool
	Stroke      bool
}

// RectOptions configures rectangle drawing (defaults to stroke if neither
// fill nor stroke is set). CornerRadius > 0 draws a rounded card.
type RectOptions struct {
	PathOptions
	CornerRadius float64
}

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
	LineCap     contentstream.LineCap
}

// Color represents an RGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

// Hex parses "#RRGGBB" or "RRGGBB".
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}, nil
}

// MustHex is Hex for compile-time palette constants.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	ErrNilImage     = errors.New("builder: nil image")
	ErrImageData    = errors.New("builder: image data does not match its dimensions")
	ErrImageBox     = errors.New("builder: image box must have positive size")
	ErrPageFinished = errors.New("builder: page already finished")
)

const (
	regularResource = "F1"
	boldResource    = "F2"
)

// Builder creates pages that share one font set and page geometry.
type Builder struct {
	fonts         *fonts.Set
	width, height float64
}

// Option configures a Builder.
type Option func(*Builder)

// WithPageSize overrides the page dimensions.
func WithPageSize(width, height float64) Option {
	return func(b *Builder) {
		b.width = width
		b.height = height
	}
}

// NewBuilder constructs a Builder typesetting with set.
func NewBuilder(set *fonts.Set, opts ...Option) *Builder {
	b := &Builder{fonts: set, width: PageWidth, height: PageHeight}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewPage starts an empty page.
func (b *Builder) NewPage(label string) PageBuilder {
	p := &semantic.Page{
		Label:     label,
		MediaBox:  semantic.Rectangle{LLX: 0, LLY: 0, URX: b.width, URY: b.height},
		Resources: &semantic.Resources{},
	}
	return &pageBuilderImpl{parent: b, page: p}
}

// MeasureText returns the width of text as DrawText would render it.
func (b *Builder) MeasureText(text string, size float64, weight Weight) float64 {
	return b.face(weight).Measure(layout.Sanitize(text), size)
}

// Measure adapts MeasureText to a layout.MeasureFunc for one weight.
func (b *Builder) Measure(weight Weight) layout.MeasureFunc {
	return func(text string, size float64) float64 {
		return b.MeasureText(text, size, weight)
	}
}

func (b *Builder) face(weight Weight) *fonts.Face {
	if weight == Bold {
		return b.fonts.Bold
	}
	return b.fonts.Regular
}

func resourceName(weight Weight) string {
	if weight == Bold {
		return boldResource
	}
	return regularResource
}

type pageBuilderImpl struct {
	parent *Builder
	page   *semantic.Page
	images map[*semantic.Image]string
}

func (p *pageBuilderImpl) Width() float64  { return p.page.MediaBox.Width() }
func (p *pageBuilderImpl) Height() float64 { return p.page.MediaBox.Height() }

func (p *pageBuilderImpl) MeasureText(text string, size float64, weight Weight) float64 {
	return p.parent.MeasureText(text, size, weight)
}

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	if p.page.Sealed() {
		return p
	}
	text = layout.Sanitize(text)
	if text == "" {
		return p
	}
	face := p.parent.face(opts.Weight)
	name := resourceName(opts.Weight)
	res := p.ensureResources()
	if _, ok := res.Fonts[name]; !ok {
		res.Fonts[name] = face.Font()
	}
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "BT"})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tf",
		Operands: []semantic.Operand{semantic.NameOperand{Value: name}, semantic.NumberOperand{Value: size}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "rg", Operands: colorOperands(opts.Color)})
	*ops = append(*ops, semantic.Operation{
		Operator: "Td",
		Operands: []semantic.Operand{semantic.NumberOperand{Value: x}, semantic.NumberOperand{Value: y}},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tj",
		Operands: []semantic.Operand{semantic.StringOperand{Value: face.Encode(text)}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "ET"})
	return p
}

func (p *pageBuilderImpl) DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder {
	if path == nil || p.page.Sealed() {
		return p
	}
	if !opts.Fill && !opts.Stroke {
		opts.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	applyPathState(ops, opts)
	appendPathOps(ops, path)
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(opts.Fill, opts.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	if opts.CornerRadius > 0 {
		return p.DrawPath(contentstream.RoundedRect(x, y, width, height, opts.CornerRadius), opts.PathOptions)
	}
	if p.page.Sealed() {
		return p
	}
	po := opts.PathOptions
	if !po.Stroke && !po.Fill {
		po.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{
		Operator: "re",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
			semantic.NumberOperand{Value: width},
			semantic.NumberOperand{Value: height},
		},
	})
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(po.Fill, po.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder {
	if r <= 0 {
		return p
	}
	return p.DrawPath(contentstream.Circle(cx, cy, r), opts)
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	path := &contentstream.Path{Subpaths: []contentstream.Subpath{{
		Points: []contentstream.PathPoint{
			{Type: contentstream.PathMoveTo, X: x1, Y: y1},
			{Type: contentstream.PathLineTo, X: x2, Y: y2},
		},
	}}}
	return p.DrawPath(path, PathOptions{
		StrokeColor: opts.StrokeColor,
		LineWidth:   opts.LineWidth,
		LineCap:     opts.LineCap,
		Stroke:      true,
	})
}

func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64) error {
	if p.page.Sealed() {
		return ErrPageFinished
	}
	if img == nil {
		return ErrNilImage
	}
	if err := validateImage(img); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrImageBox, width, height)
	}
	res := p.ensureResources()
	if p.images == nil {
		p.images = make(map[*semantic.Image]string)
	}
	name, ok := p.images[img]
	if !ok {
		name = fmt.Sprintf("Im%d", len(p.images)+1)
		p.images[img] = name
		res.XObjects[name] = img
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	*ops = append(*ops, semantic.Operation{
		Operator: "cm",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: width},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: height},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "Do",
		Operands: []semantic.Operand{semantic.NameOperand{Value: name}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return nil
}

func validateImage(img *semantic.Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrImageData, img.Width, img.Height)
	}
	channels := 3
	if img.ColorSpace == "DeviceGray" {
		channels = 1
	}
	if len(img.Data) != img.Width*img.Height*channels {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrImageData, len(img.Data), img.Width, img.Height)
	}
	if img.SMask != nil && len(img.SMask.Data) != img.Width*img.Height {
		return fmt.Errorf("%w: soft mask has %d bytes", ErrImageData, len(img.SMask.Data))
	}
	return nil
}

// Finish seals the page and returns it. Draw calls after Finish are ignored.
func (p *pageBuilderImpl) Finish() *semantic.Page {
	p.page.Seal()
	return p.page
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.Fonts == nil {
		p.page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]*semantic.Image)
	}
	return p.page.Resources
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func applyPathState(ops *[]semantic.Operation, opts PathOptions) {
	if opts.Fill {
		*ops = append(*ops, semantic.Operation{Operator: "rg", Operands: colorOperands(opts.FillColor)})
	}
	if opts.Stroke {
		*ops = append(*ops, semantic.Operation{Operator: "RG", Operands: colorOperands(opts.StrokeColor)})
		if opts.LineWidth > 0 {
			*ops = append(*ops, semantic.Operation{Operator: "w", Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.LineWidth}}})
		}
		if opts.LineCap != 0 {
			*ops = append(*ops, semantic.Operation{Operator: "J", Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineCap)}}})
		}
	}
}

func appendPathOps(ops *[]semantic.Operation, path *contentstream.Path) {
	for _, sp := range path.Subpaths {
		for _, point := range sp.Points {
			switch point.Type {
			case contentstream.PathMoveTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "m",
					Operands: []semantic.Operand{semantic.NumberOperand{Value: point.X}, semantic.NumberOperand{Value: point.Y}},
				})
			case contentstream.PathLineTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "l",
					Operands: []semantic.Operand{semantic.NumberOperand{Value: point.X}, semantic.NumberOperand{Value: point.Y}},
				})
			case contentstream.PathCurveTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "c",
					Operands: []semantic.Operand{
						semantic.NumberOperand{Value: point.Control1X},
						semantic.NumberOperand{Value: point.Control1Y},
						semantic.NumberOperand{Value: point.Control2X},
						semantic.NumberOperand{Value: point.Control2Y},
						semantic.NumberOperand{Value: point.X},
						semantic.NumberOperand{Value: point.Y},
					},
				})
			}
		}
		if sp.Closed {
			*ops = append(*ops, semantic.Operation{Operator: "h"})
		}
	}
}

func colorOperands(c Color) []semantic.Operand {
	return []semantic.Operand{
		semantic.NumberOperand{Value: c.R},
		semantic.NumberOperand{Value: c.G},
		semantic.NumberOperand{Value: c.B},
	}
}

func paintOperator(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "B"
	case fill:
		return "f"
	default:
		return "S"
	}
}
