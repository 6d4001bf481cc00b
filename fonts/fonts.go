package fonts

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/reportkit/ir/semantic"
)

const (
	firstChar = 32
	lastChar  = 255

	// Replacement is written for runes outside Windows-1252.
	Replacement = '?'
)

// Face is an embeddable TrueType font addressed with WinAnsiEncoding.
// Widths are expressed per single byte code in 1/1000 em.
type Face struct {
	name   string
	font   *semantic.Font
	widths [256]int
}

// LoadTrueType parses a TrueType font, measures the glyphs reachable through
// WinAnsiEncoding, and returns a simple TrueType font with a FontFile2 stream.
// The full font is embedded (no subsetting).
func LoadTrueType(name string, data []byte) (*Face, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	upem := float64(face.Upem())
	if upem == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}

	f := &Face{name: name}
	missing := 0
	if gid, ok := face.NominalGlyph(Replacement); ok {
		missing = int(math.Round(float64(face.HorizontalAdvance(gid)) * 1000 / upem))
	}
	for code := 0; code < 256; code++ {
		f.widths[code] = missing
		r := charmap.Windows1252.DecodeByte(byte(code))
		if gid, ok := face.NominalGlyph(r); ok {
			f.widths[code] = int(math.Round(float64(face.HorizontalAdvance(gid)) * 1000 / upem))
		}
	}

	descriptor, err := describe(name, data)
	if err != nil {
		return nil, err
	}
	widths := make([]int, 0, lastChar-firstChar+1)
	for code := firstChar; code <= lastChar; code++ {
		widths = append(widths, f.widths[code])
	}
	f.font = &semantic.Font{
		Subtype:    "TrueType",
		BaseFont:   descriptor.FontName,
		Encoding:   "WinAnsiEncoding",
		FirstChar:  firstChar,
		Widths:     widths,
		Descriptor: descriptor,
	}
	return f, nil
}

func describe(name string, data []byte) (*semantic.FontDescriptor, error) {
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse sfnt: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}
	if baseName == "" {
		baseName = "CustomTT"
	}

	metrics, _ := font.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	return &semantic.FontDescriptor{
		FontName:    baseName,
		Flags:       32, // Nonsymbolic: glyphs come from the standard Latin set
		ItalicAngle: italicAngle(font),
		Ascent:      scaleFixed(metrics.Ascent, unitsPerEm),
		Descent:     -scaleFixed(metrics.Descent, unitsPerEm),
		CapHeight:   scaleFixed(metrics.CapHeight, unitsPerEm),
		StemV:       80,
		FontBBox: [4]float64{
			scaleFixed(bounds.Min.X, unitsPerEm),
			-scaleFixed(bounds.Max.Y, unitsPerEm),
			scaleFixed(bounds.Max.X, unitsPerEm),
			-scaleFixed(bounds.Min.Y, unitsPerEm),
		},
		FontFile: data,
	}, nil
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return math.Round(float64(val)*1000.0/(64.0*float64(unitsPerEm))*100) / 100
}

// Name returns the name the face was registered under.
func (f *Face) Name() string { return f.name }

// Font returns the PDF font resource for the face.
func (f *Face) Font() *semantic.Font { return f.font }

// Encode converts text to Windows-1252 bytes, replacing runes the encoding
// cannot represent.
func (f *Face) Encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = Replacement
		}
		out = append(out, b)
	}
	return out
}

// Measure returns the advance width of text at size, in points. It uses the
// same widths the PDF viewer will use, so measured and rendered widths agree.
func (f *Face) Measure(text string, size float64) float64 {
	total := 0
	for _, b := range f.Encode(text) {
		total += f.widths[b]
	}
	return float64(total) * size / 1000
}

// Ascent returns the ascender height at size, in points.
func (f *Face) Ascent(size float64) float64 {
	return f.font.Descriptor.Ascent * size / 1000
}

// Set is the pair of faces a report is typeset with.
type Set struct {
	Regular *Face
	Bold    *Face
}

var defaultSet = sync.OnceValues(func() (*Set, error) {
	regular, err := LoadTrueType("GoRegular", goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load regular face: %w", err)
	}
	bold, err := LoadTrueType("GoBold", gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load bold face: %w", err)
	}
	return &Set{Regular: regular, Bold: bold}, nil
})

// Default returns the Go regular and bold faces. They are parsed once per
// process and shared; faces are read-only after loading.
func Default() (*Set, error) { return defaultSet() }
