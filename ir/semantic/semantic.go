package semantic

import "slices"

// Document is an ordered, append-only sequence of pages.
//
// Append never modifies its receiver: it returns a new Document that shares
// the existing pages, so a value handed to a later stage cannot alter pages
// an earlier stage produced.
type Document struct {
	pages []*Page
	Info  *DocumentInfo
}

// NewDocument returns an empty document.
func NewDocument(info *DocumentInfo) *Document { return &Document{Info: info} }

// Append returns a document holding d's pages followed by pages.
func (d *Document) Append(pages ...*Page) *Document {
	var prior []*Page
	var info *DocumentInfo
	if d != nil {
		prior = d.pages
		info = d.Info
	}
	next := make([]*Page, 0, len(prior)+len(pages))
	next = append(next, prior...)
	for _, p := range pages {
		if p == nil {
			continue
		}
		p.Seal()
		next = append(next, p)
	}
	return &Document{pages: next, Info: info}
}

// WithInfo returns a copy of d carrying info.
func (d *Document) WithInfo(info *DocumentInfo) *Document {
	out := &Document{Info: info}
	if d != nil {
		out.pages = d.pages
	}
	return out
}

// Pages returns the pages in order. The returned slice is a copy.
func (d *Document) Pages() []*Page {
	if d == nil {
		return nil
	}
	return slices.Clone(d.pages)
}

// Len reports the number of pages.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pages)
}

// Page returns the page at index i.
func (d *Document) Page(i int) *Page {
	if d == nil || i < 0 || i >= len(d.pages) {
		return nil
	}
	return d.pages[i]
}

// Page models a single PDF page.
type Page struct {
	Label     string
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream

	sealed bool
}

// Seal freezes the page. Builders stop accepting draw calls on a sealed page.
func (p *Page) Seal() { p.sealed = true }

// Sealed reports whether the page was finished.
func (p *Page) Sealed() bool { return p.sealed }

// Operations returns the operations of all content streams in order.
func (p *Page) Operations() []Operation {
	var ops []Operation
	for _, cs := range p.Contents {
		ops = append(ops, cs.Operations...)
	}
	return ops
}

// ContentStream holds an ordered list of operations.
type ContentStream struct {
	Operations []Operation
}

// Operation is a single content stream operator with operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is any value that can appear in a content stream.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Resources lists the named fonts and images a page's content refers to.
type Resources struct {
	Fonts    map[string]*Font
	XObjects map[string]*Image
}

// Font represents a simple (single byte) font resource.
type Font struct {
	Subtype    string // TrueType
	BaseFont   string
	Encoding   string // WinAnsiEncoding
	FirstChar  int
	Widths     []int // widths of FirstChar..FirstChar+len-1 in 1/1000 em
	Descriptor *FontDescriptor
}

// FontDescriptor carries metrics and font file embedding details.
type FontDescriptor struct {
	FontName    string
	Flags       int
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	StemV       int
	FontBBox    [4]float64
	FontFile    []byte // FontFile2 (TrueType)
}

// Image describes an image XObject with 8 bit components.
type Image struct {
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB or DeviceGray
	BitsPerComponent int
	Data             []byte
	SMask            *Image
}

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}
