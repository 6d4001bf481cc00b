package writer

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/wudi/reportkit/contentstream"
	"github.com/wudi/reportkit/ir/raw"
	"github.com/wudi/reportkit/ir/semantic"
)

// ErrEmptyDocument is returned when a document has no pages.
var ErrEmptyDocument = errors.New("writer: document has no pages")

// fileIDNamespace seeds the name-based UUID used as the trailer /ID.
var fileIDNamespace = uuid.MustParse("6f1c2a52-8f0e-4d4b-9a57-2e0c3b1d7a10")

type impl struct {
	cfg          Config
	interceptors []Interceptor
}

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	if obj == nil {
		return nil, fmt.Errorf("serialize %s: nil object", ref)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer) error {
	if doc.Len() == 0 {
		return ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b := newObjectBuilder(doc, w.cfg)
	catalogRef, infoRef, err := b.Build()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", pdfVersion(w.cfg))
	refs := b.table.Refs()
	offsets := make(map[int]int64, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj, _ := b.table.Get(ref)
		serialized, err := w.SerializeObject(ref, obj)
		if err != nil {
			return err
		}
		offsets[ref.Num] = int64(buf.Len())
		buf.Write(serialized)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, ref, obj, int64(len(serialized))); err != nil {
				return fmt.Errorf("interceptor: %w", err)
			}
		}
	}
	id := fileID(buf.Bytes())

	xrefOffset := buf.Len()
	size := b.table.Size()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	buf.WriteString("trailer\n")
	buf.Write(serializePrimitive(buildTrailer(size, catalogRef, infoRef, id)))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err = out.Write(buf.Bytes())
	return err
}

type objectBuilder struct {
	doc      *semantic.Document
	cfg      Config
	table    *raw.Table
	fontRefs map[*semantic.Font]raw.ObjectRef
	imgRefs  map[*semantic.Image]raw.ObjectRef
}

func newObjectBuilder(doc *semantic.Document, cfg Config) *objectBuilder {
	return &objectBuilder{
		doc:      doc,
		cfg:      cfg,
		table:    raw.NewTable(),
		fontRefs: make(map[*semantic.Font]raw.ObjectRef),
		imgRefs:  make(map[*semantic.Image]raw.ObjectRef),
	}
}

// Build fills the object table. Shared fonts and images are written once and
// referenced from every page that uses them.
func (b *objectBuilder) Build() (raw.ObjectRef, *raw.ObjectRef, error) {
	catalogRef := b.table.Reserve()
	pagesRef := b.table.Reserve()

	var infoRef *raw.ObjectRef
	if info := b.doc.Info; info != nil {
		ref := b.table.Add(infoDict(info))
		infoRef = &ref
	}

	kids := raw.NewArray()
	for i, p := range b.doc.Pages() {
		pageRef, err := b.addPage(p, pagesRef)
		if err != nil {
			return raw.ObjectRef{}, nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		kids.Append(raw.Ref(pageRef))
	}

	pages := raw.Dict().
		Set("Type", raw.Name("Pages")).
		Set("Count", raw.Int(int64(kids.Len()))).
		Set("Kids", kids)
	b.table.Set(pagesRef, pages)

	catalog := raw.Dict().
		Set("Type", raw.Name("Catalog")).
		Set("Pages", raw.Ref(pagesRef))
	b.table.Set(catalogRef, catalog)
	return catalogRef, infoRef, nil
}

func (b *objectBuilder) addPage(p *semantic.Page, parent raw.ObjectRef) (raw.ObjectRef, error) {
	resources, err := b.resources(p.Resources)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	data := contentstream.Encode(p.Operations())
	contentRef := b.table.Add(b.stream(raw.Dict(), data))

	page := raw.Dict().
		Set("Type", raw.Name("Page")).
		Set("Parent", raw.Ref(parent)).
		Set("MediaBox", rectArray(p.MediaBox)).
		Set("Resources", resources).
		Set("Contents", raw.Ref(contentRef))
	return b.table.Add(page), nil
}

// resources always returns a dictionary, empty pages included.
func (b *objectBuilder) resources(res *semantic.Resources) (*raw.DictObj, error) {
	out := raw.Dict().Set("ProcSet", raw.NewArray(raw.Name("PDF"), raw.Name("Text"), raw.Name("ImageC"), raw.Name("ImageB")))
	if res == nil {
		return out, nil
	}
	if len(res.Fonts) > 0 {
		fonts := raw.Dict()
		for _, name := range sortedKeys(res.Fonts) {
			ref, err := b.ensureFont(res.Fonts[name])
			if err != nil {
				return nil, fmt.Errorf("font %s: %w", name, err)
			}
			fonts.Set(name, raw.Ref(ref))
		}
		out.Set("Font", fonts)
	}
	if len(res.XObjects) > 0 {
		xobjects := raw.Dict()
		for _, name := range sortedKeys(res.XObjects) {
			ref, err := b.ensureImage(res.XObjects[name])
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", name, err)
			}
			xobjects.Set(name, raw.Ref(ref))
		}
		out.Set("XObject", xobjects)
	}
	return out, nil
}

func (b *objectBuilder) ensureFont(font *semantic.Font) (raw.ObjectRef, error) {
	if font == nil {
		return raw.ObjectRef{}, errors.New("nil font")
	}
	if ref, ok := b.fontRefs[font]; ok {
		return ref, nil
	}
	if len(font.Widths) == 0 {
		return raw.ObjectRef{}, fmt.Errorf("%s: no widths", font.BaseFont)
	}
	ref := b.table.Reserve()
	b.fontRefs[font] = ref

	widths := raw.NewArray()
	for _, w := range font.Widths {
		widths.Append(raw.Int(int64(w)))
	}
	dict := raw.Dict().
		Set("Type", raw.Name("Font")).
		Set("Subtype", raw.Name(font.Subtype)).
		Set("BaseFont", raw.Name(pdfNameLiteral(font.BaseFont))).
		Set("FirstChar", raw.Int(int64(font.FirstChar))).
		Set("LastChar", raw.Int(int64(font.FirstChar+len(font.Widths)-1))).
		Set("Widths", widths)
	if font.Encoding != "" {
		dict.Set("Encoding", raw.Name(font.Encoding))
	}
	if fd := font.Descriptor; fd != nil {
		dict.Set("FontDescriptor", raw.Ref(b.addFontDescriptor(fd)))
	}
	b.table.Set(ref, dict)
	return ref, nil
}

func (b *objectBuilder) addFontDescriptor(fd *semantic.FontDescriptor) raw.ObjectRef {
	flags := fd.Flags
	if flags == 0 {
		flags = 32
	}
	stem := fd.StemV
	if stem == 0 {
		stem = 80
	}
	d := raw.Dict().
		Set("Type", raw.Name("FontDescriptor")).
		Set("FontName", raw.Name(pdfNameLiteral(fd.FontName))).
		Set("Flags", raw.Int(int64(flags))).
		Set("ItalicAngle", raw.Float(fd.ItalicAngle)).
		Set("Ascent", raw.Float(fd.Ascent)).
		Set("Descent", raw.Float(fd.Descent)).
		Set("CapHeight", raw.Float(fd.CapHeight)).
		Set("StemV", raw.Int(int64(stem))).
		Set("FontBBox", raw.Floats(fd.FontBBox[:]...))
	if len(fd.FontFile) > 0 {
		sd := raw.Dict().Set("Length1", raw.Int(int64(len(fd.FontFile))))
		d.Set("FontFile2", raw.Ref(b.table.Add(b.stream(sd, fd.FontFile))))
	}
	return b.table.Add(d)
}

func (b *objectBuilder) ensureImage(img *semantic.Image) (raw.ObjectRef, error) {
	if img == nil {
		return raw.ObjectRef{}, errors.New("nil image")
	}
	if ref, ok := b.imgRefs[img]; ok {
		return ref, nil
	}
	cs := img.ColorSpace
	if cs == "" {
		cs = "DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	dict := raw.Dict().
		Set("Type", raw.Name("XObject")).
		Set("Subtype", raw.Name("Image")).
		Set("Width", raw.Int(int64(img.Width))).
		Set("Height", raw.Int(int64(img.Height))).
		Set("ColorSpace", raw.Name(cs)).
		Set("BitsPerComponent", raw.Int(int64(bpc)))
	if img.SMask != nil {
		maskRef, err := b.ensureImage(img.SMask)
		if err != nil {
			return raw.ObjectRef{}, fmt.Errorf("soft mask: %w", err)
		}
		dict.Set("SMask", raw.Ref(maskRef))
	}
	ref := b.table.Add(b.stream(dict, img.Data))
	b.imgRefs[img] = ref
	return ref, nil
}

// stream compresses data per the configured level and records /Length.
func (b *objectBuilder) stream(dict *raw.DictObj, data []byte) *raw.StreamObj {
	if b.cfg.Compression != zlib.NoCompression {
		if enc, err := flateEncode(data, b.cfg.Compression); err == nil {
			dict.Set("Filter", raw.Name("FlateDecode"))
			data = enc
		}
	}
	dict.Set("Length", raw.Int(int64(len(data))))
	return raw.NewStream(dict, data)
}

func infoDict(info *semantic.DocumentInfo) *raw.DictObj {
	d := raw.Dict()
	set := func(key, value string) {
		if value != "" {
			d.Set(key, raw.Str(textString(value)))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	set("Keywords", strings.Join(info.Keywords, ", "))
	return d
}

func buildTrailer(size int, catalogRef raw.ObjectRef, infoRef *raw.ObjectRef, id []byte) *raw.DictObj {
	trailer := raw.Dict().
		Set("Size", raw.Int(int64(size))).
		Set("Root", raw.Ref(catalogRef)).
		Set("ID", raw.NewArray(raw.HexStr(id), raw.HexStr(id)))
	if infoRef != nil {
		trailer.Set("Info", raw.Ref(*infoRef))
	}
	return trailer
}

// fileID derives the document identifier from the serialised body, so equal
// documents share an ID and no clock or random source is involved.
func fileID(body []byte) []byte {
	sum := blake2b.Sum256(body)
	id := uuid.NewSHA1(fileIDNamespace, sum[:])
	return id[:]
}

func pdfVersion(cfg Config) string {
	if cfg.Version == "" {
		return string(PDF17)
	}
	return string(cfg.Version)
}

func flateEncode(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rectArray(r semantic.Rectangle) *raw.ArrayObj {
	return raw.Floats(r.LLX, r.LLY, r.URX, r.URY)
}

// textString encodes s as a PDF text string: PDFDocEncoding when every rune
// fits in Latin-1, UTF-16BE with a byte order mark otherwise.
func textString(s string) []byte {
	latin := true
	for _, r := range s {
		if r > 0xFF {
			latin = false
			break
		}
	}
	if latin {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			out = append(out, byte(r))
		}
		return out
	}
	out := []byte{0xFE, 0xFF}
	for _, r := range s {
		if r > 0xFFFF {
			r -= 0x10000
			hi, lo := 0xD800+(r>>10), 0xDC00+(r&0x3FF)
			out = append(out, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
			continue
		}
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + v.Value())
	case raw.NumberObj:
		if v.IsInteger() {
			return []byte(fmt.Sprintf("%d", v.Int()))
		}
		return []byte(contentstream.FormatNumber(v.Float()))
	case raw.BoolObj:
		if v.Value() {
			return []byte("true")
		}
		return []byte("false")
	case raw.NullObj:
		return []byte("null")
	case raw.StringObj:
		if v.IsHex() {
			return []byte("<" + strings.ToUpper(hex.EncodeToString(v.Value())) + ">")
		}
		return contentstream.EscapeLiteralString(v.Value())
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		for _, k := range v.Keys() {
			b.WriteString("/" + k + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *raw.StreamObj:
		var b bytes.Buffer
		b.Write(serializePrimitive(v.Dict))
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(v.Ref().String())
	default:
		return []byte("null")
	}
}

func pdfNameLiteral(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' || ch == '.' || ch == '+' {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "#%02X", ch)
	}
	return b.String()
}
