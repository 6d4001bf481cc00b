package writer

import (
	"compress/zlib"
	"context"
	"io"

	"github.com/wudi/reportkit/ir/raw"
	"github.com/wudi/reportkit/ir/semantic"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// Config controls serialisation. The output is always deterministic: the
// same document and config yield the same bytes.
type Config struct {
	Version PDFVersion
	// Compression is the zlib level for content, font and image streams.
	// zlib.NoCompression writes streams unfiltered.
	Compression int
}

// DefaultConfig returns the settings used for reports.
func DefaultConfig() Config {
	return Config{Version: PDF17, Compression: zlib.BestCompression}
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes objects as they are written.
type Interceptor interface {
	AfterWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object, bytesWritten int64) error
}

type WriterBuilder struct {
	cfg          Config
	interceptors []Interceptor
}

// NewBuilder starts a writer with DefaultConfig.
func NewBuilder() *WriterBuilder { return &WriterBuilder{cfg: DefaultConfig()} }

func (b *WriterBuilder) WithConfig(cfg Config) *WriterBuilder {
	b.cfg = cfg
	return b
}

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *WriterBuilder) Build() Writer {
	return &impl{cfg: b.cfg, interceptors: b.interceptors}
}
