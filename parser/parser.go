// Package parser decodes and validates seed documents. A seed only proves
// that the caller holds a well-formed PDF container; its pages are never
// carried into generated output.
package parser

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrEmpty    = errors.New("parser: empty seed")
	ErrTooLarge = errors.New("parser: seed exceeds size limit")
	ErrNotPDF   = errors.New("parser: seed is not a PDF document")
)

// Seed summarises a validated seed document.
type Seed struct {
	Version   string
	PageCount int
	Size      int
}

// Config controls seed parsing.
type Config struct {
	// MaxSize bounds the decoded seed in bytes; zero means DefaultMaxSize.
	MaxSize int
}

const DefaultMaxSize = 32 << 20

// SeedParser validates seed documents with pdfcpu.
type SeedParser struct {
	cfg Config
}

func NewSeedParser(cfg Config) *SeedParser {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &SeedParser{cfg: cfg}
}

// Parse accepts raw PDF bytes or their base64 encoding (optionally as a
// data URL) and validates the container.
func (p *SeedParser) Parse(ctx context.Context, data []byte) (*Seed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(pdf) > p.cfg.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(pdf))
	}
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadAndValidate(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return &Seed{
		Version:   pdfCtx.VersionString(),
		PageCount: pdfCtx.PageCount,
		Size:      len(pdf),
	}, nil
}

const pdfMagic = "%PDF-"

// Decode returns the binary PDF carried by data.
func Decode(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	if bytes.HasPrefix(trimmed, []byte(pdfMagic)) {
		return data, nil
	}
	text := string(trimmed)
	if i := strings.Index(text, ";base64,"); strings.HasPrefix(text, "data:") && i >= 0 {
		text = text[i+len(";base64,"):]
	}
	text = strings.Join(strings.Fields(text), "")
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(text, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %v", ErrNotPDF, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(decoded), []byte(pdfMagic)) {
		return nil, fmt.Errorf("%w: missing %s header", ErrNotPDF, pdfMagic)
	}
	return decoded, nil
}
