package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/config"
	"github.com/wudi/reportkit/fonts"
	"github.com/wudi/reportkit/icons"
	"github.com/wudi/reportkit/ir/semantic"
	"github.com/wudi/reportkit/narrative"
	"github.com/wudi/reportkit/observability"
	"github.com/wudi/reportkit/parser"
	"github.com/wudi/reportkit/ranking"
	"github.com/wudi/reportkit/writer"
)

// IconRefFunc resolves the icon reference for one instrument category. An
// empty result means the category has no icon.
type IconRefFunc func(instrument, code string) string

const (
	DefaultCoverRef    = "cover.png"
	DefaultTitle       = "Self-Assessment Report"
	DefaultMaxImageDim = 1600
	defaultParallelism = 4
	iconCandidates     = 3
)

type stage struct {
	name  string
	build pageFunc
}

// stages is the fixed pipeline. Each stage contributes exactly one page.
var stages = []stage{
	{"cover", buildCover},
	{"summary", buildSummary},
	{"profile", buildProfile},
	{"disc", discPage},
	{"multiple-intelligences", miPage},
	{"riasec", riasecPage},
	{"archetypes", archetypesPage},
	{"highlights-strengths", buildStrengths},
	{"highlights-narrative", buildInsights},
	{"action-plan", buildActionPlan},
	{"conclusion", buildConclusion},
}

// Stages returns the stage names in pipeline order.
func Stages() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Assembler turns an Input into a finished report.
type Assembler struct {
	fetcher     assets.Fetcher
	fonts       *fonts.Set
	icons       icons.Renderer
	iconRef     IconRefFunc
	coverRef    string
	summaryRef  string
	maxImageDim int
	parallelism int
	extractor   *narrative.Extractor
	fallbacks   func(firstName string) narrative.Fallbacks
	seeds       parser.Config
	info        semantic.DocumentInfo
	writer      writer.Config
	log         observability.Logger
	tracer      observability.Tracer
}

type Option func(*Assembler)

// WithFonts sets the typeface pair. Defaults to the Go fonts.
func WithFonts(set *fonts.Set) Option {
	return func(a *Assembler) { a.fonts = set }
}

// WithIconRenderer replaces the SVG renderer built over the fetcher.
func WithIconRenderer(r icons.Renderer) Option {
	return func(a *Assembler) { a.icons = r }
}

func WithIconRefs(f IconRefFunc) Option {
	return func(a *Assembler) { a.iconRef = f }
}

// WithCover sets the required cover image reference.
func WithCover(ref string) Option {
	return func(a *Assembler) { a.coverRef = ref }
}

// WithSummary sets the optional summary image reference.
func WithSummary(ref string) Option {
	return func(a *Assembler) { a.summaryRef = ref }
}

func WithMaxImageDim(px int) Option {
	return func(a *Assembler) { a.maxImageDim = px }
}

// WithIconParallelism bounds concurrent icon renders.
func WithIconParallelism(n int) Option {
	return func(a *Assembler) { a.parallelism = n }
}

func WithExtractor(e *narrative.Extractor) Option {
	return func(a *Assembler) { a.extractor = e }
}

// WithFallbacks sets the text used when narrative sections are missing.
func WithFallbacks(f func(firstName string) narrative.Fallbacks) Option {
	return func(a *Assembler) { a.fallbacks = f }
}

func WithMaxSeedSize(n int) Option {
	return func(a *Assembler) { a.seeds.MaxSize = n }
}

// WithDocumentInfo sets the information dictionary. Author is always the
// respondent's name.
func WithDocumentInfo(info semantic.DocumentInfo) Option {
	return func(a *Assembler) { a.info = info }
}

func WithWriterConfig(cfg writer.Config) Option {
	return func(a *Assembler) { a.writer = cfg }
}

func WithLogger(l observability.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

func WithTracer(t observability.Tracer) Option {
	return func(a *Assembler) { a.tracer = t }
}

// FromConfig translates cfg into options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithCover(cfg.Assets.Cover),
		WithSummary(cfg.Assets.Summary),
		WithMaxImageDim(cfg.Assets.MaxImageDim),
		WithIconRefs(cfg.IconRef),
		WithIconParallelism(cfg.Icons.Parallelism),
		WithDocumentInfo(semantic.DocumentInfo{
			Title:    cfg.Document.Title,
			Subject:  cfg.Document.Subject,
			Creator:  cfg.Document.Creator,
			Producer: cfg.Document.Producer,
		}),
	}
}

// New returns an Assembler reading assets through fetcher.
func New(fetcher assets.Fetcher, opts ...Option) (*Assembler, error) {
	if fetcher == nil {
		return nil, errors.New("report: nil fetcher")
	}
	a := &Assembler{
		fetcher:     fetcher,
		coverRef:    DefaultCoverRef,
		maxImageDim: DefaultMaxImageDim,
		parallelism: defaultParallelism,
		fallbacks:   narrative.DefaultFallbacks,
		info:        semantic.DocumentInfo{Title: DefaultTitle},
		writer:      writer.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fonts == nil {
		set, err := fonts.Default()
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		a.fonts = set
	}
	if a.icons == nil {
		a.icons = icons.NewSVGRenderer(fetcher)
	}
	if a.extractor == nil {
		a.extractor = narrative.Default()
	}
	if a.fallbacks == nil {
		a.fallbacks = narrative.DefaultFallbacks
	}
	if a.log == nil {
		a.log = observability.NopLogger{}
	}
	if a.tracer == nil {
		a.tracer = observability.NopTracer()
	}
	if a.info.Title == "" {
		a.info.Title = DefaultTitle
	}
	return a, nil
}

// Assemble validates the seed, runs every stage in order and serialises the
// result. Any fatal failure aborts the whole report.
func (a *Assembler) Assemble(ctx context.Context, in Input) (_ []byte, err error) {
	ctx, span := a.tracer.StartSpan(ctx, observability.SpanAssemble)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	seed, err := parser.NewSeedParser(a.seeds).Parse(ctx, in.Seed)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	a.log.Debug("seed accepted",
		observability.String("version", seed.Version),
		observability.Int("pages", seed.PageCount))

	story := a.extractor.ExtractSections(in.Narrative, a.fallbacks(in.Profile.FirstName()))
	if story.Fallback.Any() {
		a.log.Warn("narrative sections missing, using defaults",
			observability.Bool("body", story.Fallback.Body),
			observability.Bool("final", story.Fallback.Final),
			observability.Bool("steps", story.Fallback.Steps))
	}

	cache := icons.NewCache(a.icons)
	if err := a.prefetch(ctx, cache, &in); err != nil {
		return nil, err
	}

	e := &env{
		b:           builder.NewBuilder(a.fonts),
		in:          &in,
		story:       story,
		icons:       cache,
		iconRef:     a.iconRef,
		fetcher:     a.fetcher,
		coverRef:    a.coverRef,
		summaryRef:  a.summaryRef,
		maxImageDim: a.maxImageDim,
		log:         a.log,
		title:       a.info.Title,
		total:       len(stages),
	}

	info := a.info
	info.Author = in.Profile.Name
	doc := semantic.NewDocument(&info)
	for i, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.index = i
		page, err := a.run(ctx, st, e)
		if err != nil {
			return nil, &StageError{Stage: st.name, Err: err}
		}
		doc = doc.Append(page)
	}
	if doc.Len() != len(stages) {
		return nil, fmt.Errorf("report: assembled %d pages, want %d", doc.Len(), len(stages))
	}
	return a.serialize(ctx, doc)
}

// AssembleBase64 is Assemble with the result in standard base64.
func (a *Assembler) AssembleBase64(ctx context.Context, in Input) (string, error) {
	pdf, err := a.Assemble(ctx, in)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(pdf), nil
}

func (a *Assembler) run(ctx context.Context, st stage, e *env) (_ *semantic.Page, err error) {
	ctx, span := a.tracer.StartSpan(ctx, observability.SpanStage)
	span.SetTag("stage", st.name)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	start := time.Now()
	page, err := st.build(ctx, e)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errors.New("stage produced no page")
	}
	a.log.Debug("stage done",
		observability.String("stage", st.name),
		observability.Int("ops", len(page.Operations())),
		observability.Duration("elapsed", time.Since(start)))
	return page, nil
}

// prefetch warms cache with every icon a page may draw. Failures stay in the
// cache and surface later as icon-less cards.
func (a *Assembler) prefetch(ctx context.Context, cache *icons.Cache, in *Input) error {
	if a.iconRef == nil {
		return nil
	}
	seen := make(map[string]bool)
	var refs []string
	for _, inst := range Instruments() {
		for _, entry := range ranking.TopN(inst.Rank(in.Scores(inst)), iconCandidates) {
			ref := a.iconRef(inst.ID, entry.Key)
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	results, err := icons.Prefetch(ctx, cache, refs, a.parallelism)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			a.log.Warn("icon unavailable",
				observability.String("ref", r.Ref),
				observability.Error("error", r.Err))
		}
	}
	return nil
}

func (a *Assembler) serialize(ctx context.Context, doc *semantic.Document) (_ []byte, err error) {
	ctx, span := a.tracer.StartSpan(ctx, observability.SpanSerialize)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	var buf bytes.Buffer
	if err := writer.NewBuilder().WithConfig(a.writer).Build().Write(ctx, doc, &buf); err != nil {
		return nil, fmt.Errorf("report: serialize: %w", err)
	}
	a.log.Debug("report written", observability.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// BlankSeed returns a minimal one-page PDF accepted as a seed.
func BlankSeed(ctx context.Context) ([]byte, error) {
	set, err := fonts.Default()
	if err != nil {
		return nil, err
	}
	page := builder.NewBuilder(set).NewPage("seed").Finish()
	doc := semantic.NewDocument(&semantic.DocumentInfo{Producer: "reportkit"}).Append(page)
	var buf bytes.Buffer
	if err := writer.NewBuilder().Build().Write(ctx, doc, &buf); err != nil {
		return nil, fmt.Errorf("report: blank seed: %w", err)
	}
	return buf.Bytes(), nil
}
