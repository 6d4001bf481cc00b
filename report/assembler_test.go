package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/fonts"
	"github.com/wudi/reportkit/icons"
	"github.com/wudi/reportkit/ir/semantic"
	"github.com/wudi/reportkit/narrative"
	"github.com/wudi/reportkit/observability"
)

const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24">` +
	`<circle cx="12" cy="12" r="10" fill="#2B4C7E"/></svg>`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 3), B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func blankSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := BlankSeed(context.Background())
	if err != nil {
		t.Fatalf("BlankSeed: %v", err)
	}
	return seed
}

func testInput(t *testing.T) Input {
	return Input{
		Profile: Profile{
			Name:             "Ana Souza",
			Age:              29,
			Location:         "Lisbon",
			EducationLevel:   "Bachelor",
			EducationField:   "Design",
			EmploymentStatus: "Employed",
			Role:             "UX designer",
			Interests:        []string{"Research", "Illustration", "Teaching"},
			Goals:            []string{"Lead a design team", "Publish a case study"},
		},
		DISC:       ResultSet{"D": 40, "I": 85, "S": 60, "C": 30},
		MI:         ResultSet{"LIN": 70, "SPA": 90, "INTER": 80, "MUS": 20},
		RIASEC:     ResultSet{"A": 95, "S": 70, "I": 65, "E": 10},
		Archetypes: ResultSet{"CRE": 90, "SAG": 75, "EXP": 75, "HER": 120},
		Narrative: "## Integrated Analysis\n\nYour results point to a creative communicator who " +
			"enjoys shaping ideas with other people and turning them into something concrete.\n\n" +
			"## Final Message\n\nKeep building on your curiosity; it is your strongest asset.\n\n" +
			"## Next Steps\n\n- Book two informational interviews this month\n" +
			"- Draft a portfolio case study about research\n" +
			"- Volunteer to mentor a junior designer\n",
		Seed: blankSeed(t),
	}
}

func testFetcher(t *testing.T) assets.MemFetcher {
	return assets.MemFetcher{
		"cover.png":   pngBytes(t, 60, 85),
		"summary.png": pngBytes(t, 80, 40),
		"icon.svg":    []byte(iconSVG),
	}
}

func iconRefs(instrument, code string) string {
	if instrument == DISC.ID || instrument == RIASEC.ID {
		return "icon.svg"
	}
	return "missing/" + instrument + "/" + code + ".svg"
}

func newTestAssembler(t *testing.T, f assets.Fetcher, opts ...Option) *Assembler {
	t.Helper()
	opts = append([]Option{WithSummary("summary.png"), WithIconRefs(iconRefs)}, opts...)
	a, err := New(f, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("pdfcpu read: %v", err)
	}
	return ctx.PageCount
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := newTestAssembler(t, testFetcher(t))
	in := testInput(t)

	first, err := a.Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	second, err := a.Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("outputs differ: %d vs %d bytes", len(first), len(second))
	}
	if got := pageCount(t, first); got != len(Stages()) {
		t.Fatalf("page count = %d, want %d", got, len(Stages()))
	}
}

func TestAssembleAlwaysElevenPages(t *testing.T) {
	long := strings.Repeat("This paragraph keeps going with more detail about the profile. ", 60)
	tests := []struct {
		name   string
		mutate func(*Input)
		opts   []Option
	}{
		{"empty narrative", func(in *Input) { in.Narrative = "" }, nil},
		{"long narrative", func(in *Input) {
			in.Narrative = "Integrated analysis\n\n" + long + "\n\n" + long + "\n\nFinal message\n\n" + long
		}, nil},
		{"no scores", func(in *Input) {
			in.DISC, in.MI, in.RIASEC, in.Archetypes = nil, nil, nil, nil
		}, nil},
		{"empty profile", func(in *Input) { in.Profile = Profile{} }, nil},
		{"every icon fails", nil, []Option{WithIconRefs(func(string, string) string { return "nowhere.svg" })}},
		{"summary image missing", nil, []Option{WithSummary("gone.png")}},
		{"many tags", func(in *Input) {
			for i := 0; i < 80; i++ {
				in.Profile.Interests = append(in.Profile.Interests, "Interest number")
			}
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(t)
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			out, err := newTestAssembler(t, testFetcher(t), tt.opts...).Assemble(context.Background(), in)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if got := pageCount(t, out); got != 11 {
				t.Fatalf("page count = %d, want 11", got)
			}
		})
	}
}

func TestAssembleMissingCoverIsFatal(t *testing.T) {
	f := testFetcher(t)
	delete(f, "cover.png")

	out, err := newTestAssembler(t, f).Assemble(context.Background(), testInput(t))
	if out != nil {
		t.Fatalf("expected no output, got %d bytes", len(out))
	}
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("err = %v, want ErrAssetUnavailable", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != "cover" {
		t.Fatalf("err = %v, want StageError for cover", err)
	}
}

func TestAssembleInvalidSeed(t *testing.T) {
	tests := []struct {
		name string
		seed []byte
	}{
		{"empty", nil},
		{"text", []byte("hello")},
		{"base64 text", []byte(base64.StdEncoding.EncodeToString([]byte("hello")))},
		{"truncated pdf", []byte("%PDF-1.7\n1 0 obj\n")},
	}
	a := newTestAssembler(t, testFetcher(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(t)
			in.Seed = tt.seed
			out, err := a.Assemble(context.Background(), in)
			if out != nil || !errors.Is(err, ErrInvalidSeed) {
				t.Fatalf("Assemble = %d bytes, %v; want ErrInvalidSeed", len(out), err)
			}
		})
	}
}

func TestAssembleAcceptsBase64Seed(t *testing.T) {
	in := testInput(t)
	in.Seed = []byte("data:application/pdf;base64," + base64.StdEncoding.EncodeToString(in.Seed))
	if _, err := newTestAssembler(t, testFetcher(t)).Assemble(context.Background(), in); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
}

func TestAssembleBase64(t *testing.T) {
	a := newTestAssembler(t, testFetcher(t))
	in := testInput(t)
	raw, err := a.Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	enc, err := a.AssembleBase64(context.Background(), in)
	if err != nil {
		t.Fatalf("AssembleBase64: %v", err)
	}
	dec, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(raw, dec) {
		t.Fatal("base64 output differs from raw output")
	}
}

func TestAssembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestAssembler(t, testFetcher(t)).Assemble(ctx, testInput(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestStagesOrder(t *testing.T) {
	want := []string{
		"cover", "summary", "profile", "disc", "multiple-intelligences", "riasec",
		"archetypes", "highlights-strengths", "highlights-narrative", "action-plan", "conclusion",
	}
	if diff := cmp.Diff(want, Stages()); diff != "" {
		t.Fatalf("Stages() mismatch (-want +got):\n%s", diff)
	}
}

type recordingTracer struct{ names []string }

func (r *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	r.names = append(r.names, name)
	_, span := observability.NopTracer().StartSpan(ctx, name)
	return ctx, span
}

func TestAssembleSpans(t *testing.T) {
	tr := &recordingTracer{}
	if _, err := newTestAssembler(t, testFetcher(t), WithTracer(tr)).Assemble(context.Background(), testInput(t)); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{observability.SpanAssemble}
	for range Stages() {
		want = append(want, observability.SpanStage)
	}
	want = append(want, observability.SpanSerialize)
	if diff := cmp.Diff(want, tr.names); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
}

// lastTextX returns the x offset of the last text run equal to s.
func lastTextX(t *testing.T, page *semantic.Page, s string) float64 {
	t.Helper()
	ops := page.Operations()
	x, found := 0.0, false
	for i := 1; i < len(ops); i++ {
		if ops[i].Operator != "Tj" || ops[i-1].Operator != "Td" {
			continue
		}
		str, ok := ops[i].Operands[0].(semantic.StringOperand)
		if !ok || string(str.Value) != s {
			continue
		}
		x, found = ops[i-1].Operands[0].(semantic.NumberOperand).Value, true
	}
	if !found {
		t.Fatalf("text %q not found", s)
	}
	return x
}

func TestCardHeadingOffsetFollowsIcon(t *testing.T) {
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	failing := icons.RendererFunc(func(context.Context, string) (image.Image, error) {
		return nil, assets.ErrNotFound
	})
	working := icons.RendererFunc(func(context.Context, string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
	})
	tests := []struct {
		name     string
		renderer icons.Renderer
		want     float64
	}{
		{"icon fails", failing, margin + cardPad},
		{"icon drawn", working, margin + cardPad + iconSize + iconGap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(t)
			in.DISC = ResultSet{"D": 90, "I": 10}
			e := &env{
				b:       builder.NewBuilder(set),
				in:      &in,
				story:   narrative.Default().ExtractSections("", narrative.DefaultFallbacks("Ana")),
				icons:   tt.renderer,
				iconRef: func(string, string) string { return "icon.svg" },
				log:     observability.NopLogger{},
				total:   11,
			}
			page, err := discPage(context.Background(), e)
			if err != nil {
				t.Fatalf("discPage: %v", err)
			}
			if got := lastTextX(t, page, "Dominance"); got != tt.want {
				t.Fatalf("heading x = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssembleDoesNotFetchIconsTwice(t *testing.T) {
	var calls int
	f := testFetcher(t)
	counting := assets.FetcherFunc(func(ctx context.Context, ref string) ([]byte, error) {
		if strings.HasSuffix(ref, ".svg") {
			calls++
		}
		return f.Fetch(ctx, ref)
	})
	// One prefetch worker keeps the counter race free.
	a := newTestAssembler(t, counting, WithIconParallelism(1), WithIconRefs(func(string, string) string { return "icon.svg" }))
	if _, err := a.Assemble(context.Background(), testInput(t)); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if calls != 1 {
		t.Fatalf("icon fetched %d times, want 1", calls)
	}
}
