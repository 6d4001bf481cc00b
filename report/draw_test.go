package report

import (
	"math"
	"strings"
	"testing"

	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/fonts"
	"github.com/wudi/reportkit/ir/semantic"
	"github.com/wudi/reportkit/layout"
	"github.com/wudi/reportkit/ranking"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	return &env{b: builder.NewBuilder(set)}
}

func TestFullScoreFillsBarTrack(t *testing.T) {
	if barTrackW != math.Trunc(barTrackW) {
		t.Fatalf("track width %v is not whole", barTrackW)
	}
	tests := []struct {
		score int
		want  float64
	}{
		{0, 0},
		{100, barTrackW},
		{150, barTrackW},
		{50, math.Round(barTrackW / 2)},
	}
	for _, tt := range tests {
		if got := ranking.BarWidth(tt.score, barTrackW); got != tt.want {
			t.Fatalf("BarWidth(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

// runs returns each text run's x offset and string.
func runs(page *semantic.Page) (xs []float64, texts []string) {
	ops := page.Operations()
	for i := 1; i < len(ops); i++ {
		if ops[i].Operator != "Tj" || ops[i-1].Operator != "Td" {
			continue
		}
		xs = append(xs, ops[i-1].Operands[0].(semantic.NumberOperand).Value)
		texts = append(texts, string(ops[i].Operands[0].(semantic.StringOperand).Value))
	}
	return xs, texts
}

func TestTagsClipLongLabels(t *testing.T) {
	e := testEnv(t)
	pb := e.b.NewPage("tags")
	items := []string{
		strings.Repeat("Longword ", 40),
		strings.Repeat("x", 200),
		"Design",
	}
	e.tags(pb, items, 700, bottom)
	xs, texts := runs(pb.Finish())
	if len(texts) != len(items) {
		t.Fatalf("drew %d labels, want %d: %q", len(texts), len(items), texts)
	}
	for i, s := range texts {
		w := e.b.MeasureText(s, 10, builder.Regular)
		if xs[i]+w > margin+contentW {
			t.Fatalf("label %q ends at %v, past the right margin %v", s, xs[i]+w, margin+contentW)
		}
	}
	for _, s := range texts[:2] {
		if !strings.HasSuffix(s, layout.Ellipsis) {
			t.Fatalf("clipped label %q has no ellipsis", s)
		}
	}
	if texts[2] != "Design" {
		t.Fatalf("short label = %q", texts[2])
	}
}

func TestClipKeepsShortText(t *testing.T) {
	e := testEnv(t)
	if got := e.clip("Research", 200, 10, builder.Regular); got != "Research" {
		t.Fatalf("clip = %q", got)
	}
	if got := e.clip("   ", 200, 10, builder.Regular); got != "" {
		t.Fatalf("clip of blank = %q", got)
	}
}
