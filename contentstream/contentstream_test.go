package contentstream

import (
	"math"
	"testing"

	"github.com/wudi/reportkit/ir/semantic"
)

func TestEncodeWritesOperandsBeforeOperator(t *testing.T) {
	ops := []semantic.Operation{
		{Operator: "q"},
		{Operator: "rg", Operands: []semantic.Operand{
			semantic.NumberOperand{Value: 0.1},
			semantic.NumberOperand{Value: 0.25},
			semantic.NumberOperand{Value: 1},
		}},
		{Operator: "Tf", Operands: []semantic.Operand{semantic.NameOperand{Value: "F1"}, semantic.NumberOperand{Value: 12}}},
		{Operator: "Tj", Operands: []semantic.Operand{semantic.StringOperand{Value: []byte("a(b)")}}},
		{Operator: "Q"},
	}
	got := string(Encode(ops))
	want := "q\n0.1 0.25 1 rg\n/F1 12 Tf\n(a\\(b\\)) Tj\nQ\n"
	if got != want {
		t.Fatalf("encode mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestFormatNumberAvoidsExponents(t *testing.T) {
	cases := map[float64]string{
		0.00001:    "0",
		-0.00001:   "0",
		1234567.25: "1234567.25",
		841.89:     "841.89",
		1.0 / 3.0:  "0.3333",
		math.NaN(): "0",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeLiteralStringOctalForHighBytes(t *testing.T) {
	got := string(EscapeLiteralString([]byte{'a', 0xE9, '\\'}))
	if got != "(a\\351\\\\)" {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestRoundedRectStaysInsideBounds(t *testing.T) {
	p := RoundedRect(10, 20, 100, 40, 12)
	minX, minY, maxX, maxY := p.Bounds()
	if minX < 10 || minY < 20 || maxX > 110 || maxY > 60 {
		t.Fatalf("rounded rect escapes its box: %v %v %v %v", minX, minY, maxX, maxY)
	}
	if !p.Subpaths[0].Closed {
		t.Fatalf("rounded rect must be closed")
	}
	curves := 0
	for _, pt := range p.Subpaths[0].Points {
		if pt.Type == PathCurveTo {
			curves++
		}
	}
	if curves != 4 {
		t.Fatalf("expected 4 corner curves, got %d", curves)
	}
}

func TestRoundedRectClampsRadius(t *testing.T) {
	p := RoundedRect(0, 0, 10, 4, 50)
	if p.Subpaths[0].Points[0].X != 2 {
		t.Fatalf("radius not clamped to half the short side: %+v", p.Subpaths[0].Points[0])
	}
	if flat := RoundedRect(0, 0, 10, 10, 0); len(flat.Subpaths[0].Points) != 4 {
		t.Fatalf("zero radius should give a plain rectangle")
	}
}

func TestCircleBounds(t *testing.T) {
	minX, minY, maxX, maxY := Circle(50, 50, 10).Bounds()
	if minX != 40 || maxX != 60 || minY != 40 || maxY != 60 {
		t.Fatalf("circle bounds = %v %v %v %v", minX, minY, maxX, maxY)
	}
}
