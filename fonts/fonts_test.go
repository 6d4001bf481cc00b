package fonts_test

import (
	"math"
	"testing"

	"github.com/wudi/reportkit/fonts"
)

func TestDefaultFacesLoad(t *testing.T) {
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("load default faces: %v", err)
	}
	if set.Regular == nil || set.Bold == nil {
		t.Fatalf("missing face: %+v", set)
	}
	font := set.Regular.Font()
	if font.Subtype != "TrueType" || font.Encoding != "WinAnsiEncoding" {
		t.Fatalf("unexpected font dict: %s %s", font.Subtype, font.Encoding)
	}
	if got := len(font.Widths); got != 224 {
		t.Fatalf("expected widths for codes 32..255, got %d", got)
	}
	if font.Descriptor == nil || len(font.Descriptor.FontFile) == 0 {
		t.Fatalf("font file not embedded")
	}
	if font.Descriptor.Ascent <= 0 || font.Descriptor.Descent >= 0 {
		t.Fatalf("implausible vertical metrics: %+v", font.Descriptor)
	}
}

func TestMeasureIsAdditiveAndScales(t *testing.T) {
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("load default faces: %v", err)
	}
	f := set.Regular
	ab := f.Measure("ab", 12)
	if a, b := f.Measure("a", 12), f.Measure("b", 12); math.Abs(ab-(a+b)) > 1e-9 {
		t.Fatalf("measure not additive: %v != %v + %v", ab, a, b)
	}
	if got := f.Measure("ab", 24); got != 2*ab {
		t.Fatalf("measure does not scale with size: %v vs %v", got, 2*ab)
	}
	if f.Measure("", 12) != 0 {
		t.Fatalf("empty text should measure zero")
	}
	if set.Bold.Measure("Wide", 12) < f.Measure("Wide", 12) {
		t.Fatalf("bold face narrower than regular")
	}
}

func TestEncodeUsesWindows1252(t *testing.T) {
	set, err := fonts.Default()
	if err != nil {
		t.Fatalf("load default faces: %v", err)
	}
	got := set.Regular.Encode("aé€中")
	want := []byte{'a', 0xE9, 0x80, fonts.Replacement}
	if string(got) != string(want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}
