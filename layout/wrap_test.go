package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// monoMeasure treats every rune as one point wide at size 1.
func monoMeasure(text string, size float64) float64 {
	return float64(len([]rune(text))) * size
}

func TestWrapGreedy(t *testing.T) {
	got := Wrap("the quick brown fox jumps over the lazy dog", 10, 1, monoMeasure)
	want := []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Wrap mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapWidthBound(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur adipiscing elit ", 12)
	for _, width := range []float64{8, 15, 23, 40, 80} {
		for _, line := range Wrap(text, width, 1, monoMeasure) {
			if monoMeasure(line, 1) > width && strings.Contains(line, " ") {
				t.Fatalf("line %q exceeds width %v", line, width)
			}
		}
	}
}

func TestWrapOverlongWordKeptWhole(t *testing.T) {
	got := Wrap("a supercalifragilistic word", 6, 1, monoMeasure)
	want := []string{"a", "supercalifragilistic", "word"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Wrap mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapEmptyAndWhitespace(t *testing.T) {
	if got := Wrap("   ", 10, 1, monoMeasure); len(got) != 0 {
		t.Fatalf("expected no lines, got %q", got)
	}
	if got := Wrap("a\tb", 10, 1, monoMeasure); len(got) != 1 || got[0] != "a b" {
		t.Fatalf("expected single spaced line, got %q", got)
	}
}

func TestFitAddsEllipsis(t *testing.T) {
	lines := []string{"one two", "three four", "five six"}
	got := Fit(lines, 2, 10, 1, monoMeasure)
	want := []string{"one two", "three..."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Fit mismatch (-want +got):\n%s", diff)
	}
	if got := Fit(lines, 5, 10, 1, monoMeasure); len(got) != 3 {
		t.Fatalf("Fit should keep short input, got %q", got)
	}
	if got := Fit(lines, 0, 10, 1, monoMeasure); got != nil {
		t.Fatalf("Fit with zero budget should be empty, got %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("first line\ncontinues\n\n\nsecond\r\n\r\n  ")
	want := []string{"first line continues", "second"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Paragraphs mismatch (-want +got):\n%s", diff)
	}
}
