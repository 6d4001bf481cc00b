package layout

import "strings"

// MeasureFunc returns the width of text at size, in points.
type MeasureFunc func(text string, size float64) float64

// Wrap breaks text into lines no wider than maxWidth using a greedy,
// word-at-a-time fill. Words are separated by single spaces; a word wider
// than maxWidth on its own is placed on its own line unsplit.
func Wrap(text string, maxWidth, size float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := ""
	for _, word := range words {
		if line == "" {
			line = word
			continue
		}
		candidate := line + " " + word
		if measure(candidate, size) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Ellipsis terminates text cut short by Fit.
const Ellipsis = "..."

// Fit limits lines to maxLines. When lines are dropped the last kept line
// ends with Ellipsis, trimming trailing words until it fits maxWidth.
func Fit(lines []string, maxLines int, maxWidth, size float64, measure MeasureFunc) []string {
	if maxLines <= 0 {
		return nil
	}
	if len(lines) <= maxLines {
		return lines
	}
	out := append([]string(nil), lines[:maxLines]...)
	last := out[maxLines-1]
	for {
		candidate := strings.TrimRight(last, " .,;:") + Ellipsis
		if measure(candidate, size) <= maxWidth {
			out[maxLines-1] = candidate
			return out
		}
		cut := strings.LastIndexByte(last, ' ')
		if cut <= 0 {
			out[maxLines-1] = candidate
			return out
		}
		last = last[:cut]
	}
}

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}
