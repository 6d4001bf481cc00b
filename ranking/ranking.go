// Package ranking orders instrument category scores and selects the dominant
// and top-N categories. Ties always resolve to the category that comes first
// in the instrument's canonical key order.
package ranking

import (
	"math"
	"slices"
)

// Entry is one category with its clamped score.
type Entry struct {
	Key   string
	Score int
}

// Clamp limits a score to [0,100].
func Clamp(score int) int {
	return min(max(score, 0), 100)
}

// Rank returns one entry per key of order, sorted by descending score.
// Scores missing from scores count as 0. The sort is stable over the
// canonical order, so equal scores keep canonical precedence.
func Rank(scores map[string]int, order []string) []Entry {
	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, Entry{Key: key, Score: Clamp(scores[key])})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Score - a.Score
	})
	return entries
}

// TopN returns the first min(n, len(ranked)) entries.
func TopN(ranked []Entry, n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return slices.Clone(ranked[:n])
}

// Dominant returns the highest ranked entry.
func Dominant(ranked []Entry) (Entry, bool) {
	if len(ranked) == 0 {
		return Entry{}, false
	}
	return ranked[0], true
}

// Ordered returns entries in canonical order with clamped scores, for bar
// charts that keep a fixed category order.
func Ordered(scores map[string]int, order []string) []Entry {
	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, Entry{Key: key, Score: Clamp(scores[key])})
	}
	return entries
}

// BarWidth scales a score onto a bar of full width maxWidth, rounding to
// whole points.
func BarWidth(score int, maxWidth float64) float64 {
	return math.Round(float64(Clamp(score)) / 100 * maxWidth)
}

// Code joins the keys of entries, e.g. a Holland code "SIA".
func Code(entries []Entry) string {
	var b []byte
	for _, e := range entries {
		b = append(b, e.Key...)
	}
	return string(b)
}
