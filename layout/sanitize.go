package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// substitutions maps runes the report fonts cannot render, or render
// inconsistently, to ASCII equivalents.
var substitutions = map[rune]string{
	'\t':     " ",
	'\u00a0': " ", // no-break space
	'\u2007': " ", // figure space
	'\u202f': " ", // narrow no-break space
	'\u2010': "-", // hyphen
	'\u2011': "-", // non-breaking hyphen
	'\u2012': "-", // figure dash
	'\u2013': "-", // en dash
	'\u2014': "-", // em dash
	'\u2015': "-", // horizontal bar
	'\u2212': "-", // minus sign
	'\u2022': "*", // bullet
	'\u2023': "*",
	'\u25cf': "*",
	'\u2018': "'",
	'\u2019': "'",
	'\u201a': "'",
	'\u2032': "'",
	'\u201c': "\"",
	'\u201d': "\"",
	'\u201e': "\"",
	'\u2033': "\"",
	'\u2026': "...",
}

// Sanitize maps text onto the character set the report fonts can render:
// line breaks collapse to a single space, typographic dashes, quotes, bullets
// and spaces become ASCII, and any remaining rune outside Windows-1252 loses
// its diacritics or becomes '?'. Sanitize is idempotent.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	inBreak := false
	for _, r := range text {
		if r == '\r' || r == '\n' {
			if !inBreak {
				b.WriteByte(' ')
			}
			inBreak = true
			continue
		}
		inBreak = false
		if sub, ok := substitutions[r]; ok {
			b.WriteString(sub)
			continue
		}
		if renderable(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(fold(r))
	}
	return b.String()
}

func renderable(r rune) bool {
	if r < 0x20 {
		return false
	}
	_, ok := charmap.Windows1252.EncodeRune(r)
	return ok
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold reduces r to renderable base letters, e.g. 'ő' to 'o'.
func fold(r rune) string {
	folded, _, err := transform.String(stripMarks, string(r))
	if err != nil || folded == "" {
		return "?"
	}
	for _, fr := range folded {
		if !renderable(fr) {
			return "?"
		}
	}
	return folded
}
