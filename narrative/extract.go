// Package narrative splits free-form report narrative into a body, a final
// message and a list of next steps. Missing or malformed structure is the
// common case: extraction reports what it found and callers supply the
// fallbacks.
package narrative

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Headings holds case-insensitive patterns for the three section headings.
type Headings struct {
	Body  string
	Final string
	Steps string
}

// DefaultHeadings returns the heading phrases the narrative service emits.
func DefaultHeadings() Headings {
	return Headings{
		Body:  `integrated\s+analysis|profile\s+analysis`,
		Final: `final\s+message`,
		Steps: `next\s+steps`,
	}
}

// Section is an optional piece of narrative text.
type Section struct {
	Text  string
	Found bool
}

// Sections is the raw result of extraction.
type Sections struct {
	Body  Section
	Final Section
	Steps []string
}

// Extractor locates heading phrases and slices the narrative between them.
type Extractor struct {
	body, final, steps *regexp.Regexp

	MinBody  int // body shorter than this is replaced
	MinFinal int // final message shorter than this is replaced
	MinStep  int // steps must be longer than this
	MaxSteps int
}

var stepPattern = regexp.MustCompile(`^(?:[-\x{2022}*]|\d+[.)])\s*(.+)$`)

// headingPrefix is what may precede a heading phrase on its line: anything
// but letters (markers, numbering, emoji), optionally after a numbered label
// such as "Part 2 -".
const headingPrefix = `^[^\p{L}\n]*(?:(?:part|section|chapter)[ \t]+[\dIVX]+[^\p{L}\n]*)?`

// NewExtractor compiles the heading patterns. A heading phrase must be the
// first word on its line after headingPrefix, so a phrase mentioned inside a
// sentence does not start a section. Section text begins right after the
// phrase and any trailing colon or dash.
func NewExtractor(h Headings) (*Extractor, error) {
	compile := func(name, phrase string) (*regexp.Regexp, error) {
		re, err := regexp.Compile(`(?im)` + headingPrefix + `(?:` + phrase + `)[ \t]*[:.\x{2013}\x{2014}-]?[ \t]*`)
		if err != nil {
			return nil, fmt.Errorf("narrative: %s heading: %w", name, err)
		}
		return re, nil
	}
	body, err := compile("body", h.Body)
	if err != nil {
		return nil, err
	}
	final, err := compile("final", h.Final)
	if err != nil {
		return nil, err
	}
	steps, err := compile("steps", h.Steps)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		body:     body,
		final:    final,
		steps:    steps,
		MinBody:  50,
		MinFinal: 30,
		MinStep:  10,
		MaxSteps: 5,
	}, nil
}

var defaultExtractor = func() *Extractor {
	e, err := NewExtractor(DefaultHeadings())
	if err != nil {
		panic(err)
	}
	return e
}()

// Default returns the extractor for DefaultHeadings.
func Default() *Extractor { return defaultExtractor }

type span struct{ start, end int }

// Extract never fails; absent headings yield sections with Found unset.
func (e *Extractor) Extract(narrative string) Sections {
	text := Normalize(narrative)
	marks := [3]*span{find(e.body, text), find(e.final, text), find(e.steps, text)}

	var out Sections
	if s, ok := sectionText(text, marks, 0); ok {
		out.Body = Section{Text: s, Found: true}
	}
	if s, ok := sectionText(text, marks, 1); ok {
		out.Final = Section{Text: s, Found: true}
	}
	if s, ok := sectionText(text, marks, 2); ok {
		out.Steps = e.steplist(s)
	}
	return out
}

func find(re *regexp.Regexp, text string) *span {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	return &span{start: loc[0], end: loc[1]}
}

// sectionText returns the text after heading i up to the nearest heading
// that starts after it.
func sectionText(text string, marks [3]*span, i int) (string, bool) {
	m := marks[i]
	if m == nil {
		return "", false
	}
	end := len(text)
	for j, other := range marks {
		if j != i && other != nil && other.start >= m.end && other.start < end {
			end = other.start
		}
	}
	s := strings.TrimSpace(text[m.end:end])
	return s, s != ""
}

func (e *Extractor) steplist(s string) []string {
	var steps []string
	for _, line := range strings.Split(s, "\n") {
		m := stepPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		step := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(step) <= e.MinStep {
			continue
		}
		steps = append(steps, step)
		if len(steps) == e.MaxSteps {
			break
		}
	}
	return steps
}

// Fallback flags which parts of a Result were substituted.
type Fallback struct {
	Body, Final, Steps bool
}

// Any reports whether any fallback was used.
func (f Fallback) Any() bool { return f.Body || f.Final || f.Steps }

// Result is narrative ready for layout.
type Result struct {
	Body     string
	Final    string
	Steps    []string
	Fallback Fallback
}

// Resolve applies the fallback policy: short or missing sections and an
// empty step list are replaced with fb.
func (e *Extractor) Resolve(s Sections, fb Fallbacks) Result {
	r := Result{Body: s.Body.Text, Final: s.Final.Text, Steps: s.Steps}
	if !s.Body.Found || utf8.RuneCountInString(s.Body.Text) < e.MinBody {
		r.Body, r.Fallback.Body = fb.Body, true
	}
	if !s.Final.Found || utf8.RuneCountInString(s.Final.Text) < e.MinFinal {
		r.Final, r.Fallback.Final = fb.Final, true
	}
	if len(s.Steps) == 0 {
		r.Steps, r.Fallback.Steps = append([]string(nil), fb.Steps...), true
	}
	return r
}

// ExtractSections is Extract followed by Resolve.
func (e *Extractor) ExtractSections(narrative string, fb Fallbacks) Result {
	return e.Resolve(e.Extract(narrative), fb)
}
