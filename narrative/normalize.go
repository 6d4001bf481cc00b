package narrative

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	htmlTagPattern  = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*|/[a-zA-Z][a-zA-Z0-9]*|!--)`)
	// Markdown left unparsed: marker runs opening a line or standing alone
	// at its end, bold markers and backticks anywhere. "C#" and "snake_case"
	// survive.
	edgeMarkers    = regexp.MustCompile("^[*_#`]+[ \t]*|[ \t]+[*_#`]+$")
	inlineMarkers  = strings.NewReplacer("**", "", "`", "")
	listLine       = regexp.MustCompile(`^(?:- |\d+\. )`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

var markdown = goldmark.New()

// Normalize turns markdown or HTML narrative into plain lines. Headings and
// paragraphs become plain text, emphasis is dropped, and list items are
// re-emitted with "- " or "N. " markers. Paragraphs are separated by a blank
// line.
func Normalize(source string) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	if htmlTagPattern.MatchString(source) {
		source = stripHTML(source)
	}

	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))
	w := &plainWriter{source: src}
	w.block(doc, "")

	lines := strings.Split(w.sb.String(), "\n")
	for i, line := range lines {
		line = stripMarkers(inlineMarkers.Replace(strings.TrimSpace(line)))
		if m := listLine.FindString(line); m != "" {
			line = m + strings.Join(strings.Fields(stripMarkers(line[len(m):])), " ")
		}
		lines[i] = line
	}
	out := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

func stripMarkers(line string) string {
	return strings.TrimSpace(edgeMarkers.ReplaceAllString(strings.TrimSpace(line), ""))
}

// stripHTML drops tags and keeps text, ending block elements with newlines
// and prefixing list items with a dash.
func stripHTML(source string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(source))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				skip++
			case atom.Br:
				sb.WriteString("  \n")
			case atom.Li:
				sb.WriteString("\n- ")
			case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Ul, atom.Ol:
				sb.WriteString("\n\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Ul, atom.Ol:
				sb.WriteString("\n\n")
			case atom.Li:
				sb.WriteString("\n")
			}
		}
	}
}

type plainWriter struct {
	source []byte
	sb     strings.Builder
}

func (w *plainWriter) block(node ast.Node, indent string) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			w.sb.WriteString(indent)
			w.inline(n, "\n")
			w.sb.WriteString("\n\n")
		case *ast.List:
			w.list(n, indent)
			w.sb.WriteString("\n")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				w.sb.Write(seg.Value(w.source))
			}
			w.sb.WriteString("\n")
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			w.block(n, indent)
		}
	}
}

func (w *plainWriter) list(l *ast.List, indent string) {
	number := l.Start
	if number == 0 {
		number = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(number) + ". "
			number++
		}
		w.sb.WriteString(indent + marker)
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch n := c.(type) {
			case *ast.List:
				w.sb.WriteString("\n")
				w.list(n, indent)
			default:
				if !first {
					w.sb.WriteString(" ")
				}
				// An item is one line whatever its source wrapping.
				w.inline(n, " ")
			}
			first = false
		}
		w.sb.WriteString("\n")
	}
}

// inline writes the text under node, ending wrapped source lines with brk.
func (w *plainWriter) inline(node ast.Node, brk string) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			w.sb.Write(n.Segment.Value(w.source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				w.sb.WriteString(brk)
			}
		case *ast.String:
			w.sb.Write(n.Value)
		case *ast.AutoLink:
			w.sb.Write(n.Label(w.source))
		case *ast.RawHTML:
		default:
			w.inline(n, brk)
		}
	}
}
