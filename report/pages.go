package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wudi/reportkit/assets"
	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/icons"
	"github.com/wudi/reportkit/ir/semantic"
	"github.com/wudi/reportkit/layout"
	"github.com/wudi/reportkit/narrative"
	"github.com/wudi/reportkit/observability"
	"github.com/wudi/reportkit/ranking"
)

// env is what page builders read. Builders never see the document, so no
// stage can touch a page another stage produced.
type env struct {
	b           *builder.Builder
	in          *Input
	story       narrative.Result
	icons       icons.Renderer
	iconRef     IconRefFunc
	fetcher     assets.Fetcher
	coverRef    string
	summaryRef  string
	maxImageDim int
	log         observability.Logger
	title       string
	index       int
	total       int
}

type pageFunc func(ctx context.Context, e *env) (*semantic.Page, error)

func (e *env) icon(inst Instrument, code string) string {
	if e.iconRef == nil {
		return ""
	}
	return e.iconRef(inst.ID, code)
}

func (e *env) newPage(label, title string) (builder.PageBuilder, float64) {
	pb := e.b.NewPage(label)
	footer(pb, e.index, e.total, e.title)
	return pb, titleBar(pb, title, top)
}

// fitImage returns the largest box with the image's aspect ratio inside
// (w, h), or covering it when cover is set.
func fitImage(img *semantic.Image, w, h float64, cover bool) (float64, float64) {
	sx, sy := w/float64(img.Width), h/float64(img.Height)
	s := math.Min(sx, sy)
	if cover {
		s = math.Max(sx, sy)
	}
	return float64(img.Width) * s, float64(img.Height) * s
}

func buildCover(ctx context.Context, e *env) (*semantic.Page, error) {
	img, err := assets.LoadImage(ctx, e.fetcher, e.coverRef, e.maxImageDim)
	if err != nil {
		return nil, fmt.Errorf("%w: cover %q: %w", ErrAssetUnavailable, e.coverRef, err)
	}
	pb := e.b.NewPage("cover")
	w, h := fitImage(img, pageW, pageH, true)
	if err := pb.DrawImage(img, (pageW-w)/2, (pageH-h)/2, w, h); err != nil {
		return nil, fmt.Errorf("%w: cover: %w", ErrAssetUnavailable, err)
	}

	const bandY, bandH = 110.0, 130.0
	pb.DrawRectangle(margin, bandY, contentW, bandH, builder.RectOptions{
		PathOptions:  builder.PathOptions{Fill: true, FillColor: colorPrimary},
		CornerRadius: cardRadius,
	})
	centered(pb, e.title, pageW/2, bandY+bandH-38, 14, builder.Regular, colorWhite)
	name := e.wrapFit(e.in.Profile.DisplayName(), contentW-2*cardPad, 28, builder.Bold, 1)
	for _, line := range name {
		centered(pb, line, pageW/2, bandY+40, 28, builder.Bold, colorWhite)
	}
	return pb.Finish(), nil
}

func buildSummary(ctx context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("summary", "Summary")

	if e.summaryRef != "" {
		const boxH = 200.0
		img, err := assets.LoadImage(ctx, e.fetcher, e.summaryRef, e.maxImageDim)
		if err == nil {
			w, h := fitImage(img, contentW, boxH, false)
			err = pb.DrawImage(img, (pageW-w)/2, y-boxH+(boxH-h)/2, w, h)
		}
		if err != nil {
			e.log.Warn("summary image skipped", observability.String("ref", e.summaryRef), observability.Error("error", err))
		} else {
			y -= boxH + 18
		}
	}

	intro := "An overview of your dominant result in each instrument. The following pages look at every instrument in detail."
	if first := e.in.Profile.FirstName(); first != "" {
		intro = first + ", here is an overview of your dominant result in each instrument. The following pages look at every instrument in detail."
	}
	y = block(pb, e.wrapFit(intro, contentW, bodySize, builder.Regular, 3), margin, y, bodySize, bodyLeading, builder.Regular, colorText) - 10

	const gap, h = 14.0, 130.0
	w := (contentW - gap) / 2
	for i, inst := range Instruments() {
		dom, _ := ranking.Dominant(inst.Rank(e.in.Scores(inst)))
		cat, _ := inst.Category(dom.Key)
		x := margin + float64(i%2)*(w+gap)
		cy := y - float64(i/2)*(h+gap)
		e.drawCard(ctx, pb, card{
			x: x, y: cy, w: w, h: h,
			heading: inst.Name + ": " + cat.Label,
			body:    fmt.Sprintf("Score %d/100. %s", dom.Score, cat.Description),
			iconRef: e.icon(inst, dom.Key),
		})
	}
	return pb.Finish(), nil
}

func buildProfile(_ context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("profile", "Your Profile")
	p := e.in.Profile

	const rowH, valueX = 26.0, margin + 130
	for _, f := range p.fields() {
		text(pb, f.label, margin, y-17, bodySize, builder.Bold, colorPrimary)
		value := e.wrapFit(orPlaceholder(f.value), contentW-130, bodySize, builder.Regular, 1)
		block(pb, value, valueX, y-17, bodySize, bodyLeading, builder.Regular, colorText)
		pb.DrawLine(margin, y-rowH, margin+contentW, y-rowH, builder.LineOptions{StrokeColor: colorTrack, LineWidth: 0.75})
		y -= rowH
	}

	y -= 24
	text(pb, "Interests", margin, y, cardHeadSize, builder.Bold, colorPrimary)
	y = e.tags(pb, p.Interests, y-10, bottom+140)

	y -= 16
	text(pb, "Career goals", margin, y, cardHeadSize, builder.Bold, colorPrimary)
	e.tags(pb, p.Goals, y-10, bottom)
	return pb.Finish(), nil
}

// instrumentPage builds a page with one bar per category in canonical
// order, a headline and cards for the top n categories.
func instrumentPage(inst Instrument, n int, headline func(top []ranking.Entry) string) pageFunc {
	return func(ctx context.Context, e *env) (*semantic.Page, error) {
		pb, y := e.newPage(inst.ID, inst.Title)
		scores := e.in.Scores(inst)

		y = block(pb, e.wrapFit(inst.Intro, contentW, bodySize, builder.Regular, 3), margin, y, bodySize, bodyLeading, builder.Regular, colorText) - 8
		y = bars(pb, inst, ranking.Ordered(scores, inst.Order()), y) - 16

		best := ranking.TopN(inst.Rank(scores), n)
		text(pb, headline(best), margin, y, cardHeadSize, builder.Bold, colorPrimary)
		y -= 22

		const gap = 12.0
		w := (contentW - gap*float64(len(best)-1)) / float64(len(best))
		h := math.Min(150, y-bottom)
		for i, entry := range best {
			cat, _ := inst.Category(entry.Key)
			e.drawCard(ctx, pb, card{
				x: margin + float64(i)*(w+gap), y: y, w: w, h: h,
				heading: cat.Label,
				body:    fmt.Sprintf("%d/100. %s", entry.Score, cat.Description),
				iconRef: e.icon(inst, entry.Key),
			})
		}
		return pb.Finish(), nil
	}
}

func labels(inst Instrument, entries []ranking.Entry) string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = inst.Label(entry.Key)
	}
	return strings.Join(names, ", ")
}

var (
	discPage = instrumentPage(DISC, 1, func(top []ranking.Entry) string {
		return "Dominant style: " + labels(DISC, top)
	})
	miPage = instrumentPage(MI, 3, func(top []ranking.Entry) string {
		return "Top intelligences: " + labels(MI, top)
	})
	riasecPage = instrumentPage(RIASEC, 3, func(top []ranking.Entry) string {
		return "Your Holland code: " + ranking.Code(top) + " (" + labels(RIASEC, top) + ")"
	})
	archetypesPage = instrumentPage(Archetypes, 3, func(top []ranking.Entry) string {
		return "Leading archetypes: " + labels(Archetypes, top)
	})
)

func buildStrengths(ctx context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("strengths", "Your Strengths")
	y = block(pb, []string{"The strongest result of each instrument, side by side."}, margin, y, bodySize, bodyLeading, builder.Regular, colorText) - 8

	const gap, h = 12.0, 120.0
	for _, inst := range Instruments() {
		dom, _ := ranking.Dominant(inst.Rank(e.in.Scores(inst)))
		cat, _ := inst.Category(dom.Key)
		e.drawCard(ctx, pb, card{
			x: margin, y: y, w: contentW, h: h,
			heading: fmt.Sprintf("%s: %s (%d/100)", inst.Name, cat.Label, dom.Score),
			body:    cat.Description,
			iconRef: e.icon(inst, dom.Key),
		})
		y -= h + gap
	}
	return pb.Finish(), nil
}

// buildInsights lays out the narrative body, clipped to one page.
func buildInsights(_ context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("insights", "Insights")
	measure := e.b.Measure(builder.Regular)

	var lines []string
	for i, para := range layout.Paragraphs(e.story.Body) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, layout.Wrap(para, contentW, bodySize, measure)...)
	}
	maxLines := int(math.Floor((y-bottom)/bodyLeading)) + 1
	lines = layout.Fit(lines, maxLines, contentW, bodySize, measure)
	block(pb, lines, margin, y, bodySize, bodyLeading, builder.Regular, colorText)
	return pb.Finish(), nil
}

func buildActionPlan(ctx context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("action-plan", "Action Plan")
	y = block(pb, []string{"Concrete moves to put these results to work."}, margin, y, bodySize, bodyLeading, builder.Regular, colorText) - 12

	const r = 11.0
	textX := margin + 2*r + 12
	for i, step := range e.story.Steps {
		pb.DrawCircle(margin+r, y-r+4, r, builder.PathOptions{Fill: true, FillColor: colorAccent})
		centered(pb, fmt.Sprint(i+1), margin+r, y-r, bodySize, builder.Bold, colorWhite)
		lines := e.wrapFit(step, margin+contentW-textX, bodySize, builder.Regular, 3)
		after := block(pb, lines, textX, y-r, bodySize, bodyLeading, builder.Regular, colorText)
		y = math.Min(after, y-2*r-4) - 14
	}

	goals := orPlaceholder(strings.Join(e.in.Profile.Goals, ", "))
	h := math.Min(110, y-bottom)
	e.drawCard(ctx, pb, card{
		x: margin, y: y - 6, w: contentW, h: h,
		heading: "Your career goals",
		body:    goals,
	})
	return pb.Finish(), nil
}

func buildConclusion(_ context.Context, e *env) (*semantic.Page, error) {
	pb, y := e.newPage("conclusion", "Conclusion")

	const size, leading = 13.0, 18.0
	lines := e.wrapFit(e.story.Final, contentW-2*cardPad, size, builder.Regular, 16)
	h := 2*cardPad + float64(len(lines))*leading
	pb.DrawRectangle(margin, y-h, contentW, h, builder.RectOptions{
		PathOptions:  builder.PathOptions{Fill: true, FillColor: colorCard},
		CornerRadius: cardRadius,
	})
	block(pb, lines, margin+cardPad, y-cardPad-size*0.8, size, leading, builder.Regular, colorText)
	y -= h + 40

	thanks := "Thank you for completing the assessment."
	if first := e.in.Profile.FirstName(); first != "" {
		thanks = "Thank you, " + first + "."
	}
	centered(pb, thanks, pageW/2, y, 16, builder.Bold, colorPrimary)
	centered(pb, "This report reflects your answers at the time of the assessment.", pageW/2, y-22, 9, builder.Regular, colorMuted)
	return pb.Finish(), nil
}
