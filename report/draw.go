package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wudi/reportkit/builder"
	"github.com/wudi/reportkit/icons"
	"github.com/wudi/reportkit/layout"
	"github.com/wudi/reportkit/observability"
	"github.com/wudi/reportkit/ranking"
)

// Page geometry shared by all builders.
const (
	pageW    = builder.PageWidth
	pageH    = builder.PageHeight
	margin   = 48.0
	contentW = pageW - 2*margin
	top      = pageH - margin
	footerY  = 28.0
	bottom   = 60.0

	titleBarH    = 38.0
	titleSize    = 18.0
	bodySize     = 11.0
	bodyLeading  = 15.0
	cardPad      = 14.0
	cardRadius   = 10.0
	cardHeadSize = 13.0
	cardBodySize = 9.5
	cardLeading  = 12.5
	iconSize     = 28.0
	iconGap      = 8.0
	barH         = 12.0
	barRowH      = 24.0
	barLabelW    = 140.0
	barScoreW    = 36.0
)

var (
	colorPrimary = builder.MustHex("#2B4C7E")
	colorAccent  = builder.MustHex("#E07A5F")
	colorCard    = builder.MustHex("#F1F4F9")
	colorTrack   = builder.MustHex("#DDE3EC")
	colorText    = builder.MustHex("#1F2933")
	colorMuted   = builder.MustHex("#6B7785")
	colorWhite   = builder.Color{R: 1, G: 1, B: 1}
)

// barTrackW is whole so a full score fills the track exactly.
var barTrackW = math.Floor(contentW - barLabelW - barScoreW)

// text draws a single line.
func text(pb builder.PageBuilder, s string, x, y, size float64, w builder.Weight, c builder.Color) {
	pb.DrawText(s, x, y, builder.TextOptions{Weight: w, FontSize: size, Color: c})
}

// centered draws s horizontally centred on cx.
func centered(pb builder.PageBuilder, s string, cx, y, size float64, w builder.Weight, c builder.Color) {
	text(pb, s, cx-pb.MeasureText(s, size, w)/2, y, size, w, c)
}

// wrapFit wraps s to width and keeps at most maxLines lines.
func (e *env) wrapFit(s string, width, size float64, w builder.Weight, maxLines int) []string {
	measure := e.b.Measure(w)
	return layout.Fit(layout.Wrap(s, width, size, measure), maxLines, width, size, measure)
}

// clip fits s on one line of width, ending it with an ellipsis when cut.
func (e *env) clip(s string, width, size float64, w builder.Weight) string {
	lines := e.wrapFit(s, width, size, w, 1)
	if len(lines) == 0 {
		return ""
	}
	line := lines[0]
	if e.b.MeasureText(line, size, w) <= width {
		return line
	}
	// A single word wider than the line.
	runes := []rune(strings.TrimSuffix(line, layout.Ellipsis))
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if cut := string(runes) + layout.Ellipsis; e.b.MeasureText(cut, size, w) <= width {
			return cut
		}
	}
	return ""
}

// block draws wrapped lines downward from baseline y and returns the
// baseline below the last line.
func block(pb builder.PageBuilder, lines []string, x, y, size, leading float64, w builder.Weight, c builder.Color) float64 {
	for _, line := range lines {
		text(pb, line, x, y, size, w, c)
		y -= leading
	}
	return y
}

// titleBar draws the page heading and returns the y below it.
func titleBar(pb builder.PageBuilder, title string, y float64) float64 {
	pb.DrawRectangle(margin, y-titleBarH, contentW, titleBarH, builder.RectOptions{
		PathOptions:  builder.PathOptions{Fill: true, FillColor: colorPrimary},
		CornerRadius: cardRadius,
	})
	centered(pb, title, pageW/2, y-titleBarH+(titleBarH-titleSize*0.7)/2, titleSize, builder.Bold, colorWhite)
	return y - titleBarH - 22
}

// footer numbers the page.
func footer(pb builder.PageBuilder, index, total int, title string) {
	text(pb, title, margin, footerY, 8, builder.Regular, colorMuted)
	label := fmt.Sprintf("%d / %d", index+1, total)
	text(pb, label, pageW-margin-pb.MeasureText(label, 8, builder.Regular), footerY, 8, builder.Regular, colorMuted)
}

// card is a rounded panel with a heading, wrapped body and optional icon.
type card struct {
	x, y, w, h float64 // y is the top edge
	heading    string
	body       string
	iconRef    string
}

// headingX returns where the heading starts given whether an icon was drawn.
func (c card) headingX(iconDrawn bool) float64 {
	if iconDrawn {
		return c.x + cardPad + iconSize + iconGap
	}
	return c.x + cardPad
}

// drawCard draws c and reports whether its icon was drawn.
func (e *env) drawCard(ctx context.Context, pb builder.PageBuilder, c card) bool {
	pb.DrawRectangle(c.x, c.y-c.h, c.w, c.h, builder.RectOptions{
		PathOptions:  builder.PathOptions{Fill: true, FillColor: colorCard},
		CornerRadius: cardRadius,
	})
	headY := c.y - cardPad - cardHeadSize*0.8
	drawn := false
	if c.iconRef != "" {
		drawn = icons.TryDraw(ctx, pb, e.icons, c.iconRef, c.x+cardPad+iconSize/2, headY+cardHeadSize*0.35, iconSize)
		if !drawn {
			e.log.Debug("icon unavailable", observability.String("ref", c.iconRef))
		}
	}
	hx := c.headingX(drawn)
	heading := e.wrapFit(c.heading, c.x+c.w-cardPad-hx, cardHeadSize, builder.Bold, 1)
	block(pb, heading, hx, headY, cardHeadSize, cardLeading, builder.Bold, colorPrimary)

	bodyTop := headY - cardHeadSize - 6
	if drawn {
		bodyTop = math.Min(bodyTop, c.y-cardPad-iconSize-cardBodySize)
	}
	avail := bodyTop - (c.y - c.h + cardPad) + cardLeading
	maxLines := int(math.Floor(avail / cardLeading))
	lines := e.wrapFit(c.body, c.w-2*cardPad, cardBodySize, builder.Regular, maxLines)
	block(pb, lines, c.x+cardPad, bodyTop, cardBodySize, cardLeading, builder.Regular, colorText)
	return drawn
}

// bars draws one labelled bar per entry and returns the y below them.
func bars(pb builder.PageBuilder, inst Instrument, entries []ranking.Entry, y float64) float64 {
	trackX := margin + barLabelW
	for _, entry := range entries {
		baseline := y - barRowH + (barRowH-barH)/2
		text(pb, inst.Label(entry.Key), margin, baseline+2, 10, builder.Regular, colorText)
		pb.DrawRectangle(trackX, baseline, barTrackW, barH, builder.RectOptions{
			PathOptions:  builder.PathOptions{Fill: true, FillColor: colorTrack},
			CornerRadius: barH / 2,
		})
		if w := ranking.BarWidth(entry.Score, barTrackW); w > 0 {
			pb.DrawRectangle(trackX, baseline, w, barH, builder.RectOptions{
				PathOptions:  builder.PathOptions{Fill: true, FillColor: colorAccent},
				CornerRadius: math.Min(barH/2, w/2),
			})
		}
		score := fmt.Sprintf("%d", entry.Score)
		text(pb, score, pageW-margin-pb.MeasureText(score, 10, builder.Bold), baseline+2, 10, builder.Bold, colorText)
		y -= barRowH
	}
	return y
}

// tags draws rounded pills left to right, wrapping at the content width, and
// returns the y below the last row. Pills that would end below minY are
// left out.
func (e *env) tags(pb builder.PageBuilder, items []string, y, minY float64) float64 {
	const size, padX, h, gap = 10.0, 10.0, 22.0, 8.0
	if len(items) == 0 {
		text(pb, NotInformed, margin, y-15, size, builder.Regular, colorMuted)
		return y - h - gap
	}
	x := margin
	for _, item := range items {
		label := e.clip(item, contentW-2*padX, size, builder.Regular)
		if label == "" {
			continue
		}
		w := pb.MeasureText(label, size, builder.Regular) + 2*padX
		if x+w > margin+contentW && x > margin {
			x = margin
			y -= h + gap
		}
		if y-h < minY {
			break
		}
		pb.DrawRectangle(x, y-h, w, h, builder.RectOptions{
			PathOptions:  builder.PathOptions{Fill: true, FillColor: colorCard},
			CornerRadius: h / 2,
		})
		text(pb, label, x+padX, y-h+7, size, builder.Regular, colorPrimary)
		x += w + gap
	}
	return y - h - gap
}
