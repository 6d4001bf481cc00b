package contentstream

import "math"

// kappa is the control point distance for approximating a quarter circle
// with a cubic Bezier curve.
const kappa = 0.5522847498

// Rect returns a closed axis-aligned rectangle path.
func Rect(x, y, w, h float64) *Path {
	return &Path{Subpaths: []Subpath{{
		Points: []PathPoint{
			{Type: PathMoveTo, X: x, Y: y},
			{Type: PathLineTo, X: x + w, Y: y},
			{Type: PathLineTo, X: x + w, Y: y + h},
			{Type: PathLineTo, X: x, Y: y + h},
		},
		Closed: true,
	}}}
}

// RoundedRect returns a rectangle whose corners are quarter circles of
// radius r. The radius is limited to half of the shorter side; r <= 0 yields
// a plain rectangle.
func RoundedRect(x, y, w, h, r float64) *Path {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return Rect(x, y, w, h)
	}
	k := r * kappa
	right, top := x+w, y+h
	return &Path{Subpaths: []Subpath{{
		Points: []PathPoint{
			{Type: PathMoveTo, X: x + r, Y: y},
			{Type: PathLineTo, X: right - r, Y: y},
			curve(right-r+k, y, right, y+r-k, right, y+r),
			{Type: PathLineTo, X: right, Y: top - r},
			curve(right, top-r+k, right-r+k, top, right-r, top),
			{Type: PathLineTo, X: x + r, Y: top},
			curve(x+r-k, top, x, top-r+k, x, top-r),
			{Type: PathLineTo, X: x, Y: y + r},
			curve(x, y+r-k, x+r-k, y, x+r, y),
		},
		Closed: true,
	}}}
}

// Circle returns a closed circle path centred on (cx, cy).
func Circle(cx, cy, r float64) *Path {
	k := r * kappa
	return &Path{Subpaths: []Subpath{{
		Points: []PathPoint{
			{Type: PathMoveTo, X: cx + r, Y: cy},
			curve(cx+r, cy+k, cx+k, cy+r, cx, cy+r),
			curve(cx-k, cy+r, cx-r, cy+k, cx-r, cy),
			curve(cx-r, cy-k, cx-k, cy-r, cx, cy-r),
			curve(cx+k, cy-r, cx+r, cy-k, cx+r, cy),
		},
		Closed: true,
	}}}
}

func curve(c1x, c1y, c2x, c2y, x, y float64) PathPoint {
	return PathPoint{
		Type:      PathCurveTo,
		Control1X: c1x, Control1Y: c1y,
		Control2X: c2x, Control2Y: c2y,
		X: x, Y: y,
	}
}

// Bounds returns the bounding box of the path's end and control points.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	add := func(x, y float64) {
		if first {
			minX, minY, maxX, maxY = x, y, x, y
			first = false
			return
		}
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, sp := range p.Subpaths {
		for _, pt := range sp.Points {
			add(pt.X, pt.Y)
			if pt.Type == PathCurveTo {
				add(pt.Control1X, pt.Control1Y)
				add(pt.Control2X, pt.Control2Y)
			}
		}
	}
	return minX, minY, maxX, maxY
}
