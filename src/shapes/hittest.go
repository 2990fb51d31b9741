package shapes

import (
	"fmt"
	"math"

	"screen-snap/src/geometry"
)

const (
	// DefaultTolerance is the click slop, in logical units, for hit-testing.
	DefaultTolerance = 8
	// HighlightPadding pads BoundsOf for the hover and drag highlight.
	HighlightPadding = 6
)

// SegmentDistance returns the distance from p to the segment a-b. A
// degenerate segment (a == b) yields the distance from p to a.
func SegmentDistance(p, a, b geometry.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return p.Dist(geometry.Pt(a.X+t*dx, a.Y+t*dy))
}

// PointInShape reports whether p hits s within tol. Rectangles use their
// bounding box, ellipses are treated as filled, strokes use the segment
// distance with a 1.5x tolerance, and text uses its estimated glyph box.
// Zero-area rectangles and ellipses never hit.
func PointInShape(p geometry.Point, s Shape, tol float64) bool {
	switch s := s.(type) {
	case *Rectangle:
		r := geometry.RectFromPoints(s.P1, s.P2)
		if r.W == 0 || r.H == 0 {
			return false
		}
		return r.Inset(tol).Contains(p)
	case *Ellipse:
		return pointInEllipse(p, geometry.RectFromPoints(s.P1, s.P2), tol)
	case *Line:
		return SegmentDistance(p, s.P1, s.P2) <= tol*1.5
	case *Arrow:
		return SegmentDistance(p, s.P1, s.P2) <= tol*1.5
	case *Freehand:
		return pathWithin(p, s.Points, tol*1.5)
	case *Text:
		return TextBox(s.Anchor, s.Content, s.Stroke.Width).Inset(tol).Contains(p)
	default:
		panic(fmt.Sprintf("shapes: unhandled shape %T", s))
	}
}

func pointInEllipse(p geometry.Point, box geometry.Rect, tol float64) bool {
	if box.W == 0 || box.H == 0 {
		return false
	}
	if !box.Inset(tol).Contains(p) {
		return false
	}
	c := box.Center()
	a := box.W/2 + tol
	b := box.H/2 + tol
	dx := (p.X - c.X) / a
	dy := (p.Y - c.Y) / b
	return dx*dx+dy*dy <= 1
}

// pathWithin reports whether p is within d of any segment of pts.
func pathWithin(p geometry.Point, pts []geometry.Point, d float64) bool {
	switch len(pts) {
	case 0:
		return false
	case 1:
		return p.Dist(pts[0]) <= d
	}
	for i := 1; i < len(pts); i++ {
		if SegmentDistance(p, pts[i-1], pts[i]) <= d {
			return true
		}
	}
	return false
}

// BoundsOf returns the highlight box of s: its geometric bounds grown by
// half the stroke width plus HighlightPadding. It is not used for hit-testing.
func BoundsOf(s Shape) geometry.Rect {
	var r geometry.Rect
	switch s := s.(type) {
	case *Freehand:
		r = geometry.BoundsOfPoints(s.Points)
	case *Rectangle:
		r = geometry.RectFromPoints(s.P1, s.P2)
	case *Ellipse:
		r = geometry.RectFromPoints(s.P1, s.P2)
	case *Line:
		r = geometry.RectFromPoints(s.P1, s.P2)
	case *Arrow:
		head := ArrowHeadSize(s.Stroke.Width)
		r = geometry.RectFromPoints(s.P1, s.P2).Union(geometry.Rect{
			X: s.P2.X - head, Y: s.P2.Y - head, W: 2 * head, H: 2 * head,
		})
	case *Text:
		return TextBox(s.Anchor, s.Content, s.Stroke.Width).Inset(HighlightPadding)
	default:
		panic(fmt.Sprintf("shapes: unhandled shape %T", s))
	}
	return r.Inset(s.Style().Width/2 + HighlightPadding)
}

// ArrowHeadSize is the length of an arrow head's wings for a stroke width.
func ArrowHeadSize(width float64) float64 { return math.Max(10, width*3) }

// ArrowHead returns the two wing tips of an arrow pointing from p1 to p2.
// The wings sit 30 degrees either side of the shaft. ok is false for a
// zero-length arrow.
func ArrowHead(p1, p2 geometry.Point, width float64) (left, right geometry.Point, ok bool) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return geometry.Point{}, geometry.Point{}, false
	}
	ux, uy := dx/length, dy/length
	size := ArrowHeadSize(width)
	cos, sin := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
	left = geometry.Pt(
		p2.X-size*(ux*cos+uy*sin),
		p2.Y-size*(uy*cos-ux*sin),
	)
	right = geometry.Pt(
		p2.X-size*(ux*cos-uy*sin),
		p2.Y-size*(uy*cos+ux*sin),
	)
	return left, right, true
}
