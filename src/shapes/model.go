package shapes

import (
	"fmt"
	"math"

	"screen-snap/src/geometry"
)

// textEraseSlack widens the eraser radius for text anchors.
const textEraseSlack = 30

// Model is the ordered shape list of one session. Order is creation order,
// which is also paint order and hit-test priority (last wins).
type Model struct {
	items []Shape
}

// Add appends s if it is valid and reports whether it was kept.
func (m *Model) Add(s Shape) bool {
	if s == nil || !Valid(s) {
		return false
	}
	m.items = append(m.items, s)
	return true
}

func (m *Model) Len() int { return len(m.items) }

// Get returns the shape at index i.
func (m *Model) Get(i int) Shape { return m.items[i] }

// Shapes returns the shapes in paint order. Callers must not modify the slice.
func (m *Model) Shapes() []Shape { return m.items }

// Snapshot returns deep copies of all shapes in paint order.
func (m *Model) Snapshot() []Shape {
	out := make([]Shape, len(m.items))
	for i, s := range m.items {
		out[i] = Clone(s)
	}
	return out
}

// At returns the index of the topmost shape under p, or -1.
func (m *Model) At(p geometry.Point) int {
	for i := len(m.items) - 1; i >= 0; i-- {
		if PointInShape(p, m.items[i], DefaultTolerance) {
			return i
		}
	}
	return -1
}

// Undo removes the most recent shape. It reports false when the model is empty.
func (m *Model) Undo() bool {
	if len(m.items) == 0 {
		return false
	}
	m.items[len(m.items)-1] = nil
	m.items = m.items[:len(m.items)-1]
	return true
}

func (m *Model) Clear() { m.items = nil }

// EraserRadius is the eraser reach for a stroke width.
func EraserRadius(width float64) float64 { return 3 * width }

// EraseIntersecting removes every shape that comes within radius of any
// point of path and returns how many were removed.
func (m *Model) EraseIntersecting(path []geometry.Point, radius float64) int {
	if len(path) == 0 {
		return 0
	}
	kept := m.items[:0]
	removed := 0
	for _, s := range m.items {
		if erased(s, path, radius) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(m.items); i++ {
		m.items[i] = nil
	}
	m.items = kept
	return removed
}

func erased(s Shape, path []geometry.Point, radius float64) bool {
	switch s := s.(type) {
	case *Freehand:
		for _, p := range path {
			if pathWithin(p, s.Points, radius) {
				return true
			}
		}
		return false
	case *Rectangle:
		r := geometry.RectFromPoints(s.P1, s.P2)
		if r.W == 0 || r.H == 0 {
			return false
		}
		c := r.Corners()
		for _, p := range path {
			for i := range c {
				if SegmentDistance(p, c[i], c[(i+1)%4]) <= radius {
					return true
				}
			}
		}
		return false
	case *Ellipse:
		r := geometry.RectFromPoints(s.P1, s.P2)
		for _, p := range path {
			if nearEllipseOutline(p, r, radius) {
				return true
			}
		}
		return false
	case *Line:
		return segmentNearPath(s.P1, s.P2, path, radius)
	case *Arrow:
		return segmentNearPath(s.P1, s.P2, path, radius)
	case *Text:
		for _, p := range path {
			if p.Dist(s.Anchor) <= radius+textEraseSlack {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("shapes: unhandled shape %T", s))
	}
}

func segmentNearPath(a, b geometry.Point, path []geometry.Point, radius float64) bool {
	for _, p := range path {
		if SegmentDistance(p, a, b) <= radius {
			return true
		}
	}
	return false
}

// nearEllipseOutline approximates the distance from p to the outline of the
// ellipse inscribed in box by scaling the normalized radial error with the
// larger semi-axis.
func nearEllipseOutline(p geometry.Point, box geometry.Rect, radius float64) bool {
	rx, ry := box.W/2, box.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := box.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	norm := math.Sqrt(dx*dx + dy*dy)
	return math.Abs(norm-1)*math.Max(rx, ry) <= radius
}
