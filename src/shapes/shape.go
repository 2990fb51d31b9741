package shapes

import (
	"fmt"

	"screen-snap/src/geometry"
)

// Kind identifies a Shape variant.
type Kind int

const (
	KindFreehand Kind = iota
	KindRectangle
	KindEllipse
	KindLine
	KindArrow
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFreehand:
		return "freehand"
	case KindRectangle:
		return "rectangle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is one annotation primitive. The set of implementations is closed:
// *Freehand, *Rectangle, *Ellipse, *Line, *Arrow and *Text.
type Shape interface {
	Kind() Kind
	Style() Style
	shape()
}

// Freehand is a pen stroke through an ordered list of points.
type Freehand struct {
	Stroke Style
	Points []geometry.Point
}

// Rectangle is an outlined rectangle spanned by two corners.
type Rectangle struct {
	Stroke Style
	P1, P2 geometry.Point
}

// Ellipse is an axis-aligned ellipse inscribed in the box spanned by two corners.
type Ellipse struct {
	Stroke Style
	P1, P2 geometry.Point
}

type Line struct {
	Stroke Style
	P1, P2 geometry.Point
}

// Arrow is a line from P1 to P2 with a filled head at P2.
type Arrow struct {
	Stroke Style
	P1, P2 geometry.Point
}

// Text is a single line of text whose box starts at Anchor. The stroke width
// selects the font size.
type Text struct {
	Stroke  Style
	Anchor  geometry.Point
	Content string
}

func (*Freehand) Kind() Kind  { return KindFreehand }
func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Ellipse) Kind() Kind   { return KindEllipse }
func (*Line) Kind() Kind      { return KindLine }
func (*Arrow) Kind() Kind     { return KindArrow }
func (*Text) Kind() Kind      { return KindText }

func (s *Freehand) Style() Style  { return s.Stroke }
func (s *Rectangle) Style() Style { return s.Stroke }
func (s *Ellipse) Style() Style   { return s.Stroke }
func (s *Line) Style() Style      { return s.Stroke }
func (s *Arrow) Style() Style     { return s.Stroke }
func (s *Text) Style() Style      { return s.Stroke }

func (*Freehand) shape()  {}
func (*Rectangle) shape() {}
func (*Ellipse) shape()   {}
func (*Line) shape()      {}
func (*Arrow) shape()     {}
func (*Text) shape()      {}

// NewSpan builds a two-point shape of the given kind. It returns nil for
// KindFreehand and KindText.
func NewSpan(kind Kind, st Style, p1, p2 geometry.Point) Shape {
	switch kind {
	case KindRectangle:
		return &Rectangle{Stroke: st, P1: p1, P2: p2}
	case KindEllipse:
		return &Ellipse{Stroke: st, P1: p1, P2: p2}
	case KindLine:
		return &Line{Stroke: st, P1: p1, P2: p2}
	case KindArrow:
		return &Arrow{Stroke: st, P1: p1, P2: p2}
	default:
		return nil
	}
}

// Valid reports whether s may be persisted in a Model: a freehand path needs
// at least two points and text needs content.
func Valid(s Shape) bool {
	switch s := s.(type) {
	case *Freehand:
		return len(s.Points) >= 2
	case *Text:
		return s.Content != ""
	case *Rectangle, *Ellipse, *Line, *Arrow:
		return true
	default:
		return false
	}
}

// Translate shifts every point of s by (dx, dy) in place.
func Translate(s Shape, dx, dy float64) {
	d := geometry.Pt(dx, dy)
	switch s := s.(type) {
	case *Freehand:
		for i := range s.Points {
			s.Points[i] = s.Points[i].Add(d)
		}
	case *Rectangle:
		s.P1, s.P2 = s.P1.Add(d), s.P2.Add(d)
	case *Ellipse:
		s.P1, s.P2 = s.P1.Add(d), s.P2.Add(d)
	case *Line:
		s.P1, s.P2 = s.P1.Add(d), s.P2.Add(d)
	case *Arrow:
		s.P1, s.P2 = s.P1.Add(d), s.P2.Add(d)
	case *Text:
		s.Anchor = s.Anchor.Add(d)
	default:
		panic(fmt.Sprintf("shapes: unhandled shape %T", s))
	}
}

// Clone returns a deep copy of s.
func Clone(s Shape) Shape {
	switch s := s.(type) {
	case *Freehand:
		c := *s
		c.Points = append([]geometry.Point(nil), s.Points...)
		return &c
	case *Rectangle:
		c := *s
		return &c
	case *Ellipse:
		c := *s
		return &c
	case *Line:
		c := *s
		return &c
	case *Arrow:
		c := *s
		return &c
	case *Text:
		c := *s
		return &c
	default:
		panic(fmt.Sprintf("shapes: unhandled shape %T", s))
	}
}
