package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-snap/src/geometry"
)

func sampleShapes() []Shape {
	return []Shape{
		&Freehand{Stroke: pen, Points: []geometry.Point{pt(1, 1), pt(5, 9), pt(12, 3)}},
		&Rectangle{Stroke: pen, P1: pt(20, 20), P2: pt(60, 50)},
		&Ellipse{Stroke: pen, P1: pt(100, 100), P2: pt(160, 140)},
		&Line{Stroke: pen, P1: pt(0, 200), P2: pt(50, 250)},
		&Arrow{Stroke: pen, P1: pt(300, 10), P2: pt(350, 60)},
		&Text{Stroke: pen, Anchor: pt(30, 30), Content: "hi"},
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	for _, s := range sampleShapes() {
		t.Run(s.Kind().String(), func(t *testing.T) {
			orig := Clone(s)
			Translate(s, 13.5, -7.25)
			assert.NotEqual(t, orig, s)
			Translate(s, -13.5, 7.25)
			assert.Equal(t, orig, s)
		})
	}
}

func TestAddDropsInvalidShapes(t *testing.T) {
	var m Model
	assert.False(t, m.Add(&Freehand{Stroke: pen, Points: []geometry.Point{pt(1, 1)}}))
	assert.False(t, m.Add(&Text{Stroke: pen, Anchor: pt(1, 1)}))
	assert.False(t, m.Add(nil))
	assert.True(t, m.Add(&Line{Stroke: pen, P1: pt(0, 0), P2: pt(1, 1)}))
	assert.Equal(t, 1, m.Len())
}

func TestUndoPopsLast(t *testing.T) {
	var m Model
	assert.False(t, m.Undo())
	for _, s := range sampleShapes()[:3] {
		require.True(t, m.Add(s))
	}
	require.True(t, m.Undo())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, KindRectangle, m.Get(1).Kind())
}

func TestEraseRectangleFromInside(t *testing.T) {
	var m Model
	m.Add(&Rectangle{Stroke: pen, P1: pt(20, 20), P2: pt(60, 50)})

	// nearest edges (top and bottom) are 15 away from (40,35)
	assert.Equal(t, 0, m.EraseIntersecting([]geometry.Point{pt(40, 35)}, 14))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.EraseIntersecting([]geometry.Point{pt(40, 35)}, 15))
	assert.Equal(t, 0, m.Len())
}

func TestEraseOutOfRangeIsNoop(t *testing.T) {
	var m Model
	for _, s := range sampleShapes() {
		require.True(t, m.Add(s))
	}
	before := m.Snapshot()
	path := []geometry.Point{pt(500, 500), pt(520, 510), pt(540, 530)}
	assert.Equal(t, 0, m.EraseIntersecting(path, EraserRadius(4)))
	assert.Equal(t, before, m.Snapshot())
	assert.Equal(t, 0, m.EraseIntersecting(nil, 100))
}

func TestEraseByKind(t *testing.T) {
	tests := []struct {
		name   string
		shape  Shape
		path   []geometry.Point
		radius float64
		want   bool
	}{
		{"freehand crossed", &Freehand{Stroke: pen, Points: []geometry.Point{pt(0, 0), pt(100, 0)}}, []geometry.Point{pt(50, -20), pt(50, 5)}, 6, true},
		{"ellipse outline", &Ellipse{Stroke: pen, P1: pt(0, 0), P2: pt(100, 50)}, []geometry.Point{pt(100, 25)}, 3, true},
		{"ellipse center is not outline", &Ellipse{Stroke: pen, P1: pt(0, 0), P2: pt(100, 50)}, []geometry.Point{pt(50, 25)}, 12, false},
		{"ellipse degenerate", &Ellipse{Stroke: pen, P1: pt(0, 0), P2: pt(0, 50)}, []geometry.Point{pt(0, 25)}, 12, false},
		{"line touched", &Line{Stroke: pen, P1: pt(0, 0), P2: pt(10, 10)}, []geometry.Point{pt(5, 9)}, 3, true},
		{"arrow missed", &Arrow{Stroke: pen, P1: pt(0, 0), P2: pt(10, 10)}, []geometry.Point{pt(5, 20)}, 3, false},
		{"text anchor slack", &Text{Stroke: pen, Anchor: pt(30, 30), Content: "hi"}, []geometry.Point{pt(30, 70)}, 12, true},
		{"text anchor far", &Text{Stroke: pen, Anchor: pt(30, 30), Content: "hi"}, []geometry.Point{pt(30, 80)}, 12, false},
		{"rect degenerate", &Rectangle{Stroke: pen, P1: pt(0, 0), P2: pt(40, 0)}, []geometry.Point{pt(20, 0)}, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Model
			require.True(t, m.Add(tt.shape))
			got := m.EraseIntersecting(tt.path, tt.radius) == 1
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEraseKeepsOrder(t *testing.T) {
	var m Model
	for _, s := range sampleShapes() {
		require.True(t, m.Add(s))
	}
	// hits only the line
	removed := m.EraseIntersecting([]geometry.Point{pt(25, 225)}, 4)
	require.Equal(t, 1, removed)
	var kinds []Kind
	for _, s := range m.Shapes() {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []Kind{KindFreehand, KindRectangle, KindEllipse, KindArrow, KindText}, kinds)
}
