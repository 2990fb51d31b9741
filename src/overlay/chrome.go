package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"screen-snap/src/compose"
	"screen-snap/src/editor"
	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

var (
	maskColor      = color.RGBA{A: 100}
	borderColor    = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	highlightColor = color.RGBA{R: 0, G: 120, B: 215, A: 180}
	barColor       = color.RGBA{R: 40, G: 40, B: 40, A: 235}
	activeColor    = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	iconColor      = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	labelColor     = color.RGBA{R: 0, G: 0, B: 0, A: 170}
	caretColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	eraserColor    = color.RGBA{R: 200, G: 200, B: 200, A: 90}
	cancelColor    = color.RGBA{R: 255, G: 95, B: 87, A: 255}
	confirmColor   = color.RGBA{R: 76, G: 217, B: 100, A: 255}
)

const (
	borderWidth  = 2
	handleRadius = 4
	labelSize    = 12
	labelPad     = 4
)

// Paint draws the frozen background and the session's state onto dst. dst
// covers the session bounds at scale device pixels per logical unit, and bg
// must already match dst's size. t maps the selection to captured pixels for
// the size label; nil uses scale.
func Paint(dst *image.RGBA, bg image.Image, s *editor.Session, scale float64, t *geometry.Transform) {
	if bg != nil {
		compose.Blit(dst, bg)
	}
	p := compose.NewPainter(dst, s.Bounds().Min(), scale)

	if !s.HasSelection() {
		p.FillRect(s.Bounds(), maskColor)
		if w := s.HoverWindow; w != nil {
			p.StrokeRect(w.Bounds, borderWidth*2, borderColor)
		}
		return
	}

	sel := s.Selection()
	paintMask(p, s.Bounds(), sel)
	p.StrokeRect(sel, borderWidth, borderColor)
	for _, h := range sel.Handles() {
		p.FillCircle(h, handleRadius, borderColor)
	}
	if t == nil {
		t = geometry.NewTransform(s.Bounds().W, s.Bounds().H, scale)
	}
	paintSizeLabel(p, sel, t)

	p.Shapes(s.Shapes.Shapes())
	if s.Mode == editor.ModeIdle && s.Hovered >= 0 && s.Hovered < s.Shapes.Len() {
		p.StrokeRect(shapes.BoundsOf(s.Shapes.Get(s.Hovered)), 1, highlightColor)
	}
	if pending := s.Pending(); pending != nil {
		p.Shape(pending)
	}
	if s.Mode == editor.ModeDrawing && s.Tool == editor.ToolEraser {
		p.StrokePolyline(s.Path, 2*shapes.EraserRadius(s.Pen.Width), eraserColor)
	}
	if s.Mode == editor.ModeTextEditing {
		paintText(p, s.Text, s.Pen)
	}

	if s.State == editor.StateEditing {
		paintToolbar(p, s.Layout(), s.Tool, s.Pen)
	}
}

// paintMask dims the four bands around sel.
func paintMask(p *compose.Painter, bounds, sel geometry.Rect) {
	top := geometry.Rect{X: bounds.X, Y: bounds.Y, W: bounds.W, H: sel.Y - bounds.Y}
	bottom := geometry.Rect{X: bounds.X, Y: sel.Y + sel.H, W: bounds.W, H: bounds.Y + bounds.H - sel.Y - sel.H}
	left := geometry.Rect{X: bounds.X, Y: sel.Y, W: sel.X - bounds.X, H: sel.H}
	right := geometry.Rect{X: sel.X + sel.W, Y: sel.Y, W: bounds.X + bounds.W - sel.X - sel.W, H: sel.H}
	for _, r := range []geometry.Rect{top, bottom, left, right} {
		if !r.Empty() {
			p.FillRect(r, maskColor)
		}
	}
}

// SizeLabel formats the size of sel in captured pixels, as export crops it.
func SizeLabel(sel geometry.Rect, t *geometry.Transform) string {
	r := t.ToPixel(sel)
	return fmt.Sprintf("%d × %d", r.Dx(), r.Dy())
}

func paintSizeLabel(p *compose.Painter, sel geometry.Rect, t *geometry.Transform) {
	text := SizeLabel(sel, t)
	w := p.TextWidth(text, labelSize) + 2*labelPad
	h := float64(labelSize) + 2*labelPad
	box := geometry.Rect{X: sel.X, Y: sel.Y - h - labelPad, W: w, H: h}
	if box.Y < 0 {
		box.Y = sel.Y + labelPad
		box.X = sel.X + labelPad
	}
	p.FillRect(box, labelColor)
	p.Text(geometry.Pt(box.X+labelPad, box.Y+labelPad), text, labelSize, iconColor)
}

func paintText(p *compose.Painter, t editor.TextEntry, pen shapes.Style) {
	content := t.String()
	size := shapes.FontSize(pen.Width)
	p.Text(t.Anchor, content, size, pen.Color)
	if !t.CursorVisible {
		return
	}
	x := t.Anchor.X + p.TextWidth(content, size) + 1
	p.StrokePolyline([]geometry.Point{
		geometry.Pt(x, t.Anchor.Y),
		geometry.Pt(x, t.Anchor.Y+size*1.2),
	}, 1.5, caretColor)
}

func paintToolbar(p *compose.Painter, l editor.Layout, active editor.Tool, pen shapes.Style) {
	p.FillRect(l.Bar, barColor)
	for _, b := range l.Buttons {
		if b.Action == editor.ActionTool && b.Tool == active {
			p.FillRect(b.Rect.Inset(-2), activeColor)
		}
		paintIcon(p, b)
	}
	if !l.PanelOpen {
		return
	}
	p.FillRect(l.Panel, barColor)
	for _, b := range l.PanelButtons {
		c := b.Rect.Center()
		switch b.Action {
		case editor.ActionColor:
			if b.Color == pen.Color {
				p.FillCircle(c, 15, iconColor)
			}
			p.FillCircle(c, 12, b.Color)
		case editor.ActionWidth:
			if b.Width == pen.Width {
				p.FillRect(b.Rect.Inset(-2), activeColor)
			}
			p.FillCircle(c, b.Width+1, iconColor)
		}
	}
}

// paintIcon draws a button glyph in its rectangle.
func paintIcon(p *compose.Painter, b editor.Button) {
	r := b.Rect.Inset(-11)
	c := b.Rect.Center()
	switch b.Action {
	case editor.ActionUndo:
		p.StrokePolyline([]geometry.Point{
			geometry.Pt(r.X+r.W, r.Y+r.H),
			geometry.Pt(r.X+r.W, c.Y-3),
			geometry.Pt(r.X+6, c.Y-3),
		}, 2, iconColor)
		p.Arrow(geometry.Pt(r.X+8, c.Y-3), geometry.Pt(r.X, c.Y-3), 2, iconColor)
		return
	case editor.ActionCancel:
		p.StrokePolyline([]geometry.Point{r.Min(), r.Max()}, 2.5, cancelColor)
		p.StrokePolyline([]geometry.Point{geometry.Pt(r.X+r.W, r.Y), geometry.Pt(r.X, r.Y+r.H)}, 2.5, cancelColor)
		return
	case editor.ActionConfirm:
		p.StrokePolyline([]geometry.Point{
			geometry.Pt(r.X, c.Y),
			geometry.Pt(r.X+r.W*0.4, r.Y+r.H),
			geometry.Pt(r.X+r.W, r.Y),
		}, 2.5, confirmColor)
		return
	}

	switch b.Tool {
	case editor.ToolMove:
		d := r.W / 2
		for _, v := range []geometry.Point{{X: d}, {X: -d}, {Y: d}, {Y: -d}} {
			p.StrokePolyline([]geometry.Point{c, c.Add(v)}, 2, iconColor)
		}
		p.FillCircle(c, 2, iconColor)
	case editor.ToolRectangle:
		p.StrokeRect(r, 2, iconColor)
	case editor.ToolEllipse:
		p.StrokeEllipse(r, 2, iconColor)
	case editor.ToolPen:
		pts := make([]geometry.Point, 0, 9)
		for i := 0; i <= 8; i++ {
			x := r.X + r.W*float64(i)/8
			pts = append(pts, geometry.Pt(x, c.Y+math.Sin(float64(i)*math.Pi/4)*r.H/3))
		}
		p.StrokePolyline(pts, 2, iconColor)
	case editor.ToolArrow:
		p.Arrow(geometry.Pt(r.X, r.Y+r.H), geometry.Pt(r.X+r.W, r.Y), 2, iconColor)
	case editor.ToolLine:
		p.StrokePolyline([]geometry.Point{geometry.Pt(r.X, r.Y+r.H), geometry.Pt(r.X+r.W, r.Y)}, 2, iconColor)
	case editor.ToolText:
		size := r.H + 4
		w := p.TextWidth("T", size)
		p.Text(geometry.Pt(c.X-w/2, r.Y-3), "T", size, iconColor)
	case editor.ToolEraser:
		p.FillPolygon([]geometry.Point{
			geometry.Pt(r.X+r.W*0.45, r.Y),
			geometry.Pt(r.X+r.W, r.Y+r.H*0.55),
			geometry.Pt(r.X+r.W*0.55, r.Y+r.H),
			geometry.Pt(r.X, r.Y+r.H*0.45),
		}, iconColor)
	}
}
