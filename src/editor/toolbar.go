package editor

import (
	"image/color"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

// Toolbar metrics in logical units.
const (
	ButtonSize    = 40
	ButtonSpacing = 4
	BarPadding    = 12
	SeparatorGap  = 8
	BarMargin     = 15
	PanelGap      = 6
)

// Action is what a toolbar button does when pressed.
type Action int

const (
	ActionTool Action = iota
	ActionUndo
	ActionCancel
	ActionConfirm
	ActionColor
	ActionWidth
)

// Button is one toolbar or panel entry with its logical hit box.
type Button struct {
	Action Action
	Tool   Tool
	Color  color.RGBA
	Width  float64
	Rect   geometry.Rect
}

// Layout is the placement of the toolbar and, when open, the parameter panel.
type Layout struct {
	Bar     geometry.Rect
	Buttons []Button

	Panel        geometry.Rect
	PanelButtons []Button
	PanelOpen    bool
}

type slot struct {
	b   Button
	sep bool // separator before this slot
}

func barSlots() []slot {
	out := make([]slot, 0, len(Tools)+3)
	for _, t := range Tools {
		out = append(out, slot{b: Button{Action: ActionTool, Tool: t}})
	}
	out = append(out,
		slot{b: Button{Action: ActionUndo}, sep: true},
		slot{b: Button{Action: ActionCancel}, sep: true},
		slot{b: Button{Action: ActionConfirm}},
	)
	return out
}

func panelSlots() []slot {
	out := make([]slot, 0, len(shapes.Palette)+len(shapes.Widths))
	for _, c := range shapes.Palette {
		out = append(out, slot{b: Button{Action: ActionColor, Color: c}})
	}
	for i, w := range shapes.Widths {
		out = append(out, slot{b: Button{Action: ActionWidth, Width: w}, sep: i == 0})
	}
	return out
}

func stripWidth(slots []slot) float64 {
	w := 2*BarPadding + float64(len(slots))*ButtonSize + float64(len(slots)-1)*ButtonSpacing
	for _, s := range slots {
		if s.sep {
			w += SeparatorGap
		}
	}
	return w
}

func place(slots []slot, origin geometry.Point) []Button {
	out := make([]Button, len(slots))
	x := origin.X + BarPadding
	y := origin.Y + BarPadding
	for i, s := range slots {
		if s.sep {
			x += SeparatorGap
		}
		b := s.b
		b.Rect = geometry.Rect{X: x, Y: y, W: ButtonSize, H: ButtonSize}
		out[i] = b
		x += ButtonSize + ButtonSpacing
	}
	return out
}

// Arrange lays out the toolbar for a selection on a screen of the given
// logical bounds. The bar is centered under the selection and flips above
// it when there is no room below; it is kept on screen horizontally. The
// panel sits on the far side of the bar from the selection.
func Arrange(sel, screen geometry.Rect, panelOpen bool) Layout {
	bs := barSlots()
	h := float64(2*BarPadding + ButtonSize)
	w := stripWidth(bs)

	x := sel.Center().X - w/2
	y := sel.Y + sel.H + BarMargin
	if y+h > screen.Y+screen.H {
		y = sel.Y - h - BarMargin
	}
	if y < screen.Y {
		// no room on either side; sit inside the selection's bottom edge
		y = sel.Y + sel.H - h - BarMargin
	}
	x = clamp(x, screen.X, screen.X+screen.W-w)

	l := Layout{
		Bar:       geometry.Rect{X: x, Y: y, W: w, H: h},
		PanelOpen: panelOpen,
	}
	l.Buttons = place(bs, l.Bar.Min())
	if !panelOpen {
		return l
	}

	ps := panelSlots()
	pw := stripWidth(ps)
	px := clamp(x, screen.X, screen.X+screen.W-pw)
	py := y + h + PanelGap
	if y < sel.Y || py+h > screen.Y+screen.H {
		py = y - h - PanelGap
	}
	l.Panel = geometry.Rect{X: px, Y: py, W: pw, H: h}
	l.PanelButtons = place(ps, l.Panel.Min())
	return l
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Hit returns the button under p. Panel buttons take precedence.
func (l Layout) Hit(p geometry.Point) (Button, bool) {
	if l.PanelOpen {
		for _, b := range l.PanelButtons {
			if b.Rect.Contains(p) {
				return b, true
			}
		}
	}
	for _, b := range l.Buttons {
		if b.Rect.Contains(p) {
			return b, true
		}
	}
	return Button{}, false
}

// Covers reports whether p lies on the bar or the open panel, including the
// gaps between buttons.
func (l Layout) Covers(p geometry.Point) bool {
	if l.Bar.Contains(p) {
		return true
	}
	return l.PanelOpen && l.Panel.Contains(p)
}
