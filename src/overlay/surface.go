package overlay

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-snap/src/editor"
	"screen-snap/src/geometry"
	"screen-snap/src/screenshot"
)

// surface is the full-window widget showing the frozen frame. It forwards
// input to the editor session and repaints from its state.
type surface struct {
	widget.BaseWidget

	sess   *editor.Session
	frame  *image.RGBA
	t      *geometry.Transform
	raster *canvas.Raster
	onDone func()

	bg    *image.RGBA
	last  geometry.Point
	ended bool
}

func newSurface(frame *image.RGBA, t *geometry.Transform, opts editor.Options, onDone func()) *surface {
	s := &surface{frame: frame, t: t, onDone: onDone}
	s.raster = canvas.NewRaster(s.draw)
	s.raster.ScaleMode = canvas.ImageScalePixels

	opts.Changed = s.raster.Refresh
	s.sess = editor.New(opts)
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

// Resize keeps the session bounds and the transform in step with the window.
func (s *surface) Resize(size fyne.Size) {
	s.BaseWidget.Resize(size)
	w, h := float64(size.Width), float64(size.Height)
	if w <= 0 || h <= 0 {
		return
	}
	s.sess.SetBounds(geometry.Rect{W: w, H: h})
	s.t.SetLogicalSize(w, h)
	b := s.frame.Bounds()
	s.t.Calibrate(b.Dx(), b.Dy())
}

// draw is the raster generator. w and h are device pixels.
func (s *surface) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bounds := s.sess.Bounds()
	if bounds.Empty() || w <= 0 || h <= 0 {
		return out
	}
	Paint(out, s.background(w, h), s.sess, float64(w)/bounds.W, s.t)
	return out
}

// background returns the frame at the raster's size, resampling once per
// size change.
func (s *surface) background(w, h int) image.Image {
	if b := s.frame.Bounds(); b.Dx() == w && b.Dy() == h {
		return s.frame
	}
	if s.bg == nil || s.bg.Bounds().Dx() != w || s.bg.Bounds().Dy() != h {
		s.bg = screenshot.Fit(s.frame, w, h)
	}
	return s.bg
}

func pos(p fyne.Position) geometry.Point {
	return geometry.Pt(float64(p.X), float64(p.Y))
}

// changed repaints and reports a finished session once.
func (s *surface) changed() {
	s.raster.Refresh()
	if s.sess.Done() && !s.ended {
		s.ended = true
		log.Printf("OVERLAY: session %s", s.sess.State)
		if s.onDone != nil {
			s.onDone()
		}
	}
}

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonSecondary {
		s.sess.Cancel()
		s.changed()
		return
	}
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.last = pos(ev.Position)
	s.sess.PointerDown(s.last)
	s.changed()
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.last = pos(ev.Position)
	s.sess.PointerUp(s.last)
	s.changed()
}

func (s *surface) MouseIn(ev *desktop.MouseEvent) { s.move(ev.Position) }

func (s *surface) MouseMoved(ev *desktop.MouseEvent) { s.move(ev.Position) }

func (s *surface) MouseOut() {}

func (s *surface) Dragged(ev *fyne.DragEvent) { s.move(ev.Position) }

// DragEnd is a no-op; MouseUp finishes the gesture.
func (s *surface) DragEnd() {}

func (s *surface) move(p fyne.Position) {
	pt := pos(p)
	if pt == s.last {
		return
	}
	s.last = pt
	s.sess.PointerMove(pt)
	s.changed()
}

func (s *surface) DoubleTapped(ev *fyne.PointEvent) {
	s.sess.DoubleClick(pos(ev.Position))
	s.changed()
}

func (s *surface) FocusGained() {}

func (s *surface) FocusLost() {}

func (s *surface) TypedRune(r rune) {
	s.sess.TypeRune(r)
	s.changed()
}

func (s *surface) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		s.sess.Key(editor.KeyEscape)
	case fyne.KeyReturn, fyne.KeyEnter:
		s.sess.Key(editor.KeyEnter)
	case fyne.KeyBackspace:
		s.sess.Key(editor.KeyBackspace)
	default:
		return
	}
	s.changed()
}

// TypedShortcut handles Ctrl+Z / Cmd+Z.
func (s *surface) TypedShortcut(sc fyne.Shortcut) {
	if isUndo(sc) {
		s.sess.Undo()
		s.changed()
	}
}

func isUndo(sc fyne.Shortcut) bool {
	if sc.ShortcutName() == "Undo" {
		return true
	}
	cs, ok := sc.(*desktop.CustomShortcut)
	if !ok || cs.KeyName != fyne.KeyZ {
		return false
	}
	return cs.Modifier == fyne.KeyModifierControl || cs.Modifier == fyne.KeyModifierSuper
}

func (s *surface) Cursor() desktop.Cursor {
	switch s.sess.CursorAt(s.last) {
	case editor.CursorPointer:
		return desktop.PointerCursor
	case editor.CursorText:
		return desktop.TextCursor
	case editor.CursorDefault:
		return desktop.DefaultCursor
	default:
		return desktop.CrosshairCursor
	}
}
