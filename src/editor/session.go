// Package editor holds the interaction state machine of the capture overlay.
// It is pure: pointer and key events go in, state comes out, and the
// rendering surface reads the state back to paint it.
package editor

import (
	"log"
	"unicode"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

// MinSelection is the size both sides of a drag must exceed to count as a
// region selection rather than a click.
const MinSelection = 5

// State is the top-level phase of a session.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateEditing
	StateConfirmed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateEditing:
		return "editing"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Mode is the sub-mode while editing.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMovingSelection
	ModeDrawing
	ModeDraggingShape
	ModeTextEditing
)

// Key is a non-printable key the session reacts to.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
	KeyBackspace
)

// Window is a top-level window candidate for click-to-select.
type Window struct {
	ID     uintptr
	Title  string
	Bounds geometry.Rect
}

// WindowSource finds the topmost eligible window under a logical point.
type WindowSource interface {
	WindowAt(p geometry.Point) (Window, bool)
}

// TextEntry is the in-progress text of ModeTextEditing.
type TextEntry struct {
	Anchor        geometry.Point
	Buffer        []rune
	CursorVisible bool
}

func (t TextEntry) String() string { return string(t.Buffer) }

// Result is what a confirmed session hands to the export path.
type Result struct {
	Selection   geometry.Rect
	WindowBound bool
	Window      Window
	Shapes      []shapes.Shape
}

// Options configures a Session.
type Options struct {
	// Bounds is the logical area of the overlay.
	Bounds geometry.Rect
	// Pen is the initial color and width. Zero means shapes.DefaultStyle.
	Pen     shapes.Style
	Tool    Tool
	Windows WindowSource
	// Post runs fn on the thread that owns the session. Nil runs fn inline.
	Post func(fn func())
	// Changed is called after the blinker altered visible state.
	Changed func()
	Clock   Clock
}

// Session is the state of one capture interaction. All methods must be
// called from the owning thread.
type Session struct {
	State State
	Mode  Mode
	Tool  Tool
	Pen   shapes.Style

	Shapes shapes.Model

	// Start and End are the raw selection corners.
	Start, End geometry.Point

	WindowBound bool
	Window      Window
	// HoverWindow is the window under the pointer before a selection exists.
	HoverWindow *Window

	// Hovered is the index of the shape under the pointer, or -1.
	Hovered int
	// Dragged is the index of the shape being moved, or -1.
	Dragged int

	PanelOpen bool
	Text      TextEntry

	// Path is the in-progress stroke for the pen and eraser.
	Path []geometry.Point
	// DrawStart and DrawEnd span the in-progress two-point shape. HasEnd is
	// false until the pointer moves after pressing.
	DrawStart, DrawEnd geometry.Point
	HasEnd             bool

	bounds  geometry.Rect
	windows WindowSource
	post    func(func())
	changed func()
	blink   *Blinker
	last    geometry.Point
}

func New(opts Options) *Session {
	pen := opts.Pen
	if pen.Width <= 0 {
		pen = shapes.DefaultStyle()
	}
	s := &Session{
		Tool:    opts.Tool,
		Pen:     pen,
		Hovered: -1,
		Dragged: -1,
		bounds:  opts.Bounds,
		windows: opts.Windows,
		post:    opts.Post,
		changed: opts.Changed,
	}
	if s.post == nil {
		s.post = func(fn func()) { fn() }
	}
	s.blink = NewBlinker(opts.Clock, BlinkInterval, func() { s.post(s.toggleCursor) })
	return s
}

// Bounds returns the logical overlay area.
func (s *Session) Bounds() geometry.Rect { return s.bounds }

// SetBounds updates the overlay area, for example after the window was
// resized by the window manager.
func (s *Session) SetBounds(r geometry.Rect) { s.bounds = r }

// Selection returns the normalized selection rectangle.
func (s *Session) Selection() geometry.Rect { return geometry.RectFromPoints(s.Start, s.End) }

// HasSelection reports whether a selection rectangle is shown.
func (s *Session) HasSelection() bool { return s.State == StateSelecting || s.State == StateEditing }

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool { return s.State == StateConfirmed || s.State == StateCancelled }

// Layout returns the toolbar placement for the current selection.
func (s *Session) Layout() Layout { return Arrange(s.Selection(), s.bounds, s.PanelOpen) }

// Blinking reports whether the text cursor task is running.
func (s *Session) Blinking() bool { return s.blink.Running() }

// PointerDown handles a primary button press at logical point p.
func (s *Session) PointerDown(p geometry.Point) {
	switch s.State {
	case StateIdle:
		s.State = StateSelecting
		s.Start, s.End = p, p
		s.HoverWindow = nil
		return
	case StateEditing:
	default:
		return
	}

	l := s.Layout()
	if b, ok := l.Hit(p); ok {
		s.Press(b)
		return
	}
	if l.Covers(p) {
		return
	}

	if s.Tool == ToolText {
		s.commitText()
		if s.beginDrag(p) {
			return
		}
		if s.Selection().Contains(p) {
			s.beginText(p)
		}
		return
	}
	if s.beginDrag(p) {
		return
	}
	if !s.Selection().Contains(p) {
		return
	}
	switch s.Tool {
	case ToolMove:
		s.Mode = ModeMovingSelection
		s.last = p
	case ToolPen, ToolEraser:
		s.Mode = ModeDrawing
		s.Path = []geometry.Point{p}
	default:
		s.Mode = ModeDrawing
		s.DrawStart, s.DrawEnd, s.HasEnd = p, p, false
	}
}

func (s *Session) beginDrag(p geometry.Point) bool {
	i := s.Shapes.At(p)
	if i < 0 {
		return false
	}
	s.Mode = ModeDraggingShape
	s.Dragged = i
	s.last = p
	return true
}

// PointerMove handles pointer motion with or without a button held.
func (s *Session) PointerMove(p geometry.Point) {
	switch s.State {
	case StateIdle:
		s.hoverWindow(p)
		return
	case StateSelecting:
		s.End = p
		return
	case StateEditing:
	default:
		return
	}

	switch s.Mode {
	case ModeMovingSelection:
		d := p.Sub(s.last)
		s.Start, s.End = s.Start.Add(d), s.End.Add(d)
		s.WindowBound = false
		s.last = p
	case ModeDraggingShape:
		d := p.Sub(s.last)
		if s.Dragged >= 0 && s.Dragged < s.Shapes.Len() {
			shapes.Translate(s.Shapes.Get(s.Dragged), d.X, d.Y)
		}
		s.last = p
	case ModeDrawing:
		if s.Tool == ToolPen || s.Tool == ToolEraser {
			s.Path = append(s.Path, p)
			return
		}
		s.DrawEnd, s.HasEnd = p, true
	case ModeIdle:
		s.Hovered = s.Shapes.At(p)
	}
}

func (s *Session) hoverWindow(p geometry.Point) {
	if s.windows == nil {
		return
	}
	if w, ok := s.windows.WindowAt(p); ok {
		s.HoverWindow = &w
		return
	}
	s.HoverWindow = nil
}

// PointerUp handles a primary button release.
func (s *Session) PointerUp(p geometry.Point) {
	switch s.State {
	case StateSelecting:
		s.End = p
		s.finishSelection(p)
	case StateEditing:
		switch s.Mode {
		case ModeMovingSelection:
			s.Mode = ModeIdle
		case ModeDraggingShape:
			s.Mode = ModeIdle
			s.Dragged = -1
		case ModeDrawing:
			s.finishDrawing(p)
		}
	}
}

func (s *Session) finishSelection(p geometry.Point) {
	if r := s.Selection(); r.W > MinSelection && r.H > MinSelection {
		s.State = StateEditing
		s.Mode = ModeIdle
		return
	}
	if s.windows != nil {
		if w, ok := s.windows.WindowAt(p); ok && !w.Bounds.Empty() {
			s.Start, s.End = w.Bounds.Min(), w.Bounds.Max()
			s.WindowBound = true
			s.Window = w
			s.State = StateEditing
			s.Mode = ModeIdle
			log.Printf("editor: selected window %#x %q at %+v", w.ID, w.Title, w.Bounds)
			return
		}
	}
	s.Cancel()
}

func (s *Session) finishDrawing(p geometry.Point) {
	s.Mode = ModeIdle
	switch s.Tool {
	case ToolPen:
		if len(s.Path) > 0 && s.Path[len(s.Path)-1] != p {
			s.Path = append(s.Path, p)
		}
		s.Shapes.Add(&shapes.Freehand{Stroke: s.Pen, Points: s.Path})
	case ToolEraser:
		s.Path = append(s.Path, p)
		if n := s.Shapes.EraseIntersecting(s.Path, shapes.EraserRadius(s.Pen.Width)); n > 0 {
			log.Printf("editor: erased %d shape(s)", n)
			s.Hovered = -1
		}
	default:
		if s.HasEnd {
			s.DrawEnd = p
			if kind, ok := s.Tool.spanKind(); ok {
				s.Shapes.Add(shapes.NewSpan(kind, s.Pen, s.DrawStart, s.DrawEnd))
			}
		}
	}
	s.Path = nil
	s.HasEnd = false
}

// DoubleClick confirms the session unless p is on the toolbar.
func (s *Session) DoubleClick(p geometry.Point) {
	if s.State != StateEditing || s.Layout().Covers(p) {
		return
	}
	s.Confirm()
}

// Press performs a toolbar button's action.
func (s *Session) Press(b Button) {
	switch b.Action {
	case ActionTool:
		s.SetTool(b.Tool)
	case ActionUndo:
		s.Undo()
	case ActionCancel:
		s.Cancel()
	case ActionConfirm:
		s.Confirm()
	case ActionColor:
		s.Pen.Color = b.Color
	case ActionWidth:
		s.Pen.Width = b.Width
	}
}

// SetTool switches tools. Choosing the active parameterized tool again
// toggles the parameter panel; choosing another parameterized tool opens it.
func (s *Session) SetTool(t Tool) {
	if s.Mode == ModeTextEditing {
		s.commitText()
	}
	if t == s.Tool && t.Parameterized() {
		s.PanelOpen = !s.PanelOpen
		return
	}
	s.Tool = t
	s.PanelOpen = t.Parameterized()
}

// Undo removes the most recent shape. Pending text is discarded first.
func (s *Session) Undo() {
	if s.Mode == ModeTextEditing {
		s.discardText()
		return
	}
	if s.Shapes.Undo() {
		s.Hovered = -1
	}
}

// Key handles a non-printable key.
func (s *Session) Key(k Key) {
	if s.Mode == ModeTextEditing && s.State == StateEditing {
		switch k {
		case KeyEscape:
			s.discardText()
		case KeyEnter:
			s.commitText()
		case KeyBackspace:
			if n := len(s.Text.Buffer); n > 0 {
				s.Text.Buffer = s.Text.Buffer[:n-1]
			}
			s.Text.CursorVisible = true
		}
		return
	}
	switch k {
	case KeyEscape:
		s.Cancel()
	case KeyEnter:
		if s.State == StateEditing {
			s.Confirm()
		}
	}
}

// TypeRune appends a printable character to the pending text.
func (s *Session) TypeRune(r rune) {
	if s.Mode != ModeTextEditing || !unicode.IsPrint(r) {
		return
	}
	s.Text.Buffer = append(s.Text.Buffer, r)
	s.Text.CursorVisible = true
}

func (s *Session) beginText(p geometry.Point) {
	s.Mode = ModeTextEditing
	s.Text = TextEntry{Anchor: p, CursorVisible: true}
	s.blink.Start()
}

func (s *Session) commitText() {
	if s.Mode != ModeTextEditing {
		return
	}
	if content := string(s.Text.Buffer); content != "" {
		s.Shapes.Add(&shapes.Text{Stroke: s.Pen, Anchor: s.Text.Anchor, Content: content})
	}
	s.endText()
}

func (s *Session) discardText() {
	if s.Mode != ModeTextEditing {
		return
	}
	s.endText()
}

func (s *Session) endText() {
	s.blink.Stop()
	s.Text = TextEntry{}
	s.Mode = ModeIdle
}

func (s *Session) toggleCursor() {
	if s.Mode != ModeTextEditing {
		return
	}
	s.Text.CursorVisible = !s.Text.CursorVisible
	if s.changed != nil {
		s.changed()
	}
}

// Confirm ends the session successfully. Pending text is committed.
func (s *Session) Confirm() {
	if s.State != StateEditing {
		return
	}
	s.commitText()
	s.blink.Stop()
	s.State = StateConfirmed
	s.Mode = ModeIdle
}

// Cancel ends the session and discards every shape.
func (s *Session) Cancel() {
	if s.Done() {
		return
	}
	s.blink.Stop()
	s.Text = TextEntry{}
	s.Shapes.Clear()
	s.Path = nil
	s.State = StateCancelled
	s.Mode = ModeIdle
}

// Result returns the confirmed selection and shapes. ok is false unless the
// session was confirmed.
func (s *Session) Result() (Result, bool) {
	if s.State != StateConfirmed {
		return Result{}, false
	}
	return Result{
		Selection:   s.Selection(),
		WindowBound: s.WindowBound,
		Window:      s.Window,
		Shapes:      s.Shapes.Snapshot(),
	}, true
}

// Pending returns the shape being drawn, or nil. The eraser has no pending
// shape.
func (s *Session) Pending() shapes.Shape {
	if s.Mode != ModeDrawing {
		return nil
	}
	switch s.Tool {
	case ToolPen:
		if len(s.Path) < 2 {
			return nil
		}
		return &shapes.Freehand{Stroke: s.Pen, Points: s.Path}
	case ToolEraser:
		return nil
	}
	if !s.HasEnd {
		return nil
	}
	if kind, ok := s.Tool.spanKind(); ok {
		return shapes.NewSpan(kind, s.Pen, s.DrawStart, s.DrawEnd)
	}
	return nil
}
