package editor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

var screen = geometry.Rect{W: 1920, H: 1080}

type fakeWindows []Window

func (f fakeWindows) WindowAt(p geometry.Point) (Window, bool) {
	for _, w := range f {
		if w.Bounds.Contains(p) {
			return w, true
		}
	}
	return Window{}, false
}

type manualTicker struct {
	c chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

type manualClock struct {
	last *manualTicker
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.last = &manualTicker{c: make(chan time.Time)}
	return c.last
}

func drag(s *Session, pts ...geometry.Point) {
	s.PointerDown(pts[0])
	for _, p := range pts[1:] {
		s.PointerMove(p)
	}
	s.PointerUp(pts[len(pts)-1])
}

func editing(t *testing.T, opts Options, from, to geometry.Point) *Session {
	t.Helper()
	if opts.Bounds.Empty() {
		opts.Bounds = screen
	}
	s := New(opts)
	drag(s, from, to)
	require.Equal(t, StateEditing, s.State)
	return s
}

func TestDragSelectsRegion(t *testing.T) {
	s := New(Options{Bounds: screen})
	drag(s, geometry.Pt(10, 10), geometry.Pt(60, 40), geometry.Pt(120, 95))

	assert.Equal(t, StateEditing, s.State)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, W: 110, H: 85}, s.Selection())
	assert.False(t, s.WindowBound)
}

func TestReversedDragNormalizes(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(120, 95), geometry.Pt(10, 10))
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, W: 110, H: 85}, s.Selection())
}

func TestTinyClickWithoutWindowCancels(t *testing.T) {
	s := New(Options{Bounds: screen})
	drag(s, geometry.Pt(10, 10), geometry.Pt(13, 12))
	assert.Equal(t, StateCancelled, s.State)
	_, ok := s.Result()
	assert.False(t, ok)
}

func TestTinyClickAdoptsWindow(t *testing.T) {
	win := Window{ID: 0x42, Title: "editor", Bounds: geometry.Rect{X: 100, Y: 50, W: 640, H: 480}}
	s := New(Options{Bounds: screen, Windows: fakeWindows{win}})

	s.PointerMove(geometry.Pt(200, 200))
	require.NotNil(t, s.HoverWindow)
	assert.Equal(t, win.ID, s.HoverWindow.ID)

	drag(s, geometry.Pt(200, 200))
	require.Equal(t, StateEditing, s.State)
	assert.True(t, s.WindowBound)
	assert.Equal(t, win, s.Window)
	assert.Equal(t, win.Bounds, s.Selection())
	assert.Nil(t, s.HoverWindow)
}

func TestTinyClickOutsideWindowsCancels(t *testing.T) {
	win := Window{ID: 1, Bounds: geometry.Rect{X: 100, Y: 50, W: 64, H: 48}}
	s := New(Options{Bounds: screen, Windows: fakeWindows{win}})
	drag(s, geometry.Pt(500, 500))
	assert.Equal(t, StateCancelled, s.State)
}

func TestMovingSelectionDropsWindowBinding(t *testing.T) {
	win := Window{ID: 7, Bounds: geometry.Rect{X: 100, Y: 100, W: 300, H: 200}}
	s := New(Options{Bounds: screen, Windows: fakeWindows{win}})
	drag(s, geometry.Pt(200, 200))
	require.True(t, s.WindowBound)

	drag(s, geometry.Pt(200, 200), geometry.Pt(230, 210))
	assert.Equal(t, geometry.Rect{X: 130, Y: 110, W: 300, H: 200}, s.Selection())
	assert.False(t, s.WindowBound)
	assert.Equal(t, ModeIdle, s.Mode)
}

func TestTextCommitAndDiscard(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(10, 10), geometry.Pt(120, 95))
	s.SetTool(ToolText)

	s.PointerDown(geometry.Pt(30, 30))
	s.PointerUp(geometry.Pt(30, 30))
	require.Equal(t, ModeTextEditing, s.Mode)
	assert.True(t, s.Blinking())

	s.TypeRune('h')
	s.TypeRune('\n')
	s.TypeRune('i')
	assert.Equal(t, "hi", s.Text.String())

	s.Key(KeyEnter)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Equal(t, StateEditing, s.State, "enter while typing must not confirm")
	assert.False(t, s.Blinking())
	require.Equal(t, 1, s.Shapes.Len())
	txt, ok := s.Shapes.Get(0).(*shapes.Text)
	require.True(t, ok)
	assert.Equal(t, "hi", txt.Content)
	assert.Equal(t, geometry.Pt(30, 30), txt.Anchor)

	s.PointerDown(geometry.Pt(90, 80))
	s.TypeRune('x')
	s.Key(KeyEscape)
	assert.Equal(t, StateEditing, s.State, "escape while typing must not cancel")
	assert.Equal(t, 1, s.Shapes.Len())
}

func TestTextBackspaceAndEmptyCommit(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(10, 10), geometry.Pt(300, 200))
	s.SetTool(ToolText)
	s.PointerDown(geometry.Pt(50, 50))
	s.TypeRune('a')
	s.Key(KeyBackspace)
	s.Key(KeyBackspace)
	assert.Empty(t, s.Text.Buffer)

	// clicking elsewhere commits; empty text is dropped
	s.PointerDown(geometry.Pt(150, 150))
	assert.Equal(t, 0, s.Shapes.Len())
	assert.Equal(t, ModeTextEditing, s.Mode)
	assert.Equal(t, geometry.Pt(150, 150), s.Text.Anchor)
}

func TestToolSwitchCommitsText(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(10, 10), geometry.Pt(300, 200))
	s.SetTool(ToolText)
	s.PointerDown(geometry.Pt(50, 50))
	s.TypeRune('o')
	s.TypeRune('k')
	s.SetTool(ToolPen)
	assert.Equal(t, 1, s.Shapes.Len())
	assert.Equal(t, ToolPen, s.Tool)
}

func TestPanelToggle(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(10, 10), geometry.Pt(300, 200))
	assert.False(t, s.PanelOpen)

	s.SetTool(ToolRectangle)
	assert.True(t, s.PanelOpen)
	s.SetTool(ToolRectangle)
	assert.False(t, s.PanelOpen)
	s.SetTool(ToolRectangle)
	assert.True(t, s.PanelOpen)

	s.SetTool(ToolArrow)
	assert.True(t, s.PanelOpen, "switching between parameterized tools keeps the panel")

	s.SetTool(ToolEraser)
	assert.False(t, s.PanelOpen)
	s.SetTool(ToolEraser)
	assert.False(t, s.PanelOpen)
	s.SetTool(ToolMove)
	assert.False(t, s.PanelOpen)
}

func TestPanelButtonsChangePen(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(10, 10), geometry.Pt(300, 200))
	s.SetTool(ToolPen)
	l := s.Layout()
	require.True(t, l.PanelOpen)

	var green, thin Button
	for _, b := range l.PanelButtons {
		if b.Action == ActionColor && b.Color == shapes.Green {
			green = b
		}
		if b.Action == ActionWidth && b.Width == 2 {
			thin = b
		}
	}
	s.PointerDown(green.Rect.Center())
	s.PointerDown(thin.Rect.Center())
	assert.Equal(t, shapes.Style{Color: shapes.Green, Width: 2}, s.Pen)
	assert.Equal(t, 0, s.Shapes.Len())
}

func TestDrawSpanShapes(t *testing.T) {
	for _, tc := range []struct {
		tool Tool
		kind shapes.Kind
	}{
		{ToolRectangle, shapes.KindRectangle},
		{ToolEllipse, shapes.KindEllipse},
		{ToolArrow, shapes.KindArrow},
		{ToolLine, shapes.KindLine},
	} {
		t.Run(tc.tool.String(), func(t *testing.T) {
			s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
			s.SetTool(tc.tool)
			drag(s, geometry.Pt(50, 50), geometry.Pt(80, 70), geometry.Pt(120, 90))
			require.Equal(t, 1, s.Shapes.Len())
			assert.Equal(t, tc.kind, s.Shapes.Get(0).Kind())
			assert.Equal(t, shapes.DefaultStyle(), s.Shapes.Get(0).Style())

			// a click without motion commits nothing
			drag(s, geometry.Pt(300, 300))
			assert.Equal(t, 1, s.Shapes.Len())
		})
	}
}

func TestPenStroke(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolPen)
	drag(s, geometry.Pt(50, 50), geometry.Pt(60, 55), geometry.Pt(70, 60))
	require.Equal(t, 1, s.Shapes.Len())
	fh := s.Shapes.Get(0).(*shapes.Freehand)
	assert.Len(t, fh.Points, 3)

	drag(s, geometry.Pt(300, 300))
	assert.Equal(t, 1, s.Shapes.Len(), "single point strokes are dropped")
	assert.Nil(t, s.Path)
}

func TestDrawingOutsideSelectionIgnored(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(100, 100), geometry.Pt(300, 300))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(10, 10), geometry.Pt(50, 50))
	assert.Equal(t, 0, s.Shapes.Len())
	assert.Equal(t, ModeIdle, s.Mode)
}

func TestEraseRectangle(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(50, 50), geometry.Pt(400, 400))
	s.SetTool(ToolRectangle)
	drag(s, geometry.Pt(100, 100), geometry.Pt(150, 150), geometry.Pt(200, 200))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(250, 350), geometry.Pt(350, 350))
	require.Equal(t, 2, s.Shapes.Len())

	s.SetTool(ToolEraser)
	drag(s, geometry.Pt(300, 250), geometry.Pt(250, 200), geometry.Pt(205, 150))
	require.Equal(t, 1, s.Shapes.Len())
	assert.Equal(t, shapes.KindLine, s.Shapes.Get(0).Kind())
}

func TestEraserPressOnShapeDragsIt(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(100, 100), geometry.Pt(200, 100))
	s.SetTool(ToolEraser)

	s.PointerDown(geometry.Pt(150, 100))
	assert.Equal(t, ModeDraggingShape, s.Mode)
	assert.Equal(t, 0, s.Dragged)

	s.PointerMove(geometry.Pt(150, 130))
	s.PointerUp(geometry.Pt(150, 130))
	require.Equal(t, 1, s.Shapes.Len(), "the shape is moved, not erased")
	line := s.Shapes.Get(0).(*shapes.Line)
	assert.Equal(t, geometry.Pt(100, 130), line.P1)
	assert.Equal(t, -1, s.Dragged)
}

func TestDragShape(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(100, 100), geometry.Pt(200, 100))
	s.SetTool(ToolMove)

	s.PointerMove(geometry.Pt(150, 102))
	assert.Equal(t, 0, s.Hovered)

	drag(s, geometry.Pt(150, 102), geometry.Pt(160, 112), geometry.Pt(170, 122))
	line := s.Shapes.Get(0).(*shapes.Line)
	assert.Equal(t, geometry.Pt(120, 120), line.P1)
	assert.Equal(t, geometry.Pt(220, 120), line.P2)
	assert.Equal(t, -1, s.Dragged)
	assert.Equal(t, geometry.Rect{W: 500, H: 400}, s.Selection(), "dragging a shape leaves the selection alone")
}

func TestUndo(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(10, 10), geometry.Pt(100, 10))
	drag(s, geometry.Pt(10, 50), geometry.Pt(100, 50))
	s.Undo()
	require.Equal(t, 1, s.Shapes.Len())
	assert.Equal(t, geometry.Pt(10, 10), s.Shapes.Get(0).(*shapes.Line).P1)
	s.Undo()
	s.Undo()
	assert.Equal(t, 0, s.Shapes.Len())
}

func TestConfirmCommitsPendingText(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolText)
	s.PointerDown(geometry.Pt(40, 40))
	s.TypeRune('z')
	s.Confirm()

	r, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{W: 500, H: 400}, r.Selection)
	require.Len(t, r.Shapes, 1)
	assert.False(t, s.Blinking())

	// terminal states ignore further input
	s.Cancel()
	assert.Equal(t, StateConfirmed, s.State)
}

func TestEscapeCancelsAndClears(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolLine)
	drag(s, geometry.Pt(10, 10), geometry.Pt(100, 10))
	s.Key(KeyEscape)
	assert.Equal(t, StateCancelled, s.State)
	assert.Equal(t, 0, s.Shapes.Len())
}

func TestEnterConfirms(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.Key(KeyEnter)
	assert.Equal(t, StateConfirmed, s.State)
}

func TestDoubleClick(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(100, 100), geometry.Pt(400, 300))
	s.DoubleClick(s.Layout().Buttons[0].Rect.Center())
	assert.Equal(t, StateEditing, s.State, "double click on the toolbar is ignored")
	s.DoubleClick(geometry.Pt(200, 200))
	assert.Equal(t, StateConfirmed, s.State)
}

func TestToolbarButtons(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(100, 100), geometry.Pt(400, 300))
	l := s.Layout()

	var cancel, confirm Button
	for _, b := range l.Buttons {
		switch b.Action {
		case ActionCancel:
			cancel = b
		case ActionConfirm:
			confirm = b
		}
	}
	assert.False(t, cancel.Rect.Empty())
	s.PointerDown(confirm.Rect.Center())
	assert.Equal(t, StateConfirmed, s.State)
}

func TestCursorBlinks(t *testing.T) {
	clock := &manualClock{}
	posted := make(chan func(), 8)
	redraws := 0
	s := New(Options{
		Bounds:  screen,
		Clock:   clock,
		Post:    func(fn func()) { posted <- fn },
		Changed: func() { redraws++ },
	})
	drag(s, geometry.Pt(0, 0), geometry.Pt(500, 400))
	s.SetTool(ToolText)
	s.PointerDown(geometry.Pt(40, 40))
	require.NotNil(t, clock.last)
	require.True(t, s.Text.CursorVisible)

	clock.last.c <- time.Now()
	(<-posted)()
	assert.False(t, s.Text.CursorVisible)
	clock.last.c <- time.Now()
	(<-posted)()
	assert.True(t, s.Text.CursorVisible)
	assert.Equal(t, 2, redraws)

	s.Key(KeyEnter)
	assert.False(t, s.Blinking())
	clock.last.mu.Lock()
	assert.True(t, clock.last.stopped)
	clock.last.mu.Unlock()
}

func TestBlinkerIsRestartable(t *testing.T) {
	clock := &manualClock{}
	ticks := make(chan struct{}, 4)
	b := NewBlinker(clock, time.Millisecond, func() { ticks <- struct{}{} })

	b.Stop()
	b.Start()
	b.Start()
	first := clock.last
	first.c <- time.Now()
	<-ticks
	b.Stop()
	assert.False(t, b.Running())

	b.Start()
	assert.NotSame(t, first, clock.last)
	clock.last.c <- time.Now()
	<-ticks
	b.Stop()
}

func TestCursorShapes(t *testing.T) {
	s := New(Options{Bounds: screen})
	assert.Equal(t, CursorCrosshair, s.CursorAt(geometry.Pt(5, 5)))
	drag(s, geometry.Pt(100, 100), geometry.Pt(400, 300))
	assert.Equal(t, CursorDefault, s.CursorAt(geometry.Pt(10, 10)))
	assert.Equal(t, CursorPointer, s.CursorAt(geometry.Pt(200, 200)))
	s.SetTool(ToolText)
	assert.Equal(t, CursorText, s.CursorAt(geometry.Pt(200, 200)))
	assert.Equal(t, CursorPointer, s.CursorAt(s.Layout().Bar.Center()))
}

func TestPendingShape(t *testing.T) {
	s := editing(t, Options{}, geometry.Pt(0, 0), geometry.Pt(500, 400))
	assert.Nil(t, s.Pending())

	s.SetTool(ToolArrow)
	s.PointerDown(geometry.Pt(50, 50))
	assert.Nil(t, s.Pending(), "no span before the pointer moves")
	s.PointerMove(geometry.Pt(90, 70))
	a, ok := s.Pending().(*shapes.Arrow)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(90, 70), a.P2)
	s.PointerUp(geometry.Pt(90, 70))
	assert.Nil(t, s.Pending())

	s.SetTool(ToolPen)
	s.PointerDown(geometry.Pt(10, 10))
	s.PointerMove(geometry.Pt(20, 20))
	fh, ok := s.Pending().(*shapes.Freehand)
	require.True(t, ok)
	assert.Len(t, fh.Points, 2)
}
