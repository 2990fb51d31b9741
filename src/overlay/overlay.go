// Package overlay is the fyne front end of a capture session: a full-screen
// window showing the frozen frame, driving an editor.Session.
package overlay

import (
	"context"
	"image"
	"log"
	"sync"

	"fyne.io/fyne/v2"

	"screen-snap/src/editor"
	"screen-snap/src/geometry"
	"screen-snap/src/session"
	"screen-snap/src/shapes"
	"screen-snap/src/winlist"
)

// Annotator opens the overlay for a frame and blocks until the user
// confirms or cancels. It implements session.Annotator and may be called
// from any goroutine except the fyne main thread.
type Annotator struct {
	App fyne.App
	// Windows enables click-to-select. Nil disables window detection.
	Windows *winlist.Tracker
	Pen     shapes.Style
	Tool    editor.Tool
}

var _ session.Annotator = (*Annotator)(nil)

func (a *Annotator) Annotate(ctx context.Context, f session.Frame) (session.Outcome, error) {
	if a.Windows != nil {
		a.Windows.Refresh()
	}

	done := make(chan session.Outcome, 1)
	var (
		mu  sync.Mutex
		win fyne.Window
	)
	fyne.Do(func() {
		w := a.open(f, func(out session.Outcome) {
			select {
			case done <- out:
			default:
			}
		})
		mu.Lock()
		win = w
		mu.Unlock()
	})

	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		fyne.Do(func() {
			mu.Lock()
			w := win
			mu.Unlock()
			if w != nil {
				w.Close()
			}
		})
		return session.Outcome{}, ctx.Err()
	}
}

// open builds and shows the overlay window on the main thread.
func (a *Annotator) open(f session.Frame, finish func(session.Outcome)) fyne.Window {
	b := f.Image.Bounds()
	t := geometry.NewTransform(float64(b.Dx()), float64(b.Dy()), 1)

	w := a.App.NewWindow("screen-snap")
	var ended bool
	var surf *surface
	// end runs on the main thread; Close may re-enter it through SetOnClosed.
	end := func() {
		if ended {
			return
		}
		ended = true
		if !surf.sess.Done() {
			surf.sess.Cancel()
		}
		res, ok := surf.sess.Result()
		finish(session.Outcome{Confirmed: ok, Result: res, Transform: t})
		w.Close()
	}

	opts := editor.Options{
		Bounds: geometry.Rect{W: float64(b.Dx()), H: float64(b.Dy())},
		Pen:    a.Pen,
		Tool:   a.Tool,
		Post:   fyne.Do,
	}
	if a.Windows != nil {
		opts.Windows = &windowSource{tracker: a.Windows, t: t, origin: f.Display.Bounds.Min}
	}
	surf = newSurface(f.Image, t, opts, end)

	w.SetPadded(false)
	w.SetContent(surf)
	w.SetFullScreen(true)
	w.SetOnClosed(end)
	w.Show()
	w.RequestFocus()
	w.Canvas().Focus(surf)
	log.Printf("OVERLAY: opened on display %d (%dx%d px)", f.Display.Index, b.Dx(), b.Dy())
	return w
}

// windowSource answers editor window queries in logical coordinates from a
// tracker working in physical virtual-screen coordinates.
type windowSource struct {
	tracker *winlist.Tracker
	t       *geometry.Transform
	origin  image.Point
}

func (ws *windowSource) WindowAt(p geometry.Point) (editor.Window, bool) {
	w, ok := ws.tracker.At(ws.t.PointToPixel(p).Add(ws.origin))
	if !ok {
		return editor.Window{}, false
	}
	return editor.Window{
		ID:     w.ID,
		Title:  w.Title,
		Bounds: ws.t.ToLogical(w.Bounds.Sub(ws.origin)),
	}, true
}
