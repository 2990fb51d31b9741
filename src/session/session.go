package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/anthonynsimon/bild/clone"

	"screen-snap/src/compose"
	"screen-snap/src/editor"
	"screen-snap/src/export"
	"screen-snap/src/geometry"
	"screen-snap/src/screenshot"
)

var (
	ErrCancelled     = errors.New("capture cancelled")
	ErrCaptureFailed = errors.New("capture failed")
)

// Frame is the frozen display handed to the annotator. Image holds the
// display's physical pixels with bounds at (0,0).
type Frame struct {
	Display screenshot.Display
	Image   *image.RGBA
}

// Outcome is what the annotator reports once its overlay closed.
type Outcome struct {
	Confirmed bool
	Result    editor.Result
	// Transform maps the overlay's logical coordinates onto Frame.Image.
	Transform *geometry.Transform
}

// Annotator runs the interactive overlay over a frame and blocks until the
// user confirms or cancels.
type Annotator interface {
	Annotate(ctx context.Context, f Frame) (Outcome, error)
}

// AnnotatorFunc adapts a function to Annotator.
type AnnotatorFunc func(ctx context.Context, f Frame) (Outcome, error)

func (fn AnnotatorFunc) Annotate(ctx context.Context, f Frame) (Outcome, error) { return fn(ctx, f) }

// ResultTarget is told how a session ended.
type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(err error) error
}

type Options struct {
	Provider  screenshot.Provider
	Annotator Annotator
	Sink      export.Sink
	Target    ResultTarget
	// Cursor reports the pointer in physical virtual-screen coordinates. The
	// display under it is captured; the primary display when unknown.
	Cursor func() (image.Point, bool)
	Dir    string
	Now    func() time.Time
}

type Result struct {
	Path        string
	Image       *image.RGBA
	WindowBound bool
}

// Execute runs one capture session: freeze the display under the cursor,
// let the user select and annotate, compose the output and commit it.
func Execute(ctx context.Context, opts Options) (Result, error) {
	res, err := execute(ctx, opts)
	if opts.Target != nil {
		if err != nil {
			_ = opts.Target.OnFailure(err)
		} else if terr := opts.Target.OnSuccess(res); terr != nil {
			_ = opts.Target.OnFailure(terr)
			return Result{}, terr
		}
	}
	return res, err
}

func execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Provider == nil {
		return Result{}, errors.New("Provider is required")
	}
	if opts.Annotator == nil {
		return Result{}, errors.New("Annotator is required")
	}

	frame, err := captureFrame(opts)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out, err := opts.Annotator.Annotate(ctx, frame)
	if err != nil {
		return Result{}, fmt.Errorf("overlay: %w", err)
	}
	if !out.Confirmed {
		return Result{}, ErrCancelled
	}
	t := out.Transform
	if t == nil {
		t = geometry.NewTransform(float64(frame.Image.Bounds().Dx()), float64(frame.Image.Bounds().Dy()), 1)
	}

	img, windowBound, err := render(opts.Provider, frame, out.Result, t)
	if err != nil {
		return Result{}, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	path := export.SuggestedPath(opts.Dir, now())
	if opts.Sink != nil {
		if err := opts.Sink.Commit(img, path); err != nil {
			return Result{}, fmt.Errorf("export: %w", err)
		}
	}
	log.Printf("session: exported %dx%d capture (window=%v)", img.Bounds().Dx(), img.Bounds().Dy(), windowBound)
	return Result{Path: path, Image: img, WindowBound: windowBound}, nil
}

func captureFrame(opts Options) (Frame, error) {
	displays, err := opts.Provider.Displays()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	var (
		cursor image.Point
		found  bool
	)
	if opts.Cursor != nil {
		cursor, found = opts.Cursor()
	}
	d, err := screenshot.DisplayAt(displays, cursor)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	if !found {
		d = displays[0]
	}
	buf, err := opts.Provider.CaptureDisplay(d)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: display %d: %v", ErrCaptureFailed, d.Index, err)
	}
	if buf == nil || buf.Bounds().Empty() {
		return Frame{}, fmt.Errorf("%w: display %d returned no pixels", ErrCaptureFailed, d.Index)
	}
	if buf.Bounds().Min != (image.Point{}) {
		buf = clone.AsRGBA(buf)
		buf.Rect = buf.Rect.Sub(buf.Rect.Min)
	}
	return Frame{Display: d, Image: buf}, nil
}

// render composes the output. A window-bound selection is re-captured from
// the window itself; when that fails the full-screen buffer is cropped.
func render(p screenshot.Provider, f Frame, r editor.Result, t *geometry.Transform) (*image.RGBA, bool, error) {
	target := t.ToPixel(r.Selection)
	if r.WindowBound {
		frame := target.Add(f.Display.Bounds.Min)
		img, err := p.CaptureWindow(r.Window.ID, frame)
		if err == nil && img != nil && !img.Bounds().Empty() {
			img = screenshot.Fit(img, target.Dx(), target.Dy())
			compose.Annotate(img, r.Selection, r.Shapes, t.Scale)
			return img, true, nil
		}
		log.Printf("session: window capture of %#x failed, cropping the screen instead: %v", r.Window.ID, err)
	}
	img, err := compose.Composite(f.Image, r.Selection, r.Shapes, t)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return img, false, nil
}
