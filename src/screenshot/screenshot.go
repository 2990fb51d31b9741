package screenshot

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/anthonynsimon/bild/transform"
	"github.com/kbinani/screenshot"
)

var (
	// ErrNoDisplays is returned when no active display is found.
	ErrNoDisplays = errors.New("no active displays found")
	// ErrWindowCaptureUnsupported is returned by CaptureWindow on platforms
	// that cannot render a single window off screen.
	ErrWindowCaptureUnsupported = errors.New("window capture not supported on this platform")
)

// Display is one monitor. Bounds are physical pixels in virtual-screen
// coordinates.
type Display struct {
	Index  int
	Bounds image.Rectangle
}

// Provider captures pixels. The session takes one so tests can substitute
// synthetic buffers.
type Provider interface {
	Displays() ([]Display, error)
	CaptureDisplay(d Display) (*image.RGBA, error)
	// CaptureWindow renders window id and crops it to frame, the window's
	// visible bounds in physical virtual-screen coordinates.
	CaptureWindow(id uintptr, frame image.Rectangle) (*image.RGBA, error)
}

// System is the Provider backed by the OS.
type System struct{}

func (System) Displays() ([]Display, error) { return Displays() }

func (System) CaptureDisplay(d Display) (*image.RGBA, error) { return CaptureRegion(d.Bounds) }

func (System) CaptureWindow(id uintptr, frame image.Rectangle) (*image.RGBA, error) {
	return captureWindow(id, frame)
}

// Displays lists the active displays, primary first.
func Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	out := make([]Display, n)
	for i := range out {
		out[i] = Display{Index: i, Bounds: screenshot.GetDisplayBounds(i)}
	}
	return out, nil
}

// DisplayAt returns the display containing p, falling back to the primary
// display when p is on none of them.
func DisplayAt(list []Display, p image.Point) (Display, error) {
	if len(list) == 0 {
		return Display{}, ErrNoDisplays
	}
	for _, d := range list {
		if p.In(d.Bounds) {
			return d, nil
		}
	}
	return list[0], nil
}

// Capture captures the entire virtual screen across all active displays.
func Capture() (*image.RGBA, error) {
	list, err := Displays()
	if err != nil {
		return nil, err
	}
	union := list[0].Bounds
	for _, d := range list[1:] {
		union = union.Union(d.Bounds)
	}
	return CaptureRegion(union)
}

// CaptureRegion captures a rectangle of the virtual screen.
func CaptureRegion(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Dx(), r.Dy())
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// Fit returns img scaled to w x h. It returns img unchanged when the size
// already matches.
func Fit(img *image.RGBA, w, h int) *image.RGBA {
	if img == nil || w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	log.Printf("screenshot: size mismatch, resizing from %dx%d to %dx%d", b.Dx(), b.Dy(), w, h)
	return transform.Resize(img, w, h, transform.Linear)
}
