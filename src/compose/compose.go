package compose

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

// ErrNoPixels is returned when the source buffer is missing or the requested
// area does not overlap it.
var ErrNoPixels = errors.New("no pixels to crop")

// Crop copies the part of src inside r into a new image whose bounds start
// at (0,0). r is clipped to src.
func Crop(src *image.RGBA, r image.Rectangle) (*image.RGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrNoPixels
	}
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop %v outside buffer %v: %w", r, src.Bounds(), ErrNoPixels)
	}
	out := transform.Crop(src, r)
	out.Rect = out.Rect.Sub(out.Rect.Min)
	return out, nil
}

// Composite crops the physical area of the logical selection sel out of buf
// and paints list onto it. Shape coordinates are logical and are shifted by
// the selection's origin.
func Composite(buf *image.RGBA, sel geometry.Rect, list []shapes.Shape, t *geometry.Transform) (*image.RGBA, error) {
	if buf == nil {
		return nil, ErrNoPixels
	}
	src := t.ToPixel(sel).Add(buf.Bounds().Min)
	out, err := Crop(buf, src)
	if err != nil {
		return nil, err
	}
	Annotate(out, sel, list, t.Scale)
	return out, nil
}

// Annotate paints list onto img, which must already show exactly the
// selection sel at the given scale (a window capture, for instance).
func Annotate(img *image.RGBA, sel geometry.Rect, list []shapes.Shape, scale float64) {
	if len(list) == 0 {
		return
	}
	NewPainter(img, sel.Min(), scale).Shapes(list)
}
