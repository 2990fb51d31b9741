package geometry

import (
	"image"
	"log"
	"math"
)

// calibrationEpsilon is the minimum scale change Calibrate will apply.
const calibrationEpsilon = 0.01

// Transform maps logical overlay coordinates to physical pixels of the
// captured buffer. Scale is device pixels per logical unit.
type Transform struct {
	Scale   float64
	Offset  Point
	Logical Rect

	anchored bool
}

// NewTransform returns a transform for a logical surface of size w x h with
// the scale the OS reported when the overlay was created.
func NewTransform(w, h, scale float64) *Transform {
	if scale <= 0 {
		scale = 1
	}
	return &Transform{Scale: scale, Logical: Rect{W: w, H: h}}
}

// SetLogicalSize records the overlay's logical size, used by Calibrate.
func (t *Transform) SetLogicalSize(w, h float64) {
	t.Logical.W = w
	t.Logical.H = h
}

// ToPixel converts a logical rectangle to physical pixels, truncating.
func (t *Transform) ToPixel(r Rect) image.Rectangle {
	x := int((r.X + t.Offset.X) * t.Scale)
	y := int((r.Y + t.Offset.Y) * t.Scale)
	w := int(r.W * t.Scale)
	h := int(r.H * t.Scale)
	return image.Rect(x, y, x+w, y+h)
}

// PointToPixel converts a logical point to physical pixels, truncating.
func (t *Transform) PointToPixel(p Point) image.Point {
	return image.Pt(int((p.X+t.Offset.X)*t.Scale), int((p.Y+t.Offset.Y)*t.Scale))
}

// ToLogical converts a physical rectangle (relative to the captured buffer's
// origin) back to logical coordinates.
func (t *Transform) ToLogical(r image.Rectangle) Rect {
	s := t.Scale
	if s <= 0 {
		s = 1
	}
	return Rect{
		X: float64(r.Min.X)/s - t.Offset.X,
		Y: float64(r.Min.Y)/s - t.Offset.Y,
		W: float64(r.Dx()) / s,
		H: float64(r.Dy()) / s,
	}
}

// Calibrate derives the scale from the actual pixel size of a captured
// buffer. The new scale is the mean of the x and y ratios and is applied only
// when it differs from the current one by more than calibrationEpsilon.
// It reports whether the scale changed.
func (t *Transform) Calibrate(pixelW, pixelH int) bool {
	if t.Logical.W <= 0 || t.Logical.H <= 0 {
		return false
	}
	sx := float64(pixelW) / t.Logical.W
	sy := float64(pixelH) / t.Logical.H
	if sx <= 0 || sy <= 0 {
		return false
	}
	scale := (sx + sy) / 2
	if math.Abs(scale-t.Scale) <= calibrationEpsilon {
		return false
	}
	log.Printf("geometry: calibrated scale %.3f -> %.3f (buffer %dx%d, logical %.0fx%.0f)",
		t.Scale, scale, pixelW, pixelH, t.Logical.W, t.Logical.H)
	t.Scale = scale
	return true
}

// Anchor records the placement offset of the overlay window once it is
// visible. Only the first call has an effect.
func (t *Transform) Anchor(windowTopLeft, screenTopLeft Point) {
	if t.anchored {
		return
	}
	t.anchored = true
	t.Offset = windowTopLeft.Sub(screenTopLeft)
	if t.Offset != (Point{}) {
		log.Printf("geometry: overlay offset %.1f,%.1f", t.Offset.X, t.Offset.Y)
	}
}
