package compose

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

// near asserts got is within a few units of want per channel; edge pixels of
// rasterized paths carry small rounding differences.
func near(t *testing.T, want, got color.RGBA, msgAndArgs ...interface{}) {
	t.Helper()
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if d(want.R, got.R) > 3 || d(want.G, got.G) > 3 || d(want.B, got.B) > 3 || d(want.A, got.A) > 3 {
		assert.Fail(t, "color mismatch", "want %v, got %v %v", want, got, msgAndArgs)
	}
}

func TestCropRebasesAndClips(t *testing.T) {
	src := canvas(100, 80)
	src.SetRGBA(30, 20, shapes.Blue)

	out, err := Crop(src, image.Rect(30, 20, 130, 60))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 70, 40), out.Bounds())
	assert.Equal(t, shapes.Blue, out.RGBAAt(0, 0))
}

func TestCropFailures(t *testing.T) {
	_, err := Crop(nil, image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrNoPixels)

	_, err = Crop(canvas(10, 10), image.Rect(20, 20, 30, 30))
	assert.True(t, errors.Is(err, ErrNoPixels))
}

func TestCompositeOutputIsPhysicalSize(t *testing.T) {
	tr := geometry.NewTransform(150, 150, 2)
	out, err := Composite(canvas(300, 300), geometry.Rect{W: 100, H: 100}, nil, tr)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), out.Bounds())
}

func TestCompositeTranslatesShapes(t *testing.T) {
	tr := geometry.NewTransform(200, 200, 2)
	sel := geometry.Rect{X: 10, Y: 10, W: 80, H: 60}
	list := []shapes.Shape{
		&shapes.Rectangle{Stroke: shapes.Style{Color: shapes.Red, Width: 4}, P1: geometry.Pt(20, 20), P2: geometry.Pt(60, 50)},
	}

	out, err := Composite(canvas(400, 400), sel, list, tr)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), out.Bounds())

	// left edge of the rectangle lands at (20-10)*2 = 20
	near(t, shapes.Red, out.RGBAAt(20, 40))
	// interior stays untouched
	near(t, white, out.RGBAAt(60, 40))
}

func TestCompositeNilBuffer(t *testing.T) {
	_, err := Composite(nil, geometry.Rect{W: 10, H: 10}, nil, geometry.NewTransform(10, 10, 1))
	assert.ErrorIs(t, err, ErrNoPixels)
}

func TestPainterStrokes(t *testing.T) {
	img := canvas(100, 100)
	p := NewPainter(img, geometry.Point{}, 1)

	p.Shape(&shapes.Line{Stroke: shapes.Style{Color: shapes.Green, Width: 6}, P1: geometry.Pt(10, 50), P2: geometry.Pt(90, 50)})
	near(t, shapes.Green, img.RGBAAt(50, 50))
	near(t, shapes.Green, img.RGBAAt(50, 48))
	near(t, white, img.RGBAAt(50, 58))

	p.Shape(&shapes.Ellipse{Stroke: shapes.Style{Color: shapes.Blue, Width: 4}, P1: geometry.Pt(20, 10), P2: geometry.Pt(80, 40)})
	near(t, white, img.RGBAAt(50, 25), "ellipse interior must stay hollow")
	near(t, shapes.Blue, img.RGBAAt(50, 10))
}

func TestPainterRectangles(t *testing.T) {
	img := canvas(100, 100)
	p := NewPainter(img, geometry.Point{}, 1)

	p.StrokeRect(geometry.Rect{X: 20, Y: 20, W: 60, H: 40}, 4, shapes.Red)
	near(t, shapes.Red, img.RGBAAt(50, 20), "top edge")
	near(t, shapes.Red, img.RGBAAt(80, 40), "right edge")
	near(t, white, img.RGBAAt(50, 40), "outline must stay hollow")
	near(t, white, img.RGBAAt(50, 10))

	p.FillRect(geometry.Rect{X: 0, Y: 0, W: 10, H: 10}, shapes.Blue)
	near(t, shapes.Blue, img.RGBAAt(5, 5))
	near(t, white, img.RGBAAt(15, 5))
}

func TestPainterArrowHeadIsFilled(t *testing.T) {
	img := canvas(120, 60)
	p := NewPainter(img, geometry.Point{}, 1)
	p.Shape(&shapes.Arrow{Stroke: shapes.Style{Color: shapes.Red, Width: 2}, P1: geometry.Pt(10, 30), P2: geometry.Pt(100, 30)})

	// inside the head, off the shaft
	near(t, shapes.Red, img.RGBAAt(94, 31))
	near(t, white, img.RGBAAt(50, 36))
}

func TestPainterText(t *testing.T) {
	img := canvas(200, 60)
	p := NewPainter(img, geometry.Point{}, 1)
	p.Shape(&shapes.Text{Stroke: shapes.Style{Color: shapes.Red, Width: 4}, Anchor: geometry.Pt(10, 10), Content: "Hi"})

	inked := 0
	for y := 10; y < 40; y++ {
		for x := 10; x < 60; x++ {
			if img.RGBAAt(x, y) != white {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 20)
	assert.Greater(t, p.TextWidth("Hi", 20), 10.0)
}
