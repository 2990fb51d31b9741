package shapes

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"screen-snap/src/geometry"
)

// Style is the pen shared by every shape.
type Style struct {
	Color color.RGBA
	Width float64
}

var (
	Red   = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	Green = color.RGBA{R: 76, G: 217, B: 100, A: 255}
	Blue  = color.RGBA{R: 0, G: 122, B: 255, A: 255}
)

// Palette lists the selectable colors in toolbar order.
var Palette = []color.RGBA{Red, Green, Blue}

// Widths lists the selectable stroke widths in toolbar order.
var Widths = []float64{2, 4, 6}

const DefaultWidth = 4

// DefaultStyle is the pen a new session starts with.
func DefaultStyle() Style { return Style{Color: Red, Width: DefaultWidth} }

// ColorByName resolves a palette color name. ok is false for unknown names.
func ColorByName(name string) (c color.RGBA, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red":
		return Red, true
	case "green":
		return Green, true
	case "blue":
		return Blue, true
	}
	return color.RGBA{}, false
}

// FontSize maps a stroke width to the text size used for Text shapes.
func FontSize(width float64) float64 { return 8 + 3*width }

// Glyph metrics used to estimate a text box without a font face. They are
// close to Go Regular, the face the compositor renders with.
const (
	avgAdvance = 0.56
	lineHeight = 1.2
)

// TextBox estimates the logical box covered by content drawn at anchor.
func TextBox(anchor geometry.Point, content string, width float64) geometry.Rect {
	size := FontSize(width)
	n := utf8.RuneCountInString(content)
	return geometry.Rect{
		X: anchor.X,
		Y: anchor.Y,
		W: float64(n) * size * avgAdvance,
		H: size * lineHeight,
	}
}
