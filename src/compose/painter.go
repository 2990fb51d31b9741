package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"screen-snap/src/geometry"
	"screen-snap/src/shapes"
)

// Painter renders shapes and primitives in logical coordinates onto a pixel
// buffer. A logical point p lands at (p - Origin) * Scale. The overlay and
// the export path both paint through a Painter so the saved image matches
// what was on screen.
type Painter struct {
	Dst    *image.RGBA
	Origin geometry.Point
	Scale  float64

	ras *vector.Rasterizer
}

func NewPainter(dst *image.RGBA, origin geometry.Point, scale float64) *Painter {
	if scale <= 0 {
		scale = 1
	}
	b := dst.Bounds()
	return &Painter{
		Dst:    dst,
		Origin: origin,
		Scale:  scale,
		ras:    vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

func (p *Painter) px(q geometry.Point) (float32, float32) {
	b := p.Dst.Bounds()
	return float32((q.X-p.Origin.X)*p.Scale) - float32(b.Min.X),
		float32((q.Y-p.Origin.Y)*p.Scale) - float32(b.Min.Y)
}

// Shapes paints every shape in order.
func (p *Painter) Shapes(list []shapes.Shape) {
	for _, s := range list {
		p.Shape(s)
	}
}

// Shape paints one shape with its own style.
func (p *Painter) Shape(s shapes.Shape) {
	st := s.Style()
	switch s := s.(type) {
	case *shapes.Freehand:
		p.StrokePolyline(s.Points, st.Width, st.Color)
	case *shapes.Rectangle:
		p.StrokeRect(geometry.RectFromPoints(s.P1, s.P2), st.Width, st.Color)
	case *shapes.Ellipse:
		p.StrokeEllipse(geometry.RectFromPoints(s.P1, s.P2), st.Width, st.Color)
	case *shapes.Line:
		p.StrokePolyline([]geometry.Point{s.P1, s.P2}, st.Width, st.Color)
	case *shapes.Arrow:
		p.Arrow(s.P1, s.P2, st.Width, st.Color)
	case *shapes.Text:
		p.Text(s.Anchor, s.Content, shapes.FontSize(st.Width), st.Color)
	default:
		panic(fmt.Sprintf("compose: unhandled shape %T", s))
	}
}

// Arrow paints a shaft with a filled triangular head at p2.
func (p *Painter) Arrow(p1, p2 geometry.Point, width float64, c color.Color) {
	p.StrokePolyline([]geometry.Point{p1, p2}, width, c)
	left, right, ok := shapes.ArrowHead(p1, p2, width)
	if !ok {
		return
	}
	p.FillPolygon([]geometry.Point{p2, left, right}, c)
}

// StrokePolyline paints a polyline with round joins and caps.
func (p *Painter) StrokePolyline(pts []geometry.Point, width float64, c color.Color) {
	if len(pts) == 0 {
		return
	}
	half := width / 2
	p.begin()
	for i := 1; i < len(pts); i++ {
		p.addSegment(pts[i-1], pts[i], half)
	}
	for _, q := range pts {
		p.addEllipse(q, half, half, false)
	}
	p.fill(c)
}

// StrokeRect paints the outline of r with the pen centered on its edges.
func (p *Painter) StrokeRect(r geometry.Rect, width float64, c color.Color) {
	half := width / 2
	outer := r.Inset(half)
	p.begin()
	oc := outer.Corners()
	p.addPolygon(oc[:], false)
	if inner := r.Inset(-half); !inner.Empty() {
		ic := inner.Corners()
		p.addPolygon(ic[:], true)
	}
	p.fill(c)
}

// FillRect fills r.
func (p *Painter) FillRect(r geometry.Rect, c color.Color) {
	if r.Empty() {
		return
	}
	p.begin()
	rc := r.Corners()
	p.addPolygon(rc[:], false)
	p.fill(c)
}

// StrokeEllipse paints the outline of the ellipse inscribed in r.
func (p *Painter) StrokeEllipse(r geometry.Rect, width float64, c color.Color) {
	half := width / 2
	center := r.Center()
	rx, ry := r.W/2, r.H/2
	p.begin()
	p.addEllipse(center, rx+half, ry+half, false)
	if rx-half > 0 && ry-half > 0 {
		p.addEllipse(center, rx-half, ry-half, true)
	}
	p.fill(c)
}

// FillCircle fills a circle of the given logical radius.
func (p *Painter) FillCircle(center geometry.Point, radius float64, c color.Color) {
	p.begin()
	p.addEllipse(center, radius, radius, false)
	p.fill(c)
}

// FillPolygon fills a closed polygon.
func (p *Painter) FillPolygon(pts []geometry.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	p.begin()
	p.addPolygon(pts, false)
	p.fill(c)
}

func (p *Painter) begin() {
	b := p.Dst.Bounds()
	p.ras.Reset(b.Dx(), b.Dy())
}

func (p *Painter) fill(c color.Color) {
	p.ras.Draw(p.Dst, p.Dst.Bounds(), image.NewUniform(c), image.Point{})
}

// addPolygon adds a closed contour. Every contour is normalized to the same
// winding so overlapping pieces of one stroke accumulate instead of
// cancelling; hole contours get the opposite winding.
func (p *Painter) addPolygon(pts []geometry.Point, hole bool) {
	if len(pts) < 3 {
		return
	}
	ordered := pts
	if (signedArea(pts) < 0) != hole {
		ordered = make([]geometry.Point, len(pts))
		for i, q := range pts {
			ordered[len(pts)-1-i] = q
		}
	}
	x, y := p.px(ordered[0])
	p.ras.MoveTo(x, y)
	for _, q := range ordered[1:] {
		x, y = p.px(q)
		p.ras.LineTo(x, y)
	}
	p.ras.ClosePath()
}

func (p *Painter) addSegment(a, b geometry.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half
	p.addPolygon([]geometry.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, false)
}

func (p *Painter) addEllipse(c geometry.Point, rx, ry float64, hole bool) {
	if rx <= 0 || ry <= 0 {
		return
	}
	// enough segments that the chord error stays under a quarter pixel
	r := math.Max(rx, ry) * p.Scale
	n := int(math.Ceil(math.Pi / math.Acos(math.Max(0, 1-0.25/math.Max(r, 0.25)))))
	if n < 12 {
		n = 12
	}
	if n > 720 {
		n = 720
	}
	pts := make([]geometry.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geometry.Pt(c.X+rx*math.Cos(a), c.Y+ry*math.Sin(a))
	}
	p.addPolygon(pts, hole)
}

func signedArea(pts []geometry.Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// Text draws content with its box's top-left at anchor. size is in logical
// units.
func (p *Painter) Text(anchor geometry.Point, content string, size float64, c color.Color) {
	if content == "" {
		return
	}
	face, err := faceFor(size * p.Scale)
	if err != nil {
		log.Printf("compose: text face unavailable: %v", err)
		return
	}
	x, y := p.px(anchor)
	b := p.Dst.Bounds()
	d := font.Drawer{
		Dst:  p.Dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6((float64(x) + float64(b.Min.X)) * 64),
			Y: fixed.Int26_6((float64(y)+float64(b.Min.Y))*64) + face.Metrics().Ascent,
		},
	}
	d.DrawString(content)
}

// TextWidth returns the logical width of content at size.
func (p *Painter) TextWidth(content string, size float64) float64 {
	face, err := faceFor(size * p.Scale)
	if err != nil {
		return 0
	}
	adv := font.MeasureString(face, content)
	return float64(adv) / 64 / p.Scale
}

var (
	fontOnce  sync.Once
	fontErr   error
	regular   *opentype.Font
	facesMu   sync.Mutex
	faceCache = map[float64]font.Face{}
)

// faceFor returns a cached Go Regular face for a pixel size.
func faceFor(pixelSize float64) (font.Face, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	key := math.Round(pixelSize*4) / 4
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faceCache[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    key,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	faceCache[key] = f
	return f, nil
}

// Blit copies src into dst at the origin of dst's bounds.
func Blit(dst *image.RGBA, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}
