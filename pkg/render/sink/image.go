package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// ImageOption configures native rasterization.
type ImageOption func(*imageRenderer)

type imageRenderer struct {
	scale  float64
	labels bool
}

// WithImageScale sets the raster scale factor (default 1).
func WithImageScale(s float64) ImageOption {
	return func(r *imageRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithoutText skips tick and value labels.
func WithoutText() ImageOption { return func(r *imageRenderer) { r.labels = false } }

// RenderImage rasterizes one frame of c without external tools. Text uses
// a fixed bitmap face and is not scaled.
func RenderImage(c *chart.Chart, opts ...ImageOption) *image.RGBA {
	r := imageRenderer{scale: 1, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	pal := c.Options().Palette
	w, h := c.Engine().Size()
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale))))
	draw.Draw(img, img.Bounds(), image.NewUniform(rgba(pal.Background)), image.Point{}, draw.Src)

	p := &imagePainter{img: img, scale: r.scale}
	if hl, ok := c.Highlight(); ok {
		p.fill(hl.X, hl.Y, hl.W, hl.H, 0, 0, rgba(pal.Highlight))
	}
	e := c.Engine()
	box := e.Box()
	grid := rgba(pal.Grid)
	ticks := chart.Ticks(e.Scale(viewport.Y), 6)
	for _, v := range ticks {
		y := e.ValToPos(v, viewport.Y)
		if y < box.Y || y > box.Y+box.H {
			continue
		}
		p.fill(box.X, y, box.W, 1/r.scale, 0, 0, grid)
	}

	if !r.labels {
		c.Draw(barsOnly{p})
		return img
	}
	c.Draw(p)
	muted := rgba(pal.Muted)
	for _, v := range ticks {
		y := e.ValToPos(v, viewport.Y)
		if y < box.Y || y > box.Y+box.H {
			continue
		}
		p.text(box.X-6, y+4, chart.FormatValue(v), muted, anchorEnd)
	}
	return img
}

// EncodeImage renders c natively and encodes it as PNG.
func EncodeImage(c *chart.Chart, opts ...ImageOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, RenderImage(c, opts...)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type anchor int

const (
	anchorMiddle anchor = iota
	anchorEnd
)

type imagePainter struct {
	img   *image.RGBA
	scale float64
}

// barsOnly drops value labels.
type barsOnly struct{ *imagePainter }

func (barsOnly) Label(chart.Label) {}

func (p *imagePainter) Bar(s chart.Shape) {
	rt, rb := cornerRadii(s)
	p.fill(s.X, s.Y, s.W, s.H, rt, rb, rgba(s.Fill))
}

func (p *imagePainter) Label(l chart.Label) {
	p.text(l.X, l.Y, l.Text, rgba(l.Color), anchorMiddle)
}

// fill paints a rectangle in CSS pixels, leaving out pixels outside
// the rounded corners.
func (p *imagePainter) fill(x, y, w, h, rt, rb float64, c color.RGBA) {
	s := p.scale
	x0, y0 := int(math.Round(x*s)), int(math.Round(y*s))
	x1, y1 := int(math.Round((x+w)*s)), int(math.Round((y+h)*s))
	if y1 == y0 {
		y1 = y0 + 1
	}
	area := image.Rect(x0, y0, x1, y1).Intersect(p.img.Bounds())
	rt, rb = rt*s, rb*s
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			fx, fy := float64(px)+0.5, float64(py)+0.5
			if outsideCorner(fx, fy, float64(x0), float64(y0), float64(x1), float64(y1), rt, rb) {
				continue
			}
			p.img.SetRGBA(px, py, c)
		}
	}
}

func outsideCorner(x, y, x0, y0, x1, y1, rt, rb float64) bool {
	check := func(cx, cy, r float64) bool {
		return math.Hypot(x-cx, y-cy) > r
	}
	switch {
	case rt > 0 && y < y0+rt && x < x0+rt:
		return check(x0+rt, y0+rt, rt)
	case rt > 0 && y < y0+rt && x > x1-rt:
		return check(x1-rt, y0+rt, rt)
	case rb > 0 && y > y1-rb && x < x0+rb:
		return check(x0+rb, y1-rb, rb)
	case rb > 0 && y > y1-rb && x > x1-rb:
		return check(x1-rb, y1-rb, rb)
	}
	return false
}

func (p *imagePainter) text(x, y float64, s string, c color.RGBA, a anchor) {
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	adv := d.MeasureString(s).Round()
	px := int(math.Round(x * p.scale))
	switch a {
	case anchorMiddle:
		px -= adv / 2
	case anchorEnd:
		px -= adv
	}
	d.Dot = fixed.P(px, int(math.Round(y*p.scale)))
	d.DrawString(s)
}

// rgba converts a hex color, falling back to opaque black.
func rgba(hex string) color.RGBA {
	c, err := chart.ParseColor(hex)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
