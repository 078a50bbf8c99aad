package chart

import (
	"math"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/moocn/pkg/viewport"
)

// Engine maps between data values and canvas pixels. Positions are CSS
// pixels relative to the canvas origin; the device pixel ratio converts
// them to the device pixels used by the hit-test index.
type Engine interface {
	Size() (width, height float64)
	Box() viewport.Box
	ValToPos(v float64, axis viewport.AxisKey) float64
	PosToVal(px float64, axis viewport.AxisKey) float64
	Scale(axis viewport.AxisKey) viewport.Range
	SetScale(axis viewport.AxisKey, r viewport.Range)
	PixelRatio() float64
}

// Insets are the margins between the canvas edge and the plot area.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// DefaultInsets leave room for axis ticks on the left and bottom.
var DefaultInsets = Insets{Top: 16, Right: 16, Bottom: 36, Left: 52}

// Plot is a linear [Engine] over a fixed-size canvas.
type Plot struct {
	width, height float64
	insets        Insets
	ratio         float64
	x, y          scale.Linear
}

// PlotOption configures a [Plot].
type PlotOption func(*Plot)

// WithInsets sets the plot margins.
func WithInsets(in Insets) PlotOption { return func(p *Plot) { p.insets = in } }

// WithPixelRatio sets the device pixel ratio.
func WithPixelRatio(r float64) PlotOption {
	return func(p *Plot) {
		if r > 0 {
			p.ratio = r
		}
	}
}

// NewPlot returns an engine for a width x height CSS pixel canvas with
// unit scales.
func NewPlot(width, height float64, opts ...PlotOption) *Plot {
	p := &Plot{
		width:  width,
		height: height,
		insets: DefaultInsets,
		ratio:  1,
		x:      scale.Linear{Min: 0, Max: 1},
		y:      scale.Linear{Min: 0, Max: 1},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size implements [Engine].
func (p *Plot) Size() (width, height float64) { return p.width, p.height }

// Resize changes the canvas size.
func (p *Plot) Resize(width, height float64) {
	p.width, p.height = width, height
}

// Box implements [Engine].
func (p *Plot) Box() viewport.Box {
	return viewport.Box{
		X: p.insets.Left,
		Y: p.insets.Top,
		W: math.Max(0, p.width-p.insets.Left-p.insets.Right),
		H: math.Max(0, p.height-p.insets.Top-p.insets.Bottom),
	}
}

// PixelRatio implements [Engine].
func (p *Plot) PixelRatio() float64 { return p.ratio }

// Scale implements [Engine].
func (p *Plot) Scale(axis viewport.AxisKey) viewport.Range {
	s := p.linear(axis)
	return viewport.Range{Min: s.Min, Max: s.Max}
}

// SetScale implements [Engine] and [viewport.Scales]. Empty ranges are
// widened by one unit so mapping stays finite.
func (p *Plot) SetScale(axis viewport.AxisKey, r viewport.Range) {
	if r.Max <= r.Min {
		r.Max = r.Min + 1
	}
	s := p.linear(axis)
	s.Min, s.Max = r.Min, r.Max
}

// ValToPos implements [Engine]. The y axis grows upwards.
func (p *Plot) ValToPos(v float64, axis viewport.AxisKey) float64 {
	b := p.Box()
	f := p.linear(axis).Map(v)
	if axis == viewport.Y {
		return b.Y + (1-f)*b.H
	}
	return b.X + f*b.W
}

// PosToVal implements [Engine].
func (p *Plot) PosToVal(px float64, axis viewport.AxisKey) float64 {
	b := p.Box()
	s := p.linear(axis)
	var f float64
	if axis == viewport.Y {
		f = 1 - (px-b.Y)/b.H
	} else {
		f = (px - b.X) / b.W
	}
	return s.Min + f*(s.Max-s.Min)
}

// Ticks returns up to max major tick values inside the current scale.
func (p *Plot) Ticks(axis viewport.AxisKey, max int) []float64 {
	return Ticks(p.Scale(axis), max)
}

// Ticks returns up to max evenly spaced round values inside r.
func Ticks(r viewport.Range, max int) []float64 {
	if !r.Valid() || r.Len() == 0 {
		return nil
	}
	major, _ := scale.Linear{Min: r.Min, Max: r.Max}.Ticks(scale.TickOptions{Max: max})
	return major
}

func (p *Plot) linear(axis viewport.AxisKey) *scale.Linear {
	if axis == viewport.Y {
		return &p.y
	}
	return &p.x
}

// NiceRange widens r outwards to the tick step go-moremath picks for it,
// so the top bar does not touch the plot edge.
func NiceRange(r viewport.Range, ticks int) viewport.Range {
	if !r.Valid() {
		return viewport.Range{Min: 0, Max: 1}
	}
	if r.Len() == 0 {
		return viewport.Range{Min: r.Min, Max: r.Min + 1}
	}
	major, _ := scale.Linear{Min: r.Min, Max: r.Max}.Ticks(scale.TickOptions{Max: ticks})
	if len(major) < 2 {
		return r
	}
	step := major[1] - major[0]
	return viewport.Range{
		Min: math.Floor(r.Min/step) * step,
		Max: math.Ceil(r.Max/step) * step,
	}
}
