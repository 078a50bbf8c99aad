package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/hittest"
	"github.com/matzehuels/moocn/pkg/layout"
	"github.com/matzehuels/moocn/pkg/spatial"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// yTicks is the tick budget used to round the value axis.
const yTicks = 6

// Shape is one bar to paint, in canvas CSS pixels.
type Shape struct {
	X, Y, W, H   float64
	Fill         string
	RadiusTop    float64
	RadiusBottom float64
	Series       int
	Category     int
	Hovered      bool
}

// Label is a text item to paint, anchored at its bottom center.
type Label struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

// Painter receives the shapes of one frame.
type Painter interface {
	Bar(s Shape)
	Label(l Label)
}

// FrameStats summarizes one [Chart.Draw].
type FrameStats struct {
	Frame  uint64
	Bars   int
	Culled int
	Labels int
	Depth  int
}

// Option configures a [Chart].
type Option func(*Chart)

// WithLogger sets the chart's logger.
func WithLogger(l *log.Logger) Option { return func(c *Chart) { c.logger = l } }

// WithID sets the chart ID instead of generating one.
func WithID(id string) Option { return func(c *Chart) { c.id = id } }

// WithViewportOptions passes extra options to the viewport controller,
// such as a frame scheduler or a clock.
func WithViewportOptions(opts ...viewport.Option) Option {
	return func(c *Chart) { c.viewOpts = append(c.viewOpts, opts...) }
}

// Chart is one interactive bar chart instance.
type Chart struct {
	id       string
	data     *dataset.Dataset
	opts     Options
	engine   Engine
	view     *viewport.Controller
	viewOpts []viewport.Option
	index    *spatial.Quadtree[hittest.Rect]
	layout   *layout.Layout
	hover    hittest.State
	hidden   map[int]bool
	logger   *log.Logger
	frame    uint64
	created  time.Time
}

// New validates d and opts and returns a chart showing all of d.
func New(d *dataset.Dataset, engine Engine, opts Options, copts ...Option) (*Chart, error) {
	if engine == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart needs an engine")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	d = d.Clone()
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	c := &Chart{
		data:    d,
		opts:    opts,
		engine:  engine,
		hidden:  make(map[int]bool),
		created: time.Now(),
		hover:   hittest.Leave(hittest.State{}),
	}
	for _, opt := range copts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	vopts := []viewport.Option{
		viewport.WithFactor(opts.ZoomFactor),
		viewport.WithAxes(opts.Axes),
		viewport.WithPolicy(opts.Policy),
		viewport.WithScales(engine),
	}
	c.view = viewport.New(append(vopts, c.viewOpts...)...)

	b := engine.Box()
	c.index = hittest.NewIndex(b.W*engine.PixelRatio(), b.H*engine.PixelRatio())

	l, err := layout.Compute(d, opts.layoutOptions())
	if err != nil {
		return nil, err
	}
	c.layout = l
	x, y := c.extents(l)
	engine.SetScale(viewport.X, x)
	engine.SetScale(viewport.Y, y)
	c.view.Init(engine.Scale(viewport.X), engine.Scale(viewport.Y))

	c.logger.Debug("chart created", "id", c.id, "categories", d.Len(), "series", d.SeriesCount(), "mode", opts.Mode)
	return c, nil
}

// ID returns the chart's identifier.
func (c *Chart) ID() string { return c.id }

// Created returns when the chart was created.
func (c *Chart) Created() time.Time { return c.created }

// Data returns the chart's dataset. Callers must not modify it; use
// [Chart.SetData].
func (c *Chart) Data() *dataset.Dataset { return c.data }

// Options returns the chart options with defaults applied.
func (c *Chart) Options() Options { return c.opts }

// Engine returns the coordinate engine.
func (c *Chart) Engine() Engine { return c.engine }

// Layout returns the layout of the last frame.
func (c *Chart) Layout() *layout.Layout { return c.layout }

// Viewport returns the x and y axis states.
func (c *Chart) Viewport() (x, y viewport.Axis) { return c.view.X(), c.view.Y() }

// Index returns the hit-test index of the last frame.
func (c *Chart) Index() *spatial.Quadtree[hittest.Rect] { return c.index }

func (c *Chart) extents(l *layout.Layout) (x, y viewport.Range) {
	x = viewport.Range{Min: l.Domain.Min, Max: l.Domain.Max}
	if l.Domain.Len() <= 0 {
		x = viewport.Range{Min: -0.5, Max: 0.5}
	}
	y = NiceRange(viewport.Range{Min: l.Values.Min, Max: l.Values.Max}, yTicks)
	return x, y
}

// SetOptions replaces the chart options. The viewport keeps its state.
func (c *Chart) SetOptions(opts Options) error {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	c.opts = opts
	return nil
}

// SetData replaces the dataset and widens (or, under the track policy,
// adjusts) the full viewport bounds. It reports whether the visible range
// changed.
func (c *Chart) SetData(d *dataset.Dataset) (bool, error) {
	if d == nil {
		return false, errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	d = d.Clone()
	d.Normalize()
	if err := d.Validate(); err != nil {
		return false, err
	}
	l, err := layout.Compute(d, c.opts.layoutOptions())
	if err != nil {
		return false, err
	}
	c.data = d
	c.layout = l

	x, y := c.extents(l)
	changed := c.view.UpdateData(x, y)
	if c.opts.Axes != viewport.XY {
		c.engine.SetScale(viewport.Y, c.view.Y().Full)
	}
	c.logger.Debug("data updated", "id", c.id, "categories", d.Len(), "x", fmt.Sprintf("%g..%g", x.Min, x.Max), "viewport_changed", changed)
	return changed, nil
}

// Draw runs one frame: clear the index, lay out, paint and index bars,
// paint value labels.
func (c *Chart) Draw(p Painter) FrameStats {
	ratio := c.engine.PixelRatio()
	box := c.engine.Box()
	c.index.Reset(spatial.Rect{W: box.W * ratio, H: box.H * ratio})

	l, err := layout.Compute(c.data, c.opts.layoutOptions())
	if err != nil {
		c.logger.Error("layout failed", "id", c.id, "err", err)
		return FrameStats{Frame: c.frame}
	}
	c.layout = l
	c.frame++

	stats := FrameStats{Frame: c.frame}
	ends := c.stackEnds(l)
	xv := c.engine.Scale(viewport.X)

	var labels []Label

	for _, b := range l.Bars() {
		if c.hidden[b.Series] {
			continue
		}
		if b.Left+b.Width < xv.Min || b.Left > xv.Max {
			stats.Culled++
			continue
		}
		shape, ok := c.shape(b, box, ends)
		if !ok {
			stats.Culled++
			continue
		}
		if p != nil {
			p.Bar(shape)
		}
		c.index.Insert(hittest.Rect{
			X:        (shape.X - box.X) * ratio,
			Y:        (shape.Y - box.Y) * ratio,
			W:        shape.W * ratio,
			H:        shape.H * ratio,
			Series:   b.Series,
			Category: b.Category,
		})
		stats.Bars++

		if c.opts.ShowValues {
			v := c.data.Value(b.Series, b.Category)
			if math.IsNaN(v) || v == 0 {
				continue
			}
			labels = append(labels, Label{
				X:     shape.X + shape.W/2,
				Y:     c.engine.ValToPos(math.Max(b.Base, b.Top), viewport.Y) - 2,
				Text:  FormatValue(v),
				Color: c.opts.ValueColor,
			})
		}
	}

	if p != nil {
		for _, lb := range labels {
			p.Label(lb)
		}
	}
	stats.Labels = len(labels)
	stats.Depth = c.index.Depth()

	c.logger.Debug("frame drawn", "id", c.id, "frame", stats.Frame, "bars", stats.Bars, "culled", stats.Culled, "depth", stats.Depth)
	return stats
}

// shape maps a bar to canvas pixels, clipped to the plot box.
func (c *Chart) shape(b layout.Bar, box viewport.Box, ends map[[2]int]corner) (Shape, bool) {
	x0 := c.engine.ValToPos(b.Left, viewport.X)
	x1 := c.engine.ValToPos(b.Left+b.Width, viewport.X)
	y0 := c.engine.ValToPos(math.Max(b.Base, b.Top), viewport.Y)
	y1 := c.engine.ValToPos(math.Min(b.Base, b.Top), viewport.Y)

	x0, x1 = math.Max(x0, box.X), math.Min(x1, box.X+box.W)
	y0, y1 = math.Max(y0, box.Y), math.Min(y1, box.Y+box.H)
	if x1 < x0 || y1 < y0 {
		return Shape{}, false
	}

	s := Shape{
		X: x0, Y: y0, W: x1 - x0, H: y1 - y0,
		Series:   b.Series,
		Category: b.Category,
	}
	color := ""
	if ser, ok := c.data.Lookup(b.Series); ok {
		color = ser.Color
	}
	s.Fill = c.opts.Palette.SeriesColor(b.Series, color)
	if c.hover.Active && c.hover.Hovered.Series == b.Series && c.hover.Hovered.Category == b.Category {
		s.Hovered = true
		s.Fill = c.opts.Palette.Emphasize(s.Fill)
	}

	r := c.opts.Radius
	if s.W*c.engine.PixelRatio() <= minRadiusWidth {
		r = 0
	}
	s.RadiusTop, s.RadiusBottom = r, r
	if c.opts.Mode == layout.Stacked && c.opts.RadiusMode == RadiusStack {
		end := ends[[2]int{b.Series, b.Category}]
		if !end.top {
			s.RadiusTop = 0
		}
		if !end.bottom {
			s.RadiusBottom = 0
		}
	}
	return s, true
}

type corner struct{ top, bottom bool }

// stackEnds marks, per category, the lowest and highest drawn bar of each
// stack. Missing values and hidden series do not count as stack ends.
func (c *Chart) stackEnds(l *layout.Layout) map[[2]int]corner {
	ends := make(map[[2]int]corner)
	if l.Mode != layout.Stacked {
		return ends
	}
	for i := range l.Positions {
		first, last := -1, -1
		for _, g := range l.Series {
			if !g.Drawn[i] || c.hidden[g.Series] {
				continue
			}
			if first < 0 {
				first = g.Series
			}
			last = g.Series
		}
		if first >= 0 {
			e := ends[[2]int{first, i}]
			e.bottom = true
			ends[[2]int{first, i}] = e
			e = ends[[2]int{last, i}]
			e.top = true
			ends[[2]int{last, i}] = e
		}
	}
	return ends
}
