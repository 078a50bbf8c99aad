package sink

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tooltip bool
	labels  bool
}

// WithJSONTooltip includes the tooltip of the current hover state.
func WithJSONTooltip() JSONOption { return func(r *jsonRenderer) { r.tooltip = true } }

// WithJSONLabels includes value labels.
func WithJSONLabels() JSONOption { return func(r *jsonRenderer) { r.labels = true } }

// Frame is the JSON form of one drawn frame, in canvas CSS pixels.
type Frame struct {
	ID      string             `json:"id"`
	Frame   uint64             `json:"frame"`
	Width   float64            `json:"width"`
	Height  float64            `json:"height"`
	Plot    viewport.Box       `json:"plot"`
	X       FrameAxis          `json:"x"`
	Y       FrameAxis          `json:"y"`
	Bars    []FrameBar         `json:"bars"`
	Labels  []chart.Label      `json:"labels,omitempty"`
	Legend  []chart.LegendItem `json:"legend"`
	Tooltip *chart.Tooltip     `json:"tooltip,omitempty"`
	Culled  int                `json:"culled"`
	Depth   int                `json:"depth"`
}

// FrameAxis holds the visible and full range of an axis.
type FrameAxis struct {
	Visible viewport.Range `json:"visible"`
	Full    viewport.Range `json:"full"`
}

// FrameBar is one painted bar.
type FrameBar struct {
	Series   int        `json:"series"`
	Category int        `json:"category"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	W        float64    `json:"w"`
	H        float64    `json:"h"`
	Fill     string     `json:"fill"`
	Radius   [2]float64 `json:"radius"`
	Value    *float64   `json:"value"`
	Hovered  bool       `json:"hovered,omitempty"`
}

type framePainter struct {
	chart  *chart.Chart
	bars   []FrameBar
	labels []chart.Label
}

func (p *framePainter) Bar(s chart.Shape) {
	fb := FrameBar{
		Series:   s.Series,
		Category: s.Category,
		X:        s.X,
		Y:        s.Y,
		W:        s.W,
		H:        s.H,
		Fill:     s.Fill,
		Radius:   [2]float64{s.RadiusTop, s.RadiusBottom},
		Hovered:  s.Hovered,
	}
	if v := p.chart.Data().Value(s.Series, s.Category); !math.IsNaN(v) {
		fb.Value = &v
	}
	p.bars = append(p.bars, fb)
}

func (p *framePainter) Label(l chart.Label) { p.labels = append(p.labels, l) }

// BuildFrame draws one frame of c and records it.
func BuildFrame(c *chart.Chart, opts ...JSONOption) Frame {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	p := &framePainter{chart: c, bars: []FrameBar{}}
	stats := c.Draw(p)

	w, h := c.Engine().Size()
	x, y := c.Viewport()
	f := Frame{
		ID:     c.ID(),
		Frame:  stats.Frame,
		Width:  w,
		Height: h,
		Plot:   c.Engine().Box(),
		X:      FrameAxis{Visible: x.Visible, Full: x.Full},
		Y:      FrameAxis{Visible: y.Visible, Full: y.Full},
		Bars:   p.bars,
		Legend: c.Legend(),
		Culled: stats.Culled,
		Depth:  stats.Depth,
	}
	if r.labels {
		f.Labels = p.labels
	}
	if r.tooltip {
		tw, th := tooltipSize(len(c.Data().Series))
		if t := c.Tooltip(tw, th); t.Active {
			f.Tooltip = &t
		}
	}
	return f
}

// RenderJSON draws one frame of c and encodes it as indented JSON.
func RenderJSON(c *chart.Chart, opts ...JSONOption) ([]byte, error) {
	return json.MarshalIndent(BuildFrame(c, opts...), "", "  ")
}
