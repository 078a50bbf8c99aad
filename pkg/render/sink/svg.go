package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/viewport"
)

const fontFamily = `system-ui, -apple-system, "Segoe UI", sans-serif`

const barInteractionCSS = `
    .bar { transition: opacity 0.15s ease; }
    .bar:hover { opacity: 0.85; }
    .legend-item.hidden { opacity: 0.4; }
    text { font-family: %s; }`

// Layout constants for decorations, in CSS pixels.
const (
	xLabelMinGap   = 40
	legendSwatch   = 10
	legendCharW    = 6.5
	tooltipWidth   = 160
	tooltipRowH    = 16
	tooltipHeaderH = 22
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title   string
	legend  bool
	grid    bool
	tooltip bool
}

func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }
func WithoutLegend() SVGOption     { return func(r *svgRenderer) { r.legend = false } }
func WithoutGrid() SVGOption       { return func(r *svgRenderer) { r.grid = false } }

// WithTooltip draws the tooltip of the chart's current hover state.
func WithTooltip() SVGOption { return func(r *svgRenderer) { r.tooltip = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{legend: true, grid: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws one frame of c as a standalone SVG document.
func RenderSVG(c *chart.Chart, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	pal := c.Options().Palette
	w, h := c.Engine().Size()
	box := c.Engine().Box()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>"+barInteractionCSS+"\n  </style>\n", fontFamily)
	fmt.Fprintf(&buf, `  <defs><clipPath id="plot"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/></clipPath></defs>`+"\n",
		box.X, box.Y, box.W, box.H)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", pal.Background)

	if hl, ok := c.Highlight(); ok {
		fmt.Fprintf(&buf, `  <rect class="highlight" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			hl.X, hl.Y, hl.W, hl.H, pal.Highlight)
	}

	renderAxes(&buf, c, r.grid)

	p := &svgPainter{chart: c}
	c.Draw(p)
	buf.WriteString(`  <g class="bars" clip-path="url(#plot)">` + "\n")
	buf.Write(p.bars.Bytes())
	buf.WriteString("  </g>\n")
	buf.Write(p.labels.Bytes())

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-size="14" font-weight="600" fill="%s">%s</text>`+"\n",
			box.X, math.Max(box.Y-20, 14), pal.Foreground, escapeXML(r.title))
	}
	if r.legend {
		renderLegend(&buf, c, r.title != "")
	}
	if r.tooltip {
		renderTooltip(&buf, c)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// svgPainter collects bars and value labels of one frame.
type svgPainter struct {
	chart  *chart.Chart
	bars   bytes.Buffer
	labels bytes.Buffer
}

func (p *svgPainter) Bar(s chart.Shape) {
	d := p.chart.Data()
	name := fmt.Sprintf("Series %d", s.Series)
	if sr, ok := d.Lookup(s.Series); ok && sr.Name != "" {
		name = sr.Name
	}
	title := fmt.Sprintf("%s · %s: %s", name, d.Label(s.Category), chart.FormatValue(d.Value(s.Series, s.Category)))
	fmt.Fprintf(&p.bars, `    <path class="bar" data-series="%d" data-category="%d" d="%s" fill="%s"><title>%s</title></path>`+"\n",
		s.Series, s.Category, barPath(s), s.Fill, escapeXML(title))
}

func (p *svgPainter) Label(l chart.Label) {
	fmt.Fprintf(&p.labels, `  <text class="value" x="%.2f" y="%.2f" text-anchor="middle" font-size="11" fill="%s">%s</text>`+"\n",
		l.X, l.Y, l.Color, escapeXML(l.Text))
}

// barPath outlines a bar with independently rounded top and bottom
// corners.
func barPath(s chart.Shape) string {
	rt, rb := cornerRadii(s)
	if rt == 0 && rb == 0 {
		return fmt.Sprintf("M%.2f,%.2fh%.2fv%.2fh%.2fZ", s.X, s.Y, s.W, s.H, -s.W)
	}
	x0, y0, x1, y1 := s.X, s.Y, s.X+s.W, s.Y+s.H
	return fmt.Sprintf("M%.2f,%.2fQ%.2f,%.2f %.2f,%.2fH%.2fQ%.2f,%.2f %.2f,%.2fV%.2fQ%.2f,%.2f %.2f,%.2fH%.2fQ%.2f,%.2f %.2f,%.2fZ",
		x0, y0+rt,
		x0, y0, x0+rt, y0,
		x1-rt,
		x1, y0, x1, y0+rt,
		y1-rb,
		x1, y1, x1-rb, y1,
		x0+rb,
		x0, y1, x0, y1-rb)
}

// cornerRadii limits the shape's radii so corners never overlap.
func cornerRadii(s chart.Shape) (top, bottom float64) {
	half := s.W / 2
	top = math.Min(math.Max(s.RadiusTop, 0), half)
	bottom = math.Min(math.Max(s.RadiusBottom, 0), half)
	if top+bottom > s.H && top+bottom > 0 {
		k := s.H / (top + bottom)
		top *= k
		bottom *= k
	}
	return top, bottom
}

func renderAxes(buf *bytes.Buffer, c *chart.Chart, grid bool) {
	e := c.Engine()
	box := e.Box()
	pal := c.Options().Palette

	buf.WriteString(`  <g class="axis y">` + "\n")
	for _, v := range chart.Ticks(e.Scale(viewport.Y), 6) {
		y := e.ValToPos(v, viewport.Y)
		if y < box.Y-0.5 || y > box.Y+box.H+0.5 {
			continue
		}
		if grid {
			fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n",
				box.X, y, box.X+box.W, y, pal.Grid)
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="end" dominant-baseline="middle" font-size="11" fill="%s">%s</text>`+"\n",
			box.X-6, y, pal.Muted, chart.FormatValue(v))
	}
	buf.WriteString("  </g>\n")

	l := c.Layout()
	if l == nil {
		return
	}
	xv := e.Scale(viewport.X)
	var visible []int
	for i, pos := range l.Positions {
		if pos >= xv.Min && pos <= xv.Max {
			visible = append(visible, i)
		}
	}
	step := 1
	if n := len(visible); n > 0 && box.W > 0 {
		step = int(math.Ceil(float64(n) * xLabelMinGap / box.W))
		step = max(step, 1)
	}
	d := c.Data()
	buf.WriteString(`  <g class="axis x">` + "\n")
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n",
		box.X, box.Y+box.H, box.X+box.W, box.Y+box.H, pal.Muted)
	for k, i := range visible {
		if k%step != 0 {
			continue
		}
		x := e.ValToPos(l.Positions[i], viewport.X)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" font-size="11" fill="%s">%s</text>`+"\n",
			x, box.Y+box.H+16, pal.Muted, escapeXML(d.Label(i)))
	}
	buf.WriteString("  </g>\n")
}

func renderLegend(buf *bytes.Buffer, c *chart.Chart, titled bool) {
	items := c.Legend()
	if len(items) == 0 {
		return
	}
	box := c.Engine().Box()
	pal := c.Options().Palette
	x := box.X
	if titled {
		x = box.X + box.W/2
	}
	y := math.Max(box.Y-24, 4)

	buf.WriteString(`  <g class="legend">` + "\n")
	for _, it := range items {
		class := "legend-item"
		if !it.Shown {
			class += " hidden"
		}
		text := it.Name
		if !math.IsNaN(it.Value) {
			text += ": " + chart.FormatValue(it.Value)
		}
		fmt.Fprintf(buf, `    <g class="%s" data-series="%d"><rect x="%.2f" y="%.2f" width="%d" height="%d" rx="2" fill="%s"/><text x="%.2f" y="%.2f" font-size="11" fill="%s">%s</text></g>`+"\n",
			class, it.Series, x, y, legendSwatch, legendSwatch, it.Color,
			x+legendSwatch+4, y+legendSwatch-1, pal.Foreground, escapeXML(text))
		x += legendSwatch + 4 + float64(len(text))*legendCharW + 14
	}
	buf.WriteString("  </g>\n")
}

// tooltipSize returns the rendered size of a tooltip with n rows.
func tooltipSize(n int) (w, h float64) {
	return tooltipWidth, tooltipHeaderH + float64(n)*tooltipRowH + 6
}

func renderTooltip(buf *bytes.Buffer, c *chart.Chart) {
	n := len(c.Data().Series)
	w, h := tooltipSize(n)
	t := c.Tooltip(w, h)
	if !t.Active {
		return
	}
	w, h = tooltipSize(len(t.Items))
	pal := c.Options().Palette

	fmt.Fprintf(buf, `  <g class="tooltip" transform="translate(%.2f,%.2f)">`+"\n", t.Left, t.Top)
	fmt.Fprintf(buf, `    <rect width="%.0f" height="%.0f" rx="4" fill="%s" stroke="%s"/>`+"\n", w, h, pal.Background, pal.Grid)
	fmt.Fprintf(buf, `    <text x="8" y="16" font-size="12" font-weight="600" fill="%s">%s</text>`+"\n", pal.Foreground, escapeXML(t.Label))
	for i, it := range t.Items {
		y := tooltipHeaderH + float64(i)*tooltipRowH
		fmt.Fprintf(buf, `    <circle cx="12" cy="%.1f" r="4" fill="%s"/>`+"\n", y+6, it.Color)
		fmt.Fprintf(buf, `    <text x="22" y="%.1f" font-size="11" fill="%s">%s</text>`+"\n", y+10, pal.Foreground, escapeXML(it.Name))
		fmt.Fprintf(buf, `    <text x="%.0f" y="%.1f" font-size="11" text-anchor="end" fill="%s">%s</text>`+"\n", w-8, y+10, pal.Foreground, chart.FormatValue(it.Value))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
