package chart

import (
	"fmt"
	"math"

	"github.com/matzehuels/moocn/pkg/hittest"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// Tooltip placement relative to the cursor, in CSS pixels.
const (
	tooltipOffsetX = 48
	tooltipOffsetY = 32
	tooltipPadding = 24
)

// local converts canvas coordinates into plot-local CSS pixels.
func (c *Chart) local(cx, cy float64) (float64, float64) {
	b := c.engine.Box()
	return cx - b.X, cy - b.Y
}

// HitTest returns the category of series' bar under the canvas position
// (cx, cy), as painted in the last frame.
func (c *Chart) HitTest(cx, cy float64, series int) (int, bool) {
	lx, ly := c.local(cx, cy)
	return hittest.Resolve(c.index, lx, ly, c.engine.PixelRatio(), series)
}

// Hover moves the cursor to (cx, cy) and reports whether the hovered bar
// changed.
func (c *Chart) Hover(cx, cy float64) (hittest.State, bool) {
	lx, ly := c.local(cx, cy)
	b := c.engine.Box()
	var next hittest.State
	if lx > b.W || ly > b.H {
		next = hittest.Leave(c.hover)
	} else {
		next = hittest.Hover(c.index, lx, ly, c.engine.PixelRatio())
	}
	changed := hittest.Changed(c.hover, next)
	c.hover = next
	if changed {
		c.logger.Debug("hover", "id", c.id, "active", next.Active, "series", next.Hovered.Series, "category", next.Hovered.Category)
	}
	return next, changed
}

// Leave clears the hover state.
func (c *Chart) Leave() {
	c.hover = hittest.Leave(c.hover)
}

// HoverState returns the current hover state.
func (c *Chart) HoverState() hittest.State { return c.hover }

// TooltipItem is one series row of a tooltip.
type TooltipItem struct {
	Series int     `json:"series"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Value  float64 `json:"value"`
}

// Tooltip describes the tooltip for the hovered category.
type Tooltip struct {
	Active   bool          `json:"active"`
	Category int           `json:"category"`
	Label    string        `json:"label"`
	Items    []TooltipItem `json:"items"`
	Left     float64       `json:"left"`
	Top      float64       `json:"top"`
}

// Tooltip lists every shown series with a value at the hovered category.
// width and height are the tooltip's rendered size, used to keep it inside
// the canvas.
func (c *Chart) Tooltip(width, height float64) Tooltip {
	if !c.hover.Active {
		return Tooltip{Category: -1}
	}
	cat := c.hover.Hovered.Category
	t := Tooltip{Active: true, Category: cat, Label: c.data.Label(cat)}
	for i, s := range c.data.Series {
		idx := i + 1
		v := c.data.Value(idx, cat)
		if c.hidden[idx] || math.IsNaN(v) {
			continue
		}
		t.Items = append(t.Items, TooltipItem{
			Series: idx,
			Name:   seriesName(idx, s.Name),
			Color:  c.opts.Palette.SeriesColor(idx, s.Color),
			Value:  v,
		})
	}
	if len(t.Items) == 0 {
		return Tooltip{Category: -1}
	}

	b := c.engine.Box()
	canvasW, canvasH := c.engine.Size()
	t.Left = b.X + c.hover.CursorX + tooltipOffsetX
	t.Top = b.Y + c.hover.CursorY + tooltipOffsetY
	if t.Left+width > canvasW-tooltipPadding {
		t.Left = canvasW - width - tooltipPadding
	}
	t.Left = math.Max(t.Left, tooltipPadding)
	if t.Top+height > canvasH-tooltipPadding {
		t.Top = canvasH - height - tooltipPadding
	}
	t.Top = math.Max(t.Top, tooltipPadding)
	return t
}

func seriesName(idx int, name string) string {
	if name == "" {
		return fmt.Sprintf("Series %d", idx)
	}
	return name
}

// LegendItem is one legend entry. Value is NaN unless a category is
// hovered and the series has a value there.
type LegendItem struct {
	Series int     `json:"series"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Value  float64 `json:"-"`
	Shown  bool    `json:"shown"`
}

// Legend returns one entry per series, ignored ones included.
func (c *Chart) Legend() []LegendItem {
	items := make([]LegendItem, 0, len(c.data.Series))
	for i, s := range c.data.Series {
		idx := i + 1
		v := math.NaN()
		if c.hover.Active {
			v = c.data.Value(idx, c.hover.Hovered.Category)
		}
		items = append(items, LegendItem{
			Series: idx,
			Name:   seriesName(idx, s.Name),
			Color:  c.opts.Palette.SeriesColor(idx, s.Color),
			Value:  v,
			Shown:  !c.hidden[idx],
		})
	}
	return items
}

// Toggle shows or hides a series and returns whether it is now shown.
// Hidden series keep their slot in the layout.
func (c *Chart) Toggle(series int) bool {
	if _, ok := c.data.Lookup(series); !ok {
		return false
	}
	c.hidden[series] = !c.hidden[series]
	return !c.hidden[series]
}

// Highlight returns the canvas box spanning the hovered category's
// cluster over the full plot height.
func (c *Chart) Highlight() (viewport.Box, bool) {
	if !c.hover.Active || c.layout == nil {
		return viewport.Box{}, false
	}
	cat := c.hover.Hovered.Category
	if cat < 0 || cat >= len(c.layout.Clusters) {
		return viewport.Box{}, false
	}
	span := c.layout.Clusters[cat]
	b := c.engine.Box()
	x0 := math.Max(c.engine.ValToPos(span.Min, viewport.X), b.X)
	x1 := math.Min(c.engine.ValToPos(span.Max, viewport.X), b.X+b.W)
	if x1 <= x0 {
		return viewport.Box{}, false
	}
	return viewport.Box{X: x0, Y: b.Y, W: x1 - x0, H: b.H}, true
}

// Wheel forwards a scroll event to the viewport.
func (c *Chart) Wheel(e viewport.WheelEvent) bool {
	return c.logView("wheel", c.view.Wheel(e, c.engine.Box()))
}

// Zoom zooms at a canvas position without throttling.
func (c *Chart) Zoom(p viewport.Point, out bool) bool {
	return c.logView("zoom", c.view.Zoom(p, c.engine.Box(), out))
}

// PanStart forwards a pointer-down event.
func (c *Chart) PanStart(e viewport.PointerEvent) bool {
	return c.view.PanStart(e, c.engine.Box())
}

// PanMove forwards a pointer-move event during a drag.
func (c *Chart) PanMove(e viewport.PointerEvent) bool {
	return c.view.PanMove(e)
}

// PanEnd forwards a pointer-up event.
func (c *Chart) PanEnd(e viewport.PointerEvent) bool {
	return c.logView("pan", c.view.PanEnd(e))
}

// Pan shifts the view by a pixel drag.
func (c *Chart) Pan(dx, dy float64) bool {
	return c.logView("pan", c.view.Pan(dx, dy, c.engine.Box()))
}

// SetVisible shows the given range of an axis, clamped to the data.
func (c *Chart) SetVisible(axis viewport.AxisKey, r viewport.Range) bool {
	return c.logView("set "+axis.String(), c.view.SetVisible(axis, r))
}

// ResetZoom shows the full data range.
func (c *Chart) ResetZoom() bool {
	return c.logView("reset", c.view.Reset())
}

func (c *Chart) logView(op string, changed bool) bool {
	if changed {
		x := c.view.X().Visible
		c.logger.Debug("viewport", "id", c.id, "op", op, "x_min", x.Min, "x_max", x.Max)
	}
	return changed
}
