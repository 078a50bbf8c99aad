// Package hittest resolves which painted bar lies under the cursor.
//
// Rectangles are recorded in plot-local device pixels while the cursor
// arrives in CSS pixels, so every lookup scales the cursor by the device
// pixel ratio first. The functions here are pure: hover state is passed
// in and returned rather than kept in package variables.
package hittest

import "github.com/matzehuels/moocn/pkg/spatial"

// Rect is one painted bar in plot-local device pixels.
type Rect struct {
	X, Y, W, H float64
	Series     int // 1-based dataset series index
	Category   int
}

// Bounds implements [spatial.Item].
func (r Rect) Bounds() spatial.Rect {
	return spatial.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// Contains reports whether the device-pixel point lies in r, edges
// included.
func (r Rect) Contains(x, y float64) bool {
	return spatial.PointWithin(x, y, r.X, r.Y, r.W, r.H)
}

// Index is the per-frame rectangle store queried by the resolver.
type Index interface {
	Query(r spatial.Rect, visit func(Rect))
}

// NewIndex returns a quadtree sized to a plot of the given device-pixel
// dimensions.
func NewIndex(width, height float64, opts ...spatial.Option) *spatial.Quadtree[Rect] {
	return spatial.New[Rect](spatial.Rect{W: width, H: height}, opts...)
}

// Lookup returns the first rectangle of the given series under the cursor.
// cx and cy are plot-local CSS pixels. A series below 1 matches any series.
func Lookup(idx Index, cx, cy, pxRatio float64, series int) (Rect, bool) {
	if idx == nil {
		return Rect{}, false
	}
	if pxRatio <= 0 {
		pxRatio = 1
	}
	x, y := cx*pxRatio, cy*pxRatio

	var (
		hit   Rect
		found bool
	)
	idx.Query(spatial.Point(x, y), func(r Rect) {
		if found || (series > 0 && r.Series != series) {
			return
		}
		if r.Contains(x, y) {
			hit, found = r, true
		}
	})
	return hit, found
}

// Resolve returns the category index of series' bar under the cursor.
func Resolve(idx Index, cx, cy, pxRatio float64, series int) (int, bool) {
	r, ok := Lookup(idx, cx, cy, pxRatio, series)
	if !ok {
		return -1, false
	}
	return r.Category, true
}

// State is the hover state of one chart.
type State struct {
	Hovered Rect
	Active  bool
	CursorX float64
	CursorY float64
}

// Hover returns the state after the cursor moved to (cx, cy). A cursor
// outside the plot (negative coordinates) clears the hover.
func Hover(idx Index, cx, cy, pxRatio float64) State {
	next := State{CursorX: cx, CursorY: cy}
	if cx < 0 || cy < 0 {
		return next
	}
	next.Hovered, next.Active = Lookup(idx, cx, cy, pxRatio, 0)
	return next
}

// Changed reports whether the hovered bar differs between two states.
func Changed(a, b State) bool {
	return a.Active != b.Active || (a.Active && a.Hovered != b.Hovered)
}

// Leave returns the state after the cursor left the plot.
func Leave(State) State { return State{CursorX: -1, CursorY: -1} }
