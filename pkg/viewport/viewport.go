package viewport

import "math"

// Range is a closed interval of data values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Len returns Max - Min.
func (r Range) Len() float64 { return r.Max - r.Min }

// Valid reports whether both ends are finite and Min <= Max.
func (r Range) Valid() bool {
	return finite(r.Min) && finite(r.Max) && r.Min <= r.Max
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	return Range{Min: math.Min(r.Min, o.Min), Max: math.Max(r.Max, o.Max)}
}

// Axis is the viewport state of one axis.
type Axis struct {
	Visible Range
	Full    Range
}

// Zoomed reports whether the visible range is narrower than the full one.
func (a Axis) Zoomed() bool { return a.Visible != a.Full }

// AxisKey names an axis.
type AxisKey int

const (
	X AxisKey = iota
	Y
)

func (k AxisKey) String() string {
	if k == Y {
		return "y"
	}
	return "x"
}

// Box is the plot area in the coordinate space of incoming events.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a cursor position in the coordinate space of the [Box].
type Point struct {
	X, Y float64
}

// local returns the fractional position of p inside b measured from the
// left and from the bottom. ok is false when p lies outside b.
func (b Box) local(p Point) (fromLeft, fromBottom float64, ok bool) {
	if b.W <= 0 || b.H <= 0 || !finite(p.X) || !finite(p.Y) {
		return 0, 0, false
	}
	lx, ly := p.X-b.X, p.Y-b.Y
	if lx < 0 || lx > b.W || ly < 0 || ly > b.H {
		return 0, 0, false
	}
	return lx / b.W, 1 - ly/b.H, true
}

// Clamp fits r into full. A range at least as wide as full becomes full;
// otherwise r slides back inside without changing its length.
func Clamp(r, full Range) Range {
	if r.Len() >= full.Len() {
		return full
	}
	if r.Min < full.Min {
		return Range{Min: full.Min, Max: full.Min + r.Len()}
	}
	if r.Max > full.Max {
		return Range{Min: full.Max - r.Len(), Max: full.Max}
	}
	return r
}

// ZoomAt scales visible by factor around anchor, which stays at fraction
// pct of the new range. The result is clamped to full.
func ZoomAt(visible, full Range, anchor, pct, factor float64) Range {
	n := visible.Len() * factor
	lo := anchor - pct*n
	return Clamp(Range{Min: lo, Max: lo + n}, full)
}

// PanBy shifts visible by -delta data units and slides it back into full.
func PanBy(visible, full Range, delta float64) Range {
	return Clamp(Range{Min: visible.Min - delta, Max: visible.Max - delta}, full)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
