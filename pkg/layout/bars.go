package layout

import "math"

// Span is a closed interval in domain units.
type Span struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Len returns Max - Min.
func (s Span) Len() float64 { return s.Max - s.Min }

// Center returns the midpoint of the span.
func (s Span) Center() float64 { return (s.Min + s.Max) / 2 }

// Contains reports whether v lies in [Min, Max].
func (s Span) Contains(v float64) bool { return v >= s.Min && v <= s.Max }

// Geometry is the bar layout of one series, aligned with the categories.
// Offset and Size are the left edge and width of each bar in x domain
// units. Base and Top are the value bounds; grouped bars start at 0.
// Drawn is false where the value is missing.
type Geometry struct {
	Series int
	Offset []float64
	Size   []float64
	Base   []float64
	Top    []float64
	Drawn  []bool
}

// Spacing returns the average gap between consecutive positions, or 1 for
// fewer than two positions.
func Spacing(positions []float64) float64 {
	if len(positions) < 2 {
		return 1
	}
	sp := (positions[len(positions)-1] - positions[0]) / float64(len(positions)-1)
	if math.IsNaN(sp) || math.IsInf(sp, 0) || sp < 0 {
		return 1
	}
	return sp
}

// ClusterWidth returns the domain width of one category's cluster.
func ClusterWidth(positions []float64, groupWidth float64) float64 {
	return Spacing(positions) * clampFraction(groupWidth)
}

// LayoutGrouped places seriesCount side-by-side bars around each position.
// The cluster spans groupWidth of the category spacing; bars share
// barWidth of the cluster according to justify. Series in the result are
// numbered 1..seriesCount.
func LayoutGrouped(positions []float64, seriesCount int, groupWidth, barWidth float64, justify Justify) []Geometry {
	if seriesCount < 1 {
		return nil
	}
	cluster := ClusterWidth(positions, groupWidth)
	inner := Distribute(seriesCount, barWidth, justify)

	out := make([]Geometry, seriesCount)
	for k, slot := range inner {
		g := newGeometry(k+1, len(positions))
		for i, x := range positions {
			left := x - cluster/2
			g.Offset[i] = left + slot.Offset*cluster
			g.Size[i] = slot.Size * cluster
		}
		out[k] = g
	}
	return out
}

// LayoutStacked returns the single bar footprint shared by all stacked
// series: barWidth of the cluster, centered on each position.
func LayoutStacked(positions []float64, groupWidth, barWidth float64) Geometry {
	cluster := ClusterWidth(positions, groupWidth)
	size := cluster * clampFraction(barWidth)

	g := newGeometry(0, len(positions))
	for i, x := range positions {
		g.Offset[i] = x - size/2
		g.Size[i] = size
	}
	return g
}

func newGeometry(series, n int) Geometry {
	return Geometry{
		Series: series,
		Offset: make([]float64, n),
		Size:   make([]float64, n),
		Base:   make([]float64, n),
		Top:    make([]float64, n),
		Drawn:  make([]bool, n),
	}
}

// Stack accumulates series values per category in stack order.
type Stack struct {
	sums []float64
}

// NewStack returns an empty stack over n categories.
func NewStack(n int) *Stack {
	return &Stack{sums: make([]float64, n)}
}

// Accumulate adds one series on top of the stack and returns its bounds.
// Missing values contribute 0, so base equals top for them.
func (s *Stack) Accumulate(values []float64) (base, top []float64) {
	base = make([]float64, len(s.sums))
	top = make([]float64, len(s.sums))
	for i := range s.sums {
		base[i] = s.sums[i]
		if i < len(values) && !math.IsNaN(values[i]) {
			s.sums[i] += values[i]
		}
		top[i] = s.sums[i]
	}
	return base, top
}

// Totals returns the current running sums.
func (s *Stack) Totals() []float64 {
	return append([]float64(nil), s.sums...)
}
