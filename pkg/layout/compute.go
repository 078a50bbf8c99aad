package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

// Mode selects grouped or stacked bars.
type Mode int

const (
	Grouped Mode = iota
	Stacked
)

func (m Mode) String() string {
	switch m {
	case Grouped:
		return "grouped"
	case Stacked:
		return "stacked"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "grouped" or "stacked".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grouped", "group", "":
		return Grouped, nil
	case "stacked", "stack":
		return Stacked, nil
	}
	return Grouped, errors.New(errors.ErrCodeInvalidOption, "unknown bar mode %q (want grouped or stacked)", s)
}

const (
	DefaultGroupWidth = 0.9
	DefaultBarWidth   = 0.9
)

// Options configures [Compute].
type Options struct {
	Mode       Mode
	GroupWidth float64 // fraction of category spacing used by a cluster
	BarWidth   float64 // fraction of the cluster used by bars
	Justify    Justify
	Ignore     []int // 1-based series indexes excluded from layout
}

// SetDefaults fills zero widths with the defaults.
func (o *Options) SetDefaults() {
	if o.GroupWidth == 0 {
		o.GroupWidth = DefaultGroupWidth
	}
	if o.BarWidth == 0 {
		o.BarWidth = DefaultBarWidth
	}
}

// Validate checks the width fractions.
func (o Options) Validate() error {
	if err := errors.ValidateFraction("group width", o.GroupWidth); err != nil {
		return err
	}
	return errors.ValidateFraction("bar width", o.BarWidth)
}

// Layout is the geometry of one frame.
type Layout struct {
	Mode      Mode
	Positions []float64
	Series    []Geometry // non-ignored series in index order
	Clusters  []Span     // per category, first bar start to last bar end
	Domain    Span       // x extent including half a category on each side
	Values    Span       // value extent of drawn bars, always including 0
}

// Bar is one drawable bar.
type Bar struct {
	Series   int
	Category int
	Left     float64
	Width    float64
	Base     float64
	Top      float64
	Value    float64
}

// Compute lays out every non-ignored series of d. Series flagged in the
// dataset and those listed in opts.Ignore take neither width nor a stack
// slot.
func Compute(d *dataset.Dataset, opts Options) (*Layout, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	positions := d.X
	active := activeSeries(d, opts.Ignore)
	cluster := ClusterWidth(positions, opts.GroupWidth)

	l := &Layout{
		Mode:      opts.Mode,
		Positions: positions,
	}
	if len(positions) > 0 {
		half := Spacing(positions) / 2
		l.Domain = Span{Min: positions[0] - half, Max: positions[len(positions)-1] + half}
	}

	switch opts.Mode {
	case Stacked:
		shared := LayoutStacked(positions, opts.GroupWidth, opts.BarWidth)
		stack := NewStack(len(positions))
		for _, idx := range active {
			values := d.Series[idx-1].Values
			g := newGeometry(idx, len(positions))
			copy(g.Offset, shared.Offset)
			copy(g.Size, shared.Size)
			g.Base, g.Top = stack.Accumulate(values)
			for i := range g.Drawn {
				g.Drawn[i] = i < len(values) && !math.IsNaN(values[i])
			}
			l.Series = append(l.Series, g)
		}
	default:
		for k, g := range LayoutGrouped(positions, len(active), opts.GroupWidth, opts.BarWidth, opts.Justify) {
			idx := active[k]
			values := d.Series[idx-1].Values
			g.Series = idx
			for i := range g.Drawn {
				if i < len(values) && !math.IsNaN(values[i]) {
					g.Top[i] = values[i]
					g.Drawn[i] = true
				}
			}
			l.Series = append(l.Series, g)
		}
	}

	l.Clusters = clusterSpans(positions, cluster, l.Series)
	l.Values = valueExtent(l.Series)
	return l, nil
}

// clusterSpans bounds the bar slots of each category. Without series the
// whole cluster is used.
func clusterSpans(positions []float64, cluster float64, series []Geometry) []Span {
	spans := make([]Span, len(positions))
	for i, x := range positions {
		if len(series) == 0 {
			spans[i] = Span{Min: x - cluster/2, Max: x + cluster/2}
			continue
		}
		sp := Span{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, g := range series {
			sp.Min = math.Min(sp.Min, g.Offset[i])
			sp.Max = math.Max(sp.Max, g.Offset[i]+g.Size[i])
		}
		spans[i] = sp
	}
	return spans
}

func activeSeries(d *dataset.Dataset, ignore []int) []int {
	var out []int
	for i, s := range d.Series {
		idx := i + 1
		if s.Ignore || slices.Contains(ignore, idx) {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func valueExtent(series []Geometry) Span {
	var v Span
	for _, g := range series {
		for i, drawn := range g.Drawn {
			if !drawn {
				continue
			}
			v.Min = math.Min(v.Min, math.Min(g.Base[i], g.Top[i]))
			v.Max = math.Max(v.Max, math.Max(g.Base[i], g.Top[i]))
		}
	}
	return v
}

// Bars flattens the layout into drawable bars, series-major, skipping
// missing values.
func (l *Layout) Bars() []Bar {
	var out []Bar
	for _, g := range l.Series {
		for i, drawn := range g.Drawn {
			if !drawn {
				continue
			}
			out = append(out, Bar{
				Series:   g.Series,
				Category: i,
				Left:     g.Offset[i],
				Width:    g.Size[i],
				Base:     g.Base[i],
				Top:      g.Top[i],
				Value:    g.Top[i] - g.Base[i],
			})
		}
	}
	return out
}

// Geometry returns the geometry of the series with the given 1-based
// dataset index.
func (l *Layout) Geometry(series int) (*Geometry, bool) {
	for i := range l.Series {
		if l.Series[i].Series == series {
			return &l.Series[i], true
		}
	}
	return nil, false
}

// Category returns the index of the category whose cluster contains x,
// or -1.
func (l *Layout) Category(x float64) int {
	i, found := slices.BinarySearchFunc(l.Clusters, x, func(s Span, x float64) int {
		switch {
		case s.Max < x:
			return -1
		case s.Min > x:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return i
}

// Top returns the highest stack end in category i, used to place labels
// above stacks.
func (l *Layout) Top(i int) float64 {
	top := math.Inf(-1)
	for _, g := range l.Series {
		if i < len(g.Drawn) && g.Drawn[i] {
			top = math.Max(top, g.Top[i])
		}
	}
	return top
}
