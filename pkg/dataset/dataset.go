package dataset

import (
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/moocn/pkg/errors"
)

// Values is one series' data aligned with the categories. NaN marks a
// missing value.
type Values []float64

// Missing reports whether v is a missing value.
func Missing(v float64) bool { return math.IsNaN(v) }

// Null returns the missing-value marker.
func Null() float64 { return math.NaN() }

// MarshalJSON encodes missing values as null.
func (v Values) MarshalJSON() ([]byte, error) {
	raw := make([]*float64, len(v))
	for i := range v {
		if !Missing(v[i]) {
			raw[i] = &v[i]
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes null entries as NaN.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromPointers(raw)
	return nil
}

// MarshalYAML encodes missing values as null.
func (v Values) MarshalYAML() (any, error) {
	raw := make([]*float64, len(v))
	for i := range v {
		if !Missing(v[i]) {
			raw[i] = &v[i]
		}
	}
	return raw, nil
}

// UnmarshalYAML decodes null entries as NaN.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	var raw []*float64
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = fromPointers(raw)
	return nil
}

func fromPointers(raw []*float64) Values {
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out
}

// Series is one named, colored data channel.
type Series struct {
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Values Values `json:"values" yaml:"values"`
	// Ignore excludes the series from bar layout (decorative series).
	Ignore bool `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// Dataset is an ordered set of categories with one value per series each.
type Dataset struct {
	Name   string    `json:"name,omitempty" yaml:"name,omitempty"`
	X      []float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Labels []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Series []Series  `json:"series" yaml:"series"`
}

// Len returns the number of categories.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.X)
}

// SeriesCount returns the number of series, ignored ones included.
func (d *Dataset) SeriesCount() int {
	if d == nil {
		return 0
	}
	return len(d.Series)
}

// Lookup returns the series with the given 1-based index.
func (d *Dataset) Lookup(idx int) (*Series, bool) {
	if d == nil || idx < 1 || idx > len(d.Series) {
		return nil, false
	}
	return &d.Series[idx-1], true
}

// Value returns the value of series idx at category i, NaN when absent.
func (d *Dataset) Value(idx, i int) float64 {
	s, ok := d.Lookup(idx)
	if !ok || i < 0 || i >= len(s.Values) {
		return math.NaN()
	}
	return s.Values[i]
}

// Label returns the display label of category i.
func (d *Dataset) Label(i int) string {
	if i < 0 || i >= d.Len() {
		return ""
	}
	if i < len(d.Labels) && d.Labels[i] != "" {
		return d.Labels[i]
	}
	return strconv.FormatFloat(d.X[i], 'g', -1, 64)
}

// Ignored returns the 1-based indexes of series flagged Ignore.
func (d *Dataset) Ignored() []int {
	var out []int
	for i, s := range d.Series {
		if s.Ignore {
			out = append(out, i+1)
		}
	}
	return out
}

// XExtent returns the smallest and largest category position.
// ok is false for an empty dataset.
func (d *Dataset) XExtent() (min, max float64, ok bool) {
	if d.Len() == 0 {
		return 0, 0, false
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, x := range d.X {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	return min, max, true
}

// Normalize fills in implicit category positions and pads short series
// with missing values so every series has Len() entries.
func (d *Dataset) Normalize() {
	if len(d.X) == 0 {
		n := len(d.Labels)
		for _, s := range d.Series {
			n = max(n, len(s.Values))
		}
		d.X = make([]float64, n)
		for i := range d.X {
			d.X[i] = float64(i)
		}
	}
	for i := range d.Series {
		for len(d.Series[i].Values) < len(d.X) {
			d.Series[i].Values = append(d.Series[i].Values, math.NaN())
		}
	}
}

// Validate checks structural consistency: finite, non-decreasing
// positions and one value per category in every series.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	if len(d.Labels) > 0 && len(d.Labels) != len(d.X) {
		return errors.New(errors.ErrCodeInvalidDataset, "%d labels for %d categories", len(d.Labels), len(d.X))
	}
	for i, x := range d.X {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.New(errors.ErrCodeInvalidDataset, "category %d has non-finite position", i)
		}
		if i > 0 && x < d.X[i-1] {
			return errors.New(errors.ErrCodeInvalidDataset, "category positions must be ordered (x[%d]=%g < x[%d]=%g)", i, x, i-1, d.X[i-1])
		}
	}
	for i, s := range d.Series {
		if len(s.Values) != len(d.X) {
			return errors.New(errors.ErrCodeInvalidDataset, "series %d (%q) has %d values, want %d", i+1, s.Name, len(s.Values), len(d.X))
		}
		for j, v := range s.Values {
			if math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidDataset, "series %q value %d is infinite", s.Name, j)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of d.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	c := &Dataset{
		Name:   d.Name,
		X:      append([]float64(nil), d.X...),
		Labels: append([]string(nil), d.Labels...),
		Series: make([]Series, len(d.Series)),
	}
	for i, s := range d.Series {
		s.Values = append(Values(nil), s.Values...)
		c.Series[i] = s
	}
	return c
}

// Append adds one category at position x. values are assigned to series
// in order; series without a value receive a missing value.
func (d *Dataset) Append(x float64, label string, values ...float64) {
	if len(d.Labels) > 0 || label != "" {
		for len(d.Labels) < len(d.X) {
			d.Labels = append(d.Labels, "")
		}
		d.Labels = append(d.Labels, label)
	}
	d.X = append(d.X, x)
	for i := range d.Series {
		v := math.NaN()
		if i < len(values) {
			v = values[i]
		}
		d.Series[i].Values = append(d.Series[i].Values, v)
	}
}

// Window drops leading categories so that at most n remain.
func (d *Dataset) Window(n int) {
	drop := d.Len() - n
	if n < 0 || drop <= 0 {
		return
	}
	d.X = d.X[drop:]
	if len(d.Labels) > drop {
		d.Labels = d.Labels[drop:]
	}
	for i := range d.Series {
		d.Series[i].Values = d.Series[i].Values[drop:]
	}
}
