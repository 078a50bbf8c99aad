package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

func sample() *dataset.Dataset {
	nan := math.NaN()
	return &dataset.Dataset{
		X: []float64{0, 1, 2},
		Series: []dataset.Series{
			{Name: "a", Values: dataset.Values{1, 2, nan}},
			{Name: "deco", Values: dataset.Values{9, 9, 9}, Ignore: true},
			{Name: "b", Values: dataset.Values{3, nan, 4}},
			{Name: "c", Values: dataset.Values{0, 1, 1}},
		},
	}
}

func TestComputeStackedChain(t *testing.T) {
	l, err := Compute(sample(), Options{Mode: Stacked, Ignore: []int{4}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(l.Series) != 2 {
		t.Fatalf("got %d series, want 2 (ignored ones skipped)", len(l.Series))
	}
	a, b := l.Series[0], l.Series[1]
	assert.Equal(t, 1, a.Series)
	assert.Equal(t, 3, b.Series)

	d := sample()
	for i := range l.Positions {
		for k, g := range l.Series {
			v := d.Series[g.Series-1].Values[i]
			want := v
			if math.IsNaN(v) {
				want = 0
			}
			assert.InDelta(t, want, g.Top[i]-g.Base[i], tol, "series %d cat %d", g.Series, i)
			if k > 0 {
				assert.Equal(t, l.Series[k-1].Top[i], g.Base[i])
			}
		}
	}
	assert.Equal(t, []bool{true, true, false}, a.Drawn)
	assert.Equal(t, []bool{true, false, true}, b.Drawn)
	assert.Equal(t, Span{0, 4}, l.Values)
}

func TestComputeStackedScenario(t *testing.T) {
	d := &dataset.Dataset{
		X: []float64{0},
		Series: []dataset.Series{
			{Name: "one", Values: dataset.Values{10}},
			{Name: "two", Values: dataset.Values{20}},
		},
	}
	l, err := Compute(d, Options{Mode: Stacked})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0.0, l.Series[0].Base[0])
	assert.Equal(t, 10.0, l.Series[0].Top[0])
	assert.Equal(t, 10.0, l.Series[1].Base[0])
	assert.Equal(t, 30.0, l.Series[1].Top[0])
	assert.Equal(t, 30.0, l.Top(0))
}

func TestComputeGroupedIgnoredTakesNoSpace(t *testing.T) {
	withDeco, err := Compute(sample(), Options{GroupWidth: 0.8, BarWidth: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	d := sample()
	d.Series = []dataset.Series{d.Series[0], d.Series[2], d.Series[3]}
	without, err := Compute(d, Options{GroupWidth: 0.8, BarWidth: 0.9})
	if err != nil {
		t.Fatal(err)
	}

	if len(withDeco.Series) != 3 {
		t.Fatalf("got %d series", len(withDeco.Series))
	}
	for k := range withDeco.Series {
		assert.Equal(t, without.Series[k].Offset, withDeco.Series[k].Offset)
		assert.Equal(t, without.Series[k].Size, withDeco.Series[k].Size)
	}
	assert.Equal(t, []int{1, 3, 4}, []int{withDeco.Series[0].Series, withDeco.Series[1].Series, withDeco.Series[2].Series})
}

func TestComputeGroupedValues(t *testing.T) {
	l, err := Compute(sample(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := l.Geometry(1)
	assert.Equal(t, []float64{0, 0, 0}, a.Base)
	assert.Equal(t, []float64{1, 2, 0}, a.Top)
	assert.False(t, a.Drawn[2])

	c, ok := l.Geometry(4)
	if !ok {
		t.Fatal("series 4 missing")
	}
	// literal zero is drawn
	assert.True(t, c.Drawn[0])

	if _, ok := l.Geometry(2); ok {
		t.Error("ignored series has geometry")
	}

	bars := l.Bars()
	assert.Len(t, bars, 7)
	for _, b := range bars {
		assert.NotEqual(t, 2, b.Series)
	}
}

func TestComputeDomainAndClusters(t *testing.T) {
	l, err := Compute(sample(), Options{GroupWidth: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, Span{-0.5, 2.5}, l.Domain)
	assert.InDelta(t, 0.75, l.Clusters[1].Min, tol)
	assert.InDelta(t, 1.25, l.Clusters[1].Max, tol)

	assert.Equal(t, 1, l.Category(1.1))
	assert.Equal(t, 2, l.Category(1.75))
	assert.Equal(t, -1, l.Category(0.5))
	assert.Equal(t, -1, l.Category(10))
}

func TestComputeClustersFollowBars(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		min, max float64
	}{
		{"stacked bars narrower than cluster", Options{Mode: Stacked, GroupWidth: 0.5, BarWidth: 0.5}, 0.875, 1.125},
		{"grouped space-between fills cluster", Options{GroupWidth: 0.5, BarWidth: 0.5}, 0.75, 1.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(sample(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			assert.InDelta(t, tt.min, l.Clusters[1].Min, tol)
			assert.InDelta(t, tt.max, l.Clusters[1].Max, tol)
		})
	}

	l, err := Compute(sample(), Options{GroupWidth: 0.5, BarWidth: 0.5, Justify: SpaceAround})
	if err != nil {
		t.Fatal(err)
	}
	first, last := l.Series[0], l.Series[len(l.Series)-1]
	assert.InDelta(t, first.Offset[1], l.Clusters[1].Min, tol)
	assert.InDelta(t, last.Offset[1]+last.Size[1], l.Clusters[1].Max, tol)
	assert.Greater(t, l.Clusters[1].Min, 0.75)
}

func TestComputeDegenerate(t *testing.T) {
	l, err := Compute(&dataset.Dataset{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, l.Series)
	assert.Empty(t, l.Bars())

	allIgnored := sample()
	l, err = Compute(allIgnored, Options{Ignore: []int{1, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, l.Series)
	assert.Equal(t, Span{}, l.Values)

	_, err = Compute(nil, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDataset))
}

func TestComputeRejectsBadWidths(t *testing.T) {
	_, err := Compute(sample(), Options{GroupWidth: 1.5})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))
	_, err = Compute(sample(), Options{BarWidth: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Stacked")
	assert.NoError(t, err)
	assert.Equal(t, Stacked, m)
	m, err = ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, Grouped, m)
	_, err = ParseMode("pie")
	assert.Error(t, err)
	assert.Equal(t, "stacked", Stacked.String())
}
