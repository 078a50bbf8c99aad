package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutGroupedScenario(t *testing.T) {
	geoms := LayoutGrouped([]float64{0, 1, 2}, 2, 0.8, 0.9, SpaceBetween)
	if len(geoms) != 2 {
		t.Fatalf("got %d series", len(geoms))
	}
	for i, cat := range []float64{0, 1, 2} {
		first, second := geoms[0], geoms[1]
		assert.InDelta(t, 0.36, first.Size[i], tol)
		assert.InDelta(t, 0.36, second.Size[i], tol)
		assert.InDelta(t, cat-0.4, first.Offset[i], tol)
		assert.InDelta(t, cat+0.04, second.Offset[i], tol)

		gap := second.Offset[i] - (first.Offset[i] + first.Size[i])
		assert.InDelta(t, 0.08, gap, tol)
		assert.InDelta(t, cat+0.4, second.Offset[i]+second.Size[i], tol)
	}
	assert.Equal(t, 1, geoms[0].Series)
	assert.Equal(t, 2, geoms[1].Series)
}

func TestLayoutGroupedWithinCluster(t *testing.T) {
	positions := []float64{0, 1, 3, 7, 8}
	for n := 1; n <= 6; n++ {
		for _, j := range []Justify{SpaceBetween, SpaceAround, SpaceEvenly} {
			geoms := LayoutGrouped(positions, n, 0.7, 0.85, j)
			cluster := ClusterWidth(positions, 0.7)
			for i, x := range positions {
				left, right := x-cluster/2, x+cluster/2
				for k, g := range geoms {
					if g.Size[i] < 0 {
						t.Fatalf("negative size")
					}
					if g.Offset[i] < left-tol || g.Offset[i]+g.Size[i] > right+tol {
						t.Errorf("n=%d %v: series %d at cat %d outside cluster", n, j, k, i)
					}
					if k > 0 {
						prev := geoms[k-1]
						if g.Offset[i] < prev.Offset[i]+prev.Size[i]-tol {
							t.Errorf("n=%d %v: series %d overlaps %d at cat %d", n, j, k, k-1, i)
						}
					}
				}
			}
		}
	}
}

func TestLayoutGroupedDegenerate(t *testing.T) {
	if got := LayoutGrouped([]float64{0, 1}, 0, 0.9, 0.9, SpaceBetween); got != nil {
		t.Errorf("zero series = %v, want nil", got)
	}

	geoms := LayoutGrouped(nil, 3, 0.9, 0.9, SpaceBetween)
	if len(geoms) != 3 || len(geoms[0].Offset) != 0 {
		t.Errorf("zero categories = %+v", geoms)
	}

	single := LayoutGrouped([]float64{5}, 1, 0.6, 1, SpaceBetween)
	assert.InDelta(t, 0.6, single[0].Size[0], tol)
	assert.InDelta(t, 4.7, single[0].Offset[0], tol)

	same := LayoutGrouped([]float64{2, 2}, 2, 0.9, 0.9, SpaceBetween)
	for _, g := range same {
		for i := range g.Size {
			if g.Size[i] != 0 || math.IsNaN(g.Offset[i]) {
				t.Errorf("coincident positions: size %v offset %v", g.Size[i], g.Offset[i])
			}
		}
	}
}

func TestSpacing(t *testing.T) {
	tests := []struct {
		name      string
		positions []float64
		want      float64
	}{
		{"empty", nil, 1},
		{"single", []float64{3}, 1},
		{"regular", []float64{0, 2, 4}, 2},
		{"irregular", []float64{0, 1, 5}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Spacing(tt.positions), tol)
		})
	}
}

func TestLayoutStacked(t *testing.T) {
	g := LayoutStacked([]float64{0, 10}, 0.5, 0.8)
	// spacing 10, cluster 5, bar 4
	assert.InDelta(t, 4, g.Size[0], tol)
	assert.InDelta(t, -2, g.Offset[0], tol)
	assert.InDelta(t, 8, g.Offset[1], tol)
}

func TestStackAccumulate(t *testing.T) {
	s := NewStack(1)
	b1, t1 := s.Accumulate([]float64{10})
	b2, t2 := s.Accumulate([]float64{20})
	assert.Equal(t, []float64{0}, b1)
	assert.Equal(t, []float64{10}, t1)
	assert.Equal(t, []float64{10}, b2)
	assert.Equal(t, []float64{30}, t2)
}

func TestStackMissingAdvancesNothing(t *testing.T) {
	s := NewStack(3)
	s.Accumulate([]float64{1, 2, 3})
	base, top := s.Accumulate([]float64{math.NaN(), 5, math.NaN()})
	assert.Equal(t, []float64{1, 2, 3}, base)
	assert.Equal(t, []float64{1, 7, 3}, top)

	base, top = s.Accumulate([]float64{4})
	assert.Equal(t, []float64{1, 7, 3}, base)
	assert.Equal(t, []float64{5, 7, 3}, top)
	assert.Equal(t, []float64{5, 7, 3}, s.Totals())
}
