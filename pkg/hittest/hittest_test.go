package hittest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/moocn/pkg/spatial"
)

// two series, three categories, 20px wide bars in 200x100 plot
func frame() *spatial.Quadtree[Rect] {
	idx := NewIndex(200, 100)
	for cat := 0; cat < 3; cat++ {
		base := float64(cat) * 60
		idx.Insert(Rect{X: base, Y: 50, W: 20, H: 50, Series: 1, Category: cat})
		idx.Insert(Rect{X: base + 20, Y: 20, W: 20, H: 80, Series: 2, Category: cat})
	}
	return idx
}

func TestResolve(t *testing.T) {
	idx := frame()
	tests := []struct {
		name    string
		cx, cy  float64
		ratio   float64
		series  int
		wantCat int
		wantHit bool
	}{
		{"series 1 first bar", 10, 75, 1, 1, 0, true},
		{"series 2 third bar", 150, 30, 1, 2, 2, true},
		{"wrong series", 10, 75, 1, 2, -1, false},
		{"gap between clusters", 50, 75, 1, 1, -1, false},
		{"above short bar", 10, 40, 1, 1, -1, false},
		{"shared edge picks first match", 20, 60, 1, 2, 0, true},
		{"pixel ratio scales cursor", 5, 37.5, 2, 1, 0, true},
		{"pixel ratio reaches later category", 65, 40, 2, 1, 2, true},
		{"outside plot", -5, 10, 1, 1, -1, false},
		{"far outside", 500, 500, 1, 2, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, ok := Resolve(idx, tt.cx, tt.cy, tt.ratio, tt.series)
			if ok != tt.wantHit || cat != tt.wantCat {
				t.Errorf("Resolve() = %d, %v; want %d, %v", cat, ok, tt.wantCat, tt.wantHit)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	idx := frame()
	a, okA := Resolve(idx, 70, 60, 1, 1)
	b, okB := Resolve(idx, 70, 60, 1, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, okA, okB)
	assert.True(t, okA)
}

func TestResolveEmpty(t *testing.T) {
	_, ok := Resolve(NewIndex(100, 100), 10, 10, 1, 1)
	assert.False(t, ok)
	_, ok = Resolve(nil, 10, 10, 1, 1)
	assert.False(t, ok)
}

func TestResolveClearedIndex(t *testing.T) {
	idx := frame()
	idx.Clear()
	_, ok := Resolve(idx, 10, 75, 1, 1)
	assert.False(t, ok, "cleared index must not answer with stale geometry")
}

func TestHover(t *testing.T) {
	idx := frame()

	s := Hover(idx, 25, 90, 1)
	assert.True(t, s.Active)
	assert.Equal(t, 2, s.Hovered.Series)
	assert.Equal(t, 0, s.Hovered.Category)

	same := Hover(idx, 30, 95, 1)
	assert.False(t, Changed(s, same))

	other := Hover(idx, 70, 95, 1)
	assert.True(t, Changed(s, other))
	assert.Equal(t, 1, other.Hovered.Category)

	none := Hover(idx, 50, 10, 1)
	assert.False(t, none.Active)
	assert.True(t, Changed(other, none))

	assert.False(t, Hover(idx, -1, 50, 1).Active)
	assert.False(t, Leave(s).Active)
}
