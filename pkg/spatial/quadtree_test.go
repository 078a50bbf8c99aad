package spatial

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type box struct {
	id   int
	rect Rect
}

func (b box) Bounds() Rect { return b.rect }

func grid(n int, cell, size float64) []box {
	var out []box
	id := 0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			out = append(out, box{id: id, rect: Rect{X: float64(col) * cell, Y: float64(row) * cell, W: size, H: size}})
			id++
		}
	}
	return out
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 20, 30, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 40, 60, true},
		{"left edge", 10, 50, true},
		{"just outside right", 40.0001, 30, false},
		{"above", 20, 19.9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
			if got := PointWithin(tt.x, tt.y, r.X, r.Y, r.W, r.H); got != tt.want {
				t.Errorf("PointWithin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	assert.True(t, a.Intersects(Rect{X: 5, Y: 5, W: 10, H: 10}))
	assert.True(t, a.Intersects(Rect{X: 10, Y: 0, W: 5, H: 5}), "shared edge")
	assert.True(t, a.Intersects(Point(10, 10)), "corner point")
	assert.False(t, a.Intersects(Rect{X: 11, Y: 0, W: 5, H: 5}))
	assert.False(t, a.Intersects(Point(3, -1)))
}

func TestInsertSplits(t *testing.T) {
	q := New[box](Rect{W: 100, H: 100})
	for _, b := range grid(3, 30, 10) {
		q.Insert(b)
	}
	if q.Depth() != 0 {
		t.Fatalf("9 items should not split, depth %d", q.Depth())
	}

	for _, b := range grid(4, 25, 10) {
		b.id += 100
		q.Insert(b)
	}
	assert.Equal(t, 25, q.Len())
	assert.GreaterOrEqual(t, q.Depth(), 1)

	var leaves, internal int
	q.Walk(func(n Node) {
		if n.Leaf {
			leaves++
		} else {
			internal++
			assert.Equal(t, 0, n.Items, "split node keeps no items")
		}
	})
	assert.Equal(t, 1+4*internal, leaves+internal)
}

func TestMaxDepthStopsSplitting(t *testing.T) {
	q := New[box](Rect{W: 64, H: 64}, WithCapacity(1), WithMaxDepth(2))
	for i := 0; i < 50; i++ {
		q.Insert(box{id: i, rect: Rect{X: 1, Y: 1, W: 1, H: 1}})
	}
	assert.Equal(t, 2, q.Depth())
	assert.Len(t, q.Search(Point(1.5, 1.5)), 50)
}

func TestStraddlingItemDuplicated(t *testing.T) {
	q := New[box](Rect{W: 100, H: 100}, WithCapacity(1))
	center := box{id: 1, rect: Rect{X: 40, Y: 40, W: 20, H: 20}}
	q.Insert(center)
	q.Insert(box{id: 2, rect: Rect{X: 0, Y: 0, W: 5, H: 5}})

	var copies int
	q.Walk(func(n Node) { copies += n.Items })
	assert.Equal(t, 5, copies, "center box in all four quadrants plus the corner box")

	var visits int
	q.Query(Rect{X: 0, Y: 0, W: 100, H: 100}, func(box) { visits++ })
	assert.Equal(t, 5, visits, "Query does not de-duplicate")

	got := q.Search(Rect{X: 0, Y: 0, W: 100, H: 100})
	assert.Len(t, got, 2)
}

func TestPointQueryOnMidline(t *testing.T) {
	q := New[box](Rect{W: 100, H: 100}, WithCapacity(1))
	left := box{id: 1, rect: Rect{X: 30, Y: 10, W: 20, H: 10}}
	right := box{id: 2, rect: Rect{X: 50, Y: 10, W: 20, H: 10}}
	q.Insert(left)
	q.Insert(right)

	got := q.Search(Point(50, 15))
	assert.ElementsMatch(t, []box{left, right}, got, "shared edge on the midline hits both")
}

func TestRoundTripDisjoint(t *testing.T) {
	items := grid(12, 8, 5)
	q := New[box](Rect{W: 96, H: 96})
	for _, b := range items {
		q.Insert(b)
	}
	for _, b := range items {
		got := q.Search(b.rect)
		if len(got) != 1 || got[0] != b {
			t.Fatalf("Search(%v) = %v, want only %d", b.rect, got, b.id)
		}
	}
}

func TestSearchMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := New[box](Rect{W: 500, H: 300})
	var items []box
	for i := 0; i < 300; i++ {
		b := box{id: i, rect: Rect{X: rng.Float64() * 480, Y: rng.Float64() * 280, W: rng.Float64() * 20, H: rng.Float64() * 20}}
		items = append(items, b)
		q.Insert(b)
	}

	for i := 0; i < 200; i++ {
		x, y := rng.Float64()*500, rng.Float64()*300
		var want []int
		for _, b := range items {
			if b.rect.Contains(x, y) {
				want = append(want, b.id)
			}
		}
		var got []int
		for _, b := range q.Search(Point(x, y)) {
			got = append(got, b.id)
		}
		slices.Sort(got)
		slices.Sort(want)
		assert.Equal(t, want, got, "point %v,%v", x, y)
	}
}

func TestOutOfBoundsItemsKept(t *testing.T) {
	q := New[box](Rect{W: 10, H: 10}, WithCapacity(1))
	far := box{id: 1, rect: Rect{X: 50, Y: 50, W: 2, H: 2}}
	q.Insert(far)
	q.Insert(box{id: 2, rect: Rect{X: 1, Y: 1, W: 1, H: 1}})
	assert.Equal(t, []box{far}, q.Search(Point(51, 51)))
}

func TestClear(t *testing.T) {
	q := New[box](Rect{W: 100, H: 100}, WithCapacity(2))
	for _, b := range grid(5, 20, 5) {
		q.Insert(b)
	}
	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Depth())
	assert.Empty(t, q.Search(Rect{W: 100, H: 100}))
	assert.Equal(t, Rect{W: 100, H: 100}, q.Bounds())

	q.Reset(Rect{W: 10, H: 10})
	assert.Equal(t, Rect{W: 10, H: 10}, q.Bounds())
}

func TestToDOT(t *testing.T) {
	q := New[box](Rect{W: 100, H: 100}, WithCapacity(2))
	for _, b := range grid(3, 30, 10) {
		q.Insert(b)
	}
	dot := ToDOT(q)
	if !strings.HasPrefix(dot, "digraph Q {") {
		t.Fatalf("unexpected header: %s", dot)
	}
	var nodes int
	q.Walk(func(Node) { nodes++ })
	assert.Equal(t, nodes, strings.Count(dot, "label=\"depth"))
	assert.Equal(t, nodes-1, strings.Count(dot, "->"))
	assert.Contains(t, dot, fmt.Sprintf("%q -> %q", "n", "n0"))
}
