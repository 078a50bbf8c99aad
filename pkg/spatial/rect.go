package spatial

// Rect is an axis-aligned rectangle with its origin at the top-left.
// Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

// Right returns X + W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y + H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether (x, y) lies in r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Intersects reports whether r and o share at least one point, edges
// included.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// Point returns the zero-size rectangle at (x, y).
func Point(x, y float64) Rect { return Rect{X: x, Y: y} }

// PointWithin reports whether (x, y) lies in the rectangle given by its
// origin and size, edges included.
func PointWithin(x, y, left, top, width, height float64) bool {
	return Rect{X: left, Y: top, W: width, H: height}.Contains(x, y)
}
