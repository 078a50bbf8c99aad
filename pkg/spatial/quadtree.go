package spatial

const (
	DefaultCapacity = 10
	DefaultMaxDepth = 4
)

// Quadrant order of a split node's children.
const (
	NE = iota
	NW
	SW
	SE
)

// Item is anything with rectangular bounds. Items are compared for
// equality by [Quadtree.Search] to drop duplicates.
type Item interface {
	comparable
	Bounds() Rect
}

// Option configures a [Quadtree].
type Option func(*config)

type config struct {
	capacity int
	maxDepth int
}

// WithCapacity sets how many items a node holds before splitting.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithMaxDepth sets the deepest level a node may split to. The root is
// level 0.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

// Quadtree indexes items by their bounds. It is not safe for concurrent
// use.
type Quadtree[T Item] struct {
	cfg   config
	root  *node[T]
	count int
}

type node[T Item] struct {
	bounds Rect
	depth  int
	items  []T
	quads  []*node[T]
}

// New returns an empty tree covering bounds.
func New[T Item](bounds Rect, opts ...Option) *Quadtree[T] {
	cfg := config{capacity: DefaultCapacity, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Quadtree[T]{cfg: cfg, root: &node[T]{bounds: bounds}}
}

// Bounds returns the region covered by the root.
func (q *Quadtree[T]) Bounds() Rect { return q.root.bounds }

// Len returns the number of inserted items, not counting duplicates
// created by splits.
func (q *Quadtree[T]) Len() int { return q.count }

// Insert adds item to the tree.
func (q *Quadtree[T]) Insert(item T) {
	q.root.insert(item, item.Bounds(), q.cfg)
	q.count++
}

// Query calls visit for every item stored in a node reached by r. An item
// may be visited more than once when r spans several quadrants that each
// hold a copy of it.
func (q *Quadtree[T]) Query(r Rect, visit func(T)) {
	q.root.query(r, visit)
}

// Search returns the distinct items whose bounds intersect r, in visit
// order.
func (q *Quadtree[T]) Search(r Rect) []T {
	var out []T
	seen := make(map[T]struct{})
	q.Query(r, func(item T) {
		if _, dup := seen[item]; dup || !item.Bounds().Intersects(r) {
			return
		}
		seen[item] = struct{}{}
		out = append(out, item)
	})
	return out
}

// Clear drops every item and collapses all subdivisions.
func (q *Quadtree[T]) Clear() {
	q.root = &node[T]{bounds: q.root.bounds}
	q.count = 0
}

// Reset clears the tree and moves it to new bounds.
func (q *Quadtree[T]) Reset(bounds Rect) {
	q.root = &node[T]{bounds: bounds}
	q.count = 0
}

// Depth returns the deepest level that has been split into.
func (q *Quadtree[T]) Depth() int {
	depth := 0
	q.Walk(func(n Node) {
		depth = max(depth, n.Depth)
	})
	return depth
}

// Node describes one tree node for [Quadtree.Walk].
type Node struct {
	Path   string // "" for the root, then one digit per level (0=NE 1=NW 2=SW 3=SE)
	Bounds Rect
	Depth  int
	Items  int
	Leaf   bool
}

// Walk visits every node in pre-order.
func (q *Quadtree[T]) Walk(visit func(Node)) {
	q.root.walk("", visit)
}

func (n *node[T]) insert(item T, b Rect, cfg config) {
	if n.quads != nil {
		for _, i := range n.quadrants(b) {
			n.quads[i].insert(item, b, cfg)
		}
		return
	}

	n.items = append(n.items, item)
	if len(n.items) > cfg.capacity && n.depth < cfg.maxDepth {
		n.split(cfg)
	}
}

func (n *node[T]) split(cfg config) {
	w, h := n.bounds.W/2, n.bounds.H/2
	x, y, d := n.bounds.X, n.bounds.Y, n.depth+1

	n.quads = []*node[T]{
		NE: {bounds: Rect{X: x + w, Y: y, W: w, H: h}, depth: d},
		NW: {bounds: Rect{X: x, Y: y, W: w, H: h}, depth: d},
		SW: {bounds: Rect{X: x, Y: y + h, W: w, H: h}, depth: d},
		SE: {bounds: Rect{X: x + w, Y: y + h, W: w, H: h}, depth: d},
	}

	items := n.items
	n.items = nil
	for _, item := range items {
		b := item.Bounds()
		for _, i := range n.quadrants(b) {
			n.quads[i].insert(item, b, cfg)
		}
	}
}

// quadrants returns the children r reaches. Regions outside the node are
// attributed to the nearest quadrants so nothing is lost.
func (n *node[T]) quadrants(r Rect) []int {
	hMid := n.bounds.X + n.bounds.W/2
	vMid := n.bounds.Y + n.bounds.H/2

	north := r.Y <= vMid
	south := r.Bottom() >= vMid
	west := r.X <= hMid
	east := r.Right() >= hMid

	out := make([]int, 0, 4)
	if north && east {
		out = append(out, NE)
	}
	if north && west {
		out = append(out, NW)
	}
	if south && west {
		out = append(out, SW)
	}
	if south && east {
		out = append(out, SE)
	}
	return out
}

func (n *node[T]) query(r Rect, visit func(T)) {
	for _, item := range n.items {
		visit(item)
	}
	if n.quads == nil {
		return
	}
	for _, i := range n.quadrants(r) {
		n.quads[i].query(r, visit)
	}
}

func (n *node[T]) walk(path string, visit func(Node)) {
	visit(Node{
		Path:   path,
		Bounds: n.bounds,
		Depth:  n.depth,
		Items:  len(n.items),
		Leaf:   n.quads == nil,
	})
	for i, c := range n.quads {
		c.walk(path+string(rune('0'+i)), visit)
	}
}
