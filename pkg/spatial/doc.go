// Package spatial provides a rectangle quadtree for answering "what is
// under this point" queries over axis-aligned rectangles.
//
// A [Quadtree] node stores up to a capacity of items. When it overflows
// and has not reached the maximum depth it splits into four equal
// quadrants and moves every item into each quadrant it overlaps, so an
// item straddling a quadrant boundary lives in several leaves. Quadrant
// boundaries are inclusive on both sides: a rectangle or query touching
// the midline belongs to both neighbors.
//
// [Quadtree.Query] reports every item stored in a node the query region
// reaches, without filtering or de-duplication. [Quadtree.Search] is the
// convenience form that keeps only items whose bounds really intersect the
// region, each once.
//
// The tree is meant to be rebuilt per frame: [Quadtree.Clear] (or
// [Quadtree.Reset] when the plot area changed size) and then re-insert.
package spatial
