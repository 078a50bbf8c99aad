// Package layout turns a category/series value matrix into bar geometry in
// domain units, independent of pixels.
//
// # Distribution
//
// [Distribute] splits the unit interval into count slots occupying a
// sizeFactor fraction of it. The remaining space becomes gaps placed
// according to a [Justify] policy:
//
//	SpaceBetween  |■■  ■■  ■■|   no outer gaps
//	SpaceAround   | ■■ ■■ ■■ |   half gaps at the ends
//	SpaceEvenly   |  ■■ ■■ ■■  |   full gaps at the ends
//
// A single slot never divides by zero; offsets and sizes are rounded to six
// decimals so repeated layouts compare equal.
//
// # Grouped and Stacked Bars
//
// [LayoutGrouped] nests two distributions: a cluster per category taking
// GroupWidth of the average category spacing, and one bar per series
// inside it taking BarWidth of the cluster. [LayoutStacked] shares one
// centered bar per category across all series, and [Stack] accumulates
// the values into base/top bounds.
//
// [Compute] is the single entry point used by charts: it drops ignored
// series, dispatches on [Mode] and returns a [Layout] with per-series
// [Geometry], per-category cluster spans and the data extents needed to
// set up axes.
package layout
