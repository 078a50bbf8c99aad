// Package chart ties the bar layout, the hit-test index and the viewport
// controller together into one interactive bar chart.
//
// A [Chart] owns all per-chart state: the dataset, the last computed
// layout, the rectangle index of the last frame, the hover state and the
// viewport. Every call to [Chart.Draw] runs the frame in a fixed order:
//
//  1. clear the index (resized to the current plot)
//  2. compute the layout from the current data and options
//  3. paint each visible bar through the [Painter] and insert it into
//     the index
//  4. paint value labels
//
// Only after Draw returns do [Chart.HitTest] and [Chart.Hover] answer
// from the new geometry.
//
// Coordinates come from an [Engine]. [Plot] is the built-in linear
// engine; wheel and drag events are forwarded to a
// [viewport.Controller] which writes new visible ranges back into the
// engine.
//
// A Chart is not safe for concurrent use.
package chart
