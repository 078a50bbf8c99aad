// Package viewport keeps the visible data range of a chart's axes and
// implements cursor-anchored wheel zoom and drag panning.
//
// Each [Axis] has a visible range bounded by a full range derived from the
// data. Zooming scales the visible length by a factor and re-centers it so
// the value under the cursor stays under the cursor; panning slides the
// window without resizing it. Either way the result is clamped to the full
// range: a window wider than the full range snaps to it, one that pokes
// out slides back in.
//
// The pure functions [ZoomAt], [PanBy] and [Clamp] hold the arithmetic.
// [Controller] adds the interaction state machine on top: wheel events are
// throttled to a minimum interval, pan moves are coalesced to at most one
// pending frame through a [Frames] scheduler, and ending a drag cancels
// the frame that has not run yet. New ranges are pushed to a [Scales]
// sink.
//
// A Controller is not safe for concurrent use; callers that receive
// events on several goroutines must serialize them.
package viewport
