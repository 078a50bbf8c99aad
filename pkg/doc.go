// Package pkg provides the core libraries for moocn interactive bar charts.
//
// # Overview
//
// moocn lays out grouped and stacked bar charts over numeric categories and
// keeps them interactive: the mouse wheel zooms around the cursor, a drag
// pans, and hovering resolves the bar under the pointer through a quadtree
// of the rectangles painted in the last frame.
//
// # Architecture
//
// The data flow through moocn:
//
//	JSON / YAML / CSV / XLSX
//	         ↓
//	    [dataset] package (decode, normalize, validate)
//	         ↓
//	    [layout] package (bar positions, stacking, Distribute)
//	         ↓
//	    [chart] package (one frame: scale, cull, paint, index)
//	       ↙      ↘
//	 [render/sink]   [hittest] + [viewport] (hover, zoom, pan)
//	       ↓
//	 SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	d, _ := dataset.Load("sales.csv")
//	plot := chart.NewPlot(800, 400)
//	c, _ := chart.New(d, plot, chart.DefaultOptions())
//
//	svg := sink.RenderSVG(c)
//
//	c.Zoom(viewport.Point{X: 400, Y: 200}, false)
//	if st, changed := c.Hover(420, 180); changed && st.Active {
//	    fmt.Println(c.Tooltip(160, 60).Label)
//	}
//
// # Main Packages
//
// ## Chart Core
//
// [layout] - Pure bar geometry. [layout.Distribute] splits a cluster into
// evenly justified slots; [layout.Compute] lays out every non-ignored series
// in grouped or stacked mode.
//
// [spatial] - A generic rectangle quadtree with inclusive quadrant
// boundaries and a Graphviz dump for debugging.
//
// [hittest] - Resolves a cursor position in device pixels to the bar under
// it, per series or across all series.
//
// [viewport] - The zoom and pan controller: anchored wheel zoom, frame
// coalesced drag pan and full-range policies for streaming data.
//
// [chart] - Ties the above together into one chart instance with legend,
// tooltip and value labels.
//
// ## Output
//
// [render/sink] - Native SVG, PNG and JSON frame renderers.
//
// [render] - SVG to PDF and high-resolution PNG through rsvg-convert.
//
// ## Infrastructure
//
// [pipeline] - Load, chart and render with caching, shared by the CLI and
// the HTTP server.
//
// [cache] - Memory, file and Redis caches for parsed datasets and artifacts.
//
// [store] - Named dataset storage on disk, in memory or in MongoDB.
//
// [config] - TOML configuration with chart, theme, cache and store sections.
//
// [observability] - Hooks for load, frame and request events.
//
// [errors] - Coded errors with user-facing messages.
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/dataset
// [layout]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/layout
// [layout.Distribute]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/layout#Distribute
// [layout.Compute]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/layout#Compute
// [spatial]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/spatial
// [hittest]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/hittest
// [viewport]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/viewport
// [chart]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/chart
// [render]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/moocn/pkg/errors
package pkg
