// Package sink writes a [chart.Chart] frame to output formats.
//
// Every sink drives the chart's normal frame lifecycle through
// [chart.Chart.Draw], so the hit-test index of the chart reflects what
// was written. SVG is the primary format; PNG and PDF are produced from
// it with rsvg-convert (see package render), and [RenderImage] rasterizes
// natively without external tools.
//
//	c, _ := chart.New(d, chart.NewPlot(800, 400), chart.DefaultOptions())
//	svg := sink.RenderSVG(c, sink.WithTitle("Revenue"))
package sink
