// Package render converts rendered charts between output formats.
//
// Charts are drawn natively as SVG ([sink.RenderSVG]) and PNG
// ([sink.RenderPNG]). PDF output, and high-resolution PNG output that keeps
// the SVG's fonts, go through the external rsvg-convert tool from librsvg:
//
//	svg := sink.RenderSVG(c)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Install librsvg with:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [sink.RenderSVG]: github.com/matzehuels/moocn/pkg/render/sink.RenderSVG
// [sink.RenderPNG]: github.com/matzehuels/moocn/pkg/render/sink.RenderPNG
package render
