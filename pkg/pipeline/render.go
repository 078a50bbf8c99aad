package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/observability"
	"github.com/matzehuels/moocn/pkg/render"
	"github.com/matzehuels/moocn/pkg/render/sink"
)

// Render writes the current view of c in every format of opts.Formats.
// Each format draws its own frame.
func Render(ctx context.Context, c *chart.Chart, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, c, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, c *chart.Chart, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(c, svgOpts...)
		case FormatPNG:
			if render.Available() {
				data, err = sink.RenderPNG(ctx, c, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
			} else {
				opts.Logger.Debug("rsvg-convert not found, rasterizing natively")
				data, err = sink.EncodeImage(c, sink.WithImageScale(opts.Scale))
			}
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, c, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(c, sink.WithJSONLabels())
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.NoLegend {
		svgOpts = append(svgOpts, sink.WithoutLegend())
	}
	return svgOpts
}
