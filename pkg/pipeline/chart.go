package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/observability"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// NewChart builds a chart for d on a canvas sized by opts and applies the
// requested x window. copts are passed on to [chart.New]. It does not draw.
func NewChart(d *dataset.Dataset, opts Options, copts ...chart.Option) (*chart.Chart, error) {
	if err := opts.ValidateForChart(); err != nil {
		return nil, err
	}
	plot := chart.NewPlot(opts.Width, opts.Height, chart.WithPixelRatio(opts.PixelRatio))
	c, err := chart.New(d, plot, opts.Chart, append([]chart.Option{chart.WithLogger(opts.Logger)}, copts...)...)
	if err != nil {
		return nil, err
	}
	if opts.XMin != nil || opts.XMax != nil {
		x, _ := c.Viewport()
		r := x.Visible
		if opts.XMin != nil {
			r.Min = *opts.XMin
		}
		if opts.XMax != nil {
			r.Max = *opts.XMax
		}
		if r.Valid() {
			c.SetVisible(viewport.X, r)
		}
	}
	return c, nil
}

// DrawFrame draws one frame of c without painting, so the hit-test index
// and layout reflect the current view.
func DrawFrame(ctx context.Context, c *chart.Chart) chart.FrameStats {
	mode := c.Options().Mode.String()
	observability.Pipeline().OnFrameStart(ctx, mode, c.Data().Len())
	start := time.Now()
	stats := c.Draw(nil)
	observability.Pipeline().OnFrameComplete(ctx, mode, stats.Bars, time.Since(start), nil)
	return stats
}
