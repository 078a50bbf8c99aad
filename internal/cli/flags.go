package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/pipeline"
)

// chartFlags binds the [chart] and [theme] settings to command flags.
// Only flags set on the command line override the config file.
type chartFlags struct {
	chart config.ChartConfig
	theme string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	d := config.Default().Chart
	f.chart = d
	fs := cmd.Flags()
	fs.StringVar(&f.chart.Mode, "mode", d.Mode, "bar mode: grouped, stacked")
	fs.StringVar(&f.chart.Justify, "justify", d.Justify, "bar justification: between, around, evenly")
	fs.Float64Var(&f.chart.GroupWidth, "group-width", d.GroupWidth, "fraction of a category taken by its bars")
	fs.Float64Var(&f.chart.BarWidth, "bar-width", d.BarWidth, "fraction of a bar slot that is filled")
	fs.IntSliceVar(&f.chart.Ignore, "ignore", nil, "series to leave out of the layout (1-based, repeatable)")
	fs.Float64Var(&f.chart.ZoomFactor, "zoom-factor", d.ZoomFactor, "visible range multiplier per zoom-in step")
	fs.StringVar(&f.chart.Axes, "axes", d.Axes, "zoomable axes: x, xy")
	fs.StringVar(&f.chart.Policy, "policy", d.Policy, "full range on data updates: grow-only, track")
	fs.BoolVar(&f.chart.ShowValues, "values", d.ShowValues, "draw value labels above bars")
	fs.StringVar(&f.chart.ValueColor, "value-color", d.ValueColor, "value label color")
	fs.Float64Var(&f.chart.Radius, "radius", d.Radius, "bar corner radius in pixels")
	fs.StringVar(&f.chart.RadiusMode, "radius-mode", d.RadiusMode, "rounded corners: each, stack")
	fs.Float64Var(&f.chart.Width, "width", d.Width, "canvas width")
	fs.Float64Var(&f.chart.Height, "height", d.Height, "canvas height")
	fs.Float64Var(&f.chart.PixelRatio, "pixel-ratio", d.PixelRatio, "device pixel ratio")
	fs.StringVar(&f.theme, "theme", "", "palette: light, dark")
	registerValueCompletions(cmd)
}

// apply copies every flag set on cmd into cfg.
func (f *chartFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	setters := map[string]func(){
		"mode":        func() { cfg.Chart.Mode = f.chart.Mode },
		"justify":     func() { cfg.Chart.Justify = f.chart.Justify },
		"group-width": func() { cfg.Chart.GroupWidth = f.chart.GroupWidth },
		"bar-width":   func() { cfg.Chart.BarWidth = f.chart.BarWidth },
		"ignore":      func() { cfg.Chart.Ignore = f.chart.Ignore },
		"zoom-factor": func() { cfg.Chart.ZoomFactor = f.chart.ZoomFactor },
		"axes":        func() { cfg.Chart.Axes = f.chart.Axes },
		"policy":      func() { cfg.Chart.Policy = f.chart.Policy },
		"values":      func() { cfg.Chart.ShowValues = f.chart.ShowValues },
		"value-color": func() { cfg.Chart.ValueColor = f.chart.ValueColor },
		"radius":      func() { cfg.Chart.Radius = f.chart.Radius },
		"radius-mode": func() { cfg.Chart.RadiusMode = f.chart.RadiusMode },
		"width":       func() { cfg.Chart.Width = f.chart.Width },
		"height":      func() { cfg.Chart.Height = f.chart.Height },
		"pixel-ratio": func() { cfg.Chart.PixelRatio = f.chart.PixelRatio },
		"theme":       func() { cfg.Theme.Name = f.theme },
	}
	for name, set := range setters {
		if cmd.Flags().Changed(name) {
			set()
		}
	}
}

// chartSetup loads the config, applies flags and returns pipeline options
// for path.
func (c *CLI) chartSetup(cmd *cobra.Command, flags *chartFlags, path string) (config.Config, pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	flags.apply(cmd, &cfg)
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	opts.Path = path
	opts.Logger = c.Logger
	return cfg, opts, nil
}

// windowFlags binds --x-min/--x-max.
type windowFlags struct {
	min, max float64
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&w.min, "x-min", 0, "first visible x value")
	cmd.Flags().Float64Var(&w.max, "x-max", 0, "last visible x value")
}

func (w *windowFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("x-min") {
		v := w.min
		opts.XMin = &v
	}
	if cmd.Flags().Changed("x-max") {
		v := w.max
		opts.XMax = &v
	}
}
