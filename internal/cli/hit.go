package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/pipeline"
)

// hitResult is the outcome of one hit query.
type hitResult struct {
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Hit      bool           `json:"hit"`
	Series   int            `json:"series,omitempty"`
	Category int            `json:"category"`
	Label    string         `json:"label,omitempty"`
	Tooltip  *chart.Tooltip `json:"tooltip,omitempty"`
}

// hitCommand creates the hit command.
func (c *CLI) hitCommand() *cobra.Command {
	var (
		flags   chartFlags
		window  windowFlags
		x, y    float64
		series  int
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "hit [dataset]",
		Short: "Resolve a canvas position to a bar",
		Long: `Draw one frame of a dataset and report which bar lies under the
canvas position (--x, --y), in CSS pixels from the canvas top-left.

With --series only that series is considered. Without it the position
is treated as a hover and the tooltip for the hovered category is shown.`,
		Example: `  moocn hit sales.csv --x 120 --y 300
  moocn hit sales.csv --x 120 --y 300 --series 2 --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := c.chartSetup(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			window.apply(cmd, &opts)
			return c.runHit(cmd.Context(), cfg, opts, x, y, series, asJSON, noCache)
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "cursor x in canvas pixels")
	cmd.Flags().Float64Var(&y, "y", 0, "cursor y in canvas pixels")
	cmd.Flags().IntVar(&series, "series", 0, "restrict the query to one series (1-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	flags.register(cmd)
	window.register(cmd)

	return cmd
}

func (c *CLI) runHit(ctx context.Context, cfg config.Config, opts pipeline.Options, x, y float64, series int, asJSON, noCache bool) error {
	if series < 0 {
		return fmt.Errorf("--series must be positive, got %d", series)
	}
	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ch, err := pipeline.NewChart(d, opts)
	if err != nil {
		return err
	}
	pipeline.DrawFrame(ctx, ch)

	res := resolveHit(ch, x, y, series)
	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(append(data, '\n'), "")
	}
	printHit(ch, res)
	return nil
}

// resolveHit queries a drawn chart at canvas position (x, y).
func resolveHit(ch *chart.Chart, x, y float64, series int) hitResult {
	res := hitResult{X: x, Y: y, Category: -1}
	if series > 0 {
		cat, ok := ch.HitTest(x, y, series)
		res.Hit, res.Series, res.Category = ok, series, cat
	} else {
		st, _ := ch.Hover(x, y)
		if st.Active {
			res.Hit, res.Series, res.Category = true, st.Hovered.Series, st.Hovered.Category
			tip := ch.Tooltip(0, 0)
			res.Tooltip = &tip
		}
	}
	if res.Hit {
		res.Label = ch.Data().Label(res.Category)
	}
	return res
}

func printHit(ch *chart.Chart, res hitResult) {
	pos := fmt.Sprintf("(%g, %g)", res.X, res.Y)
	if !res.Hit {
		printStatus(statusInfo, "No bar at %s", pos)
		return
	}
	printStatus(statusOK, "Hit at %s", pos)
	printKeyValue("Series", seriesLabel(ch.Data(), res.Series))
	printKeyValue("Category", strconv.Itoa(res.Category))
	if res.Label != "" {
		printKeyValue("Label", res.Label)
	}
	if res.Tooltip == nil {
		return
	}
	fmt.Fprintln(stdout)
	for _, it := range res.Tooltip.Items {
		fmt.Fprintf(stdout, "  %s %s %s\n", swatch(it.Color), it.Name, styleNumber.Render(chart.FormatValue(it.Value)))
	}
}
