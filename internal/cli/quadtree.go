package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/spatial"
)

// quadtreeCommand creates the quadtree command for inspecting the hit-test index.
func (c *CLI) quadtreeCommand() *cobra.Command {
	var (
		flags   chartFlags
		window  windowFlags
		output  string
		dot     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "quadtree [dataset]",
		Short: "Render the hit-test quadtree of a frame (debug tool)",
		Long: `Draw one frame of a dataset and render the quadtree that indexes its
bars. Leaves are shaded by fill: green below half capacity, amber above,
red when a leaf at maximum depth holds more than capacity.`,
		Example: `  moocn quadtree sales.csv -o tree.svg
  moocn quadtree sales.csv --x-min 0 --x-max 10 --dot`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, opts, err := c.chartSetup(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			window.apply(cmd, &opts)

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
			stats := pipeline.DrawFrame(ctx, ch)

			graph := spatial.ToDOT(ch.Index())
			data := []byte(graph)
			if !dot {
				if data, err = spatial.RenderSVG(ctx, graph); err != nil {
					return fmt.Errorf("render: %w", err)
				}
			}
			if err := writeOutput(data, output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if output == "" {
				return nil
			}

			format := "svg"
			if dot {
				format = "dot"
			}
			printStatus(statusOK, "Quadtree generated")
			printKeyValue("Bars", strconv.Itoa(ch.Index().Len()))
			printKeyValue("Depth", strconv.Itoa(stats.Depth))
			printKeyValue("Culled", strconv.Itoa(stats.Culled))
			printArtifact(format, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&dot, "dot", false, "write Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)
	window.register(cmd)

	return cmd
}
