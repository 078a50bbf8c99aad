package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/render"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   chartFlags
		window  windowFlags
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset to SVG, PNG, PDF or JSON",
		Long: `Render a dataset to one or more output formats.

The dataset may be JSON, YAML, CSV or XLSX. Parsed datasets and rendered
artifacts are cached (file or redis, see the [cache] config section), so
repeated renders of the same data and view are served from the cache.

--x-min/--x-max restrict the visible x range as if the chart had been
zoomed; bars outside the window are culled.`,
		Example: `  # SVG next to the input
  moocn render sales.csv

  # Several formats, stacked, with a title
  moocn render sales.csv -f svg,png,json --mode stacked --title "Q3" -o out/sales

  # Only categories 10..20 to stdout
  moocn render sales.json --x-min 10 --x-max 20 -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, base, err := c.chartSetup(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			base.Sheet = opts.Sheet
			base.Title = opts.Title
			base.Scale = opts.Scale
			base.NoLegend = opts.NoLegend
			base.Refresh = opts.Refresh
			base.Formats = parseFormats(formats)
			window.apply(cmd, &base)
			if err := pipeline.ValidateFormats(base.Formats); err != nil {
				return err
			}
			paths, err := outputPaths(base.Formats, output, args[0])
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, base, paths, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "XLSX sheet (default: first)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.NoLegend, "no-legend", false, "omit the legend")
	flags.register(cmd)
	window.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, cfg config.Config, opts pipeline.Options, paths map[string]string, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	for _, f := range opts.Formats {
		if f == pipeline.FormatPDF && !render.Available() {
			printStatus(statusWarn, "rsvg-convert not found; PDF output will fail")
		}
	}

	sp := newSpinner(ctx, os.Stderr, "Rendering "+filepath.Base(opts.Path))
	restore := followPipeline(sp)
	sp.start()
	result, err := runner.Execute(ctx, opts)
	restore()
	if err != nil {
		sp.fail(err)
		return err
	}
	sp.stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		if err := writeOutput(result.Artifacts[f], paths[f]); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
	}
	if paths[formats[0]] == "" {
		return nil
	}

	printStatus(statusOK, "Rendered %s", result.Dataset.Name)
	for _, f := range formats {
		printArtifact(f, paths[f])
	}
	printFrameSummary(frameSummary{
		Categories: result.Stats.Categories,
		Series:     result.Stats.Series,
		Bars:       result.Frame.Bars,
		Culled:     result.Frame.Culled,
		Cached:     result.CacheInfo.RenderHit,
	})
	fmt.Fprintln(stdout)
	printHint("Explore interactively", "moocn explore "+opts.Path)
	return nil
}

// outputPaths maps each format to its output file. An empty path means
// stdout.
func outputPaths(formats []string, output, input string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if output == stdoutPath {
		if len(formats) != 1 {
			return nil, fmt.Errorf("-o - needs exactly one format, got %d", len(formats))
		}
		paths[formats[0]] = ""
		return paths, nil
	}
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths, nil
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
		if f == pipeline.FormatJSON {
			// JSON frames would otherwise overwrite a JSON dataset.
			paths[f] = base + ".frame.json"
		}
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
