package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/internal/watch"
	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags   chartFlags
		window  windowFlags
		watchIt bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore [dataset]",
		Short: "Explore a chart interactively in the terminal",
		Long: `Open a dataset as a bar chart in the terminal.

The mouse wheel zooms around the cursor and dragging with the middle
button pans. Hovering shows the values of the category under the cursor.
With --watch the chart follows changes to the dataset file, keeping the
current zoom.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := c.chartSetup(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			window.apply(cmd, &opts)
			return c.runExplore(cmd.Context(), cfg, opts, watchIt, noCache)
		},
	}

	cmd.Flags().BoolVarP(&watchIt, "watch", "w", false, "reload the dataset when the file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)
	window.register(cmd)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, cfg config.Config, opts pipeline.Options, watchIt, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	d, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Loaded "+filepath.Base(opts.Path), "categories", d.Len(), "series", d.SeriesCount())

	// Log lines would tear the alternate screen.
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	frames := &viewport.ManualFrames{}
	ch, err := pipeline.NewChart(d, opts, chart.WithViewportOptions(viewport.WithFrames(frames)))
	if err != nil {
		return err
	}

	title := d.Name
	if title == "" {
		title = filepath.Base(opts.Path)
	}
	p := tea.NewProgram(NewExploreModel(ch, frames, title),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if watchIt {
		w, err := watch.New(opts.Path, watch.WithLogger(opts.Logger))
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			_ = w.Run(ctx, func(string) {
				d, err := pipeline.Load(ctx, opts)
				p.Send(reloadMsg{data: d, err: err})
			})
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return ctx.Err()
}
