package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/internal/server"
	"github.com/matzehuels/moocn/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags     chartFlags
		addr      string
		watchPath string
		maxCharts int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive charts over HTTP",
		Long: `Start an HTTP server that holds live charts.

Clients create a chart from a stored dataset or inline data, then drive it
with zoom, pan, hover and toggle requests. Every interaction returns the
new frame as JSON. Charts render to SVG, PNG, PDF or JSON on request.

With --watch, datasets under the given file or directory are loaded into
the store at startup and reloaded on change; charts created from them
receive the new data with their zoom kept.`,
		Example: `  moocn serve --addr :8080 --watch ./data

  curl -X POST localhost:8080/charts -d '{"dataset": "sales"}'
  curl -X POST localhost:8080/charts/<id>/zoom -d '{"x": 400, "y": 200}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Serve.Watch = watchPath
			}
			if cmd.Flags().Changed("max-charts") {
				cfg.Serve.MaxCharts = maxCharts
			}

			runner, err := c.newRunner(ctx, cfg.Cache, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "serve:")

			st, err := newStore(ctx, cfg.Store)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			srv, err := server.New(server.Options{
				Runner:    runner,
				Store:     st,
				Defaults:  cfg,
				MaxCharts: cfg.Serve.MaxCharts,
				Logger:    c.Logger,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx, server.RunOptions{
				Addr:         cfg.Serve.Addr,
				Watch:        cfg.Serve.Watch,
				ReadTimeout:  cfg.Serve.ReadTimeout.Duration,
				WriteTimeout: cfg.Serve.WriteTimeout.Duration,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&watchPath, "watch", "", "dataset file or directory to load and watch")
	cmd.Flags().IntVar(&maxCharts, "max-charts", 0, "maximum live charts before the oldest is evicted")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}
