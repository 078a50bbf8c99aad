// Package cli implements the moocn command-line interface.
//
// Commands load a dataset (JSON, YAML, CSV or XLSX), lay it out as grouped
// or stacked bars, and either render it, print its geometry, or drive it
// interactively. The CLI is built with cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - render: Generate SVG, PNG, PDF or JSON frame output
//   - layout: Print bar geometry in data units
//   - hit: Resolve a cursor position to a bar
//   - quadtree: Dump the hit-test index as Graphviz
//   - explore: Zoom, pan and hover a chart in the terminal
//   - serve: Expose charts over HTTP
//   - cache: Inspect or clear the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so helpers can log without a CLI handle.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled, timestamped lines ("14:32:01.45") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command, such as loading a dataset, and
// logs it when done. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the given key/value pairs and the
// elapsed time rounded to the millisecond, e.g.
//
//	14:32:01.45 INFO Loaded sales.csv categories=12 series=3 elapsed=4ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for helpers that have no CLI handle.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
