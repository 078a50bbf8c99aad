// Package server implements the chart sessions HTTP API behind
// `moocn serve`.
//
// A client creates a chart from a stored or inline dataset, then drives
// it with zoom, pan and hover requests. Every request that changes the
// view draws a new frame and answers with its JSON form, so the hit-test
// index always matches what the client last saw. Rendered artifacts go
// through the pipeline runner and its cache.
//
// # Routes
//
//	GET    /healthz
//	GET    /charts
//	POST   /charts
//	GET    /charts/{id}
//	DELETE /charts/{id}
//	GET    /charts/{id}/hit?x=&y=[&series=]
//	POST   /charts/{id}/zoom
//	POST   /charts/{id}/pan
//	POST   /charts/{id}/reset
//	PUT    /charts/{id}/window
//	POST   /charts/{id}/series/{series}/toggle
//	GET    /charts/{id}/{format}
//	GET    /datasets
//	PUT    /datasets/{name}
//	DELETE /datasets/{name}
//	GET    /datasets/{name}/{format}
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/moocn/internal/watch"
	"github.com/matzehuels/moocn/pkg/buildinfo"
	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/observability"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/store"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	// Runner loads datasets and renders artifacts. Required.
	Runner *pipeline.Runner

	// Store holds named datasets. Nil means an in-memory store.
	Store store.Store

	// Defaults provides chart and theme defaults for new charts.
	Defaults config.Config

	// MaxCharts bounds live chart sessions; the oldest is evicted first.
	MaxCharts int

	Logger *log.Logger
}

// Server holds live chart sessions.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	defaults  config.Config
	maxCharts int
	logger    *log.Logger

	mu       sync.RWMutex
	sessions map[string]*session

	router chi.Router
}

// New returns a server with its routes mounted.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server needs a pipeline runner")
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.MaxCharts <= 0 {
		opts.MaxCharts = config.DefaultMaxCharts
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if _, err := opts.Defaults.ChartOptions(); err != nil {
		return nil, err
	}
	s := &Server{
		runner:    opts.Runner,
		store:     opts.Store,
		defaults:  opts.Defaults,
		maxCharts: opts.MaxCharts,
		logger:    opts.Logger,
		sessions:  make(map[string]*session),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})

	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.listCharts)
		r.Post("/", s.createChart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getChart)
			r.Delete("/", s.deleteChart)
			r.Get("/hit", s.hitChart)
			r.Post("/zoom", s.zoomChart)
			r.Post("/pan", s.panChart)
			r.Post("/reset", s.resetChart)
			r.Put("/window", s.windowChart)
			r.Post("/series/{series}/toggle", s.toggleSeries)
			r.Get("/{format}", s.renderChart)
		})
	})

	r.Route("/datasets", func(r chi.Router) {
		r.Get("/", s.listDatasets)
		r.Put("/{name}", s.putDataset)
		r.Delete("/{name}", s.deleteDataset)
		r.Get("/{name}/{format}", s.renderDataset)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// instrument reports every request to the server hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnRequest(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur)
	})
}

// RunOptions configures [Server.Run].
type RunOptions struct {
	Addr         string
	Watch        string // dataset file or directory to reload from; empty disables
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Run serves HTTP until ctx is done, reloading watched datasets alongside.
func (s *Server) Run(ctx context.Context, opts RunOptions) error {
	if opts.Addr == "" {
		opts.Addr = config.DefaultAddr
	}
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	var watcher *watch.Watcher
	if opts.Watch != "" {
		var err error
		if watcher, err = watch.New(opts.Watch, watch.WithLogger(s.logger)); err != nil {
			return err
		}
		defer watcher.Close()
		s.loadWatched(ctx, opts.Watch)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", opts.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if watcher != nil {
		g.Go(func() error {
			s.logger.Info("watching datasets", "path", opts.Watch)
			return watcher.Run(gctx, func(path string) { s.Reload(gctx, path) })
		})
	}
	return g.Wait()
}

// loadWatched stores every dataset already present under path.
func (s *Server) loadWatched(ctx context.Context, path string) {
	paths := []string{path}
	if matches, err := filepath.Glob(filepath.Join(path, "*")); err == nil && len(matches) > 0 {
		paths = matches
	}
	for _, p := range paths {
		if _, err := dataset.FormatFromPath(p); err == nil {
			s.Reload(ctx, p)
		}
	}
}

// datasetName derives a store name from a file path.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Reload reads the dataset at path into the store and feeds it to every
// live chart created from that dataset. It returns the number of charts
// updated.
func (s *Server) Reload(ctx context.Context, path string) int {
	name := datasetName(path)
	n, err := s.reload(ctx, name, path)
	observability.Server().OnReload(ctx, name, n, err)
	if err != nil {
		s.logger.Warn("reload failed", "dataset", name, "err", err)
		return 0
	}
	s.logger.Info("reloaded dataset", "dataset", name, "charts", n)
	return n
}

func (s *Server) reload(ctx context.Context, name, path string) (int, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return 0, err
	}
	d, err := dataset.Load(path)
	if err != nil {
		return 0, err
	}
	d.Name = name
	if err := s.store.Put(ctx, d); err != nil {
		return 0, err
	}
	hash, err := cache.HashJSON(d)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, sess := range s.snapshot() {
		if sess.source != name {
			continue
		}
		sess.mu.Lock()
		_, err := sess.chart.SetData(d)
		if err == nil {
			sess.hash = hash
			updated++
		}
		sess.mu.Unlock()
		if err != nil {
			s.logger.Warn("chart rejected reloaded data", "id", sess.chart.ID(), "err", err)
		}
	}
	return updated, nil
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) add(sess *session) {
	s.mu.Lock()
	for len(s.sessions) >= s.maxCharts {
		var oldest *session
		for _, other := range s.sessions {
			if oldest == nil || other.chart.Created().Before(oldest.chart.Created()) {
				oldest = other
			}
		}
		delete(s.sessions, oldest.chart.ID())
		s.logger.Debug("evicted chart", "id", oldest.chart.ID())
	}
	s.sessions[sess.chart.ID()] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	observability.Server().OnSessions(context.Background(), n)
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if ok {
		observability.Server().OnSessions(context.Background(), n)
	}
	return ok
}

func (s *Server) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeChartNotFound, "chart %q not found", id)
	}
	return sess, nil
}

// snapshot returns the live sessions ordered by creation.
func (s *Server) snapshot() []*session {
	s.mu.RLock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].chart.Created().Before(out[j].chart.Created())
	})
	return out
}

// Len returns the number of live charts.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
