package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state; multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer], a
// nil cache disables caching and a nil logger means the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		TTL:    cache.DefaultTTL,
		Logger: logger,
	}
}

// Execute runs the complete load → chart → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = d
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Categories = d.Len()
	result.Stats.Series = d.SeriesCount()
	result.CacheInfo.LoadHit = loadHit
	if result.DataHash, err = cache.HashJSON(d); err != nil {
		return nil, fmt.Errorf("hash dataset: %w", err)
	}

	r.Logger.Info("loaded dataset",
		"name", d.Name,
		"categories", d.Len(),
		"series", d.SeriesCount(),
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Chart
	chartStart := time.Now()
	c, err := NewChart(d, opts)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	result.Chart = c
	result.Frame = DrawFrame(ctx, c)
	result.Stats.ChartTime = time.Since(chartStart)

	r.Logger.Debug("drew frame",
		"bars", result.Frame.Bars,
		"culled", result.Frame.Culled,
		"depth", result.Frame.Depth)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, result.DataHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the dataset, caching the parsed form keyed by
// the source bytes.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*dataset.Dataset, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	raw, format, name, err := source(opts)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.DatasetKey(cache.Hash(bytes.Join([][]byte{raw, []byte(format), []byte(opts.Sheet)}, []byte{0})))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			d, err := dataset.Decode(bytes.NewReader(data), dataset.FormatJSON)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				if name != "" {
					d.Name = name
				}
				return d, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	d, err := decode(ctx, raw, format, name, opts)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := dataset.WriteJSON(&buf, d); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "dataset", buf.Len())
		}
	}
	return d, false, nil
}

// Load is LoadWithCacheInfo without the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	d, _, err := r.LoadWithCacheInfo(ctx, opts)
	return d, err
}

// RenderWithCacheInfo renders the current view of c, serving artifacts
// from the cache when every requested format is cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *chart.Chart, dataHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	optionsHash, err := cache.HashJSON(c.Options())
	if err != nil {
		return nil, false, fmt.Errorf("hash chart options: %w", err)
	}
	keyOpts := opts
	x, _ := c.Viewport()
	keyOpts.XMin, keyOpts.XMax = &x.Visible.Min, &x.Visible.Max

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(dataHash, keyOpts.ArtifactKeyOpts(format, optionsHash))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, c, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(dataHash, keyOpts.ArtifactKeyOpts(format, optionsHash))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
