// Package pipeline runs the load → chart → render pipeline shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: read a dataset file or raw bytes (JSON, YAML, CSV, XLSX)
//  2. Chart: build a [chart.Chart] on a [chart.Plot] of the requested
//     size, apply the visible window and draw one frame
//  3. Render: write the frame in each requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "sales.csv",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Parsed datasets and rendered artifacts are cached through the runner's
// [cache.Cache]; the chart itself is rebuilt on every run.
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in CSS pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in CSS pixels.
	DefaultHeight = 400.0

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxCanvas bounds width and height.
	MaxCanvas = 10000.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options. Either Path or Data is set; Data needs Format.
	Path   string         `json:"path,omitempty"`
	Data   []byte         `json:"-"`
	Format dataset.Format `json:"format,omitempty"`
	Sheet  string         `json:"sheet,omitempty"`
	Name   string         `json:"name,omitempty"`

	// Chart options
	Chart      chart.Options `json:"-"`
	Width      float64       `json:"width,omitempty"`
	Height     float64       `json:"height,omitempty"`
	PixelRatio float64       `json:"pixel_ratio,omitempty"`
	XMin       *float64      `json:"x_min,omitempty"`
	XMax       *float64      `json:"x_max,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	NoLegend bool     `json:"no_legend,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded, normalized dataset.
	Dataset *dataset.Dataset

	// DataHash is the content hash of Dataset.
	DataHash string

	// Chart is the chart after the drawn frame; its hit-test index is
	// current.
	Chart *chart.Chart

	// Frame summarizes the drawn frame.
	Frame chart.FrameStats

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Categories int
	Series     int
	LoadTime   time.Duration
	ChartTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // parsed dataset came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCanvas checks a canvas size.
func ValidateCanvas(width, height float64) error {
	if !(width > 0 && width <= MaxCanvas) || !(height > 0 && height <= MaxCanvas) {
		return errors.New(errors.ErrCodeInvalidOption, "canvas %gx%g out of range (0, %g]", width, height, MaxCanvas)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForChart(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a dataset source is set.
func (o *Options) ValidateForLoad() error {
	o.setLogger()
	if o.Path == "" && o.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "path or data is required")
	}
	if o.Path != "" {
		o.Path = filepath.Clean(o.Path)
	}
	if o.Data != nil && o.Format == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "format is required with raw data")
	}
	if o.Name != "" {
		return errors.ValidateDatasetName(o.Name)
	}
	return nil
}

// SetChartDefaults fills canvas and chart defaults.
func (o *Options) SetChartDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.PixelRatio == 0 {
		o.PixelRatio = 1
	}
	o.Chart.SetDefaults()
	o.setLogger()
}

// ValidateForChart sets defaults and validates chart options.
func (o *Options) ValidateForChart() error {
	o.SetChartDefaults()
	if err := ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	if o.XMin != nil && o.XMax != nil && *o.XMax <= *o.XMin {
		return errors.New(errors.ErrCodeInvalidOption, "x-max %g must exceed x-min %g", *o.XMax, *o.XMin)
	}
	return o.Chart.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// optionsHash is the hash of the chart options.
func (o *Options) ArtifactKeyOpts(format, optionsHash string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:  format,
		Width:   o.Width,
		Height:  o.Height,
		Options: optionsHash,
		Title:   o.Title,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.XMin != nil {
		k.XMin = *o.XMin
	}
	if o.XMax != nil {
		k.XMax = *o.XMax
	}
	if o.NoLegend {
		k.Options += ":nolegend"
	}
	return k
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
