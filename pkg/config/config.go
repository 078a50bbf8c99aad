// Package config loads moocn settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/moocn/config.toml by default and has
// one section per concern:
//
//	[chart]
//	mode = "stacked"
//	radius = 4
//
//	[theme]
//	name = "dark"
//
//	[serve]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//
// Command line flags override file values.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/layout"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// Duration is a time.Duration written as a string like "12h".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOption, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the whole configuration file.
type Config struct {
	Chart ChartConfig `toml:"chart"`
	Theme ThemeConfig `toml:"theme"`
	Serve ServeConfig `toml:"serve"`
	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
}

// ChartConfig holds chart options as written in the file.
type ChartConfig struct {
	Mode       string  `toml:"mode" json:"mode,omitempty"`
	GroupWidth float64 `toml:"group_width" json:"group_width,omitempty"`
	BarWidth   float64 `toml:"bar_width" json:"bar_width,omitempty"`
	Justify    string  `toml:"justify" json:"justify,omitempty"`
	Ignore     []int   `toml:"ignore" json:"ignore,omitempty"`
	ZoomFactor float64 `toml:"zoom_factor" json:"zoom_factor,omitempty"`
	Axes       string  `toml:"axes" json:"axes,omitempty"`
	Policy     string  `toml:"policy" json:"policy,omitempty"`
	ShowValues bool    `toml:"show_values" json:"show_values,omitempty"`
	ValueColor string  `toml:"value_color" json:"value_color,omitempty"`
	Radius     float64 `toml:"radius" json:"radius,omitempty"`
	RadiusMode string  `toml:"radius_mode" json:"radius_mode,omitempty"`
	Width      float64 `toml:"width" json:"width,omitempty"`
	Height     float64 `toml:"height" json:"height,omitempty"`
	PixelRatio float64 `toml:"pixel_ratio" json:"pixel_ratio,omitempty"`
}

// ThemeConfig selects a palette and optionally replaces its series colors.
type ThemeConfig struct {
	Name   string   `toml:"name" json:"name,omitempty"`
	Series []string `toml:"series" json:"series,omitempty"`
}

// ServeConfig configures `moocn serve`.
type ServeConfig struct {
	Addr         string   `toml:"addr"`
	Watch        string   `toml:"watch"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxCharts    int      `toml:"max_charts"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file, redis, memory or none
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// StoreConfig selects the dataset store backend.
type StoreConfig struct {
	Backend string      `toml:"backend"` // file, mongo or memory
	Dir     string      `toml:"dir"`
	Mongo   MongoConfig `toml:"mongo"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Defaults used when neither file nor flags set a value.
const (
	DefaultWidth     = 800
	DefaultHeight    = 400
	DefaultAddr      = ":8080"
	DefaultMaxCharts = 256
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chart: ChartConfig{
			Mode:       "grouped",
			GroupWidth: layout.DefaultGroupWidth,
			BarWidth:   layout.DefaultBarWidth,
			Justify:    layout.SpaceBetween.String(),
			ZoomFactor: viewport.DefaultFactor,
			Axes:       "x",
			Policy:     "grow-only",
			RadiusMode: "stack",
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			PixelRatio: 1,
		},
		Theme: ThemeConfig{Name: "light"},
		Serve: ServeConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxCharts:    DefaultMaxCharts,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{24 * time.Hour},
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "moocn:"},
		},
		Store: StoreConfig{
			Backend: "file",
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "moocn", Collection: "datasets"},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/moocn/config.toml, falling back to
// the OS user config directory.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		var err error
		if base, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(base, "moocn", "config.toml")
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath], which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses TOML from r on top of [Default]. Unknown keys are an
// error so typos do not pass silently.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidOption, "unknown config keys: %s", strings.Join(names, ", "))
	}
	return cfg, nil
}

// ChartOptions converts the [chart] and [theme] sections.
func (c Config) ChartOptions() (chart.Options, error) {
	cc := c.Chart
	mode, err := layout.ParseMode(cc.Mode)
	if err != nil {
		return chart.Options{}, err
	}
	justify, err := layout.ParseJustify(cc.Justify)
	if err != nil {
		return chart.Options{}, err
	}
	axes, err := viewport.ParseAxes(cc.Axes)
	if err != nil {
		return chart.Options{}, err
	}
	policy, err := viewport.ParsePolicy(cc.Policy)
	if err != nil {
		return chart.Options{}, err
	}
	rmode, err := chart.ParseRadiusMode(cc.RadiusMode)
	if err != nil {
		return chart.Options{}, err
	}
	pal, err := c.Theme.Palette()
	if err != nil {
		return chart.Options{}, err
	}
	opts := chart.Options{
		Mode:       mode,
		GroupWidth: cc.GroupWidth,
		BarWidth:   cc.BarWidth,
		Justify:    justify,
		Ignore:     cc.Ignore,
		ZoomFactor: cc.ZoomFactor,
		Axes:       axes,
		Policy:     policy,
		ShowValues: cc.ShowValues,
		ValueColor: cc.ValueColor,
		Radius:     cc.Radius,
		RadiusMode: rmode,
		Palette:    pal,
	}
	opts.SetDefaults()
	return opts, opts.Validate()
}

// PipelineOptions returns pipeline options carrying the chart options
// and canvas size of the [chart] section.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	opts, err := c.ChartOptions()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Chart:      opts,
		Width:      c.Chart.Width,
		Height:     c.Chart.Height,
		PixelRatio: c.Chart.PixelRatio,
	}, nil
}

// Palette resolves the theme, replacing series colors when set.
func (t ThemeConfig) Palette() (chart.Palette, error) {
	name := t.Name
	if name == "" {
		name = "light"
	}
	p, err := chart.PaletteByName(name)
	if err != nil {
		return chart.Palette{}, err
	}
	if len(t.Series) > 0 {
		colors := make([]string, len(t.Series))
		for i, s := range t.Series {
			col, err := chart.ParseColor(s)
			if err != nil {
				return chart.Palette{}, err
			}
			colors[i] = col.Hex()
		}
		p.Series = colors
	}
	return p, nil
}
