package chart

import (
	"fmt"
	"strings"

	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/layout"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// RadiusMode selects which bar corners are rounded in stacked charts.
type RadiusMode int

const (
	// RadiusStack rounds only the outer ends of each stack.
	RadiusStack RadiusMode = iota
	// RadiusEach rounds both ends of every bar.
	RadiusEach
)

func (m RadiusMode) String() string {
	if m == RadiusEach {
		return "each"
	}
	return "stack"
}

// ParseRadiusMode parses "stack" or "each".
func ParseRadiusMode(s string) (RadiusMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stack":
		return RadiusStack, nil
	case "each":
		return RadiusEach, nil
	}
	return RadiusStack, errors.New(errors.ErrCodeInvalidOption, "unknown radius mode %q (want stack or each)", s)
}

// minRadiusWidth is the bar width in device pixels at or below which
// corners are drawn square.
const minRadiusWidth = 2

// Options configures a chart.
type Options struct {
	Mode       layout.Mode
	GroupWidth float64
	BarWidth   float64
	Justify    layout.Justify
	Ignore     []int

	ZoomFactor float64
	Axes       viewport.Axes
	Policy     viewport.Policy

	ShowValues bool
	ValueColor string

	Radius     float64
	RadiusMode RadiusMode

	Palette Palette
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	o := Options{}
	o.SetDefaults()
	return o
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.GroupWidth == 0 {
		o.GroupWidth = layout.DefaultGroupWidth
	}
	if o.BarWidth == 0 {
		o.BarWidth = layout.DefaultBarWidth
	}
	if o.ZoomFactor == 0 {
		o.ZoomFactor = viewport.DefaultFactor
	}
	if o.Palette.Name == "" {
		o.Palette = Light
	}
	if o.ValueColor == "" {
		o.ValueColor = o.Palette.Foreground
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if err := o.layoutOptions().Validate(); err != nil {
		return err
	}
	if err := errors.ValidateZoomFactor(o.ZoomFactor); err != nil {
		return err
	}
	if o.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "radius must not be negative, got %g", o.Radius)
	}
	for _, idx := range o.Ignore {
		if idx < 1 {
			return errors.New(errors.ErrCodeInvalidOption, "ignored series index %d: series are numbered from 1", idx)
		}
	}
	return nil
}

func (o Options) layoutOptions() layout.Options {
	return layout.Options{
		Mode:       o.Mode,
		GroupWidth: o.GroupWidth,
		BarWidth:   o.BarWidth,
		Justify:    o.Justify,
		Ignore:     o.Ignore,
	}
}

// FormatValue renders a bar value label: integers without decimals,
// everything else with one.
func FormatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
