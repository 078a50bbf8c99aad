package chart

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/moocn/pkg/errors"
)

// Palette is a named set of chart colors.
type Palette struct {
	Name       string
	Background string
	Foreground string
	Muted      string
	Grid       string
	Highlight  string
	Series     []string
}

var (
	Light = Palette{
		Name:       "light",
		Background: "#ffffff",
		Foreground: "#0f172a",
		Muted:      "#64748b",
		Grid:       "#e2e8f0",
		Highlight:  "#f1f5f9",
		Series:     []string{"#2563eb", "#f97316", "#16a34a", "#db2777", "#9333ea", "#0891b2", "#ca8a04"},
	}
	Dark = Palette{
		Name:       "dark",
		Background: "#0b1120",
		Foreground: "#e2e8f0",
		Muted:      "#94a3b8",
		Grid:       "#1e293b",
		Highlight:  "#1e293b",
		Series:     []string{"#60a5fa", "#fb923c", "#4ade80", "#f472b6", "#c084fc", "#22d3ee", "#facc15"},
	}
)

var palettes = map[string]Palette{"light": Light, "dark": Dark}

// PaletteByName returns the palette called name.
func PaletteByName(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidOption, "unknown theme %q (want light or dark)", name)
	}
	return p, nil
}

// SeriesColor returns the color of the series with 1-based index idx:
// its own color when it parses, else the palette's.
func (p Palette) SeriesColor(idx int, own string) string {
	if c, err := ParseColor(own); err == nil {
		return c.Hex()
	}
	if len(p.Series) == 0 {
		return p.Foreground
	}
	return p.Series[(idx-1+len(p.Series))%len(p.Series)]
}

// ParseColor accepts #rgb and #rrggbb hex colors.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "color %q", s)
	}
	return c, nil
}

// Emphasize returns a hover variant of hex: lighter on dark palettes and
// darker on light ones. Unparseable colors are returned unchanged.
func (p Palette) Emphasize(hex string) string {
	c, err := ParseColor(hex)
	if err != nil {
		return hex
	}
	target := colorful.Color{R: 0, G: 0, B: 0}
	if p.Name == "dark" {
		target = colorful.Color{R: 1, G: 1, B: 1}
	}
	return c.BlendLab(target, 0.2).Clamped().Hex()
}
