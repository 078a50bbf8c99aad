package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Path: "data.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, 1.0, opts.PixelRatio)
	assert.Equal(t, []string{FormatSVG}, opts.Formats)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.Equal(t, "light", opts.Chart.Palette.Name)
	assert.NotNil(t, opts.Logger)
}

func TestOptionsErrors(t *testing.T) {
	lo, hi := 5.0, 2.0
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"data without format", Options{Data: []byte("{}")}, errors.ErrCodeInvalidFormat},
		{"bad name", Options{Path: "a.csv", Name: "a/b"}, errors.ErrCodeInvalidName},
		{"canvas", Options{Path: "a.csv", Width: -1}, errors.ErrCodeInvalidOption},
		{"window", Options{Path: "a.csv", XMin: &lo, XMax: &hi}, errors.ErrCodeInvalidOption},
		{"format", Options{Path: "a.csv", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bar width", Options{Path: "a.csv", Chart: chart.Options{BarWidth: 2}}, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			assert.Equal(t, tt.code, errors.GetCode(err), "got %v", err)
		})
	}
}

func writeCSV(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("day,desktop,mobile\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "d%d,%d,%d\n", i, i+1, 2*i+1)
	}
	path := filepath.Join(t.TempDir(), "visits.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	r := NewRunner(mem, nil, nil)
	path := writeCSV(t, 4)

	res, err := r.Execute(ctx, Options{Path: path, Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	assert.Equal(t, "visits", res.Dataset.Name)
	assert.Equal(t, 4, res.Stats.Categories)
	assert.Equal(t, 2, res.Stats.Series)
	assert.Equal(t, 8, res.Frame.Bars)
	assert.False(t, res.CacheInfo.LoadHit)
	assert.False(t, res.CacheInfo.RenderHit)
	assert.Equal(t, 8, strings.Count(string(res.Artifacts["svg"]), `class="bar"`))
	assert.Contains(t, string(res.Artifacts["json"]), `"bars"`)
	assert.Equal(t, 8, res.Chart.Index().Len())

	again, err := r.Execute(ctx, Options{Path: path, Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	assert.True(t, again.CacheInfo.LoadHit)
	assert.True(t, again.CacheInfo.RenderHit)
	assert.Equal(t, res.Artifacts["svg"], again.Artifacts["svg"])
	assert.Equal(t, res.DataHash, again.DataHash)

	fresh, err := r.Execute(ctx, Options{Path: path, Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	assert.False(t, fresh.CacheInfo.RenderHit)
}

func TestRunnerExecuteWindow(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	lo, hi := 0.0, 2.0

	res, err := r.Execute(ctx, Options{Path: writeCSV(t, 10), XMin: &lo, XMax: &hi})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	x, _ := res.Chart.Viewport()
	assert.InDelta(t, 0, x.Visible.Min, 1e-9)
	assert.InDelta(t, 2, x.Visible.Max, 1e-9)
	// The window cuts through categories 0 and 2: one bar of each
	// survives next to both bars of category 1.
	assert.Equal(t, 4, res.Frame.Bars)
	assert.Equal(t, 16, res.Frame.Culled)
}

func TestRunnerExecuteLocalPaths(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	abs := writeCSV(t, 3)
	dir := filepath.Dir(abs)
	up := filepath.Join(dir, "sub", "..", filepath.Base(abs))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"absolute", abs},
		{"parent segment", up},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(ctx, Options{Path: tt.path})
			if err != nil {
				t.Fatalf("Execute(%q): %v", tt.path, err)
			}
			assert.Equal(t, 6, res.Frame.Bars)
		})
	}
}

func TestValidateForLoadCleansPath(t *testing.T) {
	opts := Options{Path: "../data/./sales.csv"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatalf("ValidateForLoad: %v", err)
	}
	assert.Equal(t, filepath.Join("..", "data", "sales.csv"), opts.Path)
}

func TestRunnerExecuteRawData(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	src := `{"series": [{"name": "a", "values": [1, null, 3]}]}`

	res, err := r.Execute(ctx, Options{Data: []byte(src), Format: dataset.FormatJSON, Name: "raw"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	assert.Equal(t, "raw", res.Dataset.Name)
	assert.Equal(t, 2, res.Frame.Bars, "missing values are not drawn")
}

func TestRunnerExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	_, err := r.Execute(ctx, Options{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	_, err = r.Execute(ctx, Options{Data: []byte("day,a\nmon,x\n"), Format: dataset.FormatCSV})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDataset), "got %v", err)
}
