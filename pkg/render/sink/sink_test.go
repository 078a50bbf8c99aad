package sink

import (
	"testing"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
)

func weekly() *dataset.Dataset {
	return &dataset.Dataset{
		X:      []float64{0, 1, 2},
		Labels: []string{"Mon", "Tue", "Wed"},
		Series: []dataset.Series{
			{Name: "desktop", Color: "#ff0000", Values: dataset.Values{4, 5, 6}},
			{Name: "mobile & tablet", Values: dataset.Values{1, 2, 3}},
		},
	}
}

// newTestChart builds a 300x100 chart without insets; category i spans
// canvas x in [100i, 100i+100).
func newTestChart(t *testing.T, opts chart.Options) *chart.Chart {
	t.Helper()
	opts.GroupWidth, opts.BarWidth = 0.8, 0.9
	plot := chart.NewPlot(300, 100, chart.WithInsets(chart.Insets{}))
	c, err := chart.New(weekly(), plot, opts, chart.WithID("sink"))
	if err != nil {
		t.Fatalf("chart.New: %v", err)
	}
	return c
}
