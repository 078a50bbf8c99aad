package server

import (
	"sync"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/pipeline"
)

// session is one live chart. Requests arrive on separate goroutines, so
// every use of chart goes through mu.
type session struct {
	mu     sync.Mutex
	chart  *chart.Chart
	opts   pipeline.Options // canvas size, title and render settings
	source string           // store name the chart was built from, if any
	hash   string           // content hash of the chart's dataset
}

// chartInfo is the listing form of a session.
type chartInfo struct {
	ID         string `json:"id"`
	Dataset    string `json:"dataset,omitempty"`
	Categories int    `json:"categories"`
	Series     int    `json:"series"`
	Created    string `json:"created"`
}

func (sess *session) info() chartInfo {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	d := sess.chart.Data()
	return chartInfo{
		ID:         sess.chart.ID(),
		Dataset:    sess.source,
		Categories: d.Len(),
		Series:     d.SeriesCount(),
		Created:    sess.chart.Created().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
