package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/observability"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/render/sink"
	"github.com/matzehuels/moocn/pkg/store"
)

func newTestServer(t *testing.T, maxCharts int) *Server {
	t.Helper()
	s, err := New(Options{
		Runner:    pipeline.NewRunner(cache.NewMemoryCache(), nil, nil),
		Store:     store.NewMemoryStore(),
		Defaults:  config.Default(),
		MaxCharts: maxCharts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// visits returns a dataset JSON object with n categories and two series.
func visits(n int) map[string]any {
	labels := make([]string, n)
	desktop := make([]float64, n)
	mobile := make([]float64, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("d%d", i)
		desktop[i] = float64(i + 1)
		mobile[i] = float64(2*i + 1)
	}
	return map[string]any{
		"labels": labels,
		"series": []map[string]any{
			{"name": "desktop", "values": desktop},
			{"name": "mobile", "values": mobile},
		},
	}
}

func createChart(t *testing.T, s *Server, body any) sink.Frame {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/charts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /charts = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[sink.Frame](t, rec)
}

func TestCreateChartInline(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(3)})

	assert.NotEmpty(t, frame.ID)
	assert.Len(t, frame.Bars, 6)
	assert.Len(t, frame.Legend, 2)
	assert.Equal(t, 1, s.Len())

	rec := do(t, s, http.MethodGet, "/charts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), frame.ID)

	rec = do(t, s, http.MethodGet, "/charts/"+frame.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, frame.ID, decode[sink.Frame](t, rec).ID)
}

func TestCreateChartTextData(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{
		"data":   "day,desktop\nmon,3\ntue,5\n",
		"format": "csv",
		"chart":  map[string]any{"mode": "stacked", "width": 400},
	})
	assert.Len(t, frame.Bars, 2)
	assert.InDelta(t, 400, frame.Width, 1e-9)
}

func TestCreateChartErrors(t *testing.T) {
	s := newTestServer(t, 0)
	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"no source", map[string]any{}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"both sources", map[string]any{"dataset": "sales", "data": visits(2)}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown dataset", map[string]any{"dataset": "sales"}, http.StatusNotFound, errors.ErrCodeDatasetNotFound},
		{"bad mode", map[string]any{"data": visits(2), "chart": map[string]any{"mode": "pie"}}, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"unknown chart key", map[string]any{"data": visits(2), "chart": map[string]any{"colour": "red"}}, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"text without format", map[string]any{"data": "x,a\n1,2\n"}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"dataset":"x","bogus":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed", `{`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/charts", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorResponse](t, rec).Code)
		})
	}
	assert.Equal(t, 0, s.Len())
}

func TestChartNotFound(t *testing.T) {
	s := newTestServer(t, 0)
	for _, req := range [][2]string{
		{http.MethodGet, "/charts/missing"},
		{http.MethodDelete, "/charts/missing"},
		{http.MethodGet, "/charts/missing/svg"},
		{http.MethodPost, "/charts/missing/reset"},
	} {
		rec := do(t, s, req[0], req[1], nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, req[1])
		assert.Equal(t, errors.ErrCodeChartNotFound, decode[errorResponse](t, rec).Code, req[1])
	}
}

func TestZoomPanReset(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(10)})
	base := "/charts/" + frame.ID
	center := map[string]any{"x": frame.Plot.X + frame.Plot.W/2, "y": frame.Plot.Y + frame.Plot.H/2}

	zoomed := decode[viewResponse](t, do(t, s, http.MethodPost, base+"/zoom", center))
	assert.True(t, zoomed.Changed)
	assert.Less(t, zoomed.Frame.X.Visible.Len(), zoomed.Frame.X.Full.Len())
	assert.Greater(t, zoomed.Frame.Culled, 0)

	panned := decode[viewResponse](t, do(t, s, http.MethodPost, base+"/pan", map[string]any{"dx": 40}))
	assert.True(t, panned.Changed)
	assert.NotEqual(t, zoomed.Frame.X.Visible, panned.Frame.X.Visible)
	assert.InDelta(t, zoomed.Frame.X.Visible.Len(), panned.Frame.X.Visible.Len(), 1e-9)

	outside := decode[viewResponse](t, do(t, s, http.MethodPost, base+"/zoom", map[string]any{"x": -5, "y": -5}))
	assert.False(t, outside.Changed)

	reset := decode[viewResponse](t, do(t, s, http.MethodPost, base+"/reset", nil))
	assert.True(t, reset.Changed)
	assert.Equal(t, reset.Frame.X.Full, reset.Frame.X.Visible)
	assert.Len(t, reset.Frame.Bars, 20)
}

func TestHit(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(4)})
	bar := frame.Bars[len(frame.Bars)-1]
	x, y := bar.X+bar.W/2, bar.Y+bar.H/2
	base := "/charts/" + frame.ID + "/hit"

	hit := decode[hitResponse](t, do(t, s, http.MethodGet, fmt.Sprintf("%s?x=%g&y=%g&series=%d", base, x, y, bar.Series), nil))
	assert.True(t, hit.Hit)
	assert.Equal(t, bar.Category, hit.Category)
	assert.Equal(t, fmt.Sprintf("d%d", bar.Category), hit.Label)

	other := bar.Series%2 + 1
	miss := decode[hitResponse](t, do(t, s, http.MethodGet, fmt.Sprintf("%s?x=%g&y=%g&series=%d", base, x, y, other), nil))
	assert.False(t, miss.Hit)
	assert.Equal(t, -1, miss.Category)

	hover := decode[hitResponse](t, do(t, s, http.MethodGet, fmt.Sprintf("%s?x=%g&y=%g", base, x, y), nil))
	assert.True(t, hover.Hit)
	assert.Equal(t, bar.Series, hover.Series)
	if assert.NotNil(t, hover.Tooltip) {
		assert.Len(t, hover.Tooltip.Items, 2)
	}

	rec := do(t, s, http.MethodGet, base+"?x=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, base+"?x=1&y=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderChartCaches(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(3), "title": "Visits"})
	path := "/charts/" + frame.ID + "/svg"

	rec := do(t, s, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 6, strings.Count(rec.Body.String(), `class="bar"`))
	assert.Contains(t, rec.Body.String(), "Visits")

	rec = do(t, s, http.MethodGet, path, nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = do(t, s, http.MethodGet, path+"?refresh=true", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = do(t, s, http.MethodGet, "/charts/"+frame.ID+"/json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/charts/"+frame.ID+"/gif", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidFormat, decode[errorResponse](t, rec).Code)
}

func TestWindowAndToggle(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(10)})
	base := "/charts/" + frame.ID

	win := decode[viewResponse](t, do(t, s, http.MethodPut, base+"/window", map[string]any{"min": 0, "max": 2}))
	assert.True(t, win.Changed)
	assert.Less(t, len(win.Frame.Bars), len(frame.Bars))

	rec := do(t, s, http.MethodPut, base+"/window", map[string]any{"min": 2, "max": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	toggled := decode[viewResponse](t, do(t, s, http.MethodPost, base+"/series/1/toggle", nil))
	assert.False(t, toggled.Frame.Legend[0].Shown)
	assert.True(t, toggled.Frame.Legend[1].Shown)

	rec = do(t, s, http.MethodPost, base+"/series/9/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/series/one/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteChart(t *testing.T) {
	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(2)})
	rec := do(t, s, http.MethodDelete, "/charts/"+frame.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.Len())
}

func TestEvictsOldest(t *testing.T) {
	s := newTestServer(t, 2)
	first := createChart(t, s, map[string]any{"data": visits(2)})
	time.Sleep(time.Millisecond)
	createChart(t, s, map[string]any{"data": visits(2)})
	time.Sleep(time.Millisecond)
	createChart(t, s, map[string]any{"data": visits(2)})

	assert.Equal(t, 2, s.Len())
	rec := do(t, s, http.MethodGet, "/charts/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatasetsAndReload(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, 0)

	rec := do(t, s, http.MethodPut, "/datasets/sales?format=csv", "day,desktop\nmon,3\ntue,5\n")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[datasetInfo](t, rec).Categories)

	rec = do(t, s, http.MethodGet, "/datasets", nil)
	assert.Contains(t, rec.Body.String(), `"sales"`)

	rec = do(t, s, http.MethodGet, "/datasets/sales/svg?x_min=0&x_max=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	frame := createChart(t, s, map[string]any{"dataset": "sales"})
	assert.Len(t, frame.Bars, 2)

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte("day,desktop\nmon,3\ntue,5\nwed,7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, s.Reload(ctx, path))

	updated := decode[sink.Frame](t, do(t, s, http.MethodGet, "/charts/"+frame.ID, nil))
	assert.Len(t, updated.Bars, 3)
	assert.Greater(t, updated.X.Full.Max, frame.X.Full.Max)

	assert.Equal(t, 0, s.Reload(ctx, filepath.Join(t.TempDir(), "gone.csv")))

	rec = do(t, s, http.MethodDelete, "/datasets/sales", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/datasets/sales/svg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPut, "/datasets/bad%20name", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidOption, http.StatusBadRequest},
		{errors.ErrCodeInvalidName, http.StatusBadRequest},
		{errors.ErrCodeChartNotFound, http.StatusNotFound},
		{errors.ErrCodeDatasetNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeStorage, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), string(tt.code))
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu       sync.Mutex
	routes   []string
	sessions []int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func (h *recordingHooks) OnSessions(_ context.Context, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, n)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t, 0)
	frame := createChart(t, s, map[string]any{"data": visits(2)})
	do(t, s, http.MethodDelete, "/charts/"+frame.ID, nil)
	do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, []int{1, 0}, hooks.sessions)
	if assert.Len(t, hooks.routes, 3) {
		assert.Contains(t, hooks.routes[1], "DELETE /charts/{id}")
		assert.Equal(t, "GET /healthz 200", hooks.routes[2])
	}
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(Options{Defaults: config.Default()})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
