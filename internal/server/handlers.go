package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/moocn/pkg/cache"
	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/pipeline"
	"github.com/matzehuels/moocn/pkg/render/sink"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// maxBody bounds request bodies.
const maxBody = 16 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// =============================================================================
// Request / Response Bodies
// =============================================================================

// createRequest creates a chart from a stored dataset or inline data.
// Data is either a dataset JSON object or a string in Format.
type createRequest struct {
	Dataset string          `json:"dataset,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Format  string          `json:"format,omitempty"`
	Theme   string          `json:"theme,omitempty"`
	Chart   json.RawMessage `json:"chart,omitempty"` // config.ChartConfig fields
	Title   string          `json:"title,omitempty"`
	XMin    *float64        `json:"x_min,omitempty"`
	XMax    *float64        `json:"x_max,omitempty"`
}

type zoomRequest struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Out bool    `json:"out"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type viewResponse struct {
	Changed bool       `json:"changed"`
	Frame   sink.Frame `json:"frame"`
}

type hitResponse struct {
	Hit      bool           `json:"hit"`
	Series   int            `json:"series,omitempty"`
	Category int            `json:"category"`
	Label    string         `json:"label,omitempty"`
	Tooltip  *chart.Tooltip `json:"tooltip,omitempty"`
}

type datasetInfo struct {
	Name       string `json:"name"`
	Categories int    `json:"categories"`
	Series     int    `json:"series"`
}

// =============================================================================
// Charts
// =============================================================================

func (s *Server) listCharts(w http.ResponseWriter, r *http.Request) {
	sessions := s.snapshot()
	infos := make([]chartInfo, len(sessions))
	for i, sess := range sessions {
		infos[i] = sess.info()
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": infos})
}

func (s *Server) createChart(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.newSession(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.add(sess)

	sess.mu.Lock()
	frame := sink.BuildFrame(sess.chart, sink.WithJSONLabels())
	sess.mu.Unlock()

	s.logger.Info("chart created", "id", frame.ID, "dataset", sess.source, "bars", len(frame.Bars))
	writeJSON(w, http.StatusCreated, frame)
}

func (s *Server) newSession(ctx context.Context, req createRequest) (*session, error) {
	cfg := s.defaults
	cfg.Chart.Ignore = slices.Clone(cfg.Chart.Ignore)
	if req.Theme != "" {
		cfg.Theme = config.ThemeConfig{Name: req.Theme}
	}
	if len(req.Chart) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Chart))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg.Chart); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "decode chart options")
		}
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	opts.Title = req.Title
	opts.XMin, opts.XMax = req.XMin, req.XMax
	opts.Logger = s.logger

	var d *dataset.Dataset
	switch {
	case req.Dataset != "" && len(req.Data) > 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset and data are mutually exclusive")
	case req.Dataset != "":
		d, err = s.store.Get(ctx, req.Dataset)
	case len(req.Data) > 0:
		if opts.Data, opts.Format, err = inlineData(req.Data, req.Format); err == nil {
			d, err = s.runner.Load(ctx, opts)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset or data is required")
	}
	if err != nil {
		return nil, err
	}

	c, err := pipeline.NewChart(d, opts)
	if err != nil {
		return nil, err
	}
	hash, err := cache.HashJSON(c.Data())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash dataset")
	}
	return &session{chart: c, opts: opts, source: req.Dataset, hash: hash}, nil
}

// inlineData returns the bytes and format of a request's data field.
func inlineData(raw json.RawMessage, format string) ([]byte, dataset.Format, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode data")
		}
		if format == "" {
			return nil, "", errors.New(errors.ErrCodeInvalidFormat, "format is required for text data")
		}
		return []byte(text), dataset.Format(format), nil
	}
	if format != "" && dataset.Format(format) != dataset.FormatJSON {
		return nil, "", errors.New(errors.ErrCodeInvalidFormat, "object data must be json, got %q", format)
	}
	return raw, dataset.FormatJSON, nil
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	frame := sink.BuildFrame(sess.chart, sink.WithJSONLabels(), sink.WithJSONTooltip())
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) deleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.remove(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeChartNotFound, "chart %q not found", id))
		return
	}
	s.logger.Info("chart deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderChart(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.mu.Lock()
	opts := sess.opts
	opts.Formats = []string{format}
	opts.Refresh = r.URL.Query().Get("refresh") == "true"
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), sess.chart, sess.hash, opts)
	sess.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, artifacts[format], hit)
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, hit bool) {
	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) hitChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err := queryFloat(q, "x")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	y, err := queryFloat(q, "y")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	series := 0
	if q.Has("series") {
		if series, err = strconv.Atoi(q.Get("series")); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse series"))
			return
		}
	}
	sess, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	c := sess.chart
	resp := hitResponse{Category: -1}
	if series > 0 {
		if cat, ok := c.HitTest(x, y, series); ok {
			resp = hitResponse{Hit: true, Series: series, Category: cat, Label: c.Data().Label(cat)}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	state, _ := c.Hover(x, y)
	frame := sink.BuildFrame(c, sink.WithJSONTooltip())
	if state.Active {
		cat := state.Hovered.Category
		resp = hitResponse{
			Hit:      true,
			Series:   state.Hovered.Series,
			Category: cat,
			Label:    c.Data().Label(cat),
			Tooltip:  frame.Tooltip,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// mutate runs fn on the chart under its lock, draws a frame and answers
// with it.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(c *chart.Chart) (bool, error)) {
	sess, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	changed, err := fn(sess.chart)
	var frame sink.Frame
	if err == nil {
		frame = sink.BuildFrame(sess.chart, sink.WithJSONLabels())
	}
	sess.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Changed: changed, Frame: frame})
}

func (s *Server) zoomChart(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(c *chart.Chart) (bool, error) {
		return c.Zoom(viewport.Point{X: req.X, Y: req.Y}, req.Out), nil
	})
}

func (s *Server) panChart(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(c *chart.Chart) (bool, error) {
		return c.Pan(req.DX, req.DY), nil
	})
}

func (s *Server) resetChart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *chart.Chart) (bool, error) {
		return c.ResetZoom(), nil
	})
}

func (s *Server) windowChart(w http.ResponseWriter, r *http.Request) {
	var req viewport.Range
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Valid() || req.Len() <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidOption, "window max %g must exceed min %g", req.Max, req.Min))
		return
	}
	s.mutate(w, r, func(c *chart.Chart) (bool, error) {
		return c.SetVisible(viewport.X, req), nil
	})
}

func (s *Server) toggleSeries(w http.ResponseWriter, r *http.Request) {
	series, err := strconv.Atoi(chi.URLParam(r, "series"))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse series"))
		return
	}
	s.mutate(w, r, func(c *chart.Chart) (bool, error) {
		if _, ok := c.Data().Lookup(series); !ok {
			return false, errors.New(errors.ErrCodeInvalidInput, "chart has no series %d", series)
		}
		c.Toggle(series)
		return true, nil
	})
}

// =============================================================================
// Datasets
// =============================================================================

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": names})
}

func (s *Server) putDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateDatasetName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := dataset.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		format = dataset.Format(f)
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	d, err := dataset.Decode(bytes.NewReader(body), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.Name = name
	if err := s.store.Put(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("dataset stored", "name", name, "categories", d.Len(), "series", d.SeriesCount())
	writeJSON(w, http.StatusCreated, datasetInfo{Name: name, Categories: d.Len(), Series: d.SeriesCount()})
}

func (s *Server) deleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderDataset renders a stored dataset through the full cached
// pipeline without creating a session.
func (s *Server) renderDataset(w http.ResponseWriter, r *http.Request) {
	name, format := chi.URLParam(r, "name"), chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	xmin, err := optionalFloat(q, "x_min")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	xmax, err := optionalFloat(q, "x_max")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := dataset.WriteJSON(&buf, d); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode dataset"))
		return
	}

	opts, err := s.defaults.PipelineOptions()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Data = buf.Bytes()
	opts.Format = dataset.FormatJSON
	opts.Name = name
	opts.Formats = []string{format}
	opts.Title = q.Get("title")
	opts.XMin, opts.XMax = xmin, xmax
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result.Artifacts[format], result.CacheInfo.RenderHit)
}

// =============================================================================
// Query Helpers
// =============================================================================

func queryFloat(q url.Values, key string) (float64, error) {
	if !q.Has(key) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %s is required", key)
	}
	v, err := strconv.ParseFloat(q.Get(key), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", key)
	}
	return v, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	if !q.Has(key) {
		return nil, nil
	}
	v, err := queryFloat(q, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
