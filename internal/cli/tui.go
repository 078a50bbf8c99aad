package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/viewport"
)

// Explorer styles
var (
	exploreHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	exploreDimStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	exploreErrStyle    = lipgloss.NewStyle().Foreground(colorFail)
	exploreHiddenStyle = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
)

const (
	// frameInterval paces drag-pan frames.
	frameInterval = 16 * time.Millisecond

	// Lines used around the plot: title, blank, legend, tooltip, help.
	exploreHeaderLines = 2
	exploreFooterLines = 3
)

// frameMsg asks the model to run queued pan frames.
type frameMsg struct{}

// reloadMsg carries a dataset re-read after a file change.
type reloadMsg struct {
	data *dataset.Dataset
	err  error
}

type cell struct {
	r     rune
	color string
}

// ExploreModel is the bubbletea model for the interactive chart explorer.
// The chart's canvas is mapped onto the terminal cells below the header.
type ExploreModel struct {
	chart  *chart.Chart
	frames *viewport.ManualFrames
	title  string

	cols, rows int
	grid       [][]cell

	dragging bool
	ticking  bool
	status   string
	err      error
}

// NewExploreModel creates an explorer for c. frames must be the scheduler
// c's viewport was created with.
func NewExploreModel(c *chart.Chart, frames *viewport.ManualFrames, title string) ExploreModel {
	m := ExploreModel{chart: c, frames: frames, title: title, cols: 80, rows: 20}
	m.redraw()
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 10)
		m.rows = max(msg.Height-exploreHeaderLines-exploreFooterLines, 5)
	case tea.KeyMsg:
		if cmd, quit := m.key(msg.String()); quit {
			return m, cmd
		}
	case tea.MouseMsg:
		if cmd := m.mouse(msg); cmd != nil {
			m.redraw()
			return m, cmd
		}
	case frameMsg:
		m.ticking = false
		m.frames.Flush()
	case reloadMsg:
		m.err = msg.err
		if msg.err == nil {
			if _, err := m.chart.SetData(msg.data); err != nil {
				m.err = err
			} else {
				m.status = fmt.Sprintf("reloaded %d categories", msg.data.Len())
			}
		}
	}
	m.redraw()
	return m, nil
}

// key handles a key press. quit is set when the program should stop.
func (m *ExploreModel) key(k string) (tea.Cmd, bool) {
	w, h := m.chart.Engine().Size()
	center := viewport.Point{X: w / 2, Y: h / 2}
	step := w / 10

	switch k {
	case "q", "ctrl+c", "esc":
		return tea.Quit, true
	case "r":
		m.chart.ResetZoom()
	case "+", "=":
		m.chart.Zoom(center, false)
	case "-", "_":
		m.chart.Zoom(center, true)
	case "left", "h":
		m.chart.Pan(step, 0)
	case "right", "l":
		m.chart.Pan(-step, 0)
	case "up", "k":
		m.chart.Pan(0, step)
	case "down", "j":
		m.chart.Pan(0, -step)
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			idx := int(k[0] - '0')
			if _, ok := m.chart.Data().Lookup(idx); ok {
				shown := m.chart.Toggle(idx)
				m.status = fmt.Sprintf("series %d %s", idx, map[bool]string{true: "shown", false: "hidden"}[shown])
			}
		}
	}
	return nil, false
}

// mouse routes a mouse event to the chart. It returns a command when a
// pan frame needs scheduling.
func (m *ExploreModel) mouse(msg tea.MouseMsg) tea.Cmd {
	x, y := m.canvasPoint(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.chart.Wheel(viewport.WheelEvent{X: x, Y: y, DeltaY: -1})
	case msg.Button == tea.MouseButtonWheelDown:
		m.chart.Wheel(viewport.WheelEvent{X: x, Y: y, DeltaY: 1})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonMiddle:
		m.dragging = m.chart.PanStart(viewport.PointerEvent{X: x, Y: y, Button: viewport.ButtonMiddle})
	case msg.Action == tea.MouseActionRelease:
		if m.dragging {
			m.frames.Flush()
			m.chart.PanEnd(viewport.PointerEvent{X: x, Y: y})
			m.dragging = false
		}
	case msg.Action == tea.MouseActionMotion:
		if !m.dragging {
			m.chart.Hover(x, y)
			return nil
		}
		m.chart.PanMove(viewport.PointerEvent{X: x, Y: y})
		if !m.ticking {
			m.ticking = true
			return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
		}
	}
	return nil
}

// canvasPoint maps a terminal cell to the canvas position at its center.
func (m *ExploreModel) canvasPoint(col, row int) (float64, float64) {
	w, h := m.chart.Engine().Size()
	x := (float64(col) + 0.5) * w / float64(m.cols)
	y := (float64(row-exploreHeaderLines) + 0.5) * h / float64(m.rows)
	return x, y
}

// redraw draws a frame of the chart into the cell grid.
func (m *ExploreModel) redraw() {
	if len(m.grid) != m.rows || len(m.grid) > 0 && len(m.grid[0]) != m.cols {
		m.grid = make([][]cell, m.rows)
		for i := range m.grid {
			m.grid[i] = make([]cell, m.cols)
		}
	}
	for _, row := range m.grid {
		for i := range row {
			row[i] = cell{r: ' '}
		}
	}
	w, h := m.chart.Engine().Size()
	m.chart.Draw(&cellPainter{grid: m.grid, sx: float64(m.cols) / w, sy: float64(m.rows) / h})
}

func (m ExploreModel) View() string {
	var b strings.Builder

	x, _ := m.chart.Viewport()
	b.WriteString(exploreHeaderStyle.Render(m.title))
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  x %s .. %s", chart.FormatValue(x.Visible.Min), chart.FormatValue(x.Visible.Max))))
	if x.Zoomed() {
		b.WriteString(exploreDimStyle.Render(" (zoomed)"))
	}
	b.WriteString("\n\n")

	for _, row := range m.grid {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString(m.legendLine())
	b.WriteString("\n")
	b.WriteString(m.tooltipLine())
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("wheel zoom  middle-drag pan  +/- zoom  arrows pan  1-9 toggle  r reset  q quit"))
	return b.String()
}

func (m ExploreModel) legendLine() string {
	var parts []string
	for _, it := range m.chart.Legend() {
		name := fmt.Sprintf("%d %s", it.Series, it.Name)
		if !it.Shown {
			name = exploreHiddenStyle.Render(name)
		}
		if !math.IsNaN(it.Value) {
			name += " " + styleText.Render(chart.FormatValue(it.Value))
		}
		parts = append(parts, swatch(it.Color)+" "+name)
	}
	return strings.Join(parts, "   ")
}

func (m ExploreModel) tooltipLine() string {
	if m.err != nil {
		return exploreErrStyle.Render(m.err.Error())
	}
	tip := m.chart.Tooltip(0, 0)
	if !tip.Active {
		return exploreDimStyle.Render(m.status)
	}
	parts := []string{styleHeading.Render(tip.Label)}
	for _, it := range tip.Items {
		parts = append(parts, fmt.Sprintf("%s %s", it.Name, styleNumber.Render(chart.FormatValue(it.Value))))
	}
	return strings.Join(parts, "  ")
}

// renderRow styles runs of same-colored cells together.
func renderRow(row []cell) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].color == row[start].color {
			continue
		}
		var run strings.Builder
		for _, c := range row[start:i] {
			run.WriteRune(c.r)
		}
		if row[start].color == "" {
			b.WriteString(run.String())
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[start].color)).Render(run.String()))
		}
		start = i
	}
	return b.String()
}

// cellPainter rasterizes chart shapes onto terminal cells.
type cellPainter struct {
	grid   [][]cell
	sx, sy float64
}

func (p *cellPainter) Bar(s chart.Shape) {
	x0, x1 := p.span(s.X, s.W, p.sx, len(p.grid[0]))
	y0, y1 := p.span(s.Y, s.H, p.sy, len(p.grid))
	r := barRune
	if s.Hovered {
		r = '▓'
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p.grid[y][x] = cell{r: r, color: s.Fill}
		}
	}
}

func (p *cellPainter) Label(l chart.Label) {
	row := int(l.Y*p.sy) - 1
	if row < 0 || row >= len(p.grid) {
		return
	}
	text := []rune(l.Text)
	col := int(l.X*p.sx) - len(text)/2
	for i, r := range text {
		if c := col + i; c >= 0 && c < len(p.grid[row]) {
			p.grid[row][c] = cell{r: r, color: l.Color}
		}
	}
}

// span converts a pixel interval to a cell range, at least one cell wide.
func (p *cellPainter) span(pos, size, scale float64, limit int) (int, int) {
	a := int(math.Floor(pos * scale))
	b := int(math.Ceil((pos + size) * scale))
	if b <= a {
		b = a + 1
	}
	return max(a, 0), min(b, limit)
}
