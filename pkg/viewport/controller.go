package viewport

import (
	"math"
	"strings"
	"time"

	"github.com/matzehuels/moocn/pkg/errors"
)

const (
	// DefaultFactor shrinks the visible range to 75% per zoom-in step.
	DefaultFactor = 0.75
	// DefaultWheelInterval is the minimum time between handled wheel
	// events, about one frame at 60 Hz.
	DefaultWheelInterval = 16 * time.Millisecond
)

// Pointer buttons as numbered by browsers.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// Axes selects which axes the controller zooms and pans.
type Axes int

const (
	XOnly Axes = iota
	XY
)

// Policy decides how the full range follows data updates.
type Policy int

const (
	// GrowOnly widens the full range to cover new data and never narrows
	// it.
	GrowOnly Policy = iota
	// Track replaces the full range with the data extent, narrowing it
	// when the dataset shrinks.
	Track
)

func (a Axes) String() string {
	if a == XY {
		return "xy"
	}
	return "x"
}

// ParseAxes parses "x" or "xy".
func ParseAxes(s string) (Axes, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "":
		return XOnly, nil
	case "xy":
		return XY, nil
	}
	return XOnly, errors.New(errors.ErrCodeInvalidOption, "unknown zoom axes %q (want x or xy)", s)
}

func (p Policy) String() string {
	if p == Track {
		return "track"
	}
	return "grow-only"
}

// ParsePolicy parses "grow-only" or "track".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grow-only", "grow", "":
		return GrowOnly, nil
	case "track":
		return Track, nil
	}
	return GrowOnly, errors.New(errors.ErrCodeInvalidOption, "unknown bounds policy %q (want grow-only or track)", s)
}

// Scales receives visible ranges as they change.
type Scales interface {
	SetScale(axis AxisKey, r Range)
}

// ScalesFunc adapts a function to [Scales].
type ScalesFunc func(axis AxisKey, r Range)

// SetScale implements [Scales].
func (f ScalesFunc) SetScale(axis AxisKey, r Range) { f(axis, r) }

// PointerEvent is a pointer button or move event.
type PointerEvent struct {
	X, Y   float64
	Button int
}

// WheelEvent is a scroll event. Positive DeltaY scrolls down, which zooms
// out.
type WheelEvent struct {
	X, Y   float64
	DeltaY float64
}

// Option configures a [Controller].
type Option func(*Controller)

// WithFactor sets the zoom-in factor. Values outside (0,1) are ignored.
func WithFactor(f float64) Option {
	return func(c *Controller) {
		if f > 0 && f < 1 {
			c.factor = f
		}
	}
}

// WithAxes selects the controlled axes.
func WithAxes(a Axes) Option { return func(c *Controller) { c.axes = a } }

// WithPolicy sets the data update policy.
func WithPolicy(p Policy) Option { return func(c *Controller) { c.policy = p } }

// WithPanButton sets the button that starts a drag pan.
func WithPanButton(b int) Option { return func(c *Controller) { c.button = b } }

// WithScales sets the sink for visible range changes.
func WithScales(s Scales) Option { return func(c *Controller) { c.scales = s } }

// WithFrames sets the frame scheduler used to coalesce pan moves.
func WithFrames(f Frames) Option { return func(c *Controller) { c.frames = f } }

// WithWheelInterval sets the wheel throttle interval.
func WithWheelInterval(d time.Duration) Option {
	return func(c *Controller) { c.wheelInterval = d }
}

// WithClock replaces time.Now for the wheel throttle.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// Controller is the zoom/pan state machine of one chart.
type Controller struct {
	factor        float64
	axes          Axes
	policy        Policy
	button        int
	scales        Scales
	frames        Frames
	wheelInterval time.Duration
	clock         func() time.Time
	wheel         *Throttle

	x, y  Axis
	ready bool

	panning    bool
	panBox     Box
	last, next Point
	pending    bool
	cancel     func()
}

// New returns a controller that waits for [Controller.Init].
func New(opts ...Option) *Controller {
	c := &Controller{
		factor:        DefaultFactor,
		button:        ButtonMiddle,
		wheelInterval: DefaultWheelInterval,
		frames:        Immediate{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wheel = NewThrottle(c.wheelInterval, c.clock)
	return c
}

// Init snapshots the full ranges from the first data-driven scales and
// shows everything. Invalid ranges leave the controller uninitialized.
func (c *Controller) Init(x, y Range) bool {
	if !x.Valid() || !y.Valid() {
		return false
	}
	c.x = Axis{Visible: x, Full: x}
	c.y = Axis{Visible: y, Full: y}
	c.ready = true
	return true
}

// Ready reports whether Init has succeeded.
func (c *Controller) Ready() bool { return c.ready }

// X returns the x axis state.
func (c *Controller) X() Axis { return c.x }

// Y returns the y axis state.
func (c *Controller) Y() Axis { return c.y }

// Factor returns the zoom-in factor.
func (c *Controller) Factor() float64 { return c.factor }

// Panning reports whether a drag pan is in progress.
func (c *Controller) Panning() bool { return c.panning }

// Pending reports whether a pan frame is waiting to run.
func (c *Controller) Pending() bool { return c.pending }

// Zoom zooms in, or out when out is set, keeping the value under the
// cursor in place. It reports whether the viewport changed. Cursors outside
// the plot are ignored.
func (c *Controller) Zoom(p Point, box Box, out bool) bool {
	if !c.ready {
		return false
	}
	leftPct, btmPct, ok := box.local(p)
	if !ok {
		return false
	}
	f := c.factor
	if out {
		f = 1 / f
	}

	changed := false
	xVal := c.x.Visible.Min + leftPct*c.x.Visible.Len()
	if finite(xVal) {
		changed = c.set(X, ZoomAt(c.x.Visible, c.x.Full, xVal, leftPct, f))
	}
	if c.axes == XY {
		yVal := c.y.Visible.Min + btmPct*c.y.Visible.Len()
		if finite(yVal) {
			changed = c.set(Y, ZoomAt(c.y.Visible, c.y.Full, yVal, btmPct, f)) || changed
		}
	}
	return changed
}

// Wheel handles a scroll event, dropping it when it arrives within the
// throttle interval of the last handled one.
func (c *Controller) Wheel(e WheelEvent, box Box) bool {
	if !c.ready || e.DeltaY == 0 || math.IsNaN(e.DeltaY) {
		return false
	}
	if _, _, ok := box.local(Point{e.X, e.Y}); !ok {
		return false
	}
	if !c.wheel.Allow() {
		return false
	}
	return c.Zoom(Point{e.X, e.Y}, box, e.DeltaY > 0)
}

// PanStart begins a drag pan when the pan button is pressed inside the
// plot.
func (c *Controller) PanStart(e PointerEvent, box Box) bool {
	if !c.ready || e.Button != c.button {
		return false
	}
	if _, _, ok := box.local(Point{e.X, e.Y}); !ok {
		return false
	}
	c.panning = true
	c.panBox = box
	c.last = Point{e.X, e.Y}
	c.next = c.last
	return true
}

// PanMove records the latest pointer position and makes sure one frame is
// pending to apply it.
func (c *Controller) PanMove(e PointerEvent) bool {
	if !c.panning {
		return false
	}
	c.next = Point{e.X, e.Y}
	if !c.pending {
		c.pending = true
		cancel := c.frames.Request(c.applyPan)
		if c.pending {
			c.cancel = cancel
		}
	}
	return true
}

// PanEnd stops the drag and drops a pending frame that has not run.
func (c *Controller) PanEnd(PointerEvent) bool {
	if !c.panning {
		return false
	}
	c.panning = false
	if c.pending {
		c.cancel()
		c.pending = false
		c.cancel = nil
	}
	return true
}

func (c *Controller) applyPan() {
	c.pending = false
	c.cancel = nil
	if !c.panning {
		return
	}
	dxPx := c.next.X - c.last.X
	dyPx := c.next.Y - c.last.Y
	c.last = c.next

	xUnitsPerPx := c.x.Visible.Len() / c.panBox.W
	c.set(X, PanBy(c.x.Visible, c.x.Full, xUnitsPerPx*dxPx))

	if c.axes == XY {
		// screen y grows downwards
		yUnitsPerPx := -c.y.Visible.Len() / c.panBox.H
		c.set(Y, PanBy(c.y.Visible, c.y.Full, yUnitsPerPx*dyPx))
	}
}

// Pan applies a pixel drag immediately, without the pointer state
// machine.
func (c *Controller) Pan(dxPx, dyPx float64, box Box) bool {
	if !c.ready || box.W <= 0 || box.H <= 0 || !finite(dxPx) || !finite(dyPx) {
		return false
	}
	changed := c.set(X, PanBy(c.x.Visible, c.x.Full, c.x.Visible.Len()/box.W*dxPx))
	if c.axes == XY {
		changed = c.set(Y, PanBy(c.y.Visible, c.y.Full, -c.y.Visible.Len()/box.H*dyPx)) || changed
	}
	return changed
}

// SetVisible clamps r into the full range of axis and shows it.
func (c *Controller) SetVisible(axis AxisKey, r Range) bool {
	if !c.ready || !r.Valid() {
		return false
	}
	full := c.x.Full
	if axis == Y {
		full = c.y.Full
	}
	return c.set(axis, Clamp(r, full))
}

// Reset shows the full ranges again.
func (c *Controller) Reset() bool {
	if !c.ready {
		return false
	}
	changed := c.set(X, c.x.Full)
	return c.set(Y, c.y.Full) || changed
}

// UpdateData adjusts the full ranges to a new data extent according to the
// policy. An axis showing everything keeps showing everything; a zoomed
// axis keeps its window, clamped into the new bounds.
func (c *Controller) UpdateData(x, y Range) bool {
	if !c.ready {
		return c.Init(x, y)
	}
	changed := false
	if x.Valid() {
		changed = c.update(X, &c.x, x)
	}
	if y.Valid() {
		changed = c.update(Y, &c.y, y) || changed
	}
	return changed
}

func (c *Controller) update(key AxisKey, a *Axis, data Range) bool {
	full := data
	if c.policy == GrowOnly {
		full = a.Full.Union(data)
	}
	if full == a.Full {
		return false
	}
	zoomed := a.Zoomed()
	a.Full = full
	if !zoomed {
		c.set(key, full)
		return true
	}
	c.set(key, Clamp(a.Visible, full))
	return true
}

func (c *Controller) set(key AxisKey, r Range) bool {
	a := &c.x
	if key == Y {
		a = &c.y
	}
	if a.Visible == r {
		return false
	}
	a.Visible = r
	if c.scales != nil && (key == X || c.axes == XY) {
		c.scales.SetScale(key, r)
	}
	return true
}
