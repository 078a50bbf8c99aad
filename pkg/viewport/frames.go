package viewport

import "time"

// Frames schedules work for the next animation frame. The returned cancel
// func drops the work if it has not run yet.
type Frames interface {
	Request(fn func()) (cancel func())
}

// ManualFrames queues requested work until [ManualFrames.Flush] is
// called, typically from a render tick.
type ManualFrames struct {
	next  int
	queue map[int]func()
	order []int
}

// Request implements [Frames].
func (m *ManualFrames) Request(fn func()) func() {
	if m.queue == nil {
		m.queue = make(map[int]func())
	}
	id := m.next
	m.next++
	m.queue[id] = fn
	m.order = append(m.order, id)
	return func() { delete(m.queue, id) }
}

// Pending returns the number of queued, uncancelled requests.
func (m *ManualFrames) Pending() int { return len(m.queue) }

// Flush runs every queued request in order. Requests made while flushing
// wait for the next Flush.
func (m *ManualFrames) Flush() int {
	order := m.order
	m.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := m.queue[id]
		if !ok {
			continue
		}
		delete(m.queue, id)
		fn()
		ran++
	}
	return ran
}

// Immediate runs requested work synchronously. It suits callers where
// every event is already its own frame, such as one HTTP request per pan
// step.
type Immediate struct{}

// Request implements [Frames].
func (Immediate) Request(fn func()) func() {
	fn()
	return func() {}
}

// Throttle admits at most one event per interval.
type Throttle struct {
	interval time.Duration
	clock    func() time.Time
	last     time.Time
}

// NewThrottle returns a throttle using clock, or time.Now when nil.
func NewThrottle(interval time.Duration, clock func() time.Time) *Throttle {
	if clock == nil {
		clock = time.Now
	}
	return &Throttle{interval: interval, clock: clock}
}

// Allow reports whether an event arriving now may pass, and if so starts
// a new interval.
func (t *Throttle) Allow() bool {
	now := t.clock()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
