package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/moocn/pkg/observability"
)

// spinnerFrames rise and fall like a bar being redrawn.
var spinnerFrames = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█", "▇", "▆", "▅", "▄", "▃", "▂"}

const spinnerInterval = 80 * time.Millisecond

// spinner shows the current pipeline stage on one terminal line. It
// implements [observability.PipelineHooks] so the line follows the load,
// frame and render events of a run.
type spinner struct {
	w      io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stage   string
	width   int
	started bool
	stopped chan struct{}
	once    sync.Once
}

// newSpinner creates a spinner writing to w. It stops drawing when ctx is
// done.
func newSpinner(ctx context.Context, w io.Writer, stage string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		ctx:     ctx,
		cancel:  cancel,
		stage:   stage,
		stopped: make(chan struct{}),
	}
}

// start draws the first frame and animates until stop.
func (s *spinner) start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.width = max(s.width, utf8.RuneCountInString(s.stage)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleSpinner.Render(frame), styleMuted.Render(s.stage))
}

// setStage replaces the stage text shown next to the frame.
func (s *spinner) setStage(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = fmt.Sprintf(format, args...)
}

// currentStage returns the stage text.
func (s *spinner) currentStage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// stop ends the animation and clears the line. Further calls do nothing.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if !started {
			return
		}
		<-s.stopped
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.mu.Unlock()
	})
}

// fail stops the spinner and reports which stage failed.
func (s *spinner) fail(err error) {
	s.stop()
	fmt.Fprintln(s.w, statusLine(statusFail, fmt.Sprintf("%s failed: %v", s.currentStage(), err)))
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

func (s *spinner) OnLoadStart(_ context.Context, source string) {
	s.setStage("Loading %s", filepath.Base(source))
}

func (s *spinner) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {}

func (s *spinner) OnFrameStart(_ context.Context, mode string, categories int) {
	s.setStage("Drawing %s frame (%d categories)", mode, categories)
}

func (s *spinner) OnFrameComplete(context.Context, string, int, time.Duration, error) {}

func (s *spinner) OnRenderStart(_ context.Context, formats []string) {
	s.setStage("Rendering %s", strings.Join(formats, ", "))
}

func (s *spinner) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// followPipeline registers s as the pipeline hooks until the returned
// func restores the previous ones.
func followPipeline(s *spinner) (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(s)
	return func() { observability.SetPipelineHooks(prev) }
}
