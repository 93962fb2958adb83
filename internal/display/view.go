// Package display holds the currently visible caption and clears it
// after a period of inactivity.
package display

import (
	"sync"
	"time"

	"live-caption-service/internal/observability/metrics"
)

// DefaultClearAfter is the inactivity window after which a caption is
// removed from display.
const DefaultClearAfter = 10 * time.Second

// View is the displayable caption surface. Every update re-arms an
// inactivity timer; when no update arrives within the window the
// caption is cleared so stale text never lingers on screen.
type View struct {
	metrics    *metrics.Metrics
	clearAfter time.Duration
	onChange   func(caption string)

	mu      sync.Mutex
	current string
	timer   *time.Timer
	stopped bool
}

// NewView creates a caption view. A non-positive clearAfter selects
// DefaultClearAfter. onChange, if non-nil, is invoked with the new
// caption on every change including clears.
func NewView(clearAfter time.Duration, m *metrics.Metrics, onChange func(caption string)) *View {
	if clearAfter <= 0 {
		clearAfter = DefaultClearAfter
	}
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &View{
		metrics:    m,
		clearAfter: clearAfter,
		onChange:   onChange,
	}
}

// Set replaces the visible caption and re-arms the inactivity timer.
func (v *View) Set(caption string) {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.current = caption
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.clearAfter, v.expire)
	onChange := v.onChange
	v.mu.Unlock()

	if onChange != nil {
		onChange(caption)
	}
}

// Clear removes the visible caption immediately.
func (v *View) Clear() {
	v.clear(false)
}

// Current returns the caption currently on display.
func (v *View) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Stop disarms the inactivity timer. Further updates are ignored.
func (v *View) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *View) expire() {
	v.clear(true)
}

func (v *View) clear(expired bool) {
	v.mu.Lock()
	if v.stopped || v.current == "" {
		v.mu.Unlock()
		return
	}
	v.current = ""
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	onChange := v.onChange
	v.mu.Unlock()

	if expired {
		v.metrics.RecordCaptionCleared()
	}
	if onChange != nil {
		onChange("")
	}
}
