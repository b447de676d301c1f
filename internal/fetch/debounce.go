package fetch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid-fire triggers over a quiet window: the callback
// runs once the window elapses with no further trigger. A burst of question
// bank writes collapses into one cache invalidation this way.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	closed bool
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn after the quiet window, replacing any callback still
// pending. Only the last fn passed before the window elapses runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending callback. The debouncer accepts no further
// triggers; owners call this on teardown so no callback fires into discarded
// state.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
