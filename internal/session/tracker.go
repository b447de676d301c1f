package session

import (
	"context"
	"sync"
	"time"
)

// Tracker is a per-question stopwatch with one-second granularity. It counts
// while running and not paused; Reset zeroes the counter without changing the
// pause state. At most one ticking goroutine exists per tracker.
type Tracker struct {
	mu sync.Mutex

	seconds  int
	paused   bool
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewTracker() *Tracker {
	return &Tracker{interval: time.Second}
}

// Start launches the tick source. Any previously running tick source for this
// tracker is stopped first, so two can never be active concurrently. The
// goroutine exits when ctx is cancelled or Stop is called.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	t.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	interval := t.interval
	t.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.tick()
			}
		}
	}()
}

// Stop cancels the tick source and waits for it to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// stopLocked cancels a running tick source without waiting. Callers hold t.mu.
func (t *Tracker) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
		t.done = nil
	}
}

func (t *Tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		t.seconds++
	}
}

// Pause suspends counting. Ticks received while paused are discarded.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

// Resume re-enables counting.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Reset zeroes the counter. The pause state is left unchanged.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seconds = 0
}

// Elapsed returns the counted seconds.
func (t *Tracker) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds
}

func (t *Tracker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}
