package check

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxRequests = 60
	DefaultWindow      = time.Minute
)

// Window caps the number of lookups issued per fixed time window.
// When the cap is reached callers sleep until the window ends; the counter is
// then reset and they proceed.
type Window struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	count       int
	start       time.Time
	now         func() time.Time
}

// NewWindow returns a limiter allowing maxRequests per window.
// Non-positive values fall back to 60 per minute.
func NewWindow(maxRequests int, window time.Duration) *Window {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Window{
		maxRequests: maxRequests,
		window:      window,
		start:       time.Now(),
		now:         time.Now,
	}
}

// Wait blocks until a request may be issued and counts it
func (w *Window) Wait(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := w.now()
		if now.Sub(w.start) >= w.window {
			w.count = 0
			w.start = now
		}
		if w.count < w.maxRequests {
			w.count++
			w.mu.Unlock()
			return nil
		}
		wait := w.start.Add(w.window).Sub(now)
		count := w.count
		w.mu.Unlock()

		log.Debug().
			Int("requests_in_window", count).
			Int("max_requests", w.maxRequests).
			Dur("wait", wait).
			Msg("Request window exhausted, waiting for reset")

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Stats returns the request count and start of the current window
func (w *Window) Stats() (count int, start time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count, w.start
}

// Reset starts a fresh window now
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.count = 0
	w.start = w.now()
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
