package engine

import (
	"sync"
	"time"
)

// CancelableTimer is a one-shot timer that can be rescheduled and canceled.
// The refresh loop and the midnight reset coordinator each own one instance;
// engine shutdown cancels both through a single hook.
type CancelableTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewCancelableTimer creates an unarmed timer
func NewCancelableTimer() *CancelableTimer {
	return &CancelableTimer{}
}

// Schedule arms the timer to run fn after d, replacing any previously armed
// schedule. fn runs on the timer's own goroutine; callers that touch shared
// state must hop back onto the owner loop themselves.
func (t *CancelableTimer) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fn)
}

// Cancel stops any armed schedule. A timer that already fired, or was never
// armed, is left as is.
func (t *CancelableTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
