package bidding

import (
	"sync"
	"time"
)

// CountdownTimer schedules a one-shot callback after a fixed delay. Start
// cancels any pending firing before rescheduling, so the callback runs at
// most once per Start. A firing that loses the race with Stop may still run;
// callers must treat a late firing as a harmless re-read of current state.
type CountdownTimer struct {
	delay    time.Duration
	callback func()

	mu    sync.Mutex
	timer *time.Timer
}

func NewCountdownTimer(delay time.Duration, callback func()) *CountdownTimer {
	return &CountdownTimer{
		delay:    delay,
		callback: callback,
	}
}

func (t *CountdownTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, t.fire)
}

// Stop cancels any pending firing. Idempotent, safe when not running.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *CountdownTimer) fire() {
	// The callback reports its own failures; a panic here must not take
	// down the timer goroutine.
	defer func() {
		recover()
	}()
	t.callback()
}
