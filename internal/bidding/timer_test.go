package bidding

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTimer_FiresAfterDelay(t *testing.T) {
	var fired atomic.Int32
	timer := NewCountdownTimer(20*time.Millisecond, func() {
		fired.Add(1)
	})

	timer.Start()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load())
}

func TestCountdownTimer_RestartCancelsPending(t *testing.T) {
	var fired atomic.Int32
	timer := NewCountdownTimer(50*time.Millisecond, func() {
		fired.Add(1)
	})

	timer.Start()
	time.Sleep(30 * time.Millisecond)
	timer.Start() // restart before the first deadline
	time.Sleep(30 * time.Millisecond)

	// The original firing was cancelled; the restarted one is still pending.
	assert.Equal(t, int32(0), fired.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCountdownTimer_StopPreventsFiring(t *testing.T) {
	var fired atomic.Int32
	timer := NewCountdownTimer(30*time.Millisecond, func() {
		fired.Add(1)
	})

	timer.Start()
	timer.Stop()
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
}

func TestCountdownTimer_StopIdempotent(t *testing.T) {
	timer := NewCountdownTimer(10*time.Millisecond, func() {})

	// Safe when never started, and repeatedly
	timer.Stop()
	timer.Start()
	timer.Stop()
	timer.Stop()
}

func TestCountdownTimer_CallbackPanicSwallowed(t *testing.T) {
	var after atomic.Bool
	timer := NewCountdownTimer(10*time.Millisecond, func() {
		panic("callback blew up")
	})

	timer.Start()
	time.Sleep(50 * time.Millisecond)

	// If the panic escaped the timer goroutine the test binary would have
	// crashed before reaching this point.
	after.Store(true)
	assert.True(t, after.Load())
}
