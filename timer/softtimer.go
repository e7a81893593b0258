// Package timer provides the cooperative soft-timer abstraction used by
// every state machine in the accessory runtime (auto-off counters,
// thermostat debounce, garage-door position ticks, window-cover rearm,
// save-debounce, setup-toggle debounce, security recurrent alarm). It
// generalizes the teacher's services/hal resetTimer/drainTimer pair
// (services/hal/timerutil.go) into a single reusable type instead of one
// duplicated stop/drain/reset call site per state machine.
package timer

import (
	"context"
	"sync"
	"time"
)

// Callback is invoked on the owning goroutine when a SoftTimer fires.
// Spec.md §4.8 requires that Stop be safe to call from inside the
// callback; SoftTimer guarantees this by never calling Callback while
// holding its own mutex.
type Callback func()

// SoftTimer is a one-shot or periodic cooperative timer (spec.md §4.8,
// kind 1). It must be driven by calling Run in its own goroutine (or via
// a shared scheduler loop using C()); Stop cancels future firings and is
// safe to call from the callback itself or from any other goroutine.
type SoftTimer struct {
	mu        sync.Mutex
	t         *time.Timer
	period    time.Duration
	recurrent bool
	cb        Callback
	stopped   bool
}

// New creates a timer armed for period, firing cb once (recurrent=false)
// or every period (recurrent=true). The caller must call Run to start
// delivering callbacks, or use C()/Reset() directly in a select loop.
func New(period time.Duration, recurrent bool, cb Callback) *SoftTimer {
	return &SoftTimer{
		t:         time.NewTimer(period),
		period:    period,
		recurrent: recurrent,
		cb:        cb,
	}
}

// Run drives the timer on the calling goroutine until ctx is cancelled or
// Stop is called. Non-recurrent timers auto-delete (return) after firing
// once.
func (s *SoftTimer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.t.C:
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return
			}
			if s.cb != nil {
				s.cb()
			}
			if !s.recurrent {
				return
			}
			s.mu.Lock()
			if !s.stopped {
				s.t.Reset(s.period)
			}
			s.mu.Unlock()
		}
	}
}

// Stop cancels all future firings. A stop from outside the firing
// callback always prevents further invocation (spec.md §4.8 cancellation
// semantics); the pending channel value, if any, is drained.
func (s *SoftTimer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if !s.t.Stop() {
		drain(s.t)
	}
}

// Reset rearms the timer for a new period, un-stopping it if needed.
// Restarting a timer semantically cancels any pending transition it was
// guarding (spec.md §5).
func (s *SoftTimer) Reset(period time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = period
	s.stopped = false
	if !s.t.Stop() {
		drain(s.t)
	}
	s.t.Reset(period)
}

func drain(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
