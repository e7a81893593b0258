// Package action implements the action dispatch engine (spec.md §4.1):
// the 7-step per-action-id effect application, the service-manager
// sub-table dialect, and wildcard dispatch.
package action

import (
	"context"
	"time"
)

// Task is one enqueued side effect: a network send, IR/RF transmit, or
// UART write. Run performs the (potentially slow, blocking) work; the
// pool calls it from its own goroutine, never from Dispatch's caller.
type Task struct {
	Run func(ctx context.Context)
}

// Pool is the bounded worker queue step 7 enqueues onto, modeled
// directly on the teacher's measureWorker Submit/run-loop shape
// (services/hal/worker.go) but simplified for fire-and-forget tasks
// instead of a two-phase trigger/collect protocol: one goroutine drains
// a bounded channel, spacing consecutive task starts by Stagger so a
// burst of actions doesn't saturate a single network/IR/UART resource
// at once (spec.md §4.1 step 7 "tasks start spaced by one tick").
//
// The OOM policy (spec.md §7) is drop-oldest: Submit never blocks the
// caller; if the queue is full, the oldest pending task is evicted to
// make room, rather than dropping the newest (which would silently
// swallow just-requested user-facing actions).
type Pool struct {
	Stagger time.Duration

	q chan Task
}

// NewPool creates a pool with the given queue depth and inter-task stagger.
func NewPool(queueDepth int, stagger time.Duration) *Pool {
	if queueDepth <= 0 {
		queueDepth = 16
	}
	return &Pool{
		Stagger: stagger,
		q:       make(chan Task, queueDepth),
	}
}

// Submit enqueues t, evicting the oldest queued task if full.
func (p *Pool) Submit(t Task) {
	select {
	case p.q <- t:
		return
	default:
	}
	// Queue full: drop the oldest one task and retry once.
	select {
	case <-p.q:
	default:
	}
	select {
	case p.q <- t:
	default:
		// Lost a race with another Submit; the task is simply dropped,
		// consistent with the fire-and-forget OOM policy.
	}
}

// Run drains the queue until ctx is done, staggering consecutive task
// starts by Stagger.
func (p *Pool) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-p.q:
			t.Run(ctx)
			if p.Stagger > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.Stagger):
				}
			}
		}
	}
}
