// Package lock implements the lock-mechanism auto-relock timer, the same
// straight-toggle-plus-max-duration shape as switchio (spec.md §4.4)
// but over LockTargetState/LockCurrentState instead of On/Active.
package lock

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
)

const autoLockIdx = 0 // config/builders_binary.go lockBuilder: NumI[0]

const (
	Unsecured uint8 = 0
	Secured   uint8 = 1
)

// RelockFunc sets LockTargetState (and, once the physical mechanism
// confirms, LockCurrentState) back to Secured.
type RelockFunc func(svc *model.Service)

var activeTimers = map[int]*timer.SoftTimer{}

// ArmAutoRelock starts a countdown to Secured if svc has a nonzero
// auto_lock_sec configured; called from LockTargetState's setter when
// the new value is Unsecured.
func ArmAutoRelock(ctx context.Context, svc *model.Service, relock RelockFunc) {
	seconds := int(svc.NumI[autoLockIdx])
	if seconds <= 0 {
		return
	}
	t := timer.New(time.Duration(seconds)*time.Second, false, func() {
		delete(activeTimers, svc.Index)
		relock(svc)
	})
	if old, ok := activeTimers[svc.Index]; ok {
		old.Stop()
	}
	activeTimers[svc.Index] = t
	go t.Run(ctx)
}

// CancelAutoRelock stops a pending countdown, e.g. when the lock was
// secured manually before the timer elapsed.
func CancelAutoRelock(svc *model.Service) {
	if t, ok := activeTimers[svc.Index]; ok {
		t.Stop()
		delete(activeTimers, svc.Index)
	}
}

// OnTargetChanged should be called from LockTargetState's setter hook.
func OnTargetChanged(ctx context.Context, svc *model.Service, target uint8, relock RelockFunc) {
	if target == Unsecured {
		ArmAutoRelock(ctx, svc, relock)
	} else {
		CancelAutoRelock(svc)
	}
}
