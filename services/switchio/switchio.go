// Package switchio implements the switch/outlet/water-valve auto-off
// timer (spec.md §4.4): a straight toggle plus, when a max-duration is
// configured, a 1Hz countdown that dispatches the off-setter at 0. The
// remaining-seconds count lives only inside the running timer; it is not
// stored in or published through any characteristic.
package switchio

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
)

// autoOffIdx is the NumI slot every builder in config/builders_binary.go
// stashes the configured auto-off duration (seconds) in: simpleOnOffBuilder
// and valveBuilder both write it to NumI[0].
const autoOffIdx = 0

// OffSetter writes the characteristic that turns a switch/outlet/valve
// off; it is svc's own "On"/"Active" setter re-entered internally, not a
// new code path (spec.md §4.4 "dispatches the off-setter").
type OffSetter func(svc *model.Service)

// ArmAutoOff starts a 1Hz remaining-seconds countdown if svc was
// configured with a nonzero auto-off duration, calling off once it
// reaches zero. Re-arming (e.g. a fresh "on" write) stops and replaces
// any countdown already running for svc (tracked in activeTimers).
func ArmAutoOff(ctx context.Context, svc *model.Service, off OffSetter) {
	seconds := int(svc.NumI[autoOffIdx])
	if seconds <= 0 {
		return
	}
	remaining := seconds
	t := timer.New(time.Second, true, func() {
		remaining--
		if remaining <= 0 {
			CancelAutoOff(svc)
			off(svc)
		}
	})
	go t.Run(ctx)
	setActiveTimer(svc, t)
}

// activeTimers tracks the live SoftTimer per service so a second arm (or
// a manual off) can cancel the first instead of letting it race.
var activeTimers = map[int]*timer.SoftTimer{}

func setActiveTimer(svc *model.Service, t *timer.SoftTimer) {
	if old, ok := activeTimers[svc.Index]; ok {
		old.Stop()
	}
	activeTimers[svc.Index] = t
}

// CancelAutoOff stops any in-flight countdown for svc, e.g. when the
// switch is turned off manually before the timer elapses.
func CancelAutoOff(svc *model.Service) {
	if t, ok := activeTimers[svc.Index]; ok {
		t.Stop()
		delete(activeTimers, svc.Index)
	}
}

// OnChanged should be called from the "On"/"Active" characteristic's
// setter hook: arms the auto-off countdown when turned on, cancels it
// when turned off.
func OnChanged(ctx context.Context, svc *model.Service, on bool, off OffSetter) {
	if on {
		ArmAutoOff(ctx, svc, off)
	} else {
		CancelAutoOff(svc)
	}
}
