// Package security implements the security-system's recurrent-alarm
// chime (spec.md §4.5): a timer oscillates SecuritySystemCurrentState
// between ALARM_TRIGGERED and the target state while triggered, driving
// UI chimes, and applies the small accepted-value dialect from the
// service-manager sub-table (spec.md §4.1).
package security

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
)

// HomeKit SecuritySystem state values.
const (
	StateStayArm  uint8 = 0
	StateAwayArm  uint8 = 1
	StateNightArm uint8 = 2
	StateDisarmed uint8 = 3
	StateTriggered uint8 = 4
)

const currentIdx = 0
const targetIdx = 1
const periodIdx = 0 // NumF[0]: recurrent alarm period seconds

var activeTimers = map[int]*timer.SoftTimer{}

// SetTarget applies an externally-accepted target state (spec.md §4.1
// servMgrSecurity dialect is the entry point used by the dispatch
// engine; this is the characteristic-setter counterpart driven by a
// direct RPC write of SecuritySystemTargetState). If the new target is
// Triggered, the recurrent-alarm timer is armed; otherwise it is
// cancelled and current tracks target directly.
func SetTarget(ctx context.Context, svc *model.Service, target uint8) {
	svc.Chars[targetIdx].Value = target
	if target == StateTriggered {
		arm(ctx, svc)
		return
	}
	cancel(svc)
	svc.Chars[currentIdx].Set(target)
}

func arm(ctx context.Context, svc *model.Service) {
	period := svc.NumF[periodIdx]
	if period <= 0 {
		period = 1
	}
	toggled := false
	t := timer.New(time.Duration(period*float64(time.Second)), true, func() {
		target := uint8(svc.Chars[targetIdx].Int())
		if toggled {
			svc.Chars[currentIdx].Set(target)
		} else {
			svc.Chars[currentIdx].Set(StateTriggered)
		}
		toggled = !toggled
	})
	if old, ok := activeTimers[svc.Index]; ok {
		old.Stop()
	}
	activeTimers[svc.Index] = t
	go t.Run(ctx)
}

func cancel(svc *model.Service) {
	if t, ok := activeTimers[svc.Index]; ok {
		t.Stop()
		delete(activeTimers, svc.Index)
	}
}
