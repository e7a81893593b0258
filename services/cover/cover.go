// Package cover implements the window-cover motor timeline (spec.md
// §4.4): the non-linear homekit<->motor position mapping, margin-sync
// extension at the travel extremes, a debounced stop rearm, and the
// virtual-stop mode for momentary buttons.
package cover

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
	"haa/x/mathx"
)

// HomeKit PositionState values.
const (
	Decreasing uint8 = 0
	Increasing uint8 = 1
	Stopped    uint8 = 2
)

const (
	targetIdx = 0
	currentIdx = 1
	stateIdx  = 2
)

const (
	correctionIdx = 0 // NumF[0]: k = correction/5000
	workingIdx    = 1 // NumF[1]: working_time_sec
	marginIdx     = 2 // NumF[2]: margin_sec
	preciseIdx    = 3 // NumF[3]: precise current position
)

const tickPeriod = 100 * time.Millisecond

// motorOf maps a homekit position [0,100] to motor-space using the
// non-linear correction from spec.md §4.4: motor = hk*(1+k*100)/(1+k*hk).
func motorOf(k, hk float64) float64 {
	if k == 0 {
		return hk
	}
	return hk * (1 + k*100) / (1 + k*hk)
}

// hkOf is the algebraic inverse of motorOf, used to drive the ticker in
// motor-space (where travel time is linear) while still publishing
// homekit coordinates.
func hkOf(k, motor float64) float64 {
	if k == 0 {
		return motor
	}
	denom := 1 + 100*k - motor*k
	if denom == 0 {
		return motor
	}
	return motor / denom
}

type runState struct {
	timer *timer.SoftTimer
}

var running = map[int]*runState{}
var lastStop = map[int]time.Time{}

// StopRearmWindow debounces rapid repeated stop requests (spec.md
// §4.4 "Stop requests are debounced by a rearm timer").
const StopRearmWindow = time.Second

// Fire dispatches an action id.
type Fire func(actionID int)

// SetTarget handles a write to TargetPosition: computes the motor-space
// travel time (extended by margin_sec if the target is an extreme) and
// starts the ticker.
func SetTarget(ctx context.Context, svc *model.Service, target uint8, fire Fire) {
	svc.Chars[targetIdx].Value = target
	stopMotion(svc)

	k := svc.NumF[correctionIdx]
	working := svc.NumF[workingIdx]
	if working <= 0 {
		working = 15
	}
	margin := svc.NumF[marginIdx]

	cur := svc.NumF[preciseIdx]
	motorCur := motorOf(k, cur)
	motorTarget := motorOf(k, float64(target))

	dist := motorTarget - motorCur
	if dist == 0 {
		return
	}
	totalTime := time.Duration(working*1000) * time.Millisecond * time.Duration(abs(dist)) / 100
	if target == 0 || target == 100 {
		totalTime += time.Duration(margin*1000) * time.Millisecond
	}

	if dist > 0 {
		svc.Chars[stateIdx].Set(Increasing)
	} else {
		svc.Chars[stateIdx].Set(Decreasing)
	}
	OnMotionStart(svc)

	startTicker(ctx, svc, k, motorCur, motorTarget, totalTime, fire)
}

func startTicker(ctx context.Context, svc *model.Service, k, motorStart, motorTarget float64, total time.Duration, fire Fire) {
	if total <= 0 {
		total = tickPeriod
	}
	steps := total / tickPeriod
	if steps <= 0 {
		steps = 1
	}
	perTick := (motorTarget - motorStart) / float64(steps)
	motor := motorStart
	remaining := steps

	t := timer.New(tickPeriod, true, func() {
		remaining--
		motor += perTick
		if remaining <= 0 {
			motor = motorTarget
		}
		hk := mathx.Clamp(hkOf(k, motor), 0, 100)
		svc.NumF[preciseIdx] = hk
		svc.Chars[currentIdx].Set(uint8(hk + 0.5))
		if remaining <= 0 {
			stopMotion(svc)
			svc.Chars[stateIdx].Set(Stopped)
			if fire != nil {
				fire(int(svc.Chars[targetIdx].Int()))
			}
		}
	})
	running[svc.Index] = &runState{timer: t}
	go t.Run(ctx)
}

func stopMotion(svc *model.Service) {
	if rs, ok := running[svc.Index]; ok {
		rs.timer.Stop()
		delete(running, svc.Index)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Stop handles an explicit stop request (dedicated stop action or a
// virtual-stop-armed button press). It freezes CurrentPosition at its
// precise value, sets TargetPosition to match, and PositionState to
// Stopped. Debounced: a second Stop within StopRearmWindow is ignored.
func Stop(svc *model.Service) {
	if t, ok := lastStop[svc.Index]; ok && time.Since(t) < StopRearmWindow {
		return
	}
	lastStop[svc.Index] = time.Now()

	stopMotion(svc)
	cur := uint8(svc.NumF[preciseIdx] + 0.5)
	svc.Chars[currentIdx].Set(cur)
	svc.Chars[targetIdx].Value = cur
	svc.Chars[stateIdx].Set(Stopped)
}

// IsMoving reports whether the cover is currently increasing/decreasing,
// for virtual-stop button handling.
func IsMoving(svc *model.Service) bool {
	s := uint8(svc.Chars[stateIdx].Int())
	return s == Increasing || s == Decreasing
}

// Virtual-stop state, the same three-state chart as garagedoor's (spec.md
// §4.4 places the "virtual-stop mode (0/1/2)" language under window
// cover specifically). Kept as a small local copy rather than a shared
// dependency on services/garagedoor, since the two services have no
// other coupling and each owns its own NumI slot layout.
type VirtualStop int8

const (
	VStopOff      VirtualStop = 0
	VStopArmed    VirtualStop = 1
	VStopConsumed VirtualStop = 2
)

const vstopIdx = 0 // config/builders_motion.go windowCoverBuilder: NumI[0]

// OnMotionStart arms the virtual-stop state for a fresh motion.
func OnMotionStart(svc *model.Service) {
	if VirtualStop(svc.NumI[vstopIdx]) != VStopOff {
		svc.NumI[vstopIdx] = int8(VStopArmed)
	}
}

// OnButtonPress reports whether a momentary-button press should be
// treated as a stop request (armed + currently moving), consuming the
// arm so a further press does nothing until the next SetTarget.
func OnButtonPress(svc *model.Service) bool {
	if !IsMoving(svc) || VirtualStop(svc.NumI[vstopIdx]) != VStopArmed {
		return false
	}
	svc.NumI[vstopIdx] = int8(VStopConsumed)
	return true
}
