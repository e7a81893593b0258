// Package garagedoor implements the garage-door timeline (spec.md §4.4):
// a 1Hz virtual-position estimator, obstruction latch, and sticky-offset
// resume from STOPPED.
package garagedoor

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
	"haa/x/mathx"
)

// HomeKit CurrentDoorState/TargetDoorState values.
const (
	Open    uint8 = 0
	Closed  uint8 = 1
	Opening uint8 = 2
	Closing uint8 = 3
	Stopped uint8 = 4
)

const (
	currentIdx = 1 // service.Chars index: [0]=TargetDoorState [1]=CurrentDoorState [2]=ObstructionDetected
	targetIdx  = 0
	obstrIdx   = 2
)

const (
	workingTimeIdx = 0 // NumF[0]
	positionIdx    = 1 // NumF[1]: virtual position, 0 (closed) .. workingTime (open)
	stickyIdx      = 2 // NumF[2]: sticky resume offset applied to the motion-start action id
)

// StickyOffset is added to the outgoing motion-start action id when
// resuming movement from STOPPED rather than starting fresh (spec.md
// §4.4 "resume with a sticky offset added to the outgoing action id").
const StickyOffset = 1000

// ObstructionTimeoutFactor is how far past the configured working time
// the position timer runs before concluding the door is obstructed,
// absent a confirming sensor (spec.md §4.4).
const ObstructionTimeoutFactor = 1.2

// Fire dispatches an action id; svc's own action-dispatch wiring.
type Fire func(actionID int)

type runState struct {
	timer   *timer.SoftTimer
	opening bool
}

var running = map[int]*runState{}

// SetTarget handles a write to TargetDoorState (spec.md §4.4): if the
// door is STOPPED, resume is signalled by adding StickyOffset to the
// motion-start action; otherwise this starts fresh from the current
// virtual position.
func SetTarget(ctx context.Context, svc *model.Service, target uint8, startActionID int, fire Fire) {
	svc.Chars[targetIdx].Value = target
	resuming := uint8(svc.Chars[currentIdx].Int()) == Stopped
	stopMotion(svc)

	opening := target == Open
	OnMotionStart(svc)
	if resuming {
		svc.NumF[stickyIdx] = StickyOffset
		fire(startActionID + StickyOffset)
	} else {
		svc.NumF[stickyIdx] = 0
		fire(startActionID)
	}

	if opening {
		svc.Chars[currentIdx].Set(Opening)
	} else {
		svc.Chars[currentIdx].Set(Closing)
	}
	startPositionTimer(ctx, svc, opening, fire)
}

// Stop handles an explicit stop (virtual-stop button press or a
// dedicated stop action): freezes the virtual position, sets
// CurrentDoorState to Stopped.
func Stop(svc *model.Service) {
	stopMotion(svc)
	svc.Chars[currentIdx].Set(Stopped)
}

func stopMotion(svc *model.Service) {
	if rs, ok := running[svc.Index]; ok {
		rs.timer.Stop()
		delete(running, svc.Index)
	}
}

// startPositionTimer ticks at 1Hz, advancing the virtual position
// toward the target extreme; arrival sets CurrentDoorState to Open or
// Closed and dispatches no action. A timeout without reaching the
// extreme latches ObstructionDetected.
func startPositionTimer(ctx context.Context, svc *model.Service, opening bool, fire Fire) {
	working := svc.NumF[workingTimeIdx]
	if working <= 0 {
		working = 15
	}
	deadline := time.Duration(working*ObstructionTimeoutFactor*1000) * time.Millisecond
	elapsed := time.Duration(0)

	t := timer.New(time.Second, true, func() {
		elapsed += time.Second
		step := 1.0
		if opening {
			svc.NumF[positionIdx] = mathx.Clamp(svc.NumF[positionIdx]+step, 0, working)
		} else {
			svc.NumF[positionIdx] = mathx.Clamp(svc.NumF[positionIdx]-step, 0, working)
		}
		arrived := (opening && svc.NumF[positionIdx] >= working) || (!opening && svc.NumF[positionIdx] <= 0)
		if arrived {
			stopMotion(svc)
			if opening {
				svc.Chars[currentIdx].Set(Open)
			} else {
				svc.Chars[currentIdx].Set(Closed)
			}
			return
		}
		if elapsed >= deadline {
			stopMotion(svc)
			svc.Chars[obstrIdx].Set(true)
			svc.Chars[currentIdx].Set(Stopped)
		}
	})
	running[svc.Index] = &runState{timer: t, opening: opening}
	go t.Run(ctx)
}

// ClearObstruction unlatches ObstructionDetected (spec.md §4.4
// "Obstruction is latched until cleared").
func ClearObstruction(svc *model.Service) {
	svc.Chars[obstrIdx].Set(false)
}

// IsMoving reports whether the door is currently opening or closing,
// for virtual-stop button-press handling.
func IsMoving(svc *model.Service) bool {
	s := uint8(svc.Chars[currentIdx].Int())
	return s == Opening || s == Closing
}
