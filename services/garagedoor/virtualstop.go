package garagedoor

import "haa/model"

// VirtualStop resolves spec.md Design Notes' open question on the
// garage-door "virtual stop = 1 vs 2" distinction. Derived state chart
// (DESIGN.md decision #3): a momentary button wired as a virtual stop
// only takes effect on the *second* press seen during one continuous
// motion, and is then consumed until a fresh target-set starts new
// motion.
type VirtualStop int8

const (
	VStopOff      VirtualStop = 0 // button never stops motion
	VStopArmed    VirtualStop = 1 // next press during this motion stops it
	VStopConsumed VirtualStop = 2 // already stopped this motion once
)

const vstopIdx = 0 // config/builders_motion.go garageDoorBuilder: NumI[0]

// OnMotionStart arms the virtual-stop state for a fresh motion, unless
// the feature is configured off.
func OnMotionStart(svc *model.Service) {
	if VirtualStop(svc.NumI[vstopIdx]) != VStopOff {
		svc.NumI[vstopIdx] = int8(VStopArmed)
	}
}

// OnButtonPress reports whether a momentary-button press should be
// treated as a stop request: only true while Armed and the door is
// currently moving; consumes the arm so a third press does nothing
// until the next motion.
func OnButtonPress(svc *model.Service, moving bool) bool {
	if !moving || VirtualStop(svc.NumI[vstopIdx]) != VStopArmed {
		return false
	}
	svc.NumI[vstopIdx] = int8(VStopConsumed)
	return true
}
