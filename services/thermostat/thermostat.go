// Package thermostat implements the hysteresis state machine from
// spec.md §4.3 as a pure transition function, per the Design Note to
// "lift arithmetic into a pure function". Process wires that function
// to a debounced update timer and the action-dispatch engine.
package thermostat

import (
	"context"
	"time"

	"haa/model"
	"haa/timer"
)

// ThermoState is the fine-grained internal state the spec's testable
// properties are phrased over (spec.md §8): strictly monotonic
// transitions with no skipped intermediate state for a monotonic
// temperature trace.
type ThermoState int8

const (
	Off ThermoState = iota
	Idle
	SoftOn
	On
	ForceIdle
)

// Action ids dispatched on a state transition, named after the literal
// action strings in spec.md §8 scenario 2 ("HEATER_SOFT_ON",
// "HEATER_IDLE", "HEATER_FORCE_IDLE").
const (
	ActionTotalOff = 0

	ActionHeaterOn        = 1
	ActionHeaterSoftOn    = 2
	ActionHeaterIdle      = 3
	ActionHeaterForceIdle = 4

	ActionCoolerOn        = 5
	ActionCoolerSoftOn    = 6
	ActionCoolerIdle      = 7
	ActionCoolerForceIdle = 8
)

// rung orders the active-ness ladder from most-active (On) to
// protective-overshoot (ForceIdle), with Idle as the neutral middle that
// Off is also treated as for stepping purposes. A tick may move cur at
// most one rung toward the magnitude-computed target, which is what
// keeps a monotonic temperature trace's state sequence itself monotonic
// with no skipped intermediate (spec.md §8): in particular, a
// thermostat never jumps straight from idle/off to full On — it always
// passes through SoftOn on its way there (a deliberate soft-start, not
// just a magnitude threshold).
func rung(s ThermoState) int {
	switch s {
	case On:
		return 0
	case SoftOn:
		return 1
	case ForceIdle:
		return 3
	default: // Idle, Off
		return 2
	}
}

func fromRung(r int) ThermoState {
	switch r {
	case 0:
		return On
	case 1:
		return SoftOn
	case 3:
		return ForceIdle
	default:
		return Idle
	}
}

// zoneWant classifies delta (how far sensed is from target, signed so
// that positive means "needs more of this side's effect") into the
// magnitude-determined zone from spec.md §4.3, independent of any
// stepping cap. "Within deadband" explicitly holds at cur if cur is
// already an active state (On/SoftOn), matching the spec's literal
// "stay ON/SOFT_ON if already active; else IDLE".
func zoneWant(cur ThermoState, delta, deadband, softOn, forceIdle float64) ThermoState {
	switch {
	case delta > deadband+softOn:
		return On
	case delta > deadband:
		return SoftOn
	case delta >= -deadband:
		if cur == On || cur == SoftOn {
			return cur
		}
		return Idle
	case forceIdle > 0 && delta <= -(deadband+forceIdle):
		return ForceIdle
	default:
		return Idle
	}
}

// NextState implements spec.md §4.3's per-tick hysteresis rule for one
// side (heater or cooler) of the thermostat, moving cur at most one
// rung toward the magnitude-computed zone per tick. sensed/target/
// deadband/softOn/forceIdle are all in the characteristic's own units
// (°C or %RH); heating selects which side's sign convention to apply.
func NextState(cur ThermoState, sensed, target, deadband, softOn, forceIdle float64, heating bool) ThermoState {
	delta := target - sensed
	if !heating {
		delta = sensed - target
	}
	want := zoneWant(cur, delta, deadband, softOn, forceIdle)
	curR, wantR := rung(cur), rung(want)
	switch {
	case wantR == curR:
		return want
	case wantR < curR:
		return fromRung(curR - 1)
	default:
		return fromRung(curR + 1)
	}
}

// SelectSide implements the spec's "auto" target-mode side selection:
// the midpoint of the two thresholds picks heater-vs-cooler, with
// hysteresis preferring the currently active side until the sensed
// value moves 1.5 units past the *opposite* threshold.
func SelectSide(curHeating bool, haveCur bool, sensed, heaterThreshold, coolerThreshold float64) bool {
	if !haveCur {
		mid := (heaterThreshold + coolerThreshold) / 2
		return sensed < mid
	}
	if curHeating {
		return sensed <= coolerThreshold+1.5
	}
	return sensed >= heaterThreshold-1.5
}

// View is a read-only snapshot of one thermostat's state, used by
// services/iairzoning for cross-service aggregation by index (Design
// Note: "store service indices, not pointers").
type View struct {
	ServiceIndex int
	Active       bool
	Heating      bool // true while the current state reports the heater side (1, as Process sets it); false when idle or off
	State        ThermoState
}

// charIdx resolves a characteristic by name within a thermostat service.
func charIdx(s *model.Service, name string) int {
	for i, c := range s.Chars {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// DebounceDefault / DebounceMin are the processing-tick debounce window
// bounds from spec.md §4.3.
const (
	DebounceDefault = 300 * time.Millisecond
	DebounceMin     = 200 * time.Millisecond
)

var pending = map[int]*timer.SoftTimer{}

// ScheduleTick (re)arms the debounced processing tick for svc; repeated
// calls within the debounce window restart it rather than running twice,
// as required by spec.md §5 "restart semantically cancels the pending
// transition".
func ScheduleTick(ctx context.Context, svc *model.Service, delay time.Duration, run func()) {
	if delay < DebounceMin {
		delay = DebounceMin
	}
	if t, ok := pending[svc.Index]; ok {
		t.Reset(delay)
		return
	}
	t := timer.New(delay, false, func() {
		delete(pending, svc.Index)
		run()
	})
	pending[svc.Index] = t
	go t.Run(ctx)
}

// Fire dispatches an action id.
type Fire func(actionID int)

// Process runs one processing tick for a plain (non-auto, non-iAirZoning)
// thermostat: reads Active/CurrentTemperature/thresholds/target-mode off
// svc's characteristics, computes the next state for whichever side
// target-mode selects, and dispatches the corresponding action only on
// a transition.
//
// targetMode: 0=off, 1=heat, 2=cool, 3=auto (HomeKit TargetHeatingCoolingState).
func Process(svc *model.Service, fire Fire) {
	activeI := charIdx(svc, "Active")
	tempI := charIdx(svc, "CurrentTemperature")
	if tempI < 0 {
		tempI = charIdx(svc, "CurrentRelativeHumidity")
	}
	modeI := charIdx(svc, "TargetHeatingCoolingState")
	if modeI < 0 {
		modeI = charIdx(svc, "TargetHumidifierDehumidifierState")
	}
	heatI := charIdx(svc, "HeatingThresholdTemperature")
	if heatI < 0 {
		heatI = charIdx(svc, "HumidifierThreshold")
	}
	coolI := charIdx(svc, "CoolingThresholdTemperature")
	if coolI < 0 {
		coolI = charIdx(svc, "DehumidifierThreshold")
	}
	currentStateI := charIdx(svc, "CurrentHeatingCoolingState")
	if currentStateI < 0 {
		currentStateI = charIdx(svc, "CurrentHumidifierDehumidifierState")
	}

	active := activeI >= 0 && svc.Chars[activeI].Bool()
	cur := ThermoState(svc.NumI[0])

	if !active {
		if cur != Off {
			svc.NumI[0] = int8(Off)
			svc.Chars[currentStateI].Set(uint8(0))
			fire(ActionTotalOff)
		}
		return
	}

	sensed := svc.Chars[tempI].Float()
	heaterThresh := svc.Chars[heatI].Float()
	coolerThresh := svc.Chars[coolI].Float()
	deadband := svc.NumF[0]
	softOn := svc.NumF[1]
	forceIdle := svc.NumF[2]

	mode := uint8(svc.Chars[modeI].Int())
	var heating bool
	switch mode {
	case 1:
		heating = true
	case 2:
		heating = false
	default: // auto
		heating = SelectSide(cur == On || cur == SoftOn, cur != Off, sensed, heaterThresh, coolerThresh)
	}

	target := heaterThresh
	if !heating {
		target = coolerThresh
	}

	next := NextState(cur, sensed, target, deadband, softOn, forceIdle, heating)
	if next == cur {
		return
	}
	svc.NumI[0] = int8(next)

	var hkState uint8
	var actionID int
	if heating {
		hkState = 1
		switch next {
		case On:
			actionID = ActionHeaterOn
		case SoftOn:
			actionID = ActionHeaterSoftOn
		case ForceIdle:
			actionID = ActionHeaterForceIdle
		default:
			actionID = ActionHeaterIdle
		}
	} else {
		hkState = 2
		switch next {
		case On:
			actionID = ActionCoolerOn
		case SoftOn:
			actionID = ActionCoolerSoftOn
		case ForceIdle:
			actionID = ActionCoolerForceIdle
		default:
			actionID = ActionCoolerIdle
		}
	}
	if next == Idle || next == ForceIdle {
		hkState = 0
	}
	svc.Chars[currentStateI].Set(hkState)
	fire(actionID)
}

// SnapshotView builds a View for iAirZoning aggregation.
func SnapshotView(svc *model.Service) View {
	activeI := charIdx(svc, "Active")
	currentStateI := charIdx(svc, "CurrentHeatingCoolingState")
	if currentStateI < 0 {
		currentStateI = charIdx(svc, "CurrentHumidifierDehumidifierState")
	}
	return View{
		ServiceIndex: svc.Index,
		Active:       activeI >= 0 && svc.Chars[activeI].Bool(),
		Heating:      currentStateI >= 0 && svc.Chars[currentStateI].Int() == 1,
		State:        ThermoState(svc.NumI[0]),
	}
}
