// Package iairzoning implements the multi-zone air-handling aggregator
// from spec.md §4.3: it reads the per-tick state of a set of thermostat
// services (by index, never by pointer, per the Design Note on cyclic
// references) and decides the main-unit mode and per-zone gate state.
package iairzoning

import (
	"context"
	"time"

	"haa/model"
	"haa/services/thermostat"
	"haa/timer"
)

// Mode is the main-unit's aggregate mode, derived from the set of zone
// views on each tick.
type Mode int8

const (
	MainOff Mode = iota
	MainIdle
	MainSoftOn
	MainOn
)

// Action ids dispatched on a main-mode change, mirroring thermostat's
// naming convention for its own state transitions.
const (
	ActionMainOff    = 0
	ActionMainIdle   = 1
	ActionMainSoftOn = 2
	ActionMainOn     = 3

	// ActionGateOpen/ActionGateClose are added to a zone's service index
	// to build the dispatched action id, so each zone's gate damper gets
	// its own action without a fixed-size table.
	ActionGateOpen  = 10000
	ActionGateClose = 20000
)

const (
	gateDelayIdx = 0 // NumI[0]: inter-gate close delay, seconds
	mainModeIdx  = 0 // NumF[0]: current main mode
)

// Fire dispatches an action id.
type Fire func(actionID int)

var pendingClose = map[int]*timer.SoftTimer{}

// mainModeFor derives the aggregate Mode from the per-zone states: any
// zone On makes the unit On; else any SoftOn makes it SoftOn; else any
// Idle/ForceIdle-but-active zone keeps it Idle; all-inactive makes it
// Off.
func mainModeFor(views []thermostat.View) Mode {
	anyActive := false
	anyOn, anySoftOn, anyIdle := false, false, false
	for _, v := range views {
		if !v.Active {
			continue
		}
		anyActive = true
		switch v.State {
		case thermostat.On:
			anyOn = true
		case thermostat.SoftOn:
			anySoftOn = true
		default:
			anyIdle = true
		}
	}
	switch {
	case !anyActive:
		return MainOff
	case anyOn:
		return MainOn
	case anySoftOn:
		return MainSoftOn
	case anyIdle:
		return MainIdle
	default:
		return MainOff
	}
}

// zoneWantsOpposite reports whether v wants the opposite side from the
// main unit's current heating/cooling direction (e.g. a zone calling for
// heat while the main unit is running as a cooler); such a zone is
// forced off rather than fighting the shared main unit (spec.md §4.3
// "force a zone OFF if it wants heater-on while main mode is cooler").
func zoneWantsOpposite(v thermostat.View, mainHeating bool) bool {
	active := v.State == thermostat.On || v.State == thermostat.SoftOn
	return active && v.Heating != mainHeating
}

// Process runs one tick of the aggregator: reads zoneIdx's thermostat
// views from reg, computes the main mode, forces opposite-side zones
// off, opens gates for active zones immediately, and closes gates for
// idle zones only after gate_delay_sec with no zone newly wanting them
// (a simple close-after-delay debounce, not a full two-pass scheduler:
// one pass is enough because force-off zones are resolved before gate
// decisions are made).
func Process(ctx context.Context, reg *model.Registry, svc *model.Service, zoneIdx []int, openGate, closeGate func(zoneServiceIndex int), fire Fire, forceZoneOff func(zoneServiceIndex int)) {
	views := make([]thermostat.View, 0, len(zoneIdx))
	for _, i := range zoneIdx {
		zsvc := reg.Service(i)
		if zsvc == nil {
			continue
		}
		views = append(views, thermostat.SnapshotView(zsvc))
	}

	main := mainModeFor(views)
	// The main side follows the first active zone whose state set main in
	// mainModeFor; a mixed-side set resolves to that zone's side.
	mainHeating := false
	for _, v := range views {
		if v.Active && ((main == MainOn && v.State == thermostat.On) || (main == MainSoftOn && v.State == thermostat.SoftOn)) {
			mainHeating = v.Heating
			break
		}
	}

	for vi, v := range views {
		if main != MainOff && zoneWantsOpposite(v, mainHeating) {
			forceZoneOff(zoneIdx[vi])
			continue
		}
		active := v.State == thermostat.On || v.State == thermostat.SoftOn
		if active {
			if t, ok := pendingClose[zoneIdx[vi]]; ok {
				t.Stop()
				delete(pendingClose, zoneIdx[vi])
			}
			openGate(zoneIdx[vi])
		} else {
			scheduleGateClose(ctx, svc, zoneIdx[vi], closeGate)
		}
	}

	prev := Mode(svc.NumF[mainModeIdx])
	if main != prev {
		svc.NumF[mainModeIdx] = float64(main)
		switch main {
		case MainOn:
			fire(ActionMainOn)
		case MainSoftOn:
			fire(ActionMainSoftOn)
		case MainIdle:
			fire(ActionMainIdle)
		default:
			fire(ActionMainOff)
		}
	}
}

// scheduleGateClose arms (or leaves running) a per-zone delay before
// actually closing its gate, so a zone that goes idle only briefly
// doesn't chatter its damper.
func scheduleGateClose(ctx context.Context, svc *model.Service, zoneIdx int, closeGate func(int)) {
	if _, ok := pendingClose[zoneIdx]; ok {
		return
	}
	delay := time.Duration(svc.NumI[gateDelayIdx]) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	t := timer.New(delay, false, func() {
		delete(pendingClose, zoneIdx)
		closeGate(zoneIdx)
	})
	pendingClose[zoneIdx] = t
	go t.Run(ctx)
}
