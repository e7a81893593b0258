// Package lightbulb wires colorengine's pure HSI->duty computation to
// the service's characteristics and to a physical transport (PWM or
// NRZ addressable strip), adding the periodic transport ticker and
// autodimmer task from spec.md §4.2.
package lightbulb

import (
	"context"
	"time"

	"haa/model"
	"haa/services/lightbulb/colorengine"
	"haa/x/mathx"
	"haa/x/ramp"
)

// RGBWPeriod is the transport ticker's default period (spec.md §4.2).
const RGBWPeriod = 10 * time.Millisecond

// Transport is the physical sink a Config targets.
type Transport interface {
	// ApplyChannel is called once per settled/advancing channel for a
	// PWM-style transport; ApplyStrip is called once per tick for an
	// NRZ addressable string covering [rangeStart, rangeEnd).
	ApplyChannel(channel string, duty uint16) error
	ApplyStrip(gpio, rangeStart, rangeEnd int, channelMap []int, current [5]uint16) error
}

// Aux is the per-lightbulb static config stashed in model.Service.Aux,
// built by the config loader from JSON.
type Aux struct {
	Color colorengine.Config

	PWMChannels []string // channel-map order, PWM transport
	NRZGPIO     int       // >=0 selects the NRZ transport
	RangeStart, RangeEnd int
	ChannelMap  []int // per-LED-byte channel index, NRZ transport

	StepPerTick uint16 // transport ticker's per-tick step (duty units)

	AutodimmerStepPct int
	AutodimmerDelayMS int
}

// State is the lightbulb's live runtime state: current/target duty per
// channel and the HSI last computed from, kept by the runtime per
// service (Engine.lbStates) rather than in NumF so the colorengine.HSI
// shape stays typed.
type State struct {
	Current, Target [5]uint16
	Last            colorengine.HSI
	autodimmerStop  chan struct{}
}

// Recompute runs on any write to power/brightness/hue/sat/color-temp:
// it recalculates Target from the new HSI. It does not start the ticker;
// the caller starts it so Current converges on the new Target ("compute
// new targets, then ticker converges", spec.md §4.2).
func Recompute(aux *Aux, st *State, in colorengine.HSI) {
	st.Last = in
	st.Target = colorengine.Compute(aux.Color, in)
}

// Tick advances Current toward Target by at most aux.StepPerTick per
// channel (linear interpolate-then-snap, spec.md §4.2 transport
// ticker), applying changes via transport. It returns false once every
// channel has settled, telling the caller to stop the ticker.
func Tick(aux *Aux, st *State, transport Transport) bool {
	settled := true
	changed := false
	for i := 0; i < aux.Color.Channels; i++ {
		if st.Current[i] == st.Target[i] {
			continue
		}
		settled = false
		step := aux.StepPerTick
		if step == 0 {
			step = 256
		}
		diff := int32(st.Target[i]) - int32(st.Current[i])
		if diff > int32(step) {
			st.Current[i] += step
		} else if diff < -int32(step) {
			st.Current[i] -= step
		} else {
			st.Current[i] = st.Target[i]
		}
		changed = true
	}
	if !changed {
		return !settled
	}
	if aux.NRZGPIO >= 0 {
		transport.ApplyStrip(aux.NRZGPIO, aux.RangeStart, aux.RangeEnd, aux.ChannelMap, st.Current)
	} else {
		for i, ch := range aux.PWMChannels {
			if i >= aux.Color.Channels {
				break
			}
			transport.ApplyChannel(ch, st.Current[i])
		}
	}
	return !settled
}

// RunTicker drives Tick at RGBWPeriod until settled or ctx is done,
// generalizing x/ramp.StartLinear's single-channel linear ramp (the
// teacher's one-LED case) to N independently-stepped channels.
func RunTicker(ctx context.Context, aux *Aux, st *State, transport Transport) {
	t := time.NewTicker(RGBWPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !Tick(aux, st, transport) {
				return
			}
		}
	}
}

// StartAutodimmer ramps brightness up-down-up at the configured
// step/delay until Stop is called, per spec.md §4.2 "double-toggle
// within an arm-window starts a ramp task, cancelled by autodimmer=0".
// It is a direct generalization of x/ramp.StartLinear's tick/cancel
// shape to a bidirectional bounce rather than a single pass.
func StartAutodimmer(ctx context.Context, st *State, stepPct, delayMS int, apply func(brightness float64)) {
	if st.autodimmerStop != nil {
		close(st.autodimmerStop)
	}
	stop := make(chan struct{})
	st.autodimmerStop = stop

	go func() {
		dir := int32(1)
		level := int32(st.Last.Brightness)
		tick := func(d time.Duration) bool {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return false
			case <-stop:
				return false
			case <-timer.C:
				return true
			}
		}
		for {
			if !tick(time.Duration(delayMS) * time.Millisecond) {
				return
			}
			level += dir * int32(stepPct)
			level = mathx.Clamp(level, 0, 100)
			if level == 0 || level == 100 {
				dir = -dir
			}
			apply(float64(level))
		}
	}()
}

// StopAutodimmer cancels any running autodimmer task for st.
func StopAutodimmer(st *State) {
	if st.autodimmerStop != nil {
		close(st.autodimmerStop)
		st.autodimmerStop = nil
	}
}

// RunSingleChannelRamp drives the 1-channel dimmer case directly through
// x/ramp.StartLinear instead of the general Tick loop, since a plain
// brightness-only bulb is exactly the single-PWM-channel ramp the
// teacher wrote x/ramp for.
func RunSingleChannelRamp(ctx context.Context, aux *Aux, st *State, transport Transport) {
	tick := func(d time.Duration) bool {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		}
	}
	set := func(level uint16) {
		st.Current[0] = level
		transport.ApplyChannel(aux.PWMChannels[0], level)
	}
	steps := uint16(colorengine.PWMScale / mathx.Max(aux.StepPerTick, 1))
	ramp.StartLinear(st.Current[0], st.Target[0], colorengine.PWMScale, uint32(steps)*uint32(RGBWPeriod/time.Millisecond), steps, tick, set)
}

// AuxOf extracts the lightbulb Aux from a service, panicking if the
// service was not built as a lightbulb — a programmer error, not a
// runtime condition.
func AuxOf(s *model.Service) *Aux {
	return s.Aux.(*Aux)
}
