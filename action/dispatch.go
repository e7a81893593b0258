package action

import (
	"context"
	"strconv"
	"strings"

	"haa/iobind"
	"haa/irrf"
	"haa/model"
)

// Hooks are the downstream triggers Dispatch needs but does not itself
// implement: GPIO/PWM output, IR/RF transmission, network/UART sends,
// system actions, and notifying a service's own state machine after a
// set-ch write changes its value (spec.md §4.1 step 6 "trigger its
// downstream processing"). Each services/* package supplies its own
// ProcessSetCh; Dispatch only knows how to look one up by service type.
type Hooks struct {
	GPIO iobind.GPIOWriter
	PWM  iobind.PWMChannel
	IR   irrf.Sink
	Pool *Pool

	System func(kind model.SystemActionKind)

	// ProcessSetCh is invoked after a set-ch write lands on svc, for
	// service types with a downstream state machine (thermostat,
	// humidifier, lightbulb, battery). No-op if nil.
	ProcessSetCh func(svc *model.Service)
}

// Dispatch runs the full 7-step order from spec.md §4.1 for (svc, id).
// It never blocks: network/IR/UART work is only enqueued, never run
// inline.
func Dispatch(reg *model.Registry, svc *model.Service, id int, h Hooks) {
	id = applyCopyIndirection(svc, id)

	entry, ok := svc.Action(id)
	if !ok {
		return
	}

	applyBinaryOut(entry, h)
	applyServManager(reg, entry)
	applySystem(entry, h)
	applyPWM(entry, h)
	applySetCh(reg, entry, h)
	enqueueTasks(reg, svc, entry, h)
}

// applyCopyIndirection walks the copy list once; the first match wins
// (spec.md §4.1 step 1 "only one substitution per dispatch").
func applyCopyIndirection(svc *model.Service, id int) int {
	entry, ok := svc.Action(id)
	if !ok {
		return id
	}
	for _, c := range entry.Copy {
		if c.From == id {
			return c.To
		}
	}
	return id
}

func applyBinaryOut(entry *model.ActionEntry, h Hooks) {
	if h.GPIO == nil {
		return
	}
	for _, b := range entry.Binary {
		h.GPIO.SetGPIO(b.ExtendedGPIO, b.Value)
		if b.InchingMS > 0 && h.Pool != nil {
			gpio, val, ms := b.ExtendedGPIO, b.Value, b.InchingMS
			gpioWriter := h.GPIO
			h.Pool.Submit(Task{Run: func(ctx context.Context) {
				select {
				case <-ctx.Done():
				case <-timeAfterMS(ms):
					gpioWriter.SetGPIO(gpio, !val)
				}
			}})
		}
	}
}

func applyPWM(entry *model.ActionEntry, h Hooks) {
	if h.PWM == nil {
		return
	}
	for _, p := range entry.PWM {
		h.PWM.SetDuty(p.Channel, p.Duty)
		if p.FreqHz > 0 {
			h.PWM.SetFreq(p.Channel, p.FreqHz)
		}
	}
}

func applySystem(entry *model.ActionEntry, h Hooks) {
	if h.System == nil {
		return
	}
	for _, s := range entry.System {
		h.System(s.Kind)
	}
}

func applySetCh(reg *model.Registry, entry *model.ActionEntry, h Hooks) {
	for _, sc := range entry.SetCh {
		src := reg.Char(sc.SrcService, sc.SrcCh)
		dst := reg.Char(sc.DstService, sc.DstCh)
		if src == nil || dst == nil {
			continue
		}
		before := dst.Value
		dst.WriteCoerced(src.Float())
		if dst.Value != before && h.ProcessSetCh != nil {
			if owner := reg.Service(sc.DstService); owner != nil {
				h.ProcessSetCh(owner)
			}
		}
	}
}

func enqueueTasks(reg *model.Registry, svc *model.Service, entry *model.ActionEntry, h Hooks) {
	if h.Pool == nil {
		return
	}
	for _, n := range entry.Network {
		n := n
		h.Pool.Submit(Task{Run: func(ctx context.Context) { runNetwork(ctx, reg, n) }})
	}
	for _, u := range entry.UART {
		u := u
		h.Pool.Submit(Task{Run: func(ctx context.Context) { runUART(ctx, u) }})
	}
	for _, tx := range entry.IRRF {
		tx := tx
		h.Pool.Submit(Task{Run: func(ctx context.Context) { runIRRF(ctx, h.IR, svc, tx) }})
	}
}

// renderTemplate substitutes every reference segment with the ASCII
// rendering of the referenced characteristic's current value (spec.md
// §6: bool -> true/false, int -> decimal, float -> %1.7g).
func renderTemplate(reg *model.Registry, segs []model.TemplateSegment) string {
	var b strings.Builder
	for _, s := range segs {
		if !s.IsRef {
			b.WriteString(s.Literal)
			continue
		}
		c := reg.Char(s.SvcIdx, s.ChIdx)
		if c == nil {
			continue
		}
		switch c.Format {
		case model.FormatBool:
			if c.Bool() {
				b.WriteString("true")
			} else {
				b.WriteString("false")
			}
		case model.FormatFloat:
			b.WriteString(strconv.FormatFloat(c.Float(), 'g', 7, 64))
		default:
			b.WriteString(strconv.Itoa(c.Int()))
		}
	}
	return b.String()
}
