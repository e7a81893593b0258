// Package runtime implements the one-shot "normal_mode_init" boot phase
// (spec.md §3 Lifecycle) and the cooperative event loop it hands
// control to afterward (spec.md §2, §5): a single process that decodes
// the persisted config, builds the accessory registry, wires every
// characteristic's Setter to the spec.md §5 pipeline ("setter -> model
// mutation -> notify -> persistence-schedule -> action-dispatch ->
// history-save"), and starts the timer-service, action worker pool, and
// setup-mode door that the rest of the runtime depends on.
//
// This is the Go-idiomatic rendition of the teacher's root main.go
// (devicecode-go/main.go): a bus, a handful of long-lived goroutines
// reacting to channel receives, and no shared mutable state outside the
// registry/bus.
package runtime

import (
	"context"
	"fmt"
	"time"

	"haa/action"
	"haa/bus"
	"haa/config"
	"haa/iobind"
	"haa/irrf"
	"haa/model"
	"haa/persist"
	"haa/services/freemonitor"
	"haa/services/history"
	"haa/services/lightbulb"
	"haa/services/setupmode"
	"haa/timer"
	"haa/x/fmtx"
)

// Engine is everything Boot produces: the wired Registry plus the
// long-lived collaborators (bus, action pool, persistence debouncer,
// setup door) a Run loop drives. Built once, never rebuilt at runtime
// per spec.md §1 Non-goals ("no dynamic reconfiguration at runtime").
type Engine struct {
	Reg     *model.Registry
	General config.General
	Store   persist.Store
	Bus     *bus.Bus
	Pool    *action.Pool
	Hooks   action.Hooks
	Log     fmtx.Logger

	debounce *persist.Debouncer
	door     *setupmode.Door
	matcher  *timer.Matcher

	lbStates map[int]*lightbulb.State
	hwPWM    iobind.PWMChannel
	hwNRZ    iobind.NRZStrip
	fmHooks  freemonitor.Hooks

	zoneOwner      map[int]int         // zone thermostat service index -> owning iAirZoning service index
	historyTargets map[[2]int][]int // (target service, target ch) -> data-history service indices watching it

	runCtx context.Context
}

// PoolQueueDepth / PoolStagger size the action worker pool (spec.md
// §4.1 step 7: "tasks start spaced by one tick").
const (
	PoolQueueDepth = 32
	PoolStagger    = 5 * time.Millisecond
)

// Boot decodes cfgRaw (the JSON document normally read from the
// non-volatile store under a well-known key, spec.md §6) into a
// Registry, opens the debounced persistence pipeline against store, and
// wires every characteristic's Setter. The only goroutine it starts is
// the persistence debouncer's; call Run to enter the cooperative event
// loop.
//
// A zero accessory count or a decode failure forces the emergency
// setup-mode flag per spec.md §7 "Configuration error at load time" and
// is returned as an error; the caller (cmd/haa) is expected to boot into
// setup mode instead of retrying normal_mode_init.
func Boot(cfgRaw []byte, store persist.Store) (*Engine, error) {
	rt, loadErr := config.Load(cfgRaw)
	accessoryCount := 0
	if rt != nil {
		accessoryCount = len(rt.Registry.Accessories)
	}
	if setupmode.ConfigError(store, accessoryCount, loadErr) {
		if loadErr == nil {
			loadErr = fmt.Errorf("config: zero accessories")
		}
		return nil, loadErr
	}

	store.SetInt32(persist.KeyTotalServices, int32(rt.Registry.Len()))

	e := &Engine{
		Reg:            rt.Registry,
		General:        rt.General,
		Store:          store,
		Bus:            bus.NewBus(8),
		Pool:           action.NewPool(PoolQueueDepth, PoolStagger),
		Log:            fmtx.NewLogger("haa"),
		lbStates:       map[int]*lightbulb.State{},
		zoneOwner:      map[int]int{},
		historyTargets: map[[2]int][]int{},
		runCtx:         context.Background(),
	}
	e.Hooks = action.Hooks{Pool: e.Pool, ProcessSetCh: e.processDownstream}
	e.door = setupmode.NewDoor(rt.General.SetupToggleCount, rt.General.AllowedSetupSec)
	e.debounce = persist.NewDebouncer(persist.SaveDebounceInterval, e.saveLastState)
	e.matcher = &timer.Matcher{Entries: timetableEntries(rt.General.Timetable), Fire: e.fireTimetable}
	e.indexZones()
	e.indexHistory(store)

	e.primeFromStore()
	e.wireCharacteristics()
	return e, nil
}

// indexHistory initializes every data-history service's block 0 (spec.md
// §4.7's "block 0 always initialized first" guarantee) and restores its
// persisted blocks/cursor, then builds the target-characteristic lookup
// onCharacteristicSet uses to append a sample on the monitored
// characteristic's own setter.
func (e *Engine) indexHistory(store persist.Store) {
	for _, svc := range e.Reg.All() {
		if svc.Type != model.TypeDataHistory {
			continue
		}
		history.Init(svc)
		history.LoadBlocks(store, svc)
		aux, ok := svc.Aux.(*history.Aux)
		if !ok || aux.TargetService <= 0 {
			continue
		}
		key := [2]int{aux.TargetService, aux.TargetChar}
		e.historyTargets[key] = append(e.historyTargets[key], svc.Index)
	}
}

// SetHardware installs the physical I/O collaborators a live board
// supplies (spec.md §1: GPIO/PWM/IR drivers are external collaborators,
// only their interfaces are specified here). Safe to call before Run;
// nil fields leave the corresponding action kind a no-op, which is what
// host-side testing/tooling wants.
func (e *Engine) SetHardware(gpio iobind.GPIOWriter, pwm iobind.PWMChannel, nrz iobind.NRZStrip, ir irrf.Sink) {
	e.Hooks.GPIO = gpio
	e.Hooks.PWM = pwm
	e.Hooks.IR = ir
	e.hwPWM = pwm
	e.hwNRZ = nrz
}

// SetFreeMonitorHooks installs the hardware collaborators free-monitor's
// pulse/ADC/I2C/UART source kinds need (spec.md §4.6). Safe to call
// before Run; a zero-value Hooks leaves every non-network source kind
// sampling nothing, the same nil-safe contract SetHardware follows.
func (e *Engine) SetFreeMonitorHooks(h freemonitor.Hooks) {
	e.fmHooks = h
}

// Run starts the action pool, the timetable matcher, and the setup
// door's allowed-window timer, and blocks until ctx is cancelled. Every
// lightbulb's transport ticker is started lazily by Recompute, not
// here, since settled lightbulbs have nothing to tick.
func (e *Engine) Run(ctx context.Context) {
	e.runCtx = ctx
	go e.Pool.Run(ctx)
	setupmode.RunLoop(ctx, e.door, func() {
		e.Log.Info("setup window closed")
	})
	go e.runTimetable(ctx)
	go e.runHistoryTimers(ctx)
	go e.runFreeMonitors(ctx)
	<-ctx.Done()
	e.debounce.Stop()
}

func (e *Engine) runTimetable(ctx context.Context) {
	t := time.NewTimer(e.matcher.NextInterval(time.Now()))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			e.matcher.Tick()
			t.Reset(e.matcher.NextInterval(now))
		}
	}
}

func timetableEntries(in []config.TimetableEntry) []timer.Entry {
	out := make([]timer.Entry, len(in))
	for i, e := range in {
		out[i] = timer.Entry{
			Month: e.Month, MDay: e.Day, Hour: e.Hour, Min: e.Minute,
			WDay: e.Weekday, ActionID: e.ActionID,
		}
	}
	return out
}

// fireTimetable dispatches a matched timetable entry against the first
// root-device service, spec.md §3's catch-all for actions with no more
// specific owning accessory.
func (e *Engine) fireTimetable(actionID int) {
	for _, svc := range e.Reg.All() {
		if svc.Type == model.TypeRootDevice {
			action.Dispatch(e.Reg, svc, actionID, e.Hooks)
			return
		}
	}
}

