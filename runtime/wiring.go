package runtime

import (
	"context"
	"time"

	"haa/action"
	"haa/bus"
	"haa/config"
	"haa/model"
	"haa/persist"
	"haa/services/cover"
	"haa/services/freemonitor"
	"haa/services/garagedoor"
	"haa/services/history"
	"haa/services/iairzoning"
	"haa/services/lightbulb"
	"haa/services/lightbulb/colorengine"
	"haa/services/lock"
	"haa/services/security"
	"haa/services/setupmode"
	"haa/services/switchio"
	"haa/services/thermostat"
	"haa/timer"
)

// indexZones builds the zone-thermostat -> owning-iAirZoning lookup from
// every iAirZoning service's Aux, so a zone's own processDownstream tick
// can also re-run its aggregator (spec.md §4.3: the main unit's mode and
// gate states are a function of every zone's current state, recomputed
// whenever any one of them changes).
func (e *Engine) indexZones() {
	for _, svc := range e.Reg.All() {
		if svc.Type != model.TypeIAirZoning {
			continue
		}
		zi, ok := svc.Aux.(*config.ZoneIndices)
		if !ok {
			continue
		}
		for _, zoneIdx := range zi.Zones {
			e.zoneOwner[zoneIdx] = svc.Index
		}
	}
}

// charTopic is the bus topic a characteristic's value-changed
// notification is published on: "char/<service>/<ch>/changed" (spec.md
// §5 "notify"). RPC export, logging, and data-history all subscribe
// here instead of being wired into the setter directly.
func charTopic(svcIdx, chIdx int) bus.Topic {
	return bus.T("char", svcIdx, chIdx, "changed")
}

// wireCharacteristics installs a Setter on every characteristic that
// runs the full spec.md §5 pipeline: mutation, then notify, then
// persistence-schedule, then action-dispatch. Characteristic.Set calls
// Setter before it stores Value, so onCharacteristicSet stores the new
// value itself first and everything after it reads the new value.
func (e *Engine) wireCharacteristics() {
	for _, svc := range e.Reg.All() {
		svc := svc
		for chIdx := range svc.Chars {
			chIdx := chIdx
			ch := svc.Chars[chIdx]
			ch.Setter = func(c *model.Characteristic, newValue any) error {
				return e.onCharacteristicSet(svc, chIdx, c, newValue)
			}
		}
	}
}

// onCharacteristicSet runs for every write to (svc, chIdx), whether from
// an external RPC write or an internal re-entrant call (spec.md §3
// Characteristic: "invoked on external writes and may be re-entered by
// internal code paths").
func (e *Engine) onCharacteristicSet(svc *model.Service, chIdx int, c *model.Characteristic, newValue any) error {
	c.Value = newValue

	e.Bus.Publish(e.Bus.NewMessage(charTopic(svc.Index, chIdx), newValue, true))

	key := persist.Key(svc.Index, chIdx)
	switch c.Format {
	case model.FormatBool:
		if v, ok := newValue.(bool); ok {
			e.Store.SetBool(key, v)
		}
	case model.FormatInt8:
		if v, ok := newValue.(int8); ok {
			e.Store.SetInt8(key, v)
		}
	case model.FormatUint8, model.FormatInt32, model.FormatUint32:
		e.Store.SetInt32(key, int32(c.Float()))
	case model.FormatString:
		if v, ok := newValue.(string); ok {
			e.Store.SetString(key, v)
		}
	}
	e.debounce.Mark()

	e.sampleHistory(svc.Index, chIdx, c)

	e.maybeSetupToggle(svc, chIdx, newValue)

	// spec.md §4.1: a characteristic's external write fires the action
	// graph at the action id numbered the same as the characteristic's
	// own index within its owning service — the primary writable
	// characteristic of most service types is index 0, so its external
	// setter fires action 0, matching every §8 end-to-end scenario's
	// literal "External setter writes on=true" -> action-0 wiring.
	action.Dispatch(e.Reg, svc, chIdx, e.Hooks)

	e.dispatchServiceEntryPoint(svc, chIdx)
	e.processDownstream(svc)
	return nil
}

// dispatchServiceEntryPoint routes an external write on a named
// characteristic to the owning service's own timeline/timer state
// machine (spec.md §4.4/§4.5): switch/outlet/water-valve auto-off, lock
// auto-relock, garage-door timeline, window-cover motor timeline, and
// the security-system recurrent-alarm chime. These packages expose
// single-purpose entry points keyed on one characteristic each, unlike
// thermostat/lightbulb's processDownstream, which reacts to any write on
// the service regardless of which characteristic changed.
func (e *Engine) dispatchServiceEntryPoint(svc *model.Service, chIdx int) {
	c := svc.Chars[chIdx]
	switch svc.Type {
	case model.TypeSwitch, model.TypeOutlet:
		if c.Name == "On" {
			switchio.OnChanged(e.runCtx, svc, c.Bool(), e.offChar("On"))
		}
	case model.TypeWaterValve:
		if c.Name == "Active" {
			switchio.OnChanged(e.runCtx, svc, c.Bool(), e.offChar("Active"))
		}
	case model.TypeLock:
		if c.Name == "LockTargetState" {
			lock.OnTargetChanged(e.runCtx, svc, uint8(c.Int()), e.relock())
		}
	case model.TypeGarageDoor:
		if c.Name == "TargetDoorState" {
			garagedoor.SetTarget(e.runCtx, svc, uint8(c.Int()), chIdx, e.fireFor(svc))
		}
	case model.TypeWindowCover:
		if c.Name == "TargetPosition" {
			cover.SetTarget(e.runCtx, svc, uint8(c.Int()), e.fireFor(svc))
		}
	case model.TypeSecuritySystem:
		if c.Name == "SecuritySystemTargetState" {
			security.SetTarget(e.runCtx, svc, uint8(c.Int()))
		}
	}
}

// fireFor builds the Fire callback garagedoor/cover hand their own
// motion-start/arrival action ids to; it is the same action-dispatch
// engine the generic external-write path already uses, so a state
// machine's internal action ids flow through the identical copy/binary-
// out/servmanager/network machinery as any other action id.
func (e *Engine) fireFor(svc *model.Service) func(actionID int) {
	return func(actionID int) {
		action.Dispatch(e.Reg, svc, actionID, e.Hooks)
	}
}

// offChar re-enters the named characteristic's own setter with its
// zero value, the "off"/"secured" re-entrant write switchio/lock's auto-
// timer callbacks are documented to perform (spec.md §4.4: "dispatches
// the off-setter").
func (e *Engine) offChar(name string) func(svc *model.Service) {
	return func(svc *model.Service) {
		if i := indexOfChar(svc, name); i >= 0 {
			svc.Chars[i].WriteCoerced(0)
		}
	}
}

// relock builds a lock.RelockFunc that writes LockTargetState back to
// Secured and mirrors it onto LockCurrentState, standing in for the
// physical mechanism's own confirmation on a host build with no lock
// hardware wired.
func (e *Engine) relock() lock.RelockFunc {
	return func(svc *model.Service) {
		if i := indexOfChar(svc, "LockTargetState"); i >= 0 {
			svc.Chars[i].WriteCoerced(float64(lock.Secured))
		}
		if i := indexOfChar(svc, "LockCurrentState"); i >= 0 {
			svc.Chars[i].Set(lock.Secured)
		}
	}
}

// maybeSetupToggle feeds the rapid-toggle setup-mode door (spec.md
// §4.11): only the first accessory's first service's first
// characteristic counts toggles, and only bool writes count as a
// toggle.
func (e *Engine) maybeSetupToggle(svc *model.Service, chIdx int, newValue any) {
	if chIdx != 0 || len(e.Reg.Accessories) == 0 {
		return
	}
	first := e.Reg.Accessories[0]
	if len(first.Services) == 0 || first.Services[0] != svc {
		return
	}
	if _, ok := newValue.(bool); !ok {
		return
	}
	if e.door.Toggle() {
		setupmode.EnterSetup(e.Store)
		e.Log.Info("setup-toggle threshold reached, entering setup on next boot")
		if e.Hooks.System != nil {
			e.Hooks.System(model.SystemReboot)
		}
	}
}

// processDownstream runs the service-type-specific state machine after
// any write that may have changed its inputs (spec.md §4.1 step 6 "if
// the target owns a service state machine ... trigger its downstream
// processing"), and is also the Hooks.ProcessSetCh callback the action
// dispatch engine invokes after a set-ch write.
func (e *Engine) processDownstream(svc *model.Service) {
	switch svc.Type {
	case model.TypeThermostat, model.TypeThermostatWithHum,
		model.TypeHumidifier, model.TypeHumidifierWithTemp:
		thermostat.ScheduleTick(e.runCtx, svc, thermostat.DebounceDefault, func() {
			thermostat.Process(svc, func(actionID int) {
				action.Dispatch(e.Reg, svc, actionID, e.Hooks)
			})
			if ownerIdx, ok := e.zoneOwner[svc.Index]; ok {
				e.processIAirZoning(ownerIdx)
			}
		})
	case model.TypeIAirZoning:
		e.processIAirZoning(svc.Index)
	case model.TypeLightbulb:
		e.recomputeLightbulb(svc)
	}
}

// processIAirZoning runs one tick of the owning iAirZoning aggregator at
// svc.Index (spec.md §4.3): gate-open/close actions and the main-mode
// action are all dispatched against the iAirZoning service itself, since
// it is the one holding the action table the 10000/20000-offset gate ids
// index into; forceZoneOff reaches into the zone's own Active
// characteristic instead, since that state belongs to the zone.
func (e *Engine) processIAirZoning(ownerIdx int) {
	svc := e.Reg.Service(ownerIdx)
	if svc == nil {
		return
	}
	zi, ok := svc.Aux.(*config.ZoneIndices)
	if !ok {
		return
	}
	iairzoning.Process(e.runCtx, e.Reg, svc, zi.Zones,
		func(zoneIdx int) { action.Dispatch(e.Reg, svc, iairzoning.ActionGateOpen+zoneIdx, e.Hooks) },
		func(zoneIdx int) { action.Dispatch(e.Reg, svc, iairzoning.ActionGateClose+zoneIdx, e.Hooks) },
		func(actionID int) { action.Dispatch(e.Reg, svc, actionID, e.Hooks) },
		e.forceZoneOff,
	)
}

func (e *Engine) forceZoneOff(zoneIdx int) {
	zsvc := e.Reg.Service(zoneIdx)
	if zsvc == nil {
		return
	}
	if i := indexOfChar(zsvc, "Active"); i >= 0 {
		zsvc.Chars[i].WriteCoerced(0)
	}
}

// sampleHistory appends a record to every data-history service whose
// Aux names (svcIdx, chIdx) as its monitored target, the setter-
// triggered half of spec.md §4.7's "sample on the target characteristic's
// setter or a periodic timer".
func (e *Engine) sampleHistory(svcIdx, chIdx int, c *model.Characteristic) {
	ids, ok := e.historyTargets[[2]int{svcIdx, chIdx}]
	if !ok {
		return
	}
	ts := uint32(time.Now().Unix())
	v := int32(c.Float())
	for _, hi := range ids {
		if hsvc := e.Reg.Service(hi); hsvc != nil {
			history.Append(hsvc, ts, v)
		}
	}
}

// runHistoryTimers starts the periodic-timer half of spec.md §4.7's
// sample trigger for every data-history service configured with a
// nonzero period, reading its target characteristic directly rather than
// waiting for a write.
func (e *Engine) runHistoryTimers(ctx context.Context) {
	for _, svc := range e.Reg.All() {
		if svc.Type != model.TypeDataHistory {
			continue
		}
		aux, ok := svc.Aux.(*history.Aux)
		if !ok || aux.Period <= 0 {
			continue
		}
		svc, aux := svc, aux
		t := timer.New(aux.Period, true, func() {
			if c := e.Reg.Char(aux.TargetService, aux.TargetChar); c != nil {
				history.Append(svc, uint32(time.Now().Unix()), int32(c.Float()))
			}
		})
		go t.Run(ctx)
	}
}

// runFreeMonitors starts one recurrent timer per configured free-monitor
// source other than SourceFree (a free source is not sampled; its value
// changes only through writes to its Value characteristic).
func (e *Engine) runFreeMonitors(ctx context.Context) {
	rng := freemonitor.NewRand(uint32(time.Now().UnixNano()))
	for _, svc := range e.Reg.All() {
		if svc.Type != model.TypeFreeMonitor && svc.Type != model.TypeFreeMonitorAccum {
			continue
		}
		aux, ok := svc.Aux.(*freemonitor.Aux)
		if !ok || aux.Kind == freemonitor.SourceFree || aux.Period <= 0 {
			continue
		}
		svc, aux := svc, aux
		t := timer.New(aux.Period, true, func() {
			e.sampleFreeMonitor(svc, aux, rng)
		})
		go t.Run(ctx)
	}
}

func (e *Engine) sampleFreeMonitor(svc *model.Service, aux *freemonitor.Aux, rng *freemonitor.Rand) {
	raw, ok := freemonitor.Read(e.Reg, aux, e.fmHooks, time.Now(), rng)
	if !ok {
		return
	}
	freemonitor.Sample(e.Reg, svc, raw, aux.TargetService, aux.TargetChar, func(svc *model.Service, wildcardIndex int, value float64) {
		action.FireWildcard(e.Reg, svc, wildcardIndex, value, e.Hooks)
	})
}

func (e *Engine) recomputeLightbulb(svc *model.Service) {
	aux := lightbulb.AuxOf(svc)
	st, ok := e.lbStates[svc.Index]
	if !ok {
		st = &lightbulb.State{}
		e.lbStates[svc.Index] = st
	}

	on := charBool(svc, "On")
	brightness := charFloat(svc, "Brightness")
	hsi := colorengine.HSI{On: on, Brightness: brightness}
	if aux.Color.Channels >= 3 {
		hsi.Hue = charFloat(svc, "Hue")
		hsi.Sat = charFloat(svc, "Saturation")
	}
	if aux.Color.Channels == 2 {
		hsi.ColorTemp = charFloat(svc, "ColorTemperature")
	}

	wasSettled := st.Current == st.Target
	lightbulb.Recompute(aux, st, hsi)
	if wasSettled && st.Current != st.Target {
		transport := boardTransport{pwm: e.hwPWM, nrz: e.hwNRZ}
		go lightbulb.RunTicker(e.runCtx, aux, st, transport)
	}
}

func charBool(svc *model.Service, name string) bool {
	if i := indexOfChar(svc, name); i >= 0 {
		return svc.Chars[i].Bool()
	}
	return false
}

func charFloat(svc *model.Service, name string) float64 {
	if i := indexOfChar(svc, name); i >= 0 {
		return svc.Chars[i].Float()
	}
	return 0
}

func indexOfChar(svc *model.Service, name string) int {
	for i, c := range svc.Chars {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// boardTransport adapts the board-supplied PWM/NRZ hardware interfaces
// (haa/iobind) to lightbulb.Transport. A nil field makes its half of
// the transport a no-op, which is what host-side tooling without real
// hardware wants (spec.md §1 names the drivers themselves external
// collaborators; this is the thin seam between them and the pure color
// engine).
type boardTransport struct {
	pwm interface {
		SetDuty(channel string, duty uint16) error
		SetFreq(channel string, freqHz uint32) error
	}
	nrz interface {
		WriteRange(gpio int, rangeStart, rangeEnd int, buf []byte) error
	}
}

func (t boardTransport) ApplyChannel(channel string, duty uint16) error {
	if t.pwm == nil {
		return nil
	}
	return t.pwm.SetDuty(channel, duty)
}

// ApplyStrip renders current[0:len(channelMap)] into a single pixel
// pattern repeated across [rangeStart,rangeEnd) LEDs, one byte per
// channel in channel-map order (spec.md §6 "Addressable LED on-wire").
func (t boardTransport) ApplyStrip(gpio, rangeStart, rangeEnd int, channelMap []int, current [5]uint16) error {
	if t.nrz == nil || len(channelMap) == 0 || rangeEnd <= rangeStart {
		return nil
	}
	pixel := make([]byte, len(channelMap))
	for i, ch := range channelMap {
		if ch >= 0 && ch < 5 {
			pixel[i] = byte(current[ch] >> 8)
		}
	}
	buf := make([]byte, 0, (rangeEnd-rangeStart)*len(pixel))
	for n := rangeStart; n < rangeEnd; n++ {
		buf = append(buf, pixel...)
	}
	return t.nrz.WriteRange(gpio, rangeStart, rangeEnd, buf)
}

// primeFromStore restores every characteristic's boot value from
// persisted last-state where one exists, leaving the config-supplied
// default otherwise (spec.md §4.10 "boot reads the same records to
// prime characteristic defaults"). Setters are not yet wired at this
// point, so this writes Value directly rather than going through Set.
func (e *Engine) primeFromStore() {
	for _, svc := range e.Reg.All() {
		for chIdx, c := range svc.Chars {
			key := persist.Key(svc.Index, chIdx)
			switch c.Format {
			case model.FormatBool:
				if v, ok := e.Store.GetBool(key); ok {
					c.Value = v
				}
			case model.FormatInt8:
				if v, ok := e.Store.GetInt8(key); ok {
					c.Value = v
				}
			case model.FormatUint8:
				if v, ok := e.Store.GetInt32(key); ok {
					c.Value = uint8(v)
				}
			case model.FormatInt32:
				if v, ok := e.Store.GetInt32(key); ok {
					c.Value = v
				}
			case model.FormatUint32:
				if v, ok := e.Store.GetInt32(key); ok {
					c.Value = uint32(v)
				}
			case model.FormatString:
				if v, ok := e.Store.GetString(key); ok {
					c.Value = v
				}
			}
		}
	}
}

// saveLastState is the Debouncer's flush callback: it re-saves every
// characteristic's current value, exactly the set of keys registered
// for last-state in config (spec.md §8 persistence testable property).
func (e *Engine) saveLastState() error {
	for _, svc := range e.Reg.All() {
		if svc.Type == model.TypeDataHistory {
			history.SaveBlocks(e.Store, svc)
			continue
		}
		for chIdx, c := range svc.Chars {
			key := persist.Key(svc.Index, chIdx)
			switch c.Format {
			case model.FormatBool:
				if v, ok := c.Value.(bool); ok {
					e.Store.SetBool(key, v)
				}
			case model.FormatInt8:
				if v, ok := c.Value.(int8); ok {
					e.Store.SetInt8(key, v)
				}
			case model.FormatUint8, model.FormatInt32, model.FormatUint32:
				e.Store.SetInt32(key, int32(c.Float()))
			case model.FormatString:
				if v, ok := c.Value.(string); ok {
					e.Store.SetString(key, v)
				}
			}
		}
	}
	return nil
}
