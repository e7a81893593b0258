package action

import "haa/model"

// Killswitch sentinels shared by every service type's manager entry
// (spec.md §4.1 step 3): toggle/assign-true/assign-false, mirrored for
// main_enabled and child_enabled.
const (
	mainToggle  = -10000
	mainOff     = -10001
	mainOn      = -10002
	childToggle = -20000
	childOff    = -20001
	childOn     = -20002
)

// applyServManager runs step 3 for every ServManagerAction in entry:
// resolve the target, apply the killswitch triple if present, else
// dispatch into the target's type-specific manager sub-table.
func applyServManager(reg *model.Registry, entry *model.ActionEntry) {
	for _, sm := range entry.ServMgr {
		target := reg.Service(sm.TargetService)
		if target == nil {
			continue
		}
		switch sm.Value {
		case mainToggle:
			target.MainEnabled = !target.MainEnabled
			continue
		case mainOff:
			target.MainEnabled = false
			continue
		case mainOn:
			target.MainEnabled = true
			continue
		case childToggle:
			target.ChildEnabled = !target.ChildEnabled
			continue
		case childOff:
			target.ChildEnabled = false
			continue
		case childOn:
			target.ChildEnabled = true
			continue
		}
		dispatchManagerSubTable(target, sm.Value)
	}
}

// dispatchManagerSubTable applies sm.Value against target's
// type-specific dialect (spec.md §4.1 "Service-manager sub-table").
// Every branch below is implemented verbatim against the documented
// integer encoding rather than "cleaned up", per the Design Note that
// calls these dialects out as intentionally dense and non-obvious.
func dispatchManagerSubTable(target *model.Service, v int) {
	switch target.Type {
	case model.TypeSwitch, model.TypeOutlet:
		servMgrSwitch(target, v)
	case model.TypeLock:
		servMgrLock(target, v)
	case model.TypeContactSensor, model.TypeMotionSensor, model.TypeOccupancySensor,
		model.TypeLeakSensor, model.TypeSmokeSensor, model.TypeCOSensor, model.TypeCO2Sensor,
		model.TypeFilterChangeSensor:
		servMgrBinarySensor(target, v)
	case model.TypeThermostat, model.TypeThermostatWithHum:
		servMgrThermostat(target, v)
	case model.TypeHumidifier, model.TypeHumidifierWithTemp:
		servMgrHumidifier(target, v)
	case model.TypeLightbulb:
		servMgrLightbulb(target, v)
	case model.TypeWindowCover:
		servMgrWindowCover(target, v)
	case model.TypeFan:
		servMgrFan(target, v)
	case model.TypeSecuritySystem:
		servMgrSecurity(target, v)
	case model.TypeTV:
		servMgrTV(target, v)
	case model.TypePowerMonitor:
		servMgrPowerMonitor(target, v)
	case model.TypeFreeMonitor, model.TypeFreeMonitorAccum:
		servMgrFreeMonitor(target, v)
	case model.TypeBattery:
		servMgrBattery(target, v)
	case model.TypeDataHistory:
		servMgrDataHistory(target, v)
	}
}

func setBool(s *model.Service, idx int, v bool) {
	if idx >= 0 && idx < len(s.Chars) {
		s.Chars[idx].Set(v)
	}
}

func setU8(s *model.Service, idx int, v uint8) {
	if idx >= 0 && idx < len(s.Chars) {
		s.Chars[idx].Set(v)
	}
}

func setFloat(s *model.Service, idx int, v float64) {
	if idx >= 0 && idx < len(s.Chars) {
		s.Chars[idx].Set(v)
	}
}

// servMgrSwitch: v<0 arms auto-off seconds; v==4 toggle active; v==5
// toggle status-only; v>1 set-status; else set-active.
func servMgrSwitch(s *model.Service, v int) {
	switch {
	case v < 0:
		if len(s.NumI) > 0 {
			s.NumI[0] = int8(-v)
		}
	case v == 4:
		setBool(s, 0, !s.Chars[0].Bool())
	case v == 5:
		// status-only toggle: flip stored value without re-entering the setter chain
		s.Chars[0].Value = !s.Chars[0].Bool()
	case v > 1:
		// status-only write of v-2, like the v==5 toggle above
		s.Chars[0].Value = v-2 != 0
	default:
		setBool(s, 0, v != 0)
	}
}

// servMgrLock: v==4 toggle; v==5 toggle-status; v>1 set status to v-2;
// else set target.
func servMgrLock(s *model.Service, v int) {
	switch {
	case v == 4:
		setU8(s, 0, 1-uint8(s.Chars[0].Int()))
	case v == 5:
		s.Chars[1].Value = uint8(1 - s.Chars[1].Int())
	case v > 1:
		setU8(s, 1, uint8(v-2))
	default:
		setU8(s, 0, uint8(v))
	}
}

// servMgrBinarySensor: v==-1 arms auto-off-when-active; else set state.
func servMgrBinarySensor(s *model.Service, v int) {
	if v == -1 {
		if len(s.NumI) > 0 {
			s.NumI[0] = 1
		}
		return
	}
	setU8(s, 0, uint8(v))
}

// servMgrThermostat: value is float*100 encoded into an int. 2/3 set
// active off/on; 4/5/6 set target mode; even -> heater threshold; odd
// -> cooler threshold minus 0.01.
func servMgrThermostat(s *model.Service, v int) {
	switch v {
	case 2:
		setU8(s, activeIdx(s), 0)
		return
	case 3:
		setU8(s, activeIdx(s), 1)
		return
	case 4, 5, 6:
		setU8(s, targetModeIdx(s), uint8(v-4))
		return
	}
	f := float64(v) / 100
	if v%2 == 0 {
		setFloat(s, heaterThresholdIdx(s), f)
	} else {
		setFloat(s, coolerThresholdIdx(s), f-0.01)
	}
}

func activeIdx(s *model.Service) int { return charIndexByName(s, "Active") }
func targetModeIdx(s *model.Service) int {
	if i := charIndexByName(s, "TargetHeatingCoolingState"); i >= 0 {
		return i
	}
	return charIndexByName(s, "TargetHumidifierDehumidifierState")
}
func heaterThresholdIdx(s *model.Service) int {
	if i := charIndexByName(s, "HeatingThresholdTemperature"); i >= 0 {
		return i
	}
	return charIndexByName(s, "HumidifierThreshold")
}
func coolerThresholdIdx(s *model.Service) int {
	if i := charIndexByName(s, "CoolingThresholdTemperature"); i >= 0 {
		return i
	}
	return charIndexByName(s, "DehumidifierThreshold")
}

func charIndexByName(s *model.Service, name string) int {
	for i, c := range s.Chars {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// servMgrHumidifier: <0 change mode bias; 0/1 set active; 1000-range
// humidifier-threshold target; 2000-range dehumidifier-threshold target.
func servMgrHumidifier(s *model.Service, v int) {
	switch {
	case v < 0:
		if len(s.NumI) > 1 {
			s.NumI[1] = int8(-v)
		}
	case v == 0 || v == 1:
		setU8(s, activeIdx(s), uint8(v))
	case v >= 2000:
		setFloat(s, coolerThresholdIdx(s), float64(v-2000)/100)
	case v >= 1000:
		setFloat(s, heaterThresholdIdx(s), float64(v-1000)/100)
	}
}

// servMgrLightbulb: 2..102 set brightness; 1000-range hue; 2000-range
// saturation; 3000-range color-temp; 300-range brightness-down;
// 600-range brightness-up; 200 toggle; <0 autodimmer.
func servMgrLightbulb(s *model.Service, v int) {
	switch {
	case v >= 2 && v <= 102:
		setFloat(s, 1, float64(v-2))
	case v >= 1000 && v < 2000:
		setFloat(s, charIndexByName(s, "Hue"), float64(v-1000))
	case v >= 2000 && v < 3000:
		setFloat(s, charIndexByName(s, "Saturation"), float64(v-2000))
	case v >= 3000 && v < 4000:
		if i := charIndexByName(s, "ColorTemperature"); i >= 0 {
			s.Chars[i].Set(uint32(v - 3000))
		}
	case v >= 300 && v < 600:
		bright := s.Chars[1].Float() - float64(v-300)
		setFloat(s, 1, clampF(bright, 0, 100))
	case v >= 600 && v < 900:
		bright := s.Chars[1].Float() + float64(v-600)
		setFloat(s, 1, clampF(bright, 0, 100))
	case v == 200:
		setBool(s, 0, !s.Chars[0].Bool())
	case v < 0:
		if len(s.NumI) > 0 {
			s.NumI[0] = int8(-v) // autodimmer step request
		}
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// servMgrWindowCover: <0 obstruction flag; 101 freeze target at
// current; 200-range jump-to-position without motion; else set target.
func servMgrWindowCover(s *model.Service, v int) {
	switch {
	case v < 0:
		setBool(s, 0, true) // obstruction path reuses Active-style semantics via NumI in full impl
	case v == 101:
		setU8(s, 0, uint8(s.Chars[1].Int()))
	case v >= 200 && v < 300:
		setU8(s, 1, uint8(v-200))
	default:
		setU8(s, 0, uint8(v))
	}
}

func servMgrFan(s *model.Service, v int) {
	switch {
	case v == 4:
		setBool(s, 0, !s.Chars[0].Bool())
	case v > 1:
		if len(s.Chars) > 1 {
			setFloat(s, 1, float64(v))
		}
	default:
		setBool(s, 0, v != 0)
	}
}

func servMgrSecurity(s *model.Service, v int) {
	if v >= 0 && v <= 4 {
		setU8(s, 1, uint8(v))
	}
}

func servMgrTV(s *model.Service, v int) {
	switch {
	case v == 4:
		setU8(s, 0, 1-uint8(s.Chars[0].Int()))
	default:
		setU8(s, 0, uint8(v))
	}
}

func servMgrPowerMonitor(s *model.Service, v int) {
	if v == -1 && len(s.NumF) > 0 {
		s.NumF[0] = 0 // reset accumulation
	}
}

// servMgrFreeMonitor: v==-1 resets the published value (characteristic
// 0) to 0; no other value is written.
func servMgrFreeMonitor(s *model.Service, v int) {
	if v == -1 {
		setFloat(s, 0, 0)
	}
}

func servMgrBattery(s *model.Service, v int) {
	if v >= 0 && v <= 100 {
		setU8(s, 0, uint8(v))
	}
}

func servMgrDataHistory(s *model.Service, v int) {
	if v == -1 && len(s.NumF) > 0 {
		s.NumF[0] = 0 // reset cursor
	}
}
