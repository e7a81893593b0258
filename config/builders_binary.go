package config

import "haa/model"

// simpleOnOffBuilder covers switch/outlet: a single writable "On" bool
// plus an optional auto-off timer duration read from config, consumed
// by services/switchio.
type simpleOnOffBuilder struct{}

func (simpleOnOffBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 2, 0, 0)
	addChar(s, "On", model.FormatBool, model.PermRead|model.PermWrite|model.PermNotify, asBool(in.Raw["initial_state"], false))
	s.NumI[0] = int8(asInt(in.Raw["auto_off_sec"], 0))
	return s, nil
}

// buttonBuilder covers button/doorbell: a single write-only "trigger"
// event characteristic.
type buttonBuilder struct{}

func (buttonBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "ProgrammableSwitchEvent", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	return s, nil
}

// lockBuilder covers lock mechanism: target + current state, matching
// the HAP lock-mechanism pair (0=unsecured,1=secured).
type lockBuilder struct{}

func (lockBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 1, 0, 0)
	addChar(s, "LockTargetState", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(1))
	addChar(s, "LockCurrentState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(1))
	s.NumI[0] = int8(asInt(in.Raw["auto_lock_sec"], 0))
	return s, nil
}

// binarySensorBuilder covers contact/occupancy/leak/smoke/CO/CO2/filter/
// motion sensors: a single read-only bool-like state plus an optional
// "StatusLowBattery" companion.
type binarySensorBuilder struct{}

func (binarySensorBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "State", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	if asBool(in.Raw["low_battery"], false) {
		addChar(s, "StatusLowBattery", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	}
	return s, nil
}

// valveBuilder covers water-valve: active/in-use plus a settable
// default duration, per spec.md §4.4.
type valveBuilder struct{}

func (valveBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 1, 0, 0)
	addChar(s, "Active", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "InUse", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "SetDuration", model.FormatUint32, model.PermRead|model.PermWrite, uint32(asInt(in.Raw["default_duration_sec"], 60)))
	s.NumI[0] = int8(asInt(in.Raw["auto_off_sec"], 0))
	return s, nil
}

// fanBuilder covers fan: on/off plus an optional rotation speed.
type fanBuilder struct{}

func (fanBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "On", model.FormatBool, model.PermRead|model.PermWrite|model.PermNotify, false)
	if asBool(in.Raw["has_speed"], false) {
		addChar(s, "RotationSpeed", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, float64(100))
	}
	return s, nil
}

// batteryBuilder covers battery: level + charging state + low-battery.
type batteryBuilder struct{}

func (batteryBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "BatteryLevel", model.FormatUint8, model.PermRead|model.PermNotify, uint8(100))
	addChar(s, "ChargingState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "StatusLowBattery", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	return s, nil
}

// tvBuilder covers tv: active + active identifier, a thin pass-through
// target for IR/RF macros rather than a full input-source model.
type tvBuilder struct{}

func (tvBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "Active", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "ActiveIdentifier", model.FormatUint32, model.PermRead|model.PermWrite|model.PermNotify, uint32(1))
	return s, nil
}

// rootDeviceBuilder covers root-device: the bridge accessory itself,
// carrying only system-level identify/firmware-rev characteristics.
type rootDeviceBuilder struct{}

func (rootDeviceBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "Identify", model.FormatBool, model.PermWrite, false)
	return s, nil
}
