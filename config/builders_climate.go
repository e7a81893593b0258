package config

import "haa/model"

// thermostatBuilder covers thermostat/thermostat-with-hum (spec.md
// §4.3): current-temp, current-hum (when withHum), active, current-
// state, target-mode, heater-threshold, cooler-threshold.
type thermostatBuilder struct {
	withHum bool
}

func (b thermostatBuilder) Build(in BuildInput) (*model.Service, error) {
	// NumI[0]=last ThermoState (services/thermostat.ThermoState)
	// NumF layout: [0]=deadband [1]=soft_on_offset [2]=force_idle_offset.
	s := newService(in, 1, 3, 4)
	addChar(s, "CurrentTemperature", model.FormatFloat, model.PermRead|model.PermNotify, float64(20))
	if b.withHum {
		addChar(s, "CurrentRelativeHumidity", model.FormatFloat, model.PermRead|model.PermNotify, float64(50))
	}
	addChar(s, "Active", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "CurrentHeatingCoolingState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "TargetHeatingCoolingState", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "HeatingThresholdTemperature", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["heater_threshold"], 20))
	addChar(s, "CoolingThresholdTemperature", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["cooler_threshold"], 25))

	s.NumF[0] = asFloat(in.Raw["deadband"], 0.5)
	s.NumF[1] = asFloat(in.Raw["soft_on_offset"], 1)
	s.NumF[2] = asFloat(in.Raw["force_idle_offset"], 2)
	return s, nil
}

// humidifierBuilder covers humidifier/humidifier-with-temp: the same
// seven-characteristic shape as thermostatBuilder but for relative
// humidity, per spec.md §4.3 "humidifier: analogous".
type humidifierBuilder struct {
	withTemp bool
}

func (b humidifierBuilder) Build(in BuildInput) (*model.Service, error) {
	// NumI[0]=last ThermoState, NumI[1]=mode bias (servMgrHumidifier <0 branch).
	s := newService(in, 2, 3, 4)
	addChar(s, "CurrentRelativeHumidity", model.FormatFloat, model.PermRead|model.PermNotify, float64(50))
	if b.withTemp {
		addChar(s, "CurrentTemperature", model.FormatFloat, model.PermRead|model.PermNotify, float64(20))
	}
	addChar(s, "Active", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "CurrentHumidifierDehumidifierState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "TargetHumidifierDehumidifierState", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "HumidifierThreshold", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["heater_threshold"], 45))
	addChar(s, "DehumidifierThreshold", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["cooler_threshold"], 55))

	s.NumF[0] = asFloat(in.Raw["deadband"], 2)
	s.NumF[1] = asFloat(in.Raw["soft_on_offset"], 3)
	s.NumF[2] = asFloat(in.Raw["force_idle_offset"], 5)
	return s, nil
}

// iAirZoningBuilder covers iAirZoning: no characteristics of its own
// beyond an active flag, since it is purely an aggregator over other
// thermostat services referenced by relative index (spec.md §4.3).
type iAirZoningBuilder struct{}

// ZoneIndices is the iAirZoning Aux: the absolute service indices of the
// thermostat/humidifier zones it aggregates, resolved from the config's
// relative offsets at build time via model.ResolveRelative (the same
// relative-addressing scheme action entries use).
type ZoneIndices struct {
	Zones []int
}

func (iAirZoningBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 1, 1, 0) // NumI[0]=gate close delay sec, NumF[0]=current main mode
	addChar(s, "Active", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	s.NumI[0] = int8(asInt(in.Raw["gate_delay_sec"], 2))
	if zones, ok := asArr(in.Raw["zones"]); ok {
		zi := &ZoneIndices{Zones: make([]int, 0, len(zones))}
		for _, z := range zones {
			zi.Zones = append(zi.Zones, model.ResolveRelative(in.Index, asInt(z, 0)))
		}
		s.Aux = zi
	}
	return s, nil
}
