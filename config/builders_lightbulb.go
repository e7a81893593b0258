package config

import (
	"haa/model"
	"haa/services/lightbulb"
	"haa/services/lightbulb/colorengine"
)

// lightbulbBuilder covers lightbulb (spec.md §4.2): the On/Brightness/
// Hue/Saturation/ColorTemperature characteristics plus the static color
// engine configuration stashed in Service.Aux.
type lightbulbBuilder struct{}

func (lightbulbBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 0, 0)
	addChar(s, "On", model.FormatBool, model.PermRead|model.PermWrite|model.PermNotify, false)
	addChar(s, "Brightness", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["initial_brightness"], 100))

	channels := asInt(in.Raw["channels"], 3)
	if channels >= 3 {
		addChar(s, "Hue", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["initial_hue"], 0))
		addChar(s, "Saturation", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, asFloat(in.Raw["initial_sat"], 0))
	}
	if channels == 2 {
		addChar(s, "ColorTemperature", model.FormatUint32, model.PermRead|model.PermWrite|model.PermNotify, uint32(asFloat(in.Raw["color_temp_min"], 140)))
	}

	aux := &lightbulb.Aux{
		Color: colorengine.Config{
			Channels:     channels,
			WhitePoint:   parsePrimary(in.Raw["white_point"], colorengine.Primary{X: 0.3127, Y: 0.3290}),
			Red:          parsePrimary(in.Raw["red_primary"], colorengine.Primary{X: 0.700, Y: 0.300}),
			Green:        parsePrimary(in.Raw["green_primary"], colorengine.Primary{X: 0.172, Y: 0.747}),
			Blue:         parsePrimary(in.Raw["blue_primary"], colorengine.Primary{X: 0.135, Y: 0.039}),
			CurveFactor:  asFloat(in.Raw["curve_factor"], 0),
			MaxPowerCap:  asFloat(in.Raw["max_power_cap"], 0),
			ColorTempMin: asFloat(in.Raw["color_temp_min"], 140),
			ColorTempMax: asFloat(in.Raw["color_temp_max"], 500),
		},
		NRZGPIO:           asInt(in.Raw["nrz_gpio"], -1),
		RangeStart:        asInt(in.Raw["range_start"], 0),
		RangeEnd:          asInt(in.Raw["range_end"], 1),
		StepPerTick:       uint16(asInt(in.Raw["step_per_tick"], 256)),
		AutodimmerStepPct: asInt(in.Raw["autodimmer_step_pct"], 5),
		AutodimmerDelayMS: asInt(in.Raw["autodimmer_delay_ms"], 50),
	}
	if flux, ok := asArr(in.Raw["flux"]); ok {
		for i, f := range flux {
			if i >= 5 {
				break
			}
			aux.Color.Flux[i] = asFloat(f, 1)
		}
	} else {
		for i := range aux.Color.Flux {
			aux.Color.Flux[i] = 1
		}
	}
	if pwm, ok := asArr(in.Raw["pwm_channels"]); ok {
		for _, c := range pwm {
			if name, ok := c.(string); ok {
				aux.PWMChannels = append(aux.PWMChannels, name)
			}
		}
	}
	if cm, ok := asArr(in.Raw["channel_map"]); ok {
		for _, c := range cm {
			aux.ChannelMap = append(aux.ChannelMap, asInt(c, 0))
		}
	}
	s.Aux = aux
	return s, nil
}

func parsePrimary(v any, def colorengine.Primary) colorengine.Primary {
	o, ok := asObj(v)
	if !ok {
		return def
	}
	return colorengine.Primary{X: asFloat(o["x"], def.X), Y: asFloat(o["y"], def.Y)}
}
