package config

import (
	"time"

	"haa/model"
	"haa/services/freemonitor"
	"haa/services/history"
)

// floatSensorBuilder covers temp-sensor/hum-sensor/light-sensor: a
// single read-only float value plus error-budget scratch state.
type floatSensorBuilder struct{}

func (floatSensorBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 1, 1, 0)
	addChar(s, "Value", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	return s, nil
}

// thSensorBuilder covers th-sensor: combined temperature+humidity.
type thSensorBuilder struct{}

func (thSensorBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 1, 2, 0)
	addChar(s, "CurrentTemperature", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	addChar(s, "CurrentRelativeHumidity", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	return s, nil
}

// airQualityBuilder covers air-quality: a discrete quality index plus
// an optional raw PM/VOC float reading.
type airQualityBuilder struct{}

func (airQualityBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 1, 0)
	addChar(s, "AirQuality", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "Raw", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	return s, nil
}

// powerMonitorBuilder covers power-monitor: voltage/current/power
// triplet, one of the teacher's native domains (ltc4015 adaptor) now
// exposed as three free-float characteristics rather than a
// device-specific struct.
type powerMonitorBuilder struct{}

func (powerMonitorBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 3, 0)
	addChar(s, "Voltage", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	addChar(s, "Current", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	addChar(s, "Power", model.FormatFloat, model.PermRead|model.PermNotify, float64(0))
	return s, nil
}

// freeMonitorBuilder covers free-monitor and free-monitor-accumulative
// (spec.md §4.6): a single published float plus the NumF scratch slots
// the services/freemonitor package uses for factor/offset/limits/prior
// accumulation.
type freeMonitorBuilder struct {
	accumulative bool
}

func (b freeMonitorBuilder) Build(in BuildInput) (*model.Service, error) {
	// NumF layout: [0]=factor [1]=offset [2]=lower [3]=upper [4]=prior accumulated value.
	s := newService(in, 1, 5, 8)
	addChar(s, "Value", model.FormatFloat, model.PermRead|model.PermWrite|model.PermNotify, float64(0))
	s.NumF[0] = asFloat(in.Raw["factor"], 1)
	s.NumF[1] = asFloat(in.Raw["offset"], 0)
	s.NumF[2] = asFloat(in.Raw["lower_limit"], -1e300)
	s.NumF[3] = asFloat(in.Raw["upper_limit"], 1e300)
	if b.accumulative {
		s.NumI[0] = 1
	}
	s.Aux = parseFreeMonitorSource(in)
	return s, nil
}

// parseFreeMonitorSource reads the "source" object free-monitor config
// carries (spec.md §4.6's source taxonomy) into a freemonitor.Aux, along
// with the top-level target_service/target_ch cross-service propagation
// fields. An absent "source" leaves Kind at its zero value, SourceFree,
// which is not sampled periodically; its value changes only through
// writes to its Value characteristic.
func parseFreeMonitorSource(in BuildInput) *freemonitor.Aux {
	aux := &freemonitor.Aux{
		TargetService: model.ResolveRelative(in.Index, asInt(in.Raw["target_service"], 0)),
		TargetChar:    asInt(in.Raw["target_ch"], 0),
	}
	src, ok := asObj(in.Raw["source"])
	if !ok {
		return aux
	}
	aux.Period = time.Duration(asInt(src["period_ms"], 1000)) * time.Millisecond
	switch asString(src["kind"], "free") {
	case "maths":
		aux.Kind = freemonitor.SourceMaths
		aux.Ops = parseMathOps(in.Index, src["ops"])
	case "pulse_freq":
		aux.Kind = freemonitor.SourcePulseFreq
		aux.GPIO = asInt(src["gpio"], 0)
		aux.TriggerGPIO = asInt(src["trigger_gpio"], 0)
		aux.PulseWindow = time.Duration(asInt(src["pulse_window_ms"], 100)) * time.Millisecond
	case "pulse_time":
		aux.Kind = freemonitor.SourcePulseTime
		aux.GPIO = asInt(src["gpio"], 0)
		aux.TriggerGPIO = asInt(src["trigger_gpio"], 0)
	case "adc":
		aux.Kind = freemonitor.SourceADC
		aux.ADCChannel = asInt(src["adc_channel"], 0)
		aux.ADCInvert = asBool(src["adc_invert"], false)
	case "network":
		aux.Kind = freemonitor.SourceNetwork
		parseNetworkSource(aux, src)
	case "i2c":
		aux.Kind = freemonitor.SourceI2C
		aux.I2CBus = asString(src["i2c_bus"], "i2c0")
		aux.I2CAddr = uint16(asInt(src["i2c_addr"], 0))
		aux.HasTrigger = asBool(src["has_trigger"], false)
		aux.TriggerReg = byte(asInt(src["trigger_reg"], 0))
		aux.TriggerDelay = time.Duration(asInt(src["trigger_delay_ms"], 0)) * time.Millisecond
		aux.ReadReg = byte(asInt(src["read_reg"], 0))
		aux.ReadLen = asInt(src["read_len"], 1)
		aux.BigEndian = asBool(src["big_endian"], false)
		aux.Signed = asBool(src["signed"], false)
	case "uart":
		aux.Kind = freemonitor.SourceUART
		aux.UARTPort = asString(src["uart_port"], "")
		parsePatternMatch(aux, src)
	default:
		aux.Kind = freemonitor.SourceFree
	}
	return aux
}

func parseNetworkSource(aux *freemonitor.Aux, src obj) {
	aux.Host = asString(src["host"], "")
	aux.Port = asInt(src["port"], 80)
	aux.Path = asString(src["path"], "/")
	aux.Method = asString(src["method"], "GET")
	aux.Raw = asBool(src["raw"], false)
	aux.Body = asString(src["body"], "")
	parsePatternMatch(aux, src)
}

func parsePatternMatch(aux *freemonitor.Aux, src obj) {
	aux.MatchText = asString(src["match_text"], "")
	aux.MatchHex = asBytes(src["match_hex"], nil)
	aux.ByteOffset = asInt(src["byte_offset"], 0)
	aux.Width = asInt(src["width"], 0)
	aux.BigEndian = asBool(src["big_endian"], false)
	aux.Signed = asBool(src["signed"], false)
}

// parseMathOps parses spec.md §4.6's maths operand list: each entry is
// an operator plus exactly one of a literal, a (service, ch) reference
// resolved through the same relative-index scheme action entries use, a
// wall-clock field name, or the "rng" marker for the hardware-RNG
// operand.
func parseMathOps(current int, v any) []freemonitor.Operand {
	items, ok := asArr(v)
	if !ok {
		return nil
	}
	out := make([]freemonitor.Operand, 0, len(items))
	for _, item := range items {
		o, ok := asObj(item)
		if !ok {
			continue
		}
		op := freemonitor.Operand{Operator: parseMathOperator(asString(o["op"], "add"))}
		switch {
		case o["ref_service"] != nil:
			op.Kind = freemonitor.OperandChar
			op.RefSvc = model.ResolveRelative(current, asInt(o["ref_service"], 0))
			op.RefCh = asInt(o["ref_ch"], 0)
		case o["clock"] != nil:
			op.Kind = freemonitor.OperandClock
			op.Field = asString(o["clock"], "sec")
		case asBool(o["rng"], false):
			op.Kind = freemonitor.OperandRNG
		default:
			op.Kind = freemonitor.OperandLiteral
			op.Literal = asFloat(o["literal"], 0)
		}
		out = append(out, op)
	}
	return out
}

func parseMathOperator(s string) freemonitor.Operator {
	switch s {
	case "sub":
		return freemonitor.OpSub
	case "rsub":
		return freemonitor.OpRevSub
	case "mul":
		return freemonitor.OpMul
	case "div":
		return freemonitor.OpDiv
	case "rdiv":
		return freemonitor.OpRevDiv
	case "mod":
		return freemonitor.OpMod
	case "rmod":
		return freemonitor.OpRevMod
	case "pow":
		return freemonitor.OpPow
	case "rpow":
		return freemonitor.OpRevPow
	case "recip":
		return freemonitor.OpRecip
	case "abs":
		return freemonitor.OpAbs
	default:
		return freemonitor.OpAdd
	}
}

// dataHistoryBuilder covers data-history: N opaque-byte blocks plus a
// scalar cursor (spec.md §4.7). BlockCount and block size are
// config-driven; "target_service"/"target_ch" name the monitored
// characteristic the registry samples from, via history.Aux in
// Service.Aux, resolved through the same relative-index scheme action
// entries use.
type dataHistoryBuilder struct{}

const histBlockSize = 512

func (dataHistoryBuilder) Build(in BuildInput) (*model.Service, error) {
	blocks := asInt(in.Raw["blocks"], 4)
	if blocks < 1 {
		blocks = 1
	}
	s := newService(in, 0, 1, 0) // NumF[0] = write cursor (float64, since capacity can exceed int8 range)
	for i := 0; i < blocks; i++ {
		addChar(s, "HistoryBlock", model.FormatBytes, model.PermRead, make([]byte, histBlockSize))
	}
	s.Aux = &history.Aux{
		TargetService: model.ResolveRelative(in.Index, asInt(in.Raw["target_service"], 0)),
		TargetChar:    asInt(in.Raw["target_ch"], 0),
		Period:        time.Duration(asInt(in.Raw["period_ms"], 0)) * time.Millisecond,
	}
	return s, nil
}
