package irrf

import "time"

// Sink is the thin hardware boundary for transmission. A real board
// support package implements it against RMT/bit-bang GPIO; this package
// never touches hardware directly (spec.md §1 keeps the RMT/NRZ bit
// generator external).
type Sink interface {
	SetLevel(high bool)
	SleepUS(us uint32)
}

// Transmit runs the repeat/pause framing and carrier generation rule
// from spec.md §4.9: for IR (freqHz > 1000, i.e. a real carrier
// frequency in Hz) the output toggles at period 1/(2f) for the duration
// of each MARK; for RF (freqHz <= 1) the output is a straight level for
// MARK and idle for SPACE. The whole call is meant to run inside a
// single hard critical section (spec.md §5): it never yields control
// back to the caller mid-frame.
func Transmit(sink Sink, pulses []uint32, freqHz uint32, repeats int, pause time.Duration) {
	if repeats < 1 {
		repeats = 1
	}
	for r := 0; r < repeats; r++ {
		transmitOnce(sink, pulses, freqHz)
		if r < repeats-1 && pause > 0 {
			sink.SetLevel(false)
			sink.SleepUS(uint32(pause / time.Microsecond))
		}
	}
}

func transmitOnce(sink Sink, pulses []uint32, freqHz uint32) {
	carrier := freqHz > 1000
	var halfPeriodUS uint32
	if carrier {
		halfPeriodUS = 500_000 / freqHz // 1/(2f) in µs
		if halfPeriodUS == 0 {
			halfPeriodUS = 1
		}
	}
	for i, d := range pulses {
		mark := i%2 == 0
		if !mark {
			sink.SetLevel(false)
			sink.SleepUS(d)
			continue
		}
		if !carrier {
			sink.SetLevel(true)
			sink.SleepUS(d)
			continue
		}
		remaining := d
		level := true
		for remaining > 0 {
			step := halfPeriodUS
			if step > remaining {
				step = remaining
			}
			sink.SetLevel(level)
			sink.SleepUS(step)
			level = !level
			remaining -= step
		}
	}
	sink.SetLevel(false)
}
