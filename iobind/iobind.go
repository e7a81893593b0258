// Package iobind defines the narrow interfaces the accessory runtime
// programs against for physical I/O. Per spec.md §1, the low-level
// drivers themselves (GPIO toggling, I²C master, UART framing, ADC read,
// RMT/NRZ bit generation, PWM generation, sensor protocols) are external
// collaborators — out of scope for this core. Only their interfaces are
// specified here (spec.md §6), in the shape the example pack's
// tinygo.org/x/drivers already uses, so a real board-support package can
// satisfy them without this core importing any MCU-specific code.
package iobind

import (
	"time"

	"tinygo.org/x/drivers"
)

// GPIOWriter drives a single logical output, local or on an MCP23017
// expander (spec.md's "extended GPIO" = bank*100 + pin).
type GPIOWriter interface {
	SetGPIO(extendedGPIO int, high bool) error
}

// GPIOReader reads a single logical input (digital sensors, buttons,
// door/cover position switches).
type GPIOReader interface {
	ReadGPIO(extendedGPIO int) (bool, error)
}

// PWMChannel sets duty (0..PWMScale) and, optionally, frequency on a
// named PWM channel.
type PWMChannel interface {
	SetDuty(channel string, duty uint16) error
	SetFreq(channel string, freqHz uint32) error
}

// NRZStrip transmits a channel-mapped pixel buffer over an addressable
// LED string using the configured (T0H,T1H,T0L) bit timings.
type NRZStrip interface {
	WriteRange(gpio int, rangeStart, rangeEnd int, buf []byte) error
}

// I2CBus is satisfied directly by tinygo.org/x/drivers.I2C, giving
// sensor adaptors (AHT20-class temp/humidity, SI7053, ADE7953/HLW power
// meters) a single shared bus abstraction.
type I2CBus = drivers.I2C

// UARTPort is a byte-oriented UART endpoint used both for the UART TX
// action (spec.md §4.1) and for polled UART receivers (spec.md §3).
type UARTPort interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
}

// ADCReader reads a raw ADC sample on a logical channel, used by
// free-monitor ADC sources (spec.md §4.6).
type ADCReader interface {
	ReadADC(channel int) (uint16, error)
}

// PulseMeter measures either pulse frequency or pulse µs duration on a
// GPIO, optionally after pulsing a trigger GPIO first (free-monitor
// pulse sources, spec.md §4.6).
type PulseMeter interface {
	MeasureFrequencyHz(gpio int, window time.Duration) (float64, error)
	MeasurePulseUS(gpio int) (float64, error)
}

// ICMPPinger performs the external ping-input probe (spec.md §3 Ping
// input); the ICMP echo implementation itself is out of scope.
type ICMPPinger interface {
	Ping(host string, timeout time.Duration) (bool, error)
}
