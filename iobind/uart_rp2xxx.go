//go:build rp2040 || rp2350

package iobind

import (
	"github.com/jangala-dev/tinygo-uartx/uartx"
)

// rp2UARTPort adapts tinygo-uartx's interrupt-driven UART to the
// UARTPort interface the UART TX action (spec.md §4.1) and the polled
// UART receiver (spec.md §3) program against.
type rp2UARTPort struct{ u *uartx.UART }

func (r *rp2UARTPort) Write(p []byte) (int, error) { return r.u.Write(p) }
func (r *rp2UARTPort) Read(p []byte) (int, error)  { return r.u.Read(p) }

// SetBaudRate reconfigures the underlying UART's baud rate, used when a
// UART receiver config (spec.md §3) specifies a non-default rate.
func (r *rp2UARTPort) SetBaudRate(br uint32) { r.u.SetBaudRate(br) }

// DefaultUARTPorts exposes UART0 and UART1 on the RP2040/RP2350 family,
// named the way config's UART entries ("uart0", "uart1", ...) address
// them.
func DefaultUARTPorts() map[string]UARTPort {
	_ = uartx.UART0.Configure(uartx.UARTConfig{})
	_ = uartx.UART1.Configure(uartx.UARTConfig{})
	return map[string]UARTPort{
		"uart0": &rp2UARTPort{u: uartx.UART0},
		"uart1": &rp2UARTPort{u: uartx.UART1},
	}
}
