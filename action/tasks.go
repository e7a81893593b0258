package action

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"haa/irrf"
	"haa/model"
)

func timeAfterMS(ms int) <-chan time.Time {
	return time.After(time.Duration(ms) * time.Millisecond)
}

// runNetwork performs one network action, HTTP-style or raw TCP/UDP
// (spec.md §4.1 Network entry). Errors are swallowed here: a failed
// notification action must not crash the worker pool, matching the
// network_error taxonomy (spec.md §7); the failure is not logged or
// reported anywhere.
func runNetwork(ctx context.Context, reg *model.Registry, n model.NetworkAction) {
	body := renderTemplate(reg, n.Template)
	timeout := time.Duration(n.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if n.Raw {
		runRawSend(cctx, n, body)
		return
	}

	url := fmt.Sprintf("http://%s:%d%s", n.Host, n.Port, n.Path)
	method := n.Method
	if method == "" {
		method = "GET"
	}
	req, err := http.NewRequestWithContext(cctx, method, url, strings.NewReader(body))
	if err != nil {
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if n.ReadReply {
		io.Copy(io.Discard, resp.Body)
	}
}

func runRawSend(ctx context.Context, n model.NetworkAction, body string) {
	d := net.Dialer{}
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.Write([]byte(body))
	if n.ReadReply {
		buf := make([]byte, 512)
		conn.Read(buf)
	}
}

// runUART performs one UART write action (spec.md §4.1 UART entry).
// The actual UARTPort lookup by name is the caller's concern; here we
// only have the port name, so this is stubbed to the byte plumbing a
// real board-support wiring supplies via a registered iobind.UARTPort.
var uartPorts = map[string]interface {
	Write([]byte) (int, error)
}{}

// RegisterUARTPort installs the named port a UART action writes to.
func RegisterUARTPort(name string, port interface{ Write([]byte) (int, error) }) {
	uartPorts[name] = port
}

func runUART(ctx context.Context, u model.UARTAction) {
	port, ok := uartPorts[u.Port]
	if !ok {
		return
	}
	payload := u.Raw
	if len(payload) == 0 && u.Text != "" {
		payload = []byte(u.Text)
	}
	if len(payload) == 0 {
		return
	}
	port.Write(payload)
	if u.PauseMS > 0 {
		select {
		case <-ctx.Done():
		case <-timeAfterMS(u.PauseMS):
		}
	}
}

// runIRRF performs one IR/RF transmit action (spec.md §4.1 IR/RF entry).
func runIRRF(ctx context.Context, sink irrf.Sink, svc *model.Service, tx model.IRRFAction) {
	if sink == nil {
		return
	}
	var pulses []uint32
	if tx.Raw != "" {
		p, err := irrf.ParseProtocolString(tx.Raw)
		if err != nil {
			return
		}
		pulses = append(pulses, p.HeaderMark, p.HeaderSpace)
		for _, b := range p.Bits {
			pulses = append(pulses, b[0], b[1])
		}
		pulses = append(pulses, p.FooterMark)
	} else {
		protocol := tx.Protocol
		if protocol == "" {
			protocol = svc.IRProtocol
		}
		p, err := irrf.ParseProtocolString(protocol)
		if err != nil {
			return
		}
		pulses = irrf.Encode(p, tx.Code)
	}
	pause := time.Duration(tx.PauseMS) * time.Millisecond
	irrf.Transmit(sink, pulses, tx.FreqHz, tx.Repeats, pause)
}
