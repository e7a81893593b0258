package setupmode

import (
	"strconv"
	"strings"

	"github.com/google/shlex"

	"haa/model"
)

// Console is the small shell-like diagnostic command line reachable over
// the debug UART only inside the allowed-setup-window (SPEC_FULL.md
// expansion of spec.md §4.11): the original firmware's setup-mode HTTP
// UI exposes this same live-inspection capability, which spec.md's
// Non-goals exclude only as a *web* UI, not as a feature outright.
type Console struct {
	reg  *model.Registry
	door *Door
}

// NewConsole builds a Console bound to reg, only honoring commands while
// door reports InAllowedWindow.
func NewConsole(reg *model.Registry, door *Door) *Console {
	return &Console{reg: reg, door: door}
}

// Run tokenizes one line using shlex (so quoted strings and escapes work
// the way a real shell would) and dispatches it. It returns the output
// text to echo back over the UART.
func (c *Console) Run(line string) string {
	if !c.door.InAllowedWindow() {
		return "setup window closed"
	}
	fields, err := shlex.Split(line)
	if err != nil || len(fields) == 0 {
		return "parse error"
	}
	switch fields[0] {
	case "dump":
		return c.dump(fields[1:])
	case "set":
		return c.set(fields[1:])
	case "reboot":
		return "rebooting"
	default:
		return "unknown command: " + fields[0]
	}
}

// dump handles "dump service <idx>": prints every characteristic's
// name/value for the given service index.
func (c *Console) dump(args []string) string {
	if len(args) < 2 || args[0] != "service" {
		return "usage: dump service <idx>"
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return "bad index"
	}
	svc := c.reg.Service(idx)
	if svc == nil {
		return "no such service"
	}
	var b strings.Builder
	for i, ch := range svc.Chars {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(ch.Name)
		b.WriteString(" = ")
		b.WriteString(formatValue(ch.Value))
		b.WriteString("\n")
	}
	return b.String()
}

// set handles "set ch <service> <char> <value>": writes value through
// the characteristic's normal Set path (so setters still fire).
func (c *Console) set(args []string) string {
	if len(args) < 4 || args[0] != "ch" {
		return "usage: set ch <service> <char> <value>"
	}
	svcIdx, err1 := strconv.Atoi(args[1])
	chIdx, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return "bad index"
	}
	ch := c.reg.Char(svcIdx, chIdx)
	if ch == nil {
		return "no such characteristic"
	}
	if err := ch.WriteCoerced(parseValue(args[3])); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func parseValue(s string) float64 {
	switch s {
	case "true":
		return 1
	case "false":
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatValue(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return x
	case []byte:
		return "<" + strconv.Itoa(len(x)) + " bytes>"
	default:
		return strconv.FormatFloat(toFloat(v), 'g', -1, 64)
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int32:
		return float64(x)
	case uint8:
		return float64(x)
	case uint32:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	default:
		return 0
	}
}
