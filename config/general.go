package config

// General holds the "c" top-level config section (spec.md §6): Wi-Fi
// hint, bus/pin wiring, IR/RF transmit pins, status LED, timing knobs,
// and HomeKit-facing bridge settings.
type General struct {
	WifiSSIDHint string

	UARTs []UARTConfig
	I2CBuses []I2CBusConfig
	MCP23017Banks []MCP23017Bank
	GPIOInit []GPIOInit

	StatusLEDPin     int
	StatusLEDInvert  bool

	IRTxPin    int
	IRTxFreqHz uint32
	IRTxInvert bool

	RFTxPin    int
	RFTxInvert bool

	PingPollSec      int
	AllowedSetupSec  int
	SetupToggleCount int

	BridgeHostname string
	NTPHost        string
	Timezone       string

	Timetable []TimetableEntry

	HomekitMaxClients int
	HomekitCategory   string
	MDNSTTLSec        int
}

type UARTConfig struct {
	Name     string
	BaudRate int
	TxPin    int
	RxPin    int
}

type I2CBusConfig struct {
	Name  string
	SDA   int
	SCL   int
	Speed int
}

type MCP23017Bank struct {
	Index int
	Bus   string
	Addr  uint8
}

type GPIOInit struct {
	Pin       int
	Mode      string // "in", "out", "in_pullup", "in_pulldown"
	Initial   bool
}

// TimetableEntry mirrors timer.Entry's wildcard fields ahead of being
// handed to the timer package, keeping config free of a timer import.
type TimetableEntry struct {
	Month, Day, Weekday, Hour, Minute int
	ActionID                         int
}

func parseGeneral(m obj) General {
	g := General{
		WifiSSIDHint:      asString(m["wifi_ssid_hint"], ""),
		StatusLEDPin:      asInt(m["status_led_pin"], -1),
		StatusLEDInvert:   asBool(m["status_led_invert"], false),
		IRTxPin:           asInt(m["ir_tx_pin"], -1),
		IRTxFreqHz:        uint32(asInt(m["ir_tx_freq"], 38000)),
		IRTxInvert:        asBool(m["ir_tx_invert"], false),
		RFTxPin:           asInt(m["rf_tx_pin"], -1),
		RFTxInvert:        asBool(m["rf_tx_invert"], false),
		PingPollSec:       asInt(m["ping_poll_sec"], 60),
		AllowedSetupSec:   asInt(m["allowed_setup_sec"], 60),
		SetupToggleCount:  asInt(m["setup_toggle_count"], 8),
		BridgeHostname:    asString(m["bridge_hostname"], "haa-bridge"),
		NTPHost:           asString(m["ntp_host"], "pool.ntp.org"),
		Timezone:          asString(m["timezone"], "UTC"),
		HomekitMaxClients: asInt(m["homekit_max_clients"], 8),
		HomekitCategory:   asString(m["homekit_category"], "bridge"),
		MDNSTTLSec:        asInt(m["mdns_ttl_sec"], 4500),
	}

	if a, ok := asArr(m["uarts"]); ok {
		for _, e := range a {
			o, ok := asObj(e)
			if !ok {
				continue
			}
			g.UARTs = append(g.UARTs, UARTConfig{
				Name:     asString(o["name"], ""),
				BaudRate: asInt(o["baud"], 9600),
				TxPin:    asInt(o["tx"], -1),
				RxPin:    asInt(o["rx"], -1),
			})
		}
	}
	if a, ok := asArr(m["i2c_buses"]); ok {
		for _, e := range a {
			o, ok := asObj(e)
			if !ok {
				continue
			}
			g.I2CBuses = append(g.I2CBuses, I2CBusConfig{
				Name:  asString(o["name"], ""),
				SDA:   asInt(o["sda"], -1),
				SCL:   asInt(o["scl"], -1),
				Speed: asInt(o["speed"], 100000),
			})
		}
	}
	if a, ok := asArr(m["mcp23017_banks"]); ok {
		for i, e := range a {
			o, ok := asObj(e)
			if !ok {
				continue
			}
			g.MCP23017Banks = append(g.MCP23017Banks, MCP23017Bank{
				Index: i,
				Bus:   asString(o["bus"], ""),
				Addr:  uint8(asInt(o["addr"], 0x20)),
			})
		}
	}
	if a, ok := asArr(m["gpio_init"]); ok {
		for _, e := range a {
			o, ok := asObj(e)
			if !ok {
				continue
			}
			g.GPIOInit = append(g.GPIOInit, GPIOInit{
				Pin:     asInt(o["pin"], -1),
				Mode:    asString(o["mode"], "in"),
				Initial: asBool(o["initial"], false),
			})
		}
	}
	if a, ok := asArr(m["timetable"]); ok {
		for _, e := range a {
			o, ok := asObj(e)
			if !ok {
				continue
			}
			g.Timetable = append(g.Timetable, TimetableEntry{
				Month:    asInt(o["mon"], -1),
				Day:      asInt(o["day"], -1),
				Weekday:  asInt(o["wday"], -1),
				Hour:     asInt(o["hour"], -1),
				Minute:   asInt(o["min"], -1),
				ActionID: asInt(o["action"], 0),
			})
		}
	}
	return g
}
