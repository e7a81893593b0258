package model

// Accessory groups one or more Services exposed as a single RPC unit
// (spec.md §3). The first Accessory is the bridge when more than a
// threshold of services are exposed across the whole Registry.
type Accessory struct {
	Services []*Service

	// IsBridge marks the synthetic bridge accessory (device-info service).
	IsBridge bool

	// HasSetupOptions marks the accessory carrying the hidden
	// "setup options" service; exactly one Accessory carries it.
	HasSetupOptions bool

	Name, Manufacturer, Model, Firmware, Serial string
}

// BridgeThreshold is the service-count above which a bridge accessory is
// synthesized to hold every service, per spec.md §3.
const BridgeThreshold = 1
