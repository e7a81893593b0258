// Package persist implements the key/value persistence layer (spec.md
// §4.10): keys are "<service_index*100 + ch_index>", typed accessors for
// bool/int8/int32/string, and the last-state save-debounce/boot-prime
// logic. The non-volatile store itself is named as an external
// collaborator by spec.md §1; Store is the interface this core programs
// against, and FileStore is a host-testable reference implementation
// (the teacher ships *_host.go driver variants alongside MCU drivers in
// the same spirit — services/hal/internal/devices/aht20adpt/driver_host.go).
package persist

import "haa/x/strconvx"

// Store is the narrow key/value surface the accessory runtime needs.
type Store interface {
	GetBool(key string) (bool, bool)
	SetBool(key string, v bool) error
	GetInt8(key string) (int8, bool)
	SetInt8(key string, v int8) error
	GetInt32(key string) (int32, bool)
	SetInt32(key string, v int32) error
	GetString(key string) (string, bool)
	SetString(key string, v string) error
	GetBytes(key string) ([]byte, bool)
	SetBytes(key string, v []byte) error
}

// Key returns the canonical persistence key for a (service, characteristic)
// pair, per spec.md §4.10: "service_index*100 + ch_index".
func Key(serviceIndex, chIndex int) string {
	return strconvx.Itoa(serviceIndex*100 + chIndex)
}

// Well-known keys outside the per-characteristic scheme (spec.md §6).
const (
	KeySetupMode    = "haa_setup_mode"
	KeyWifiSSID     = "wifi_ssid"
	KeyWifiPassword = "wifi_password"
	KeyLastConfigNo = "last_config_number"
	KeyHomekitRePair = "homekit_re_pair"
	KeyTotalServices = "total_services"
)
