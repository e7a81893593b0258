package config

import (
	"fmt"
	"sync"

	"haa/model"
)

// Builder constructs a Service's characteristic set and scratch-array
// sizing for one service-type tag. Action/wildcard decoding is generic
// and handled by the loader itself; a Builder only owns what varies per
// type (spec.md §6 "service-specific fields").
type Builder interface {
	Build(in BuildInput) (*model.Service, error)
}

// BuildInput carries the per-accessory JSON object plus the dense index
// already assigned to it, mirroring the teacher's hal.BuildInput shape
// (services/hal/registry.go).
type BuildInput struct {
	Index int
	Type  model.ServiceType
	Raw   obj
}

var (
	muBuilders sync.RWMutex
	builders   = map[model.ServiceType]Builder{}
)

// RegisterBuilder installs a builder for a given service-type tag. It
// panics on duplicate registration, the same fail-fast-at-init-time
// contract as the teacher's hal.RegisterBuilder.
func RegisterBuilder(t model.ServiceType, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if _, exists := builders[t]; exists {
		panic(fmt.Sprintf("config: builder already registered for type %q", t))
	}
	builders[t] = b
}

func findBuilder(t model.ServiceType) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[t]
	return b, ok
}

func init() {
	RegisterBuilder(model.TypeSwitch, simpleOnOffBuilder{})
	RegisterBuilder(model.TypeOutlet, simpleOnOffBuilder{})
	RegisterBuilder(model.TypeButton, buttonBuilder{})
	RegisterBuilder(model.TypeDoorbell, buttonBuilder{})
	RegisterBuilder(model.TypeLock, lockBuilder{})
	RegisterBuilder(model.TypeContactSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeOccupancySensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeLeakSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeSmokeSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeCOSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeCO2Sensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeFilterChangeSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeMotionSensor, binarySensorBuilder{})
	RegisterBuilder(model.TypeAirQuality, airQualityBuilder{})
	RegisterBuilder(model.TypeWaterValve, valveBuilder{})
	RegisterBuilder(model.TypeThermostat, thermostatBuilder{withHum: false})
	RegisterBuilder(model.TypeThermostatWithHum, thermostatBuilder{withHum: true})
	RegisterBuilder(model.TypeIAirZoning, iAirZoningBuilder{})
	RegisterBuilder(model.TypeTempSensor, floatSensorBuilder{})
	RegisterBuilder(model.TypeHumSensor, floatSensorBuilder{})
	RegisterBuilder(model.TypeTHSensor, thSensorBuilder{})
	RegisterBuilder(model.TypeHumidifier, humidifierBuilder{withTemp: false})
	RegisterBuilder(model.TypeHumidifierWithTemp, humidifierBuilder{withTemp: true})
	RegisterBuilder(model.TypeLightbulb, lightbulbBuilder{})
	RegisterBuilder(model.TypeGarageDoor, garageDoorBuilder{})
	RegisterBuilder(model.TypeWindowCover, windowCoverBuilder{})
	RegisterBuilder(model.TypeLightSensor, floatSensorBuilder{})
	RegisterBuilder(model.TypeSecuritySystem, securitySystemBuilder{})
	RegisterBuilder(model.TypeTV, tvBuilder{})
	RegisterBuilder(model.TypeFan, fanBuilder{})
	RegisterBuilder(model.TypeBattery, batteryBuilder{})
	RegisterBuilder(model.TypePowerMonitor, powerMonitorBuilder{})
	RegisterBuilder(model.TypeFreeMonitor, freeMonitorBuilder{accumulative: false})
	RegisterBuilder(model.TypeFreeMonitorAccum, freeMonitorBuilder{accumulative: true})
	RegisterBuilder(model.TypeDataHistory, dataHistoryBuilder{})
	RegisterBuilder(model.TypeRootDevice, rootDeviceBuilder{})
}

// newService allocates the common Service skeleton every builder starts from.
func newService(in BuildInput, numI, numF, wildcards int) *model.Service {
	return &model.Service{
		Index:        in.Index,
		Type:         in.Type,
		NumI:         make([]int8, numI),
		NumF:         make([]float64, numF),
		LastWildcard: make([]float64, wildcards),
		MainEnabled:  asBool(in.Raw["enabled"], true),
		ChildEnabled: true,
		Homekit:      homekitVisibility(in.Raw["homekit"]),
	}
}

func homekitVisibility(v any) model.HomekitVisibility {
	switch asString(v, "visible") {
	case "hidden":
		return model.HomekitHidden
	case "off":
		return model.HomekitOff
	default:
		return model.HomekitVisible
	}
}

func addChar(s *model.Service, name string, format model.Format, perms model.Perm, initial any) *model.Characteristic {
	c := &model.Characteristic{Name: name, Format: format, Perms: perms, Value: initial}
	s.Chars = append(s.Chars, c)
	return c
}
