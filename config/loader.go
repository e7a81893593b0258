package config

import (
	"fmt"

	"haa/errcode"
	"haa/model"
)

// Runtime is everything config.Load produces: the service registry plus
// the general config section, ready for cmd/haa/main.go to wire into
// the bus, timers, and drivers.
type Runtime struct {
	General  General
	Registry *model.Registry
}

// Load decodes a full configuration document (spec.md §6 "c"/"a" top
// level) into a Runtime. It never touches persistence or hardware;
// priming characteristic defaults from the persistence store is the
// caller's job once the Registry exists (spec.md §4.10).
func Load(raw []byte) (*Runtime, error) {
	m, err := decodeDocument(raw)
	if err != nil {
		return nil, errcode.ConfigInvalid
	}

	general := General{}
	if c, ok := asObj(m["c"]); ok {
		general = parseGeneral(c)
	}

	accessoriesRaw, ok := asArr(m["a"])
	if !ok || len(accessoriesRaw) == 0 {
		return nil, errcode.ConfigInvalid
	}

	reg := model.NewRegistry()

	// Pass 1: build every service (assigns dense indices in config
	// order) before decoding actions, since action sub-arrays reference
	// other services by relative index resolved against the final index.
	type pending struct {
		raw obj
		acc *model.Accessory
	}
	var all []pending

	var curAccessory *model.Accessory
	for _, av := range accessoriesRaw {
		ao, ok := asObj(av)
		if !ok {
			continue
		}
		curAccessory = &model.Accessory{Name: asString(ao["name"], "")}
		reg.Accessories = append(reg.Accessories, curAccessory)

		services, ok := asArr(ao["services"])
		if !ok {
			// single-service accessory: the accessory object IS the service.
			services = arr{ao}
		}
		for _, sv := range services {
			so, ok := asObj(sv)
			if !ok {
				continue
			}
			t := model.ServiceType(asString(so["t"], ""))
			b, ok := findBuilder(t)
			if !ok {
				return nil, fmt.Errorf("%w: unknown service type %q", errcode.ConfigInvalid, t)
			}
			idx := reg.Len() + 1
			svc, err := b.Build(BuildInput{Index: idx, Type: t, Raw: so})
			if err != nil {
				return nil, err
			}
			reg.Add(svc)
			curAccessory.Services = append(curAccessory.Services, svc)
			all = append(all, pending{raw: so, acc: curAccessory})
		}
	}

	// Pass 2: decode actions/wildcards now that every service has its
	// final absolute index.
	for i, p := range all {
		svc := reg.Service(i + 1)
		decodeActions(svc, p.raw)
	}

	return &Runtime{General: general, Registry: reg}, nil
}
