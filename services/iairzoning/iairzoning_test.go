package iairzoning

import (
	"testing"

	"haa/services/thermostat"
)

func TestMainModeForPrefersOnOverSoftOnOverIdle(t *testing.T) {
	views := []thermostat.View{
		{ServiceIndex: 1, Active: true, State: thermostat.Idle},
		{ServiceIndex: 2, Active: true, State: thermostat.SoftOn},
	}
	if got := mainModeFor(views); got != MainSoftOn {
		t.Fatalf("mainModeFor = %v, want MainSoftOn", got)
	}

	views = append(views, thermostat.View{ServiceIndex: 3, Active: true, State: thermostat.On})
	if got := mainModeFor(views); got != MainOn {
		t.Fatalf("mainModeFor with an On zone = %v, want MainOn", got)
	}
}

func TestMainModeForAllInactiveIsOff(t *testing.T) {
	views := []thermostat.View{
		{ServiceIndex: 1, Active: false, State: thermostat.On},
		{ServiceIndex: 2, Active: false, State: thermostat.SoftOn},
	}
	if got := mainModeFor(views); got != MainOff {
		t.Fatalf("mainModeFor with no active zones = %v, want MainOff", got)
	}
}

func TestZoneWantsOpposite(t *testing.T) {
	heating := thermostat.View{Active: true, State: thermostat.On, Heating: true}
	if zoneWantsOpposite(heating, true) {
		t.Fatalf("zone matching main side should not be flagged opposite")
	}
	if !zoneWantsOpposite(heating, false) {
		t.Fatalf("zone calling for heat while main runs as cooler should be flagged opposite")
	}
	idle := thermostat.View{Active: true, State: thermostat.Idle, Heating: true}
	if zoneWantsOpposite(idle, false) {
		t.Fatalf("an idle zone is never 'opposite', regardless of its last side")
	}
}
