package thermostat

import "testing"

// TestNextStateScenario mirrors spec.md §8 scenario 2: a monotonically
// rising sensor value produces a monotonic, no-skip state sequence
// SoftOn -> SoftOn -> Idle -> ForceIdle.
func TestNextStateScenario(t *testing.T) {
	const deadband, softOn, forceIdle = 0.5, 0.2, 1.0
	const target = 22.0

	cur := Off
	steps := []struct {
		sensed float64
		want   ThermoState
	}{
		{21.0, SoftOn},
		{21.5, SoftOn},
		{23.2, Idle},
		{23.6, ForceIdle},
	}
	for _, s := range steps {
		cur = NextState(cur, s.sensed, target, deadband, softOn, forceIdle, true)
		if cur != s.want {
			t.Fatalf("sensed=%v: got %v, want %v", s.sensed, cur, s.want)
		}
	}
}

func TestNextStateNeverSkipsToOn(t *testing.T) {
	// Even a far-below-target first reading must pass through SoftOn.
	next := NextState(Off, 0, 22, 0.5, 0.2, 1.0, true)
	if next != SoftOn {
		t.Fatalf("first activation = %v, want SoftOn (soft start)", next)
	}
	next = NextState(next, 0, 22, 0.5, 0.2, 1.0, true)
	if next != On {
		t.Fatalf("second tick still far below target = %v, want On", next)
	}
}

func TestNextStateStaysWithinDeadbandWhenActive(t *testing.T) {
	next := NextState(On, 21.9, 22, 0.5, 0.2, 1.0, true)
	if next != On {
		t.Fatalf("within deadband while On = %v, want stay On", next)
	}
}

func TestNextStateCoolingMirrorsHeating(t *testing.T) {
	// Cooling side: sensed above target by more than deadband+softOn
	// should behave like the heating side's "below" case.
	next := NextState(Off, 24.0, 22.0, 0.5, 0.2, 1.0, false)
	if next != SoftOn {
		t.Fatalf("cooling first activation = %v, want SoftOn", next)
	}
}

func TestSelectSideHysteresis(t *testing.T) {
	if !SelectSide(false, false, 19, 20, 25) {
		t.Fatalf("no current side: below midpoint should select heating")
	}
	if SelectSide(false, false, 23, 20, 25) {
		t.Fatalf("no current side: above midpoint should select cooling")
	}
	if !SelectSide(true, true, 26.0, 20, 25) {
		t.Fatalf("currently heating, 26.0 <= coolerThreshold+1.5(26.5): should stay heating")
	}
	if SelectSide(true, true, 27.0, 20, 25) {
		t.Fatalf("currently heating, past coolerThreshold+1.5: should switch to cooling")
	}
}
