package cover

import (
	"testing"

	"haa/model"
)

func newTestService() *model.Service {
	return &model.Service{
		Index: 1,
		Chars: []*model.Characteristic{
			{Name: "TargetPosition", Format: model.FormatUint8},
			{Name: "CurrentPosition", Format: model.FormatUint8},
			{Name: "PositionState", Format: model.FormatUint8, Value: uint8(Stopped)},
		},
		NumI: []int8{0},
		NumF: []float64{0, 15, 1, 0},
	}
}

func TestMotorOfZeroCorrectionIsIdentity(t *testing.T) {
	for _, hk := range []float64{0, 25, 50, 100} {
		if got := motorOf(0, hk); got != hk {
			t.Fatalf("motorOf(0, %v) = %v, want %v", hk, got, hk)
		}
	}
}

func TestMotorHKRoundTrip(t *testing.T) {
	k := 10.0 / 5000
	for _, hk := range []float64{0, 1, 25, 49.5, 75, 99, 100} {
		motor := motorOf(k, hk)
		back := hkOf(k, motor)
		if diff := back - hk; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("round-trip hk=%v -> motor=%v -> hk=%v", hk, motor, back)
		}
	}
}

func TestMotorOfMonotonic(t *testing.T) {
	k := 20.0 / 5000
	prev := motorOf(k, 0)
	for hk := 1.0; hk <= 100; hk++ {
		cur := motorOf(k, hk)
		if cur < prev {
			t.Fatalf("motorOf not monotonic at hk=%v: prev=%v cur=%v", hk, prev, cur)
		}
		prev = cur
	}
}

func TestVirtualStopArmConsume(t *testing.T) {
	svc := newTestService()
	svc.NumI[vstopIdx] = int8(VStopArmed)
	svc.Chars[stateIdx].Set(Increasing)

	if !OnButtonPress(svc) {
		t.Fatalf("first press while armed and moving should report a stop")
	}
	if OnButtonPress(svc) {
		t.Fatalf("second press should be a no-op: arm was consumed by the first")
	}

	OnMotionStart(svc)
	svc.Chars[stateIdx].Set(Increasing)
	if !OnButtonPress(svc) {
		t.Fatalf("press after a fresh OnMotionStart should re-arm and report a stop")
	}
}

func TestOnButtonPressIgnoredWhenStopped(t *testing.T) {
	svc := newTestService()
	svc.NumI[vstopIdx] = int8(VStopArmed)
	svc.Chars[stateIdx].Set(Stopped)
	if OnButtonPress(svc) {
		t.Fatalf("press while not moving should never report a stop")
	}
}
