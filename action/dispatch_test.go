package action

import (
	"testing"

	"haa/model"
)

type fakeGPIO struct {
	writes map[int]bool
}

func (f *fakeGPIO) SetGPIO(gpio int, high bool) error {
	if f.writes == nil {
		f.writes = map[int]bool{}
	}
	f.writes[gpio] = high
	return nil
}

func newTestRegistry() (*model.Registry, *model.Service) {
	reg := model.NewRegistry()
	sw := &model.Service{Type: model.TypeSwitch, NumI: make([]int8, 1)}
	sw.Chars = append(sw.Chars, &model.Characteristic{Name: "On", Format: model.FormatBool, Value: false})
	reg.Add(sw)
	return reg, sw
}

func TestDispatchBinaryOut(t *testing.T) {
	reg, sw := newTestRegistry()
	entry := sw.EnsureAction(0)
	entry.Binary = append(entry.Binary, model.BinaryOutAction{ExtendedGPIO: 4, Value: true})

	gpio := &fakeGPIO{}
	Dispatch(reg, sw, 0, Hooks{GPIO: gpio})

	if !gpio.writes[4] {
		t.Fatalf("expected GPIO 4 to be written true, got %+v", gpio.writes)
	}
}

func TestDispatchCopyIndirectionSingleSubstitution(t *testing.T) {
	reg, sw := newTestRegistry()
	entry0 := sw.EnsureAction(0)
	entry0.Copy = []model.CopyAction{{From: 0, To: 1}}
	entry1 := sw.EnsureAction(1)
	entry1.Binary = append(entry1.Binary, model.BinaryOutAction{ExtendedGPIO: 9, Value: true})

	gpio := &fakeGPIO{}
	Dispatch(reg, sw, 0, Hooks{GPIO: gpio})

	if !gpio.writes[9] {
		t.Fatalf("expected action 0 to redirect to action 1's binary-out, got %+v", gpio.writes)
	}
}

func TestDispatchServManagerSwitchToggle(t *testing.T) {
	reg := model.NewRegistry()
	src := &model.Service{Type: model.TypeSwitch}
	reg.Add(src)
	dst := &model.Service{Type: model.TypeSwitch, NumI: make([]int8, 1)}
	dst.Chars = append(dst.Chars, &model.Characteristic{Name: "On", Format: model.FormatBool, Value: false})
	reg.Add(dst)

	entry := src.EnsureAction(0)
	entry.ServMgr = append(entry.ServMgr, model.ServManagerAction{TargetService: dst.Index, Value: 4})

	Dispatch(reg, src, 0, Hooks{})

	if !dst.Chars[0].Bool() {
		t.Fatalf("expected toggle (v=4) to flip On to true")
	}
}

func TestDispatchSetChCoercesAndNotifies(t *testing.T) {
	reg := model.NewRegistry()
	src := &model.Service{Type: model.TypeTempSensor}
	src.Chars = append(src.Chars, &model.Characteristic{Name: "Value", Format: model.FormatFloat, Value: 21.5})
	reg.Add(src)
	dst := &model.Service{Type: model.TypeThermostat}
	dst.Chars = append(dst.Chars, &model.Characteristic{Name: "CurrentTemperature", Format: model.FormatFloat, Value: 0.0})
	reg.Add(dst)

	entry := src.EnsureAction(0)
	entry.SetCh = append(entry.SetCh, model.SetChAction{SrcService: src.Index, SrcCh: 0, DstService: dst.Index, DstCh: 0})

	var triggered *model.Service
	Dispatch(reg, src, 0, Hooks{ProcessSetCh: func(s *model.Service) { triggered = s }})

	if dst.Chars[0].Float() != 21.5 {
		t.Fatalf("dst value = %v, want 21.5", dst.Chars[0].Float())
	}
	if triggered != dst {
		t.Fatalf("expected ProcessSetCh to fire for dst, got %v", triggered)
	}
}

func TestFireWildcardPicksGreatestThresholdBelowValue(t *testing.T) {
	reg := model.NewRegistry()
	sensor := &model.Service{Type: model.TypeTempSensor, LastWildcard: make([]float64, 1)}
	reg.Add(sensor)
	target := &model.Service{Type: model.TypeSwitch, NumI: make([]int8, 1)}
	target.Chars = append(target.Chars, &model.Characteristic{Name: "On", Format: model.FormatBool})
	reg.Add(target)

	sensor.Wildcards = []model.WildcardAction{
		{Index: 0, Threshold: 10, TargetID: 1},
		{Index: 0, Threshold: 20, TargetID: 2},
		{Index: 0, Threshold: 30, TargetID: 3},
	}
	entry1 := sensor.EnsureAction(1)
	entry1.ServMgr = append(entry1.ServMgr, model.ServManagerAction{TargetService: target.Index, Value: 3})
	entry2 := sensor.EnsureAction(2)
	entry2.ServMgr = append(entry2.ServMgr, model.ServManagerAction{TargetService: target.Index, Value: 3})

	FireWildcard(reg, sensor, 0, 25, Hooks{})

	if !target.Chars[0].Bool() {
		t.Fatalf("expected threshold-20 action to fire for value 25")
	}
	if sensor.LastWildcard[0] != 20 {
		t.Fatalf("LastWildcard = %v, want 20", sensor.LastWildcard[0])
	}
}
