package config

import "haa/model"

// garageDoorBuilder covers garage-door (spec.md §4.4): target/current
// door state plus obstruction detected, and scratch fields for the 1Hz
// virtual-position timer and sticky-offset resume.
type garageDoorBuilder struct{}

func (garageDoorBuilder) Build(in BuildInput) (*model.Service, error) {
	// NumI[0]=virtual stop mode [1]=unused (the obstruction latch is the
	// ObstructionDetected characteristic)
	// NumF[0]=working_time_sec [1]=virtual position [2]=sticky offset
	s := newService(in, 2, 3, 0)
	addChar(s, "TargetDoorState", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(1))
	addChar(s, "CurrentDoorState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(1))
	addChar(s, "ObstructionDetected", model.FormatBool, model.PermRead|model.PermNotify, false)
	s.NumI[0] = int8(asInt(in.Raw["virtual_stop"], 0))
	s.NumF[0] = asFloat(in.Raw["working_time_sec"], 15)
	return s, nil
}

// windowCoverBuilder covers window-cover (spec.md §4.4): target/current
// position plus the non-linear motor-mapping correction factor.
type windowCoverBuilder struct{}

func (windowCoverBuilder) Build(in BuildInput) (*model.Service, error) {
	// NumF[0]=correction_k [1]=working_time_sec [2]=margin_sec
	// NumF[3]=precise current position (sub-integer homekit coordinate)
	s := newService(in, 1, 4, 0)
	addChar(s, "TargetPosition", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(0))
	addChar(s, "CurrentPosition", model.FormatUint8, model.PermRead|model.PermNotify, uint8(0))
	addChar(s, "PositionState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(2))
	s.NumF[0] = asFloat(in.Raw["correction"], 0) / 5000
	s.NumF[1] = asFloat(in.Raw["working_time_sec"], 15)
	s.NumF[2] = asFloat(in.Raw["margin_sec"], 1)
	s.NumI[0] = int8(asInt(in.Raw["virtual_stop"], 0))
	return s, nil
}

// securitySystemBuilder covers security-system (spec.md §4.5):
// current/target state plus the recurrent-alarm chime timer period.
type securitySystemBuilder struct{}

func (securitySystemBuilder) Build(in BuildInput) (*model.Service, error) {
	s := newService(in, 0, 1, 0) // NumF[0]=recurrent alarm period sec
	addChar(s, "SecuritySystemCurrentState", model.FormatUint8, model.PermRead|model.PermNotify, uint8(3))
	addChar(s, "SecuritySystemTargetState", model.FormatUint8, model.PermRead|model.PermWrite|model.PermNotify, uint8(3))
	s.NumF[0] = asFloat(in.Raw["recurrent_alarm_sec"], 1)
	return s, nil
}
