package history

import (
	"testing"

	"haa/model"
)

func newTestSvc(blocks int) *model.Service {
	s := &model.Service{Index: 1, NumF: []float64{0}}
	for i := 0; i < blocks; i++ {
		s.Chars = append(s.Chars, &model.Characteristic{
			Name:  "HistoryBlock",
			Value: make([]byte, BlockSize),
		})
	}
	return s
}

func TestAppendRecordRoundTrip(t *testing.T) {
	svc := newTestSvc(2)
	Append(svc, 1000, 42)
	Append(svc, 1001, -7)

	ts, v, ok := Record(svc, 0)
	if !ok || ts != 1000 || v != 42 {
		t.Fatalf("slot 0 = (%v,%v,%v), want (1000,42,true)", ts, v, ok)
	}
	ts, v, ok = Record(svc, 1)
	if !ok || ts != 1001 || v != -7 {
		t.Fatalf("slot 1 = (%v,%v,%v), want (1001,-7,true)", ts, v, ok)
	}
}

func TestAppendWrapsAtCapacity(t *testing.T) {
	svc := newTestSvc(1)
	capacity := Capacity(svc)
	for i := 0; i < capacity; i++ {
		Append(svc, uint32(i), int32(i))
	}
	// Cursor should have wrapped back to 0 exactly, and the next append
	// overwrites slot 0.
	Append(svc, 9999, 9999)
	ts, v, ok := Record(svc, 0)
	if !ok || ts != 9999 || v != 9999 {
		t.Fatalf("slot 0 after wraparound = (%v,%v,%v), want (9999,9999,true)", ts, v, ok)
	}
}

func TestInitPrimesBlockZero(t *testing.T) {
	svc := &model.Service{Index: 1, NumF: []float64{0}}
	svc.Chars = []*model.Characteristic{{Name: "HistoryBlock"}}
	Init(svc)
	buf, ok := svc.Chars[0].Value.([]byte)
	if !ok || len(buf) != BlockSize {
		t.Fatalf("Init did not prime block 0 to a %d-byte buffer", BlockSize)
	}
}

func TestRecordOutOfRange(t *testing.T) {
	svc := newTestSvc(1)
	if _, _, ok := Record(svc, -1); ok {
		t.Fatalf("negative slot should not be ok")
	}
	if _, _, ok := Record(svc, Capacity(svc)); ok {
		t.Fatalf("slot == capacity should not be ok")
	}
}
