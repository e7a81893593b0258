package freemonitor

import (
	"testing"

	"haa/model"
)

// TestEvalMathsScenario mirrors spec.md §8 scenario 6: "+ literal 5.0",
// then "multiply by char(service=3, ch=0)" seeded at 2.0, starting from 0.
func TestEvalMathsScenario(t *testing.T) {
	ops := []Op{
		{Operator: OpAdd, Operand: 5.0},
		{Operator: OpMul, Operand: 2.0},
	}
	got := Eval(0, ops)
	if got != 10.0 {
		t.Fatalf("Eval = %v, want 10.0", got)
	}
}

func TestEvalReverseOperators(t *testing.T) {
	got := Eval(3, []Op{{Operator: OpRevSub, Operand: 10}})
	if got != 7 {
		t.Fatalf("10 rev-sub 3 = %v, want 7", got)
	}
	got = Eval(2, []Op{{Operator: OpRevDiv, Operand: 10}})
	if got != 5 {
		t.Fatalf("10 rev-div 2 = %v, want 5", got)
	}
}

func TestEvalAbsAndRecip(t *testing.T) {
	got := Eval(-4, []Op{{Operator: OpAbs}})
	if got != 4 {
		t.Fatalf("abs(-4) = %v, want 4", got)
	}
	got = Eval(4, []Op{{Operator: OpRecip}})
	if got != 0.25 {
		t.Fatalf("1/4 = %v, want 0.25", got)
	}
}

func newTestSvc() *model.Service {
	return &model.Service{
		Index: 1,
		Chars: []*model.Characteristic{
			{Name: "Value", Format: model.FormatFloat},
		},
		NumI: []int8{0},
		NumF: []float64{1, 0, -1e300, 1e300, 0},
	}
}

// TestApplyDiscardOutOfLimits mirrors spec.md §8 scenario 6's second
// half: with limits [0, 9] a computed 10.0 is discarded.
func TestApplyDiscardOutOfLimits(t *testing.T) {
	svc := newTestSvc()
	svc.NumF[lowerIdx] = 0
	svc.NumF[upperIdx] = 9
	_, keep := Apply(svc, 10.0)
	if keep {
		t.Fatalf("value 10.0 outside [0,9] should be discarded")
	}
}

func TestApplyFactorAndOffset(t *testing.T) {
	svc := newTestSvc()
	svc.NumF[factorIdx] = 2
	svc.NumF[offsetIdx] = 1
	value, keep := Apply(svc, 3)
	if !keep || value != 7 {
		t.Fatalf("2*3+1 = %v (keep=%v), want 7", value, keep)
	}
}

func TestApplyAccumulativeResetsOnSentinel(t *testing.T) {
	svc := newTestSvc()
	svc.NumI[accumIdx] = 1
	v1, _ := Apply(svc, 4)
	if v1 != 4 {
		t.Fatalf("first accumulated value = %v, want 4", v1)
	}
	v2, _ := Apply(svc, 6)
	if v2 != 10 {
		t.Fatalf("second accumulated value = %v, want 10", v2)
	}
	v3, keep := Apply(svc, ResetSentinel)
	if !keep || v3 != 0 {
		t.Fatalf("reset sentinel should zero the accumulator, got %v (keep=%v)", v3, keep)
	}
}
