package irrf

import (
	"reflect"
	"testing"
)

// TestNECFrame exercises spec.md §8 scenario 5 exactly.
func TestNECFrame(t *testing.T) {
	p := NewProtocol(9000, 4500, [2]uint32{560, 560}, [2]uint32{560, 1690}, 560)
	pulses := Encode(p, "Ag")
	want := []uint32{9000, 4500, 560, 1690, 560, 560, 560}
	if !reflect.DeepEqual(pulses, want) {
		t.Fatalf("Encode = %v, want %v", pulses, want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	p := NewProtocol(9000, 4500, [2]uint32{560, 560}, [2]uint32{560, 1690}, 560)
	a := Encode(p, "AAgg")
	b := Encode(p, "AAgg")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("encoding is not deterministic: %v vs %v", a, b)
	}
}

func TestFrameDurationSum(t *testing.T) {
	pulses := []uint32{9000, 4500, 560, 1690, 560, 560, 560}
	want := uint64(9000 + 4500 + 560 + 1690 + 560 + 560 + 560)
	if got := FrameDurationUS(pulses); got != want {
		t.Fatalf("FrameDurationUS = %d, want %d", got, want)
	}
}

func TestParseProtocolStringRoundTrip(t *testing.T) {
	// Build a base-83 protocol string by hand for durations
	// [9000, 4500, 560, 560, 560, 1690, 560] using digit pairs.
	enc := func(d uint32) string {
		hi := d / (IRRFCodeLen * IRRFCodeScale)
		lo := (d / IRRFCodeScale) % IRRFCodeLen
		return string(alphabet[hi]) + string(alphabet[lo])
	}
	durations := []uint32{9000, 4500, 560, 560, 560, 1690, 560}
	s := ""
	for _, d := range durations {
		s += enc(d)
	}
	p, err := ParseProtocolString(s)
	if err != nil {
		t.Fatalf("ParseProtocolString: %v", err)
	}
	if p.HeaderMark != 9000 || p.HeaderSpace != 4500 || p.FooterMark != 560 {
		t.Fatalf("unexpected header/footer: %+v", p)
	}
	if len(p.Bits) != 2 {
		t.Fatalf("expected 2 bit pairs, got %d", len(p.Bits))
	}
}
