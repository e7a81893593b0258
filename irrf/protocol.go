package irrf

// Protocol is the parsed representation of a base-83 protocol string
// (Design Notes: "represent the protocol as a parsed
// IrProtocol{header:(u16,u16), bits:[(u16,u16);N], footer:u16}"). Bits
// holds N symbol pairs split evenly between the two logic cases: indices
// [0, N/2) are the "0"-case pairs (selected by lower-case code
// characters), [N/2, N) are the "1"-case pairs (selected by upper-case
// code characters). The 2-bit family (spec.md example: NEC) has N=2,
// i.e. exactly one pair per case; 4-bit and 6-bit families add
// additional same-case pairs, letting a code character's position
// within the alphabet pick a sector and a repetition count instead of
// emitting one character per bit.
type Protocol struct {
	HeaderMark, HeaderSpace uint32
	Bits                    [][2]uint32 // (mark, space) per symbol
	FooterMark              uint32
}

// ParseProtocolString decodes a base-83 protocol string into a Protocol.
// Layout: the first two durations are the header mark/space; the last
// duration is the footer mark; everything in between is grouped into
// (mark,space) bit pairs in order.
func ParseProtocolString(s string) (Protocol, error) {
	d, err := decodeDurations(s)
	if err != nil {
		return Protocol{}, err
	}
	if len(d) < 3 {
		return Protocol{}, ErrShortProtocol
	}
	mid := d[2 : len(d)-1]
	if len(mid)%2 != 0 {
		return Protocol{}, ErrOddProtocol
	}
	p := Protocol{
		HeaderMark:  d[0],
		HeaderSpace: d[1],
		FooterMark:  d[len(d)-1],
	}
	for i := 0; i < len(mid); i += 2 {
		p.Bits = append(p.Bits, [2]uint32{mid[i], mid[i+1]})
	}
	return p, nil
}

// NewProtocol builds a Protocol directly from explicit timings, the path
// used by configs that specify (protocol_string, protocol_code_string)
// via named header/bit0/bit1/footer fields rather than a raw base-83
// blob (spec.md §6 accepts either form for the protocol side).
func NewProtocol(headerMark, headerSpace uint32, bit0, bit1 [2]uint32, footerMark uint32) Protocol {
	return Protocol{
		HeaderMark:  headerMark,
		HeaderSpace: headerSpace,
		Bits:        [][2]uint32{bit0, bit1},
		FooterMark:  footerMark,
	}
}
