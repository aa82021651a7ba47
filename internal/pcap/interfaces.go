package pcap

// Interface-Description option tags (pcap-ng).
const (
	optEndOfOpt  uint16 = 0
	optIfTSResol uint16 = 9
	optIfFCSLen  uint16 = 13
	optIfTSOffset uint16 = 14
)

// defaultTimeUnits is the pcap-ng default resolution (10^6, i.e.
// microseconds) when an interface omits if_tsresol.
const defaultTimeUnits = 1_000_000

// parseInterfaceDescription reads an Interface-Description block body:
// link type at offset 0, then an option-list TLV sequence starting at
// offset 8. Unknown tags are skipped; a truncated option list fails with
// CorruptOptionList.
func (r *Reader) parseInterfaceDescription(body []byte) error {
	if len(body) < 8 {
		return r.fail(&Error{Kind: KindCorruptOptionList, Msg: "interface description block too short"})
	}
	bo := byteOrder{big: r.bigEndian}
	desc := InterfaceDesc{
		LinkType:  bo.get16(body, 0),
		TimeUnits: defaultTimeUnits,
	}

	offset := 8
	for offset+4 <= len(body) {
		tag := bo.get16(body, offset)
		optLen := int(bo.get16(body, offset+2))
		valueStart := offset + 4
		if tag == optEndOfOpt && optLen == 0 {
			break
		}
		if valueStart+optLen > len(body) {
			return r.fail(&Error{Kind: KindCorruptOptionList, Msg: "truncated option list"})
		}
		value := body[valueStart : valueStart+optLen]
		switch tag {
		case optIfFCSLen:
			if optLen >= 1 {
				desc.FCSSize = int(value[0])
			}
		case optIfTSOffset:
			if optLen >= 8 {
				desc.TimeOffset = int64(bo.get64(value, 0))
			}
		case optIfTSResol:
			if optLen >= 1 {
				desc.TimeUnits = decodeTSResol(value[0])
			}
		}
		padded := optLen
		if rem := padded % 4; rem != 0 {
			padded += 4 - rem
		}
		offset = valueStart + padded
	}

	r.interfaces = append(r.interfaces, desc)
	return nil
}

// decodeTSResol interprets an if_tsresol byte: high bit clear selects
// 10^n ticks/second, high bit set selects 2^n.
func decodeTSResol(code byte) int64 {
	n := uint(code & 0x7F)
	if code&0x80 != 0 {
		return int64(1) << n
	}
	result := int64(1)
	for i := uint(0); i < n; i++ {
		result *= 10
	}
	return result
}
