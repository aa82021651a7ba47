package pcap

import "fmt"

// pcap-ng block type codes.
const (
	blockTypeSectionHeader         uint32 = 0x0A0D0D0A
	blockTypeInterfaceDescription  uint32 = 0x00000001
	blockTypeObsoletePacket        uint32 = 0x00000002
	blockTypeSimplePacket          uint32 = 0x00000003
	blockTypeEnhancedPacket        uint32 = 0x00000006
)

// readBlockBody reads one pcap-ng block whose 4-byte type has already
// been consumed by the caller. It validates that the leading and
// trailing block_total_length fields agree, are at least 12, and are a
// multiple of 4, and returns the block body (everything between the
// length fields).
//
// A Section-Header block is special: its own block_total_length is
// written in the section's new byte order, which isn't known until the
// byte-order magic — the first 4 bytes of its body — has been read. So
// for that one block type, the length bytes are read first but not
// interpreted until after the byte-order magic has been consumed and
// decoded.
func (r *Reader) readBlockBody(blockType uint32, isSectionHeader bool) ([]byte, error) {
	lenBytes, err := r.src.ReadExact(4)
	if err != nil {
		return nil, err
	}

	var length uint32
	var body []byte

	if isSectionHeader {
		bomBytes, err := r.src.ReadExact(4)
		if err != nil {
			return nil, err
		}
		be := byteOrder{big: true}.get32(bomBytes, 0)
		le := byteOrder{big: false}.get32(bomBytes, 0)
		switch {
		case be == byteOrderMagic:
			r.bigEndian = true
		case le == byteOrderMagic:
			r.bigEndian = false
		default:
			return nil, r.fail(&Error{Kind: KindBadByteOrder, Msg: fmt.Sprintf("unrecognized byte-order magic %x", bomBytes)})
		}

		bo := byteOrder{big: r.bigEndian}
		length = bo.get32(lenBytes, 0)
		if err := validateBlockLength(length); err != nil {
			return nil, r.fail(err)
		}
		remaining := int(length) - 12 - 4 // type(4)+len(4)+trailer(4), minus the byte-order magic already read
		if remaining < 0 {
			return nil, r.fail(&Error{Kind: KindBadBlockLength, Msg: "section header shorter than its fixed fields"})
		}
		rest, err := r.src.ReadExact(remaining)
		if err != nil {
			return nil, err
		}
		body = append(bomBytes, rest...)
	} else {
		bo := byteOrder{big: r.bigEndian}
		length = bo.get32(lenBytes, 0)
		if err := validateBlockLength(length); err != nil {
			return nil, r.fail(err)
		}
		body, err = r.src.ReadExact(int(length) - 12)
		if err != nil {
			return nil, err
		}
	}

	trailerBytes, err := r.src.ReadExact(4)
	if err != nil {
		return nil, err
	}
	bo := byteOrder{big: r.bigEndian}
	trailer := bo.get32(trailerBytes, 0)
	if trailer != length {
		return nil, r.fail(&Error{Kind: KindBadBlockLength, Msg: fmt.Sprintf("leading length %d != trailing length %d", length, trailer)})
	}
	return body, nil
}

func validateBlockLength(length uint32) error {
	if length < 12 || length%4 != 0 {
		return &Error{Kind: KindBadBlockLength, Msg: fmt.Sprintf("invalid block length %d", length)}
	}
	return nil
}
