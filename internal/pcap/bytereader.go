package pcap

import "encoding/binary"

// byteOrder is the ByteReader component: endian-parameterized fixed-width
// integer extraction from a buffer at an offset. Pcap-ng section headers
// pick their byte order from an in-band magic; legacy pcap infers it from
// the file magic.
type byteOrder struct {
	big bool
}

func (b byteOrder) get16(buf []byte, off int) uint16 {
	if b.big {
		return binary.BigEndian.Uint16(buf[off : off+2])
	}
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

func (b byteOrder) get32(buf []byte, off int) uint32 {
	if b.big {
		return binary.BigEndian.Uint32(buf[off : off+4])
	}
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func (b byteOrder) get64(buf []byte, off int) uint64 {
	if b.big {
		return binary.BigEndian.Uint64(buf[off : off+8])
	}
	return binary.LittleEndian.Uint64(buf[off : off+8])
}
