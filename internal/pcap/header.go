package pcap

import "fmt"

// HeaderDecoder: magic dispatch table. The four legacy pcap magics encode
// both endianness and timestamp resolution directly as distinct literal
// byte patterns; the pcap-ng magic is a palindrome and carries neither.
const (
	magicPcapUsecBE uint32 = 0xA1B2C3D4
	magicPcapUsecLE uint32 = 0xD4C3B2A1
	magicPcapNsecBE uint32 = 0xA1B23C4D
	magicPcapNsecLE uint32 = 0x4DC3B2A1
	magicPcapNg     uint32 = 0x0A0D0D0A

	byteOrderMagic uint32 = 0x1A2B3C4D
)

// readHeader reads the 4-byte magic and dispatches to the legacy-pcap or
// pcap-ng header parser, installing the initial interface table.
func (r *Reader) readHeader() error {
	magic, err := r.src.ReadExact(4)
	if err != nil {
		return err
	}
	bo := byteOrder{big: true}
	beVal := bo.get32(magic, 0)
	switch beVal {
	case magicPcapUsecBE:
		r.bigEndian = true
		return r.readLegacyHeader(1_000_000)
	case magicPcapUsecLE:
		r.bigEndian = false
		return r.readLegacyHeader(1_000_000)
	case magicPcapNsecBE:
		r.bigEndian = true
		return r.readLegacyHeader(1_000_000_000)
	case magicPcapNsecLE:
		r.bigEndian = false
		return r.readLegacyHeader(1_000_000_000)
	case magicPcapNg:
		r.isPcapNG = true
		return r.readSectionHeader()
	default:
		return r.fail(&Error{Kind: KindUnknownMagic, Msg: fmt.Sprintf("unrecognized magic 0x%08x", beVal)})
	}
}

// readLegacyHeader parses the remaining 20 bytes of a legacy pcap global
// header and installs the single InterfaceDesc a legacy capture has.
func (r *Reader) readLegacyHeader(timeUnits int64) error {
	body, err := r.src.ReadExact(20)
	if err != nil {
		return r.fail(err)
	}
	bo := byteOrder{big: r.bigEndian}
	r.major = bo.get16(body, 0)
	r.minor = bo.get16(body, 2)
	// thiszone (4), sigfigs (4), snaplen (4) are not needed by this reader.
	linkTypeField := bo.get32(body, 16)
	linkType := uint16(linkTypeField & 0xFFFF)

	fcsSize := 0
	optionByte := uint8((linkTypeField >> 24) & 0xFF)
	// Bit 0x10 flags a valid FCS length; the 3 bits above it hold that
	// length in 16-bit words.
	if optionByte&0x10 != 0 {
		words := (optionByte >> 5) & 0x07
		fcsSize = int(words) * 2
	}

	r.interfaces = []InterfaceDesc{{
		LinkType:  linkType,
		FCSSize:   fcsSize,
		TimeUnits: timeUnits,
	}}
	return nil
}

// readSectionHeader parses a pcap-ng Section-Header block: the byte-order
// magic, major/minor version, and resets the interface table (a new
// section invalidates interfaces from any prior section in the file).
func (r *Reader) readSectionHeader() error {
	body, err := r.readBlockBody(blockTypeSectionHeader, true)
	if err != nil {
		return err
	}
	if len(body) < 16 {
		return r.fail(&Error{Kind: KindShortRead, Msg: "section header block too short"})
	}
	bo := byteOrder{big: r.bigEndian}
	r.major = bo.get16(body, 4)
	r.minor = bo.get16(body, 6)
	r.interfaces = nil
	return nil
}
