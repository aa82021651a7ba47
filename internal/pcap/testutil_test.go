package pcap

import "encoding/binary"

// buildIPv4UDP constructs a minimal IPv4 + UDP datagram (no link header).
func buildIPv4UDP(srcIP, dstIP [4]byte, srcPort, dstPort uint16, payload []byte) []byte {
	udp := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint16(udp[0:2], srcPort)
	binary.BigEndian.PutUint16(udp[2:4], dstPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(len(udp)))
	copy(udp[8:], payload)

	ip := make([]byte, 20+len(udp))
	ip[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(ip[2:4], uint16(len(ip)))
	ip[8] = 64 // TTL
	ip[9] = 17 // UDP
	copy(ip[12:16], srcIP[:])
	copy(ip[16:20], dstIP[:])
	copy(ip[20:], udp)
	return ip
}

// buildEthernetIPv4UDP wraps an IPv4+UDP datagram in a plain 14-byte
// Ethernet header (no VLAN tags).
func buildEthernetIPv4UDP(srcIP, dstIP [4]byte, srcPort, dstPort uint16, payload []byte) []byte {
	ip := buildIPv4UDP(srcIP, dstIP, srcPort, dstPort, payload)
	eth := make([]byte, ethernetHeaderLen+len(ip))
	copy(eth[0:6], []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa})
	copy(eth[6:12], []byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb})
	binary.BigEndian.PutUint16(eth[12:14], etherTypeIPv4)
	copy(eth[14:], ip)
	return eth
}

// vlanTagSpec is one VLAN tag to splice into a test frame: its own TPID
// (0x8100/0x88A8) and VLAN id.
type vlanTagSpec struct {
	TPID uint16
	ID   uint16
}

// buildVlanEthernetIPv4UDP builds an Ethernet frame carrying the given
// nested VLAN tags (outermost first) around an IPv4+UDP datagram.
func buildVlanEthernetIPv4UDP(tags []vlanTagSpec, srcIP, dstIP [4]byte, srcPort, dstPort uint16) []byte {
	ip := buildIPv4UDP(srcIP, dstIP, srcPort, dstPort, nil)

	var out []byte
	out = append(out, []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}...)
	out = append(out, []byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}...)

	firstTPID := etherTypeIPv4
	if len(tags) > 0 {
		firstTPID = tags[0].TPID
	}
	tpidBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(tpidBytes, firstTPID)
	out = append(out, tpidBytes...)

	for i, tag := range tags {
		tagBytes := make([]byte, 4)
		binary.BigEndian.PutUint16(tagBytes[0:2], tag.ID&0x0FFF)
		var next uint16
		if i+1 < len(tags) {
			next = tags[i+1].TPID
		} else {
			next = etherTypeIPv4
		}
		binary.BigEndian.PutUint16(tagBytes[2:4], next)
		out = append(out, tagBytes...)
	}

	out = append(out, ip...)
	return out
}
