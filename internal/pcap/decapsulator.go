package pcap

import "encoding/binary"

// EtherType values the decapsulator cares about.
const (
	etherTypeIPv4     uint16 = 0x0800
	etherTypeIPv6     uint16 = 0x86DD
	etherTypeVlan8021Q uint16 = 0x8100
	etherTypeVlanQinQ  uint16 = 0x88A8
	etherTypeVlanBH    uint16 = 0x88E7 // 802.1ah backbone
)

const ethernetHeaderLen = 14

// bsdIPFamilies holds the BSD protocol-family codes a loopback/null
// header can carry for IPv4 and IPv6, across the platforms that produced
// the captures this reader is expected to read (Linux, the BSDs, macOS).
var bsdIPFamilies = map[uint32]bool{
	2:  true, // AF_INET (nearly universal)
	24: true, // AF_INET6 on macOS/Darwin
	28: true, // AF_INET6 on FreeBSD/NetBSD
	30: true, // AF_INET6 on OpenBSD
	10: true, // AF_INET6 on Linux (rare in null/loop captures, but seen)
}

// decapsulate strips link-layer encapsulation from a captured frame,
// returning the IP payload and the VLAN stack it was found under. ok is
// false when no IP candidate could be located.
func decapsulate(data []byte, iface InterfaceDesc, reporter Reporter) ([]byte, VlanStack, bool) {
	p := data
	n := len(p)

	if (iface.LinkType == LinkTypeNull || iface.LinkType == LinkTypeLoop) && n >= 4 {
		var family uint32
		if iface.LinkType == LinkTypeNull {
			family = binary.NativeEndian.Uint32(p[0:4])
		} else {
			family = binary.BigEndian.Uint32(p[0:4])
		}
		if bsdIPFamilies[family] {
			return p[4:], nil, true
		}
		if reporter != nil {
			reporter.Reportf(SeverityDebug, "unrecognized BSD protocol family %d on null/loop interface, falling back to Ethernet parse", family)
		}
	}

	if (iface.LinkType == LinkTypeEthernet || iface.LinkType == LinkTypeNull || iface.LinkType == LinkTypeLoop) &&
		n > ethernetHeaderLen+iface.FCSSize {
		ethertype := binary.BigEndian.Uint16(p[12:14])
		body := p[ethernetHeaderLen : n-iface.FCSSize]
		finalType, payload, vlans := unwrapVlans(ethertype, body)
		if finalType != etherTypeIPv4 && finalType != etherTypeIPv6 {
			return nil, nil, false
		}
		return payload, vlans, true
	}

	if iface.LinkType == LinkTypeRaw && n >= 1 {
		nibble := p[0] >> 4
		if nibble == 4 || nibble == 6 {
			return p, nil, true
		}
	}

	return nil, nil, false
}

// unwrapVlans iteratively strips nested 802.1Q/802.1ad/802.1ah tags,
// collecting a VlanStack outer-first, until it reaches a non-VLAN
// EtherType, runs out of bytes, or hits an unrecognized tag.
func unwrapVlans(ethertype uint16, p []byte) (uint16, []byte, VlanStack) {
	var vlans VlanStack
	for {
		switch ethertype {
		case etherTypeVlan8021Q, etherTypeVlanQinQ:
			if len(p) < 4 {
				return ethertype, p, vlans
			}
			tci := binary.BigEndian.Uint16(p[0:2])
			next := binary.BigEndian.Uint16(p[2:4])
			vlans = append(vlans, VlanTag{NextEthertype: next, VlanID: uint32(tci & 0x0FFF)})
			p = p[4:]
			ethertype = next
		case etherTypeVlanBH:
			if len(p) < 18 {
				return ethertype, p, vlans
			}
			id := (uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])) & 0x0FFF
			next := binary.BigEndian.Uint16(p[16:18])
			vlans = append(vlans, VlanTag{NextEthertype: next, VlanID: id})
			p = p[18:]
			ethertype = next
		default:
			return ethertype, p, vlans
		}
		if len(p) == 0 {
			return ethertype, p, vlans
		}
	}
}
