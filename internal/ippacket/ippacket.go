// Package ippacket decodes IP datagrams and exposes the minimal view the
// pcap reader needs: source/destination socket addresses, the IP
// sub-protocol, the datagram size, and the size of the payload carried
// after the IP header. It plays the role of the black-box ip_packet_parse
// collaborator, backed by gopacket's layer decoders.
package ippacket

import (
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// IP sub-protocol numbers the filter stage treats specially.
const (
	ProtocolTCP = uint8(layers.IPProtocolTCP)
	ProtocolUDP = uint8(layers.IPProtocolUDP)
)

// Endpoint is an IP socket address. A zero-value Addr or a negative Port
// means "wildcard" for matching purposes.
type Endpoint struct {
	Addr netip.Addr
	Port int
}

// WildcardEndpoint returns an Endpoint that matches any address and port.
func WildcardEndpoint() Endpoint {
	return Endpoint{Port: -1}
}

func (e Endpoint) HasWildcardAddr() bool { return !e.Addr.IsValid() }
func (e Endpoint) HasWildcardPort() bool { return e.Port < 0 }
func (e Endpoint) IsWildcard() bool      { return e.HasWildcardAddr() || e.HasWildcardPort() }

func (e Endpoint) String() string {
	addr := "*"
	if e.Addr.IsValid() {
		addr = e.Addr.String()
	}
	if e.Port < 0 {
		return fmt.Sprintf("%s:*", addr)
	}
	return fmt.Sprintf("%s:%d", addr, e.Port)
}

// Packet is the decoded view of an IP datagram.
type Packet struct {
	Source           Endpoint
	Destination      Endpoint
	Protocol         uint8
	Size             int
	ProtocolDataSize int
}

// Parse decodes data as an IPv4 or IPv6 datagram, returning an error if
// data does not parse as one.
func Parse(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("ippacket: empty datagram")
	}
	switch data[0] >> 4 {
	case 4:
		return parseIPv4(data)
	case 6:
		return parseIPv6(data)
	default:
		return nil, fmt.Errorf("ippacket: unrecognized IP version %d", data[0]>>4)
	}
}

func parseIPv4(data []byte) (*Packet, error) {
	var ip4 layers.IPv4
	if err := ip4.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("ippacket: ipv4: %w", err)
	}
	src, ok := netip.AddrFromSlice(ip4.SrcIP)
	if !ok {
		return nil, fmt.Errorf("ippacket: ipv4: bad source address")
	}
	dst, ok := netip.AddrFromSlice(ip4.DstIP)
	if !ok {
		return nil, fmt.Errorf("ippacket: ipv4: bad destination address")
	}
	pkt := &Packet{
		Source:           Endpoint{Addr: src.Unmap(), Port: -1},
		Destination:      Endpoint{Addr: dst.Unmap(), Port: -1},
		Protocol:         uint8(ip4.Protocol),
		Size:             len(data),
		ProtocolDataSize: len(ip4.Payload),
	}
	extractPorts(pkt, ip4.Protocol, ip4.Payload)
	return pkt, nil
}

func parseIPv6(data []byte) (*Packet, error) {
	var ip6 layers.IPv6
	if err := ip6.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("ippacket: ipv6: %w", err)
	}
	src, ok := netip.AddrFromSlice(ip6.SrcIP)
	if !ok {
		return nil, fmt.Errorf("ippacket: ipv6: bad source address")
	}
	dst, ok := netip.AddrFromSlice(ip6.DstIP)
	if !ok {
		return nil, fmt.Errorf("ippacket: ipv6: bad destination address")
	}
	pkt := &Packet{
		Source:           Endpoint{Addr: src, Port: -1},
		Destination:      Endpoint{Addr: dst, Port: -1},
		Protocol:         uint8(ip6.NextHeader),
		Size:             len(data),
		ProtocolDataSize: len(ip6.Payload),
	}
	// Extension headers are not walked; NextHeader is taken as the
	// transport protocol directly.
	extractPorts(pkt, ip6.NextHeader, ip6.Payload)
	return pkt, nil
}

func extractPorts(pkt *Packet, proto layers.IPProtocol, payload []byte) {
	switch proto {
	case layers.IPProtocolTCP:
		var tcp layers.TCP
		if err := tcp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err == nil {
			pkt.Source.Port = int(tcp.SrcPort)
			pkt.Destination.Port = int(tcp.DstPort)
		}
	case layers.IPProtocolUDP:
		var udp layers.UDP
		if err := udp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err == nil {
			pkt.Source.Port = int(udp.SrcPort)
			pkt.Destination.Port = int(udp.DstPort)
		}
	}
}
