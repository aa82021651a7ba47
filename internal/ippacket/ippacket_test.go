package ippacket

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildIPv4UDP(srcIP, dstIP [4]byte, srcPort, dstPort uint16) []byte {
	udp := make([]byte, 8)
	binary.BigEndian.PutUint16(udp[0:2], srcPort)
	binary.BigEndian.PutUint16(udp[2:4], dstPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(len(udp)))

	ip := make([]byte, 20+len(udp))
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(len(ip)))
	ip[8] = 64
	ip[9] = 17
	copy(ip[12:16], srcIP[:])
	copy(ip[16:20], dstIP[:])
	copy(ip[20:], udp)
	return ip
}

func TestParseIPv4UDP(t *testing.T) {
	data := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1111, 2222)
	pkt, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", pkt.Source.Addr.String())
	require.Equal(t, 1111, pkt.Source.Port)
	require.Equal(t, "10.0.0.2", pkt.Destination.Addr.String())
	require.Equal(t, 2222, pkt.Destination.Port)
	require.Equal(t, ProtocolUDP, pkt.Protocol)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse([]byte{0x55, 0, 0, 0})
	require.Error(t, err)
}

func TestEndpointWildcard(t *testing.T) {
	e := WildcardEndpoint()
	require.True(t, e.IsWildcard())
	require.Equal(t, "*:*", e.String())
}
