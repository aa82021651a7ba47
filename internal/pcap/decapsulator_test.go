package pcap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecapsulateEthernetIPv4(t *testing.T) {
	frame := buildEthernetIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1111, 2222, []byte("hi"))
	payload, vlans, ok := decapsulate(frame, InterfaceDesc{LinkType: LinkTypeEthernet}, nil)
	require.True(t, ok)
	require.Nil(t, vlans)
	require.Equal(t, byte(0x45), payload[0])
}

func TestDecapsulateNestedVlan(t *testing.T) {
	tags := []vlanTagSpec{
		{TPID: etherTypeVlanQinQ, ID: 100},
		{TPID: etherTypeVlan8021Q, ID: 200},
	}
	frame := buildVlanEthernetIPv4UDP(tags, [4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1111, 2222)
	payload, vlans, ok := decapsulate(frame, InterfaceDesc{LinkType: LinkTypeEthernet}, nil)
	require.True(t, ok)
	require.Len(t, vlans, 2)
	require.Equal(t, uint32(100), vlans[0].VlanID)
	require.Equal(t, uint32(200), vlans[1].VlanID)
	require.Equal(t, byte(0x45), payload[0])
}

func TestVlanSubsequenceMatchOrderSensitive(t *testing.T) {
	stack := VlanStack{{VlanID: 100}, {VlanID: 200}}
	require.True(t, vlanSubsequenceMatch([]uint32{100, 200}, stack))
	require.True(t, vlanSubsequenceMatch([]uint32{100}, stack))
	require.True(t, vlanSubsequenceMatch([]uint32{200}, stack))
	require.False(t, vlanSubsequenceMatch([]uint32{200, 100}, stack))
	require.False(t, vlanSubsequenceMatch([]uint32{300}, stack))
}

func TestDecapsulateBSDNullRecognizedFamily(t *testing.T) {
	payload := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 2, nil)
	frame := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(frame[0:4], 2) // AF_INET
	copy(frame[4:], payload)

	got, vlans, ok := decapsulate(frame, InterfaceDesc{LinkType: LinkTypeNull}, nil)
	require.True(t, ok)
	require.Nil(t, vlans)
	require.Equal(t, payload, got)
}

func TestDecapsulateBSDNullFallsBackToEthernet(t *testing.T) {
	eth := buildEthernetIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 2, nil)
	// Prepend 4 bytes that don't match any known BSD family code so the
	// null/loop branch falls through to the tolerant Ethernet-style parse.
	frame := make([]byte, 4+len(eth))
	binary.NativeEndian.PutUint32(frame[0:4], 9999)
	copy(frame[4:], eth)

	_, _, ok := decapsulate(frame, InterfaceDesc{LinkType: LinkTypeNull}, nopReporter{})
	require.True(t, ok)
}

func TestDecapsulateRaw(t *testing.T) {
	ip := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 1, 2, nil)
	payload, vlans, ok := decapsulate(ip, InterfaceDesc{LinkType: LinkTypeRaw}, nil)
	require.True(t, ok)
	require.Nil(t, vlans)
	require.Equal(t, ip, payload)
}

func TestDecapsulateUnrecognizedLinkType(t *testing.T) {
	_, _, ok := decapsulate([]byte{1, 2, 3}, InterfaceDesc{LinkType: 9999}, nil)
	require.False(t, ok)
}
