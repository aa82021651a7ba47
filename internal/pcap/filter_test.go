package pcap

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"firestige.xyz/pcapflow/internal/ippacket"
)

type fakeSource struct {
	items []*IPResult
	pos   int
	first int64
	hasFirst bool
}

func (f *fakeSource) NextIP() (*IPResult, error) {
	if f.pos >= len(f.items) {
		return nil, ErrEndOfInput
	}
	res := f.items[f.pos]
	f.pos++
	return res, nil
}

func (f *fakeSource) FirstTimestamp() (int64, bool) { return f.first, f.hasFirst }

func mustAddr(s string) netip.Addr {
	a, err := netip.ParseAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

func udpResult(n uint64, srcIP, dstIP string, srcPort, dstPort int, vlans VlanStack) *IPResult {
	return &IPResult{
		Packet: &ippacket.Packet{
			Source:      ippacket.Endpoint{Addr: mustAddr(srcIP), Port: srcPort},
			Destination: ippacket.Endpoint{Addr: mustAddr(dstIP), Port: dstPort},
			Protocol:    ippacket.ProtocolUDP,
		},
		Vlans:        vlans,
		Timestamp:    TimestampFromMicros(int64(n) * 1000),
		PacketNumber: n,
	}
}

func TestFilterStageVlanOrderSensitive(t *testing.T) {
	src := &fakeSource{items: []*IPResult{
		udpResult(1, "10.0.0.1", "10.0.0.2", 1, 2, VlanStack{{VlanID: 100}, {VlanID: 200}}),
		udpResult(2, "10.0.0.1", "10.0.0.2", 1, 2, VlanStack{{VlanID: 200}, {VlanID: 100}}),
	}}
	cfg := FilterConfig{
		VlanMatch:       []uint32{100, 200},
		Source:          ippacket.WildcardEndpoint(),
		Destination:     ippacket.WildcardEndpoint(),
		WildcardAllowed: true,
	}
	fs := NewFilterStage(src, cfg, nil)

	res, err := fs.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.PacketNumber)

	_, err = fs.Next()
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestFilterStageBidirectionalAutoLearn(t *testing.T) {
	src := &fakeSource{items: []*IPResult{
		udpResult(1, "10.0.0.9", "10.0.0.1", 5000, 80, nil), // reverse direction first
		udpResult(2, "10.0.0.1", "10.0.0.9", 80, 5000, nil), // forward direction second
		udpResult(3, "10.0.0.1", "10.0.0.99", 80, 4000, nil), // unrelated flow, must not match after learning
	}}
	cfg := FilterConfig{
		Source:        ippacket.Endpoint{Addr: mustAddr("10.0.0.1"), Port: 80},
		Destination:   ippacket.WildcardEndpoint(),
		Bidirectional: true,
	}
	fs := NewFilterStage(src, cfg, nil)

	res, err := fs.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.PacketNumber)

	res, err = fs.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(2), res.PacketNumber)

	_, err = fs.Next()
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestFilterStageLastPacketWindow(t *testing.T) {
	items := make([]*IPResult, 0, 10)
	for i := uint64(1); i <= 10; i++ {
		items = append(items, udpResult(i, "10.0.0.1", "10.0.0.2", 1, 2, nil))
	}
	src := &fakeSource{items: items}
	cfg := FilterConfig{
		LastPacket:      Some(uint64(5)),
		Source:          ippacket.WildcardEndpoint(),
		Destination:     ippacket.WildcardEndpoint(),
		WildcardAllowed: true,
	}
	fs := NewFilterStage(src, cfg, nil)

	var seen []uint64
	for {
		res, err := fs.Next()
		if err != nil {
			require.ErrorIs(t, err, ErrEndOfInput)
			break
		}
		seen = append(seen, res.PacketNumber)
	}
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)
}

func TestFilterStageProtocolSet(t *testing.T) {
	src := &fakeSource{items: []*IPResult{
		udpResult(1, "10.0.0.1", "10.0.0.2", 1, 2, nil),
	}}
	cfg := FilterConfig{
		ProtocolSet:     map[uint8]struct{}{ippacket.ProtocolTCP: {}},
		Source:          ippacket.WildcardEndpoint(),
		Destination:     ippacket.WildcardEndpoint(),
		WildcardAllowed: true,
	}
	fs := NewFilterStage(src, cfg, nil)
	_, err := fs.Next()
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestEndpointMatchesWildcard(t *testing.T) {
	filter := ippacket.WildcardEndpoint()
	actual := ippacket.Endpoint{Addr: mustAddr("10.0.0.1"), Port: 80}
	require.True(t, endpointMatches(filter, actual, true))
}
