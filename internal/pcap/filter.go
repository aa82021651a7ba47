package pcap

import "firestige.xyz/pcapflow/internal/ippacket"

// ipSource is what FilterStage wraps: anything that can produce a stream
// of IP datagrams and knows the first timestamp it has seen. *Reader
// satisfies this; tests substitute a fake.
type ipSource interface {
	NextIP() (*IPResult, error)
	FirstTimestamp() (int64, bool)
}

// FilterConfig configures FilterStage. The packet and time bounds are
// optional. VlanMatch and ProtocolSet are required (possibly empty,
// meaning "any"). Source and Destination are required as well: use
// ippacket.WildcardEndpoint() for "any"; the zero Endpoint has a wildcard
// address but matches port 0 only.
type FilterConfig struct {
	FirstPacket     Optional[uint64]
	LastPacket      Optional[uint64]
	FirstTimeOffset Optional[int64] // microseconds from file start
	LastTimeOffset  Optional[int64]
	FirstTime       Optional[int64] // absolute microseconds since Unix epoch
	LastTime        Optional[int64]

	VlanMatch   []uint32 // ordered outer-to-inner expected VLAN ids; empty = any
	ProtocolSet map[uint8]struct{} // empty = any

	Source      ippacket.Endpoint
	Destination ippacket.Endpoint

	Bidirectional   bool
	WildcardAllowed bool
}

// SetProtocolFilterTCP restricts cfg to TCP only, discarding any
// previously configured protocol set.
func (cfg *FilterConfig) SetProtocolFilterTCP() {
	cfg.ProtocolSet = map[uint8]struct{}{ippacket.ProtocolTCP: {}}
}

// SetProtocolFilterUDP restricts cfg to UDP only, discarding any
// previously configured protocol set.
func (cfg *FilterConfig) SetProtocolFilterUDP() {
	cfg.ProtocolSet = map[uint8]struct{}{ippacket.ProtocolUDP: {}}
}

// FilterStage wraps an IP-producing source, applying the packet-number
// window, time windows, protocol set, VLAN match, and flow predicates,
// with optional bidirectionality and address auto-learning.
type FilterStage struct {
	src      ipSource
	cfg      FilterConfig
	reporter Reporter
	addrLogLevel Severity

	effectiveSource      ippacket.Endpoint
	effectiveDestination ippacket.Endpoint
	learned              bool
}

// NewFilterStage wraps src with cfg. Equivalent to calling Open
// immediately.
func NewFilterStage(src ipSource, cfg FilterConfig, reporter Reporter) *FilterStage {
	if reporter == nil {
		reporter = nopReporter{}
	}
	fs := &FilterStage{src: src, reporter: reporter, addrLogLevel: SeverityInfo}
	fs.Open(cfg)
	return fs
}

// Open resets the learned addresses and the effective filter window from
// cfg.
func (fs *FilterStage) Open(cfg FilterConfig) {
	fs.cfg = cfg
	fs.effectiveSource = cfg.Source
	fs.effectiveDestination = cfg.Destination
	fs.learned = false
}

// SetAddressFilterLogLevel sets the severity at which a learned flow is
// reported.
func (fs *FilterStage) SetAddressFilterLogLevel(sev Severity) { fs.addrLogLevel = sev }

// Next returns the next matching IP datagram, or ErrEndOfInput / an
// Error from the underlying source. FilterStage never latches errors of
// its own: it only short-circuits on window-end conditions, which
// surface as ErrEndOfInput.
func (fs *FilterStage) Next() (*IPResult, error) {
	for {
		res, err := fs.src.NextIP()
		if err != nil {
			return nil, err
		}

		if fs.cfg.LastPacket.Set && res.PacketNumber > fs.cfg.LastPacket.Value {
			return nil, ErrEndOfInput
		}
		if fs.cfg.LastTime.Set && res.Timestamp.Valid() && res.Timestamp.Micros() > fs.cfg.LastTime.Value {
			return nil, ErrEndOfInput
		}
		if fs.cfg.LastTimeOffset.Set {
			if off, ok := fs.offsetFromFirst(res.Timestamp); ok && off > fs.cfg.LastTimeOffset.Value {
				return nil, ErrEndOfInput
			}
		}

		if fs.cfg.FirstPacket.Set && res.PacketNumber < fs.cfg.FirstPacket.Value {
			continue
		}
		if fs.cfg.FirstTime.Set {
			if !res.Timestamp.Valid() || res.Timestamp.Micros() < fs.cfg.FirstTime.Value {
				continue
			}
		}
		if fs.cfg.FirstTimeOffset.Set {
			off, ok := fs.offsetFromFirst(res.Timestamp)
			if !ok || off < fs.cfg.FirstTimeOffset.Value {
				continue
			}
		}
		if len(fs.cfg.ProtocolSet) > 0 {
			if _, ok := fs.cfg.ProtocolSet[res.Packet.Protocol]; !ok {
				continue
			}
		}
		if !vlanSubsequenceMatch(fs.cfg.VlanMatch, res.Vlans) {
			continue
		}

		usePort := len(fs.cfg.ProtocolSet) == 0 || fs.protocolSetUsesPorts()

		forward := endpointMatches(fs.effectiveSource, res.Packet.Source, usePort) &&
			endpointMatches(fs.effectiveDestination, res.Packet.Destination, usePort)
		reverse := fs.cfg.Bidirectional &&
			endpointMatches(fs.effectiveSource, res.Packet.Destination, usePort) &&
			endpointMatches(fs.effectiveDestination, res.Packet.Source, usePort)

		if !forward && !reverse {
			continue
		}

		fs.maybeLearn(res, forward)

		return res, nil
	}
}

func (fs *FilterStage) protocolSetUsesPorts() bool {
	_, tcp := fs.cfg.ProtocolSet[ippacket.ProtocolTCP]
	_, udp := fs.cfg.ProtocolSet[ippacket.ProtocolUDP]
	return tcp || udp
}

func (fs *FilterStage) offsetFromFirst(ts Timestamp) (int64, bool) {
	first, ok := fs.src.FirstTimestamp()
	if !ok || !ts.Valid() {
		return 0, false
	}
	off := ts.Micros() - first
	if off < 0 {
		off = 0
	}
	return off, true
}

// maybeLearn implements flow auto-learning: the first accepting packet
// fixes the effective source/destination pair when the configured ones
// are not fully specified and wildcards are not permitted to persist.
func (fs *FilterStage) maybeLearn(res *IPResult, forward bool) {
	if fs.learned || fs.cfg.WildcardAllowed {
		return
	}
	if !fs.cfg.Source.IsWildcard() && !fs.cfg.Destination.IsWildcard() {
		return
	}
	if forward {
		fs.effectiveSource = res.Packet.Source
		fs.effectiveDestination = res.Packet.Destination
	} else {
		fs.effectiveSource = res.Packet.Destination
		fs.effectiveDestination = res.Packet.Source
	}
	fs.learned = true
	fs.reporter.Reportf(fs.addrLogLevel, "learned flow %s -> %s", fs.effectiveSource, fs.effectiveDestination)
}

func endpointMatches(filter, actual ippacket.Endpoint, usePort bool) bool {
	if !filter.HasWildcardAddr() && filter.Addr != actual.Addr {
		return false
	}
	if usePort && !filter.HasWildcardPort() && filter.Port != actual.Port {
		return false
	}
	return true
}

// vlanSubsequenceMatch reports whether expected appears, in order, as a
// subsequence of stack's VLAN ids — not necessarily contiguous. Empty
// expected matches anything.
func vlanSubsequenceMatch(expected []uint32, stack VlanStack) bool {
	idx := 0
	for _, id := range expected {
		found := false
		for ; idx < len(stack); idx++ {
			if stack[idx].VlanID == id {
				found = true
				idx++
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
