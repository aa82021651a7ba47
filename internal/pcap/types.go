package pcap

import "firestige.xyz/pcapflow/internal/ippacket"

// InterfaceDesc is per-capture-point metadata. It is created once, on
// header parse for legacy pcap (exactly one) or on each pcap-ng
// Interface-Description block, and is never mutated afterward.
type InterfaceDesc struct {
	LinkType   uint16
	FCSSize    int   // trailing FCS bytes stripped from frames on this interface
	TimeUnits  int64 // positive ticks per second; 0 means unknown resolution
	TimeOffset int64 // seconds added to every timestamp from this interface
}

// Link types recognized by the decapsulator. Numeric values follow the
// tcpdump/libpcap LINKTYPE_* assignments.
const (
	LinkTypeNull     uint16 = 0
	LinkTypeEthernet uint16 = 1
	LinkTypeRaw      uint16 = 101
	LinkTypeLoop     uint16 = 108
)

// VlanTag is one layer of 802.1Q/802.1ad/802.1ah encapsulation that was
// unwrapped to reach the IP payload.
type VlanTag struct {
	NextEthertype uint16
	VlanID        uint32 // 12 bits used
}

// VlanStack is an ordered sequence of VlanTag, outermost first.
type VlanStack []VlanTag

// Timestamp is a capture timestamp in microseconds since the Unix epoch,
// or the explicit absence of one (an interface with unknown resolution).
// An explicit optional, not a negative-value sentinel.
type Timestamp struct {
	micros int64
	valid  bool
}

// NoTimestamp returns the "timestamp unknown" value.
func NoTimestamp() Timestamp { return Timestamp{} }

// TimestampFromMicros wraps a known microsecond timestamp.
func TimestampFromMicros(us int64) Timestamp { return Timestamp{micros: us, valid: true} }

func (t Timestamp) Valid() bool  { return t.valid }
func (t Timestamp) Micros() int64 { return t.micros }

// CapturedFrame is the transient output of the capture iterator: raw link
// payload plus enough context to decapsulate and time-stamp it.
type CapturedFrame struct {
	Bytes          []byte
	OriginalSize   int
	InterfaceIndex int
	Timestamp      Timestamp
	PacketNumber   uint64 // 1-based, the Reader's running packet_count
	Truncated      bool
}

// IPResult is one IP datagram surfaced by the Reader, annotated with the
// VLAN stack it was extracted from and its capture timestamp.
type IPResult struct {
	Packet       *ippacket.Packet
	Vlans        VlanStack
	Timestamp    Timestamp
	PacketNumber uint64
	OriginalSize int
}

// Optional is an explicit "maybe set" value, used throughout FilterConfig
// instead of magic sentinels.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// None represents an absent value.
func None[T any]() Optional[T] { return Optional[T]{} }
