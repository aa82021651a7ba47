// Package pcap implements a reader for packet-capture files in the
// legacy pcap and block-structured pcap-ng formats, plus a streaming
// filter that selects IP datagrams by flow, time, packet number,
// protocol, and VLAN tagging.
package pcap

import (
	"time"

	"firestige.xyz/pcapflow/internal/ippacket"
)

// Reader is the top-level handle combining the StreamSource,
// HeaderDecoder, PcapNgBlockReader, InterfaceTable, CaptureIterator, and
// LinkDecapsulator components into the single pull-based NextIP
// operation the rest of the module consumes. State machine: a freshly
// Open'd Reader is Opened; each NextIP call advances Iterating/Yielded
// until EndOfInput or a latched Error; Close preserves counters and
// timestamps for post-mortem inspection.
type Reader struct {
	src      *StreamSource
	reporter Reporter

	errorLatched bool
	latchedErr   error

	isPcapNG  bool
	bigEndian bool
	major     uint16
	minor     uint16

	interfaces []InterfaceDesc

	packetCount   uint64
	ipPacketCount uint64
	packetsSize   uint64
	ipPacketsSize uint64
	firstTs       *int64
	lastTs        *int64

	open bool
}

// Open opens path (or standard input, for "" / "-") and parses the
// capture header. A Reporter of nil discards warnings silently.
func Open(path string, reporter Reporter) (*Reader, error) {
	src, err := OpenStreamSource(path)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	r := &Reader{src: src, reporter: reporter}
	if err := r.readHeader(); err != nil {
		src.Close()
		return nil, err
	}
	r.open = true
	return r, nil
}

// SetStreamMode enables PcapStream-style continuous reading: a clean
// end-of-input mid-capture is retried rather than immediately surfaced.
func (r *Reader) SetStreamMode(retries int, interval time.Duration) {
	r.src.SetStreamMode(retries, interval)
}

func (r *Reader) fail(err error) error {
	if pe, ok := err.(*Error); ok && pe.Kind.Latches() {
		r.errorLatched = true
		r.latchedErr = err
	}
	return err
}

// NextIP pulls captured frames until it can decapsulate and parse one as
// an IP datagram. Truncated captures and frames that fail to parse are
// skipped and reported as warnings, never latched; frames in which no IP
// payload is found are skipped silently.
func (r *Reader) NextIP() (*IPResult, error) {
	for {
		frame, err := r.NextCapturedFrame()
		if err != nil {
			return nil, err
		}
		if frame.Truncated {
			r.reporter.Reportf(SeverityWarning, "truncated capture: packet %d original=%d captured=%d",
				frame.PacketNumber, frame.OriginalSize, len(frame.Bytes))
			continue
		}

		var iface InterfaceDesc
		if frame.InterfaceIndex >= 0 && frame.InterfaceIndex < len(r.interfaces) {
			iface = r.interfaces[frame.InterfaceIndex]
		}

		payload, vlans, ok := decapsulate(frame.Bytes, iface, r.reporter)
		if !ok {
			continue
		}

		pkt, err := ippacket.Parse(payload)
		if err != nil {
			r.reporter.Reportf(SeverityWarning, "invalid IP datagram at packet %d: %v", frame.PacketNumber, err)
			continue
		}

		r.ipPacketCount++
		r.ipPacketsSize += uint64(len(payload))

		return &IPResult{
			Packet:       pkt,
			Vlans:        vlans,
			Timestamp:    frame.Timestamp,
			PacketNumber: frame.PacketNumber,
			OriginalSize: frame.OriginalSize,
		}, nil
	}
}

// --- Observables ---

func (r *Reader) IsOpen() bool             { return r.open }
func (r *Reader) PacketCount() uint64      { return r.packetCount }
func (r *Reader) IPPacketCount() uint64    { return r.ipPacketCount }
func (r *Reader) FileSize() uint64         { return r.src.BytesRead() }
func (r *Reader) TotalPacketsSize() uint64 { return r.packetsSize }
func (r *Reader) TotalIPPacketsSize() uint64 { return r.ipPacketsSize }

// FirstTimestamp returns the first real timestamp observed, if any. It is
// set once and not lowered by later, earlier-dated packets.
func (r *Reader) FirstTimestamp() (int64, bool) {
	if r.firstTs == nil {
		return 0, false
	}
	return *r.firstTs, true
}

// LastTimestamp returns the most recently observed real timestamp, if
// any.
func (r *Reader) LastTimestamp() (int64, bool) {
	if r.lastTs == nil {
		return 0, false
	}
	return *r.lastTs, true
}

// TimeOffset returns max(0, ts - first_timestamp).
func (r *Reader) TimeOffset(ts int64) int64 {
	first, ok := r.FirstTimestamp()
	if !ok {
		return 0
	}
	off := ts - first
	if off < 0 {
		return 0
	}
	return off
}

// ToTime converts a microseconds-since-epoch timestamp to an absolute
// time.
func ToTime(ts int64) time.Time {
	return time.UnixMicro(ts)
}

// Close releases the underlying stream. Counters and timestamps remain
// readable afterward for post-mortem inspection.
func (r *Reader) Close() error {
	r.open = false
	return r.src.Close()
}
