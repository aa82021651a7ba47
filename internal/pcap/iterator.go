package pcap

import "math"

// NextCapturedFrame is the CaptureIterator's single operation: it loops
// over the file, dispatching by block type, until it has a captured
// frame to hand back or hits end of input / a latched error.
func (r *Reader) NextCapturedFrame() (*CapturedFrame, error) {
	if r.errorLatched {
		return nil, r.latchedErr
	}
	if !r.isPcapNG {
		return r.nextLegacyRecord()
	}
	for {
		frame, err := r.nextNgBlock()
		if err != nil {
			return nil, err
		}
		if frame != nil {
			return frame, nil
		}
	}
}

// nextLegacyRecord reads one legacy pcap record: a 16-byte header
// followed by captured_size bytes of link payload.
func (r *Reader) nextLegacyRecord() (*CapturedFrame, error) {
	hdr, err := r.src.ReadExact(16)
	if err != nil {
		if err == ErrEndOfInput {
			return nil, ErrEndOfInput
		}
		return nil, r.fail(err)
	}
	bo := byteOrder{big: r.bigEndian}
	seconds := bo.get32(hdr, 0)
	sub := bo.get32(hdr, 4)
	capturedSize := bo.get32(hdr, 8)
	originalSize := bo.get32(hdr, 12)

	r.packetCount++
	iface := r.interfaces[0]

	ts := NoTimestamp()
	if iface.TimeUnits > 0 {
		subMicros := (int64(sub) * 1_000_000) / iface.TimeUnits
		ts = TimestampFromMicros(int64(seconds)*1_000_000 + subMicros)
		ts = r.applyOffset(ts, iface)
	}

	data, err := r.src.ReadExact(int(capturedSize))
	if err != nil {
		return nil, r.fail(err)
	}

	r.packetsSize += uint64(capturedSize)
	r.updateTimestampBounds(ts)

	return &CapturedFrame{
		Bytes:          data,
		OriginalSize:   int(originalSize),
		InterfaceIndex: 0,
		Timestamp:      ts,
		PacketNumber:   r.packetCount,
		Truncated:      capturedSize < originalSize,
	}, nil
}

// nextNgBlock reads and dispatches exactly one pcap-ng block. A nil frame
// with a nil error means "block consumed, nothing to report yet, keep
// looping" (Section-Header, Interface-Description, and unrecognized
// blocks all behave this way).
func (r *Reader) nextNgBlock() (*CapturedFrame, error) {
	typeBytes, err := r.src.ReadExact(4)
	if err != nil {
		if err == ErrEndOfInput {
			return nil, ErrEndOfInput
		}
		return nil, r.fail(err)
	}
	// blockTypeSectionHeader (0x0A0D0D0A) is a byte-order palindrome, so
	// reading it with the stale endianness from a prior section is safe.
	blockType := byteOrder{big: r.bigEndian}.get32(typeBytes, 0)

	switch blockType {
	case blockTypeSectionHeader:
		return nil, r.readSectionHeader()
	case blockTypeInterfaceDescription:
		body, err := r.readBlockBody(blockType, false)
		if err != nil {
			return nil, err
		}
		return nil, r.parseInterfaceDescription(body)
	case blockTypeEnhancedPacket, blockTypeObsoletePacket:
		return r.readPacketBlock(blockType)
	case blockTypeSimplePacket:
		return r.readSimplePacketBlock()
	default:
		_, err := r.readBlockBody(blockType, false)
		return nil, err
	}
}

// readPacketBlock handles Enhanced-Packet and Obsolete-Packet blocks.
func (r *Reader) readPacketBlock(blockType uint32) (*CapturedFrame, error) {
	body, err := r.readBlockBody(blockType, false)
	if err != nil {
		return nil, err
	}
	if len(body) < 20 {
		return nil, nil
	}
	bo := byteOrder{big: r.bigEndian}

	var ifaceIdx int
	if blockType == blockTypeObsoletePacket {
		ifaceIdx = int(bo.get16(body, 0))
	} else {
		ifaceIdx = int(bo.get32(body, 0))
	}
	// An interface table that doesn't yet know this index means the
	// block is silently ignored, as if it were an unrecognized block.
	if ifaceIdx < 0 || ifaceIdx >= len(r.interfaces) {
		return nil, nil
	}
	iface := r.interfaces[ifaceIdx]

	high := bo.get32(body, 4)
	low := bo.get32(body, 8)
	raw := int64(uint64(high)<<32 | uint64(low))
	capturedSize := bo.get32(body, 12)
	originalSize := bo.get32(body, 16)

	r.packetCount++

	ts := r.scaleTimestamp(raw, iface)
	ts = r.applyOffset(ts, iface)

	payloadLen := int(capturedSize)
	if 20+payloadLen > len(body) {
		payloadLen = len(body) - 20
	}
	data := body[20 : 20+payloadLen]

	r.packetsSize += uint64(capturedSize)
	r.updateTimestampBounds(ts)

	return &CapturedFrame{
		Bytes:          data,
		OriginalSize:   int(originalSize),
		InterfaceIndex: ifaceIdx,
		Timestamp:      ts,
		PacketNumber:   r.packetCount,
		Truncated:      capturedSize < originalSize,
	}, nil
}

// readSimplePacketBlock handles a Simple-Packet block: original size at
// offset 0, payload at offset 4, no timestamp, no interface reference
// (it implicitly belongs to the section's sole interface).
func (r *Reader) readSimplePacketBlock() (*CapturedFrame, error) {
	body, err := r.readBlockBody(blockTypeSimplePacket, false)
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, nil
	}
	bo := byteOrder{big: r.bigEndian}
	originalSize := bo.get32(body, 0)

	capturedSize := len(body) - 4
	if int(originalSize) < capturedSize {
		capturedSize = int(originalSize)
	}

	r.packetCount++
	data := body[4 : 4+capturedSize]
	r.packetsSize += uint64(capturedSize)

	return &CapturedFrame{
		Bytes:          data,
		OriginalSize:   int(originalSize),
		InterfaceIndex: 0,
		Timestamp:      NoTimestamp(),
		PacketNumber:   r.packetCount,
		Truncated:      capturedSize < int(originalSize),
	}, nil
}

// scaleTimestamp converts a raw interface tick count to microseconds
// since the Unix epoch: pass-through, clean division, clean
// multiplication, overflow-guarded fallback to double precision, plain
// integer division.
func (r *Reader) scaleTimestamp(raw int64, iface InterfaceDesc) Timestamp {
	units := iface.TimeUnits
	if units == 0 {
		return NoTimestamp()
	}
	const million = 1_000_000

	switch {
	case units == million:
		return TimestampFromMicros(raw)
	case units > million && units%million == 0:
		return TimestampFromMicros(raw / (units / million))
	case units < million && million%units == 0:
		return TimestampFromMicros(raw * (million / units))
	default:
		if rawOverflowsOnMultiply(raw, million) {
			return TimestampFromMicros(int64((float64(raw) * million) / float64(units)))
		}
		return TimestampFromMicros((raw * million) / units)
	}
}

func rawOverflowsOnMultiply(raw, factor int64) bool {
	if raw == 0 {
		return false
	}
	return raw > math.MaxInt64/factor || raw < math.MinInt64/factor
}

func (r *Reader) applyOffset(ts Timestamp, iface InterfaceDesc) Timestamp {
	if !ts.Valid() || iface.TimeOffset == 0 {
		return ts
	}
	return TimestampFromMicros(ts.Micros() + iface.TimeOffset*1_000_000)
}

// updateTimestampBounds maintains first_ts (the first real timestamp
// observed) and last_ts (the most recently observed real timestamp,
// which pcap-ng does not guarantee to be monotonic across interfaces).
func (r *Reader) updateTimestampBounds(ts Timestamp) {
	if !ts.Valid() {
		return
	}
	micros := ts.Micros()
	if r.firstTs == nil {
		first := micros
		r.firstTs = &first
	}
	last := micros
	r.lastTs = &last
}
