package pcap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func appendOption(body []byte, tag, optLen uint16, value []byte) []byte {
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint16(hdr[0:2], tag)
	binary.BigEndian.PutUint16(hdr[2:4], optLen)
	body = append(body, hdr...)
	body = append(body, value...)
	if rem := len(value) % 4; rem != 0 {
		body = append(body, make([]byte, 4-rem)...)
	}
	return body
}

func TestParseInterfaceDescriptionDefaults(t *testing.T) {
	r := &Reader{bigEndian: true}
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], LinkTypeEthernet)
	require.NoError(t, r.parseInterfaceDescription(body))
	require.Len(t, r.interfaces, 1)
	require.Equal(t, LinkTypeEthernet, r.interfaces[0].LinkType)
	require.Equal(t, int64(1_000_000), r.interfaces[0].TimeUnits)
	require.Equal(t, 0, r.interfaces[0].FCSSize)
}

func TestParseInterfaceDescriptionOptions(t *testing.T) {
	r := &Reader{bigEndian: true}
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], LinkTypeEthernet)

	body = appendOption(body, optIfFCSLen, 1, []byte{4})
	offsetBytes := make([]byte, 8)
	var negOffset int64 = -5
	binary.BigEndian.PutUint64(offsetBytes, uint64(negOffset))
	body = appendOption(body, optIfTSOffset, 8, offsetBytes)
	body = appendOption(body, optIfTSResol, 1, []byte{9}) // 10^9 = nanoseconds
	body = appendOption(body, optEndOfOpt, 0, nil)

	require.NoError(t, r.parseInterfaceDescription(body))
	iface := r.interfaces[0]
	require.Equal(t, 4, iface.FCSSize)
	require.Equal(t, int64(-5), iface.TimeOffset)
	require.Equal(t, int64(1_000_000_000), iface.TimeUnits)
}

func TestParseInterfaceDescriptionPowerOfTwoResolution(t *testing.T) {
	r := &Reader{bigEndian: true}
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], LinkTypeEthernet)
	body = appendOption(body, optIfTSResol, 1, []byte{0x80 | 10}) // 2^10
	require.NoError(t, r.parseInterfaceDescription(body))
	require.Equal(t, int64(1024), r.interfaces[0].TimeUnits)
}

func TestParseInterfaceDescriptionTruncatedOptionFails(t *testing.T) {
	r := &Reader{bigEndian: true}
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], LinkTypeEthernet)
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint16(hdr[0:2], optIfFCSLen)
	binary.BigEndian.PutUint16(hdr[2:4], 20) // claims 20 bytes but none follow
	body = append(body, hdr...)

	err := r.parseInterfaceDescription(body)
	require.Error(t, err)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindCorruptOptionList, pe.Kind)
}

func TestParseInterfaceDescriptionTooShort(t *testing.T) {
	r := &Reader{bigEndian: true}
	err := r.parseInterfaceDescription([]byte{1, 2, 3})
	require.Error(t, err)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindCorruptOptionList, pe.Kind)
}

func TestDecodeTSResol(t *testing.T) {
	require.Equal(t, int64(1), decodeTSResol(0))
	require.Equal(t, int64(1_000_000), decodeTSResol(6))
	require.Equal(t, int64(1_000_000_000), decodeTSResol(9))
	require.Equal(t, int64(1), decodeTSResol(0x80))
	require.Equal(t, int64(2), decodeTSResol(0x81))
}
