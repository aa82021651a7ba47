package pcap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindLatches(t *testing.T) {
	latching := []Kind{KindUnknownMagic, KindBadByteOrder, KindBadBlockLength, KindCorruptOptionList, KindShortRead, KindIOError}
	for _, k := range latching {
		require.True(t, k.Latches(), k.String())
	}
	nonLatching := []Kind{KindInvalidIPDatagram, KindAlreadyOpen, KindNotOpen}
	for _, k := range nonLatching {
		require.False(t, k.Latches(), k.String())
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := &Error{Kind: KindIOError, Msg: "read failed", Err: inner}
	require.ErrorIs(t, e, inner)
	require.Contains(t, e.Error(), "boom")
}
