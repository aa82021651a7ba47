package pcap

import (
	"errors"
	"fmt"
)

// Kind tags the structural failure modes a Reader can report. It is a tag,
// not a Go type hierarchy: callers match on Kind, not on concrete types.
type Kind int

const (
	KindUnknownMagic Kind = iota
	KindBadByteOrder
	KindBadBlockLength
	KindCorruptOptionList
	KindShortRead
	KindInvalidIPDatagram
	KindAlreadyOpen
	KindNotOpen
	KindIOError
)

func (k Kind) String() string {
	switch k {
	case KindUnknownMagic:
		return "UnknownMagic"
	case KindBadByteOrder:
		return "BadByteOrder"
	case KindBadBlockLength:
		return "BadBlockLength"
	case KindCorruptOptionList:
		return "CorruptOptionList"
	case KindShortRead:
		return "ShortRead"
	case KindInvalidIPDatagram:
		return "InvalidIpDatagram"
	case KindAlreadyOpen:
		return "AlreadyOpen"
	case KindNotOpen:
		return "NotOpen"
	case KindIOError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Latches reports whether an error of this kind latches the Reader: once
// seen, every subsequent read fails without further I/O. InvalidIPDatagram
// and truncated-capture conditions are warnings, not latching failures —
// iteration continues past them.
func (k Kind) Latches() bool {
	switch k {
	case KindUnknownMagic, KindBadByteOrder, KindBadBlockLength, KindCorruptOptionList, KindShortRead, KindIOError:
		return true
	default:
		return false
	}
}

// Error is the structural error type returned by the Reader's building
// blocks.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pcap: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("pcap: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrEndOfInput signals a clean end of input at a block/record boundary.
// It is not latched and is not itself an error condition for the caller
// beyond "stop iterating".
var ErrEndOfInput = errors.New("pcap: end of input")
