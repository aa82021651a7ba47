package pcap

import (
	"bufio"
	"io"
	"os"
	"time"
)

// streamBufferSize is the bufio.Reader buffer size over the underlying
// file or pipe.
const streamBufferSize = 64 * 1024

// StreamSource is a buffered sequential reader over either a seekable
// file or a non-seekable standard-input stream, exposing exact-length
// reads and a running byte counter.
type StreamSource struct {
	r      *bufio.Reader
	closer io.Closer

	bytesRead uint64

	streamMode    bool
	retriesLeft   int
	retryInterval time.Duration
}

// OpenStreamSource opens path, or standard input when path is empty or "-".
func OpenStreamSource(path string) (*StreamSource, error) {
	if path == "" || path == "-" {
		return &StreamSource{r: bufio.NewReaderSize(os.Stdin, streamBufferSize)}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindIOError, Msg: "open " + path, Err: err}
	}
	return &StreamSource{r: bufio.NewReaderSize(f, streamBufferSize), closer: f}, nil
}

// SetStreamMode enables the PcapStream-style follow mode, for a writer
// still appending to the file or pipe: every end-of-input, at a record
// boundary or mid-record, is retried after sleeping interval, up to
// retries times in total over the life of the stream, instead of being
// surfaced immediately.
func (s *StreamSource) SetStreamMode(retries int, interval time.Duration) {
	s.streamMode = true
	s.retriesLeft = retries
	s.retryInterval = interval
}

// BytesRead returns the running count of bytes consumed from the stream.
func (s *StreamSource) BytesRead() uint64 { return s.bytesRead }

// ReadExact reads exactly n bytes. A short read at the very start of the
// read (nothing consumed yet) is reported as ErrEndOfInput; a short read
// after some bytes were already consumed mid-record latches KindShortRead.
func (s *StreamSource) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := s.r.Read(buf[read:])
		read += m
		s.bytesRead += uint64(m)
		if err != nil {
			if err == io.EOF {
				if read == 0 {
					if s.tryRetry() {
						continue
					}
					return nil, ErrEndOfInput
				}
				if s.tryRetry() {
					continue
				}
				return nil, &Error{Kind: KindShortRead, Msg: "unexpected end of input mid-record"}
			}
			return nil, &Error{Kind: KindIOError, Err: err}
		}
	}
	return buf, nil
}

func (s *StreamSource) tryRetry() bool {
	if !s.streamMode || s.retriesLeft <= 0 {
		return false
	}
	s.retriesLeft--
	time.Sleep(s.retryInterval)
	return true
}

// Close releases the underlying file handle, if any. Standard input is
// never closed.
func (s *StreamSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
